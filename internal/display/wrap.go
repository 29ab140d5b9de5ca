// Package display formats player-facing text for the chat log and the
// headless console.
package display

import (
	"strconv"
	"strings"

	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/text/unicode/norm"
)

const (
	DefaultWidth = 80
	PreviewTail  = "..."
	BadgeCap     = 99
)

// Wrap word-wraps text to width, preserving ANSI escape sequences.
func Wrap(text string, width int) string {
	if width <= 0 {
		width = DefaultWidth
	}
	return wordwrap.String(text, width)
}

// Preview shortens text to at most width cells on a single line. Longer text
// ends with PreviewTail.
func Preview(text string, width int) string {
	line := strings.Join(strings.Fields(text), " ")
	if width <= 0 || ansi.PrintableRuneWidth(line) <= width {
		return line
	}
	return truncate.StringWithTail(line, uint(width), PreviewTail)
}

// Normalize puts text in NFC so composed and decomposed hangul compare equal.
func Normalize(text string) string {
	return norm.NFC.String(text)
}

// Badge renders an unread counter, capping it at BadgeCap. Zero renders empty.
func Badge(n int) string {
	switch {
	case n <= 0:
		return ""
	case n > BadgeCap:
		return strconv.Itoa(BadgeCap) + "+"
	default:
		return strconv.Itoa(n)
	}
}
