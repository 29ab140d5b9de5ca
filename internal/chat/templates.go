package chat

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

const (
	joinTemplate  = `{{ .Nickname }} 님이 입장했어요 🏝️`
	leaveTemplate = `{{ .Nickname | default "알 수 없음" }} 님이 떠났어요 ⛵️`
)

var templateFuncs = sprig.TxtFuncMap()

var (
	joinTmpl  = template.Must(template.New("join").Funcs(templateFuncs).Parse(joinTemplate))
	leaveTmpl = template.Must(template.New("leave").Funcs(templateFuncs).Parse(leaveTemplate))
)

type announcement struct {
	Nickname string
}

func expand(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing %s template: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
