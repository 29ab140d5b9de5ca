package protocol

import (
	"fmt"
	"strings"
)

// HeaderPlayerID carries the sender's player id on relay messages.
const HeaderPlayerID = "Player-Id"

// UpSubject is where clients publish frames for a namespace.
func UpSubject(namespace string) string {
	return fmt.Sprintf("island.%s.up", namespace)
}

// UpWildcard matches the up subject of every namespace.
const UpWildcard = "island.*.up"

// DownSubject is where a single player receives frames for a namespace.
func DownSubject(namespace, playerID string) string {
	return fmt.Sprintf("island.%s.down.%s", namespace, playerID)
}

// BroadcastSubject reaches every player connected to a namespace.
func BroadcastSubject(namespace string) string {
	return fmt.Sprintf("island.%s.down.all", namespace)
}

// NamespaceFromUp extracts the namespace from an up subject.
func NamespaceFromUp(subject string) (string, bool) {
	rest, ok := strings.CutPrefix(subject, "island.")
	if !ok {
		return "", false
	}
	ns, ok := strings.CutSuffix(rest, ".up")
	if !ok || ns == "" || strings.Contains(ns, ".") {
		return "", false
	}
	return ns, true
}

const clientNamePrefix = "island-client-"

// ClientName is the NATS connection name a player's client announces.
func ClientName(playerID string) string {
	return clientNamePrefix + playerID
}

// PlayerFromClientName recovers the player id from a connection name.
func PlayerFromClientName(name string) (string, bool) {
	id, ok := strings.CutPrefix(name, clientNamePrefix)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}
