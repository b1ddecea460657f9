// Package action round-trips user actions through Telegram callback data.
// Callback payloads are opaque strings capped at 64 bytes by the Bot API,
// so actions are encoded as compact colon-separated tokens and decoded
// back into a typed value on the way in.
package action

import (
	"fmt"
	"strings"

	"github.com/sergei-li-tech/tgops/internal/operr"
)

// Kind discriminates the action variants.
type Kind string

const (
	// Toggle requests a suspend/unsuspend cycle for a HelmRelease.
	Toggle Kind = "toggle"
	// Logs requests the configured log link for an application.
	Logs Kind = "logs"
)

const sep = ":"

// maxTokenLen is the Bot API limit for callback data.
const maxTokenLen = 64

// Action is one user-confirmable operation.
type Action struct {
	Kind      Kind
	Namespace string // toggle only
	Name      string // toggle only
	App       string // logs only
}

// NewToggle builds a toggle action for a release.
func NewToggle(namespace, name string) Action {
	return Action{Kind: Toggle, Namespace: namespace, Name: name}
}

// NewLogs builds a logs action for an app.
func NewLogs(app string) Action {
	return Action{Kind: Logs, App: app}
}

// Encode renders the action as callback data. Components that would break
// the token format or exceed the Bot API size limit are rejected.
func (a Action) Encode() (string, error) {
	var parts []string
	switch a.Kind {
	case Toggle:
		parts = []string{string(Toggle), a.Namespace, a.Name}
	case Logs:
		parts = []string{string(Logs), a.App}
	default:
		return "", fmt.Errorf("unknown action kind %q", a.Kind)
	}

	for _, p := range parts[1:] {
		if p == "" {
			return "", fmt.Errorf("empty component in %s action", a.Kind)
		}
		if strings.Contains(p, sep) {
			return "", fmt.Errorf("component %q contains separator", p)
		}
	}

	token := strings.Join(parts, sep)
	if len(token) > maxTokenLen {
		return "", fmt.Errorf("token %q exceeds %d bytes", token, maxTokenLen)
	}
	return token, nil
}

// Decode parses callback data back into an Action. Malformed or truncated
// tokens yield a token_decode classified error, never a panic.
func Decode(token string) (Action, error) {
	parts := strings.Split(token, sep)

	switch Kind(parts[0]) {
	case Toggle:
		if len(parts) != 3 || parts[1] == "" || parts[2] == "" {
			return Action{}, operr.New(operr.TokenDecode,
				fmt.Sprintf("malformed toggle token %q", token))
		}
		return NewToggle(parts[1], parts[2]), nil
	case Logs:
		if len(parts) != 2 || parts[1] == "" {
			return Action{}, operr.New(operr.TokenDecode,
				fmt.Sprintf("malformed logs token %q", token))
		}
		return NewLogs(parts[1]), nil
	default:
		return Action{}, operr.New(operr.TokenDecode,
			fmt.Sprintf("unknown action in token %q", token))
	}
}
