package device

import (
	"fmt"

	"github.com/beamctl/beamctl/grammar"
)

// encode renders the wire string for a symbolic command and action using
// the grammar's framing tokens, in fixed order: left surround, wire
// command, separator, wire action, right surround.
//
// encode is pure and deterministic. No escaping or length limits are
// imposed; malformed framing tokens are the grammar author's
// responsibility.
func encode(g *grammar.Grammar, command, action string) (string, error) {
	spec, ok := g.CommandList[command]
	if !ok {
		return "", fmt.Errorf("%w: unknown command %q", ErrInvalidCommand, command)
	}
	wireAction, ok := spec.Actions[action]
	if !ok {
		return "", fmt.Errorf("%w: %q is not a valid action for command %q", ErrInvalidCommand, action, command)
	}

	return g.LeftSurround + spec.Command + g.Separator + wireAction + g.RightSurround, nil
}
