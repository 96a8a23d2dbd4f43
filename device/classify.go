package device

import (
	"fmt"
	"strings"

	"github.com/beamctl/beamctl/grammar"
)

// Result is the classified outcome of one successful exchange.
type Result struct {
	// Raw is the reply exactly as drained from the transport. Empty for
	// fire-and-forget commands that produce no reply.
	Raw string
	// Meaning is the human-readable meaning of a known response, when the
	// grammar classifies replies with a known-responses table.
	Meaning string
}

// classify interprets a raw reply against the grammar's response rules.
// First match wins:
//
//  1. An empty reply is a success with no payload; many commands are
//     fire-and-forget.
//  2. With a known-responses table, the reply is stripped of the framing
//     surrounds and matched exactly. A match succeeds with the table's
//     meaning; anything else is ErrCommandFailed.
//  3. Otherwise the failure and exception substring markers are checked,
//     in that order. A reply matching neither succeeds as-is.
//
// Devices vary: some return an enumerable closed set of strings, others
// embed error markers in otherwise variable text. Both styles are
// supported, with the table checked first when both are configured.
func classify(g *grammar.Grammar, response string) (*Result, error) {
	if response == "" {
		return &Result{}, nil
	}

	if len(g.KnownResponses) > 0 {
		stripped := stripSurrounds(g, response)
		meaning, ok := g.KnownResponses[stripped]
		if !ok {
			return nil, fmt.Errorf("%w: received an unknown response %q", ErrCommandFailed, response)
		}
		return &Result{Raw: response, Meaning: meaning}, nil
	}

	if g.CommandFailedMessage != "" && strings.Contains(response, g.CommandFailedMessage) {
		return nil, fmt.Errorf("%w: device rejected the command, likely an invalid state change: %q", ErrCommandFailed, response)
	}
	if g.ExceptionMessage != "" && strings.Contains(response, g.ExceptionMessage) {
		return nil, fmt.Errorf("%w: check the device grammar: %q", ErrCommandException, response)
	}

	return &Result{Raw: response}, nil
}

// stripSurrounds removes the framing surround characters from both ends of
// a reply. The surrounds are treated as character sets, so a reply framed
// with any run of those characters still matches its known-responses key.
func stripSurrounds(g *grammar.Grammar, response string) string {
	response = strings.TrimLeft(response, g.LeftSurround)
	return strings.TrimRight(response, g.RightSurround)
}
