// Package grammar defines the declarative per-device command grammar: the
// serial settings, command vocabulary, framing tokens and response rules
// that describe how to talk to one model of device.
package grammar

// Grammar describes one device's wire protocol. A grammar document is
// authored per device id (for example "benq") and decoded from JSON or
// YAML; the field tags below are the document keys.
//
// Exactly one response-classification style is usually configured: either
// KnownResponses (closed set of reply strings with human-readable
// meanings) or the free-form substring markers CommandFailedMessage and
// ExceptionMessage. When both are present, KnownResponses wins.
type Grammar struct {
	// Serial holds the transport settings (baudrate, parity, ...) keyed by
	// setting name. Values are validated and converted by the device
	// package; unknown keys are rejected there.
	Serial map[string]any `yaml:"serial" json:"serial"`

	// CommandList maps a command alias ("power") to its wire command and
	// action vocabulary. A grammar must define at least one command with
	// at least one action.
	CommandList map[string]Command `yaml:"command_list" json:"command_list"`

	// Handshake, when present, is sent before every request. A mismatched
	// reply is advisory only.
	Handshake *Handshake `yaml:"handshake" json:"handshake"`

	// KnownResponses maps an exact reply (after surround stripping) to a
	// human-readable meaning.
	KnownResponses map[string]string `yaml:"known_responses" json:"known_responses"`

	// CommandFailedMessage is a substring of a reply that signals the
	// device rejected the command.
	CommandFailedMessage string `yaml:"command_failed_message" json:"command_failed_message"`

	// ExceptionMessage is a substring of a reply that signals a
	// device-side fault.
	ExceptionMessage string `yaml:"exception_message" json:"exception_message"`

	// WaitTime is the delay in seconds between sending a request and
	// reading the reply. Zero means the 1 second default.
	WaitTime float64 `yaml:"wait_time" json:"wait_time"`

	// LeftSurround, RightSurround and Separator frame the request string:
	// left + command + separator + action + right.
	//
	// "seperator" is the historical document key; existing device files
	// use that spelling.
	LeftSurround  string `yaml:"left_surround" json:"left_surround"`
	RightSurround string `yaml:"right_surround" json:"right_surround"`
	Separator     string `yaml:"seperator" json:"seperator"`
}

// Command is one entry of the command vocabulary: the wire-level command
// token plus the mapping from action alias to wire-level action token.
type Command struct {
	Command string            `yaml:"command" json:"command"`
	Actions map[string]string `yaml:"actions" json:"actions"`
}

// Handshake is an optional preliminary exchange sent before every request.
type Handshake struct {
	// Send is written verbatim to the device.
	Send string `yaml:"send" json:"send"`
	// Wait is the delay in seconds before reading the reply.
	Wait float64 `yaml:"wait" json:"wait"`
	// Expect is the reply the device should produce. len(Expect) bytes are
	// read back and compared.
	Expect string `yaml:"expect" json:"expect"`
}

// Actions returns the action aliases valid for the given command alias,
// or nil if the command is unknown.
func (g *Grammar) Actions(command string) []string {
	spec, ok := g.CommandList[command]
	if !ok {
		return nil
	}
	actions := make([]string, 0, len(spec.Actions))
	for alias := range spec.Actions {
		actions = append(actions, alias)
	}
	return actions
}
