package rcon

import "strings"

// Command is one console command: a verb plus its ordered parameters.
// Commands are immutable values owned by the caller for the duration
// of one send.
type Command struct {
	Verb   string
	Params []string
}

// NewCommand builds a command from a verb and optional parameters.
func NewCommand(verb string, params ...string) Command {
	return Command{Verb: verb, Params: params}
}

// Line serializes the command for the wire: the verb, a space-joined
// parameter block when parameters are present, and a trailing newline.
func (c Command) Line() string {
	if len(c.Params) == 0 {
		return c.Verb + "\n"
	}
	return c.Verb + " " + strings.Join(c.Params, " ") + "\n"
}

func (c Command) String() string {
	return strings.TrimSuffix(c.Line(), "\n")
}
