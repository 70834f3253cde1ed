package tui

import "strings"

// Command represents a parsed prompt command.
type Command struct {
	Name string
	Args string
}

var commandAliases = map[string]string{
	"q":    "quit",
	"exit": "quit",
	"h":    "help",
	"s":    "search",
	"o":    "open",
	"chat": "open",
}

// ParseCommand parses a command string (without the leading ':').
// Aliases are folded into their canonical name.
func ParseCommand(input string) Command {
	input = strings.TrimSpace(input)
	input = strings.TrimPrefix(input, ":")
	name, args, _ := strings.Cut(input, " ")
	cmd := Command{Name: strings.ToLower(name), Args: strings.TrimSpace(args)}
	if canonical, ok := commandAliases[cmd.Name]; ok {
		cmd.Name = canonical
	}
	return cmd
}
