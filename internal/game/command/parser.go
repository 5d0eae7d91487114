package command

import "strings"

// Input is one parsed line of player text.
type Input struct {
	// Verb is the first word, lowercased.
	Verb string
	// Args are the remaining words.
	Args []string
	// Rest is the text after the verb with inner spacing preserved.
	Rest string
}

// Parse splits a line into its verb and arguments.
//
// Postcondition: Verb is empty for a blank line.
func Parse(line string) Input {
	line = strings.TrimSpace(line)
	if line == "" {
		return Input{}
	}
	verb, rest, _ := strings.Cut(line, " ")
	in := Input{Verb: strings.ToLower(verb), Rest: strings.TrimSpace(rest)}
	if in.Rest != "" {
		in.Args = strings.Fields(in.Rest)
	}
	return in
}
