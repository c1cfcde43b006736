package command

import (
	"slices"

	"github.com/sahilm/fuzzy"
)

const maxSuggestions = 3

func unknownCommand(group *Command, token string, position int, ambiguous []string) *UnknownCommandError {
	err := &UnknownCommandError{
		Path:      group.Path(),
		Token:     token,
		Position:  position,
		Ambiguous: ambiguous,
	}
	for _, child := range group.VisibleSubcommands() {
		err.Candidates = append(err.Candidates, child.name)
	}
	if token != "" && len(ambiguous) == 0 {
		err.Suggestions = Suggest(token, err.Candidates)
	}
	return err
}

// Suggest returns up to three names that fuzzily match token, best first.
func Suggest(token string, names []string) []string {
	if token == "" || len(names) == 0 {
		return nil
	}
	matches := fuzzy.Find(token, names)
	out := make([]string, 0, maxSuggestions)
	for _, match := range matches {
		if slices.Contains(out, match.Str) {
			continue
		}
		out = append(out, match.Str)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}
