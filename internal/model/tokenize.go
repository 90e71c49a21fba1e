package model

import "strings"

// SplitScript splits a command line into words the way a POSIX shell would
// for simple commands: whitespace separates words, single quotes protect
// everything up to the closing quote, and inside double quotes a backslash
// escapes ", \, $ and `. Quote characters are removed from the result.
//
// Operators such as && or | are not special; they come back as ordinary
// words. When quoting is unbalanced the script is split on whitespace
// instead, so SplitScript never fails.
func SplitScript(script string) []string {
	words, ok := lex(script)
	if !ok {
		return strings.Fields(script)
	}
	return words
}

type lexState int

const (
	stateBlank lexState = iota
	stateWord
	stateSingle
	stateDouble
)

func lex(script string) ([]string, bool) {
	words := []string{}
	var word strings.Builder
	state := stateBlank
	inWord := false
	escaped := false

	flush := func() {
		if inWord {
			words = append(words, word.String())
		}
		word.Reset()
		inWord = false
	}

	for _, r := range script {
		if escaped {
			escaped = false
			if state == stateDouble && !strings.ContainsRune("\"\\$`", r) {
				word.WriteRune('\\')
			}
			word.WriteRune(r)
			inWord = true
			continue
		}

		switch state {
		case stateSingle:
			if r == '\'' {
				state = stateWord
				continue
			}
			word.WriteRune(r)

		case stateDouble:
			switch r {
			case '"':
				state = stateWord
			case '\\':
				escaped = true
			default:
				word.WriteRune(r)
			}

		default:
			switch {
			case r == ' ' || r == '\t' || r == '\n' || r == '\r':
				flush()
				state = stateBlank
			case r == '\'':
				state = stateSingle
				inWord = true
			case r == '"':
				state = stateDouble
				inWord = true
			case r == '\\':
				escaped = true
				inWord = true
				state = stateWord
			default:
				word.WriteRune(r)
				inWord = true
				state = stateWord
			}
		}
	}

	if state == stateSingle || state == stateDouble || escaped {
		return nil, false
	}
	flush()
	return words, true
}
