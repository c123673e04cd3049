package workbench

import "strings"

// splitStatements splits a SQL batch on top-level semicolons. Semicolons
// inside single-quoted strings, double-quoted identifiers, and line comments
// are ignored. Blank statements are dropped.
func splitStatements(sqlText string) []string {
	var (
		stmts   []string
		current strings.Builder
	)

	const (
		stateNormal = iota
		stateSingleQuote
		stateDoubleQuote
		stateLineComment
	)

	state := stateNormal
	for i := 0; i < len(sqlText); i++ {
		ch := sqlText[i]

		switch state {
		case stateNormal:
			switch {
			case ch == ';':
				if s := strings.TrimSpace(current.String()); s != "" {
					stmts = append(stmts, s)
				}
				current.Reset()
				continue
			case ch == '\'':
				state = stateSingleQuote
			case ch == '"':
				state = stateDoubleQuote
			case ch == '-' && i+1 < len(sqlText) && sqlText[i+1] == '-':
				state = stateLineComment
			}
		case stateSingleQuote:
			if ch == '\'' {
				state = stateNormal
			}
		case stateDoubleQuote:
			if ch == '"' {
				state = stateNormal
			}
		case stateLineComment:
			if ch == '\n' {
				state = stateNormal
			}
		}

		current.WriteByte(ch)
	}

	if s := strings.TrimSpace(current.String()); s != "" {
		stmts = append(stmts, s)
	}

	return stmts
}
