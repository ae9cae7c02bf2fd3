package rcon

// CompleteBlock reports whether text forms exactly one complete
// top-level JSON object, judged purely by brace balance.
//
// The wire format carries no length prefix or terminator, so the read
// loop calls this after every chunk to decide when to stop reading.
// It is deliberately not a JSON parser: strings, arrays, and numbers
// are never validated here, only the brace nesting that marks the end
// of the root object.
//
// Rules:
//   - a brace directly preceded by a backslash is literal content,
//     not structure
//   - a structural brace after the root object has closed marks the
//     stream malformed, not merely incomplete
//   - a close brace that would take the depth negative marks the
//     stream malformed
func CompleteBlock(text string) bool {
	depth := 0
	opened := false
	closed := false

	for i := 0; i < len(text); i++ {
		c := text[i]
		if c != '{' && c != '}' {
			continue
		}
		if i > 0 && text[i-1] == '\\' {
			continue
		}
		if closed {
			return false
		}
		if c == '{' {
			depth++
			opened = true
			continue
		}
		depth--
		if depth < 0 {
			return false
		}
		if depth == 0 {
			closed = true
		}
	}

	return opened && depth == 0
}
