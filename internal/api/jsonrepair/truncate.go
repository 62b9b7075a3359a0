package jsonrepair

import "strings"

// closeTruncated repairs a payload that was cut off mid-generation,
// usually by a model hitting its token limit. The trailing partial
// element is dropped back to the last complete one and every container
// left open is closed. When the input is already balanced, or nothing
// recoverable remains, the input comes back unchanged and the caller
// falls through to the next stage.
func closeTruncated(s string) string {
	trimmed := strings.TrimRight(s, " \t\n\r")
	if trimmed == "" {
		return s
	}
	sc := scanContainers(trimmed)
	if !sc.inString && len(sc.stack) == 0 {
		return s
	}

	cur := trimmed
	if sc.inString {
		cur = cur[:sc.stringStart]
	}
	for range [16]struct{}{} {
		next := trimPartialTail(cur)
		if next == cur {
			break
		}
		cur = next
	}
	cur = strings.TrimRight(cur, " \t\n\r")
	if cur == "" {
		return s
	}

	sc = scanContainers(cur)
	if sc.inString {
		return s
	}
	var b strings.Builder
	b.WriteString(cur)
	for i := len(sc.stack) - 1; i >= 0; i-- {
		switch sc.stack[i] {
		case '{':
			b.WriteByte('}')
		case '[':
			b.WriteByte(']')
		}
	}
	if out := b.String(); out != s {
		return out
	}
	return s
}

type containerScan struct {
	stack       []byte
	inString    bool
	stringStart int
}

// scanContainers walks the payload tracking open containers and string
// state, skipping brackets inside string literals.
func scanContainers(s string) containerScan {
	res := containerScan{stringStart: -1}
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case c == '\\' && res.inString:
			escaped = true
		case c == '"':
			if res.inString {
				res.inString = false
				res.stringStart = -1
			} else {
				res.inString = true
				res.stringStart = i
			}
		case res.inString:
		case c == '{' || c == '[':
			res.stack = append(res.stack, c)
		case c == '}':
			if n := len(res.stack); n > 0 && res.stack[n-1] == '{' {
				res.stack = res.stack[:n-1]
			}
		case c == ']':
			if n := len(res.stack); n > 0 && res.stack[n-1] == '[' {
				res.stack = res.stack[:n-1]
			}
		}
	}
	return res
}

// trimPartialTail removes one layer of incomplete trailing syntax: a
// dangling comma, a key with no value, an opener with no members, or a
// half-written number or literal. Applied repeatedly it backs the
// payload up to the last position that can legally be closed.
func trimPartialTail(s string) string {
	s = strings.TrimRight(s, " \t\n\r")
	if s == "" {
		return s
	}
	last := s[len(s)-1]
	switch last {
	case ',':
		return s[:len(s)-1]
	case ':':
		return dropKeyBeforeColon(s[:len(s)-1])
	case '{', '[':
		rest := strings.TrimRight(s[:len(s)-1], " \t\n\r")
		if rest != "" && rest[len(rest)-1] == ',' {
			rest = rest[:len(rest)-1]
		}
		return rest
	case '.', '-', '+', 'e', 'E':
		return s[:len(s)-1]
	}
	if isBareChar(last) {
		j := len(s)
		for j > 0 && isBareChar(s[j-1]) {
			j--
		}
		switch s[j:] {
		case "true", "false", "null":
			return s
		}
		if !allDigits(s[j:]) {
			return strings.TrimRight(s[:j], " \t\n\r")
		}
	}
	return s
}

// dropKeyBeforeColon removes the object key (quoted or bare) that
// preceded a dangling colon, along with the comma that introduced it.
func dropKeyBeforeColon(s string) string {
	s = strings.TrimRight(s, " \t\n\r")
	if s == "" {
		return s
	}
	if s[len(s)-1] == '"' {
		i := len(s) - 2
		for i >= 0 {
			if s[i] == '"' && (i == 0 || s[i-1] != '\\') {
				break
			}
			i--
		}
		if i < 0 {
			return s
		}
		s = s[:i]
	} else {
		j := len(s)
		for j > 0 && isBareChar(s[j-1]) {
			j--
		}
		s = s[:j]
	}
	s = strings.TrimRight(s, " \t\n\r")
	if s != "" && s[len(s)-1] == ',' {
		s = s[:len(s)-1]
	}
	return s
}

func isBareChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}
