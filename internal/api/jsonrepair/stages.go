package jsonrepair

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	fenceOpenRe       = regexp.MustCompile("(?i)```(?:json)?")
	unquotedKeyRe     = regexp.MustCompile(`([{,]\s*)([A-Za-z_][A-Za-z0-9_\-]*)(\s*):`)
	singleQuotedRe    = regexp.MustCompile(`(^|[{\[,:\s])'([^']*)'(\s*[:,}\]]|$)`)
	trailingCommaRe   = regexp.MustCompile(`,\s*([}\]])`)
	duplicateCommaRe  = regexp.MustCompile(`,(\s*,)+`)
	numericRangeRe    = regexp.MustCompile(`"(\d+(?:\.\d+)?)\s*[-\x{2013}]\s*(\d+(?:\.\d+)?)"`)
	smartQuoteReplace = strings.NewReplacer(
		"“", `"`,
		"”", `"`,
		"„", `"`,
		"‘", "'",
		"’", "'",
	)
)

// stripCodeFences removes markdown code fences around (or inside) the
// payload, with or without a language tag.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.Contains(s, "```") {
		return s
	}
	s = fenceOpenRe.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// sliceJSONBounds cuts the text down to its outermost JSON value: from
// the first { or [ (whichever comes first) to its matching close. When
// the close is missing the tail is kept so the truncation repair can
// finish the job.
func sliceJSONBounds(s string) string {
	objStart := strings.IndexByte(s, '{')
	arrStart := strings.IndexByte(s, '[')

	start := objStart
	open, close := byte('{'), byte('}')
	if start < 0 || (arrStart >= 0 && arrStart < start) {
		start = arrStart
		open, close = '[', ']'
	}
	if start < 0 {
		return strings.TrimSpace(s)
	}

	if end := matchingClose(s, start, open, close); end >= 0 {
		return s[start : end+1]
	}
	return s[start:]
}

// matchingClose finds the index of the close bracket matching the opener
// at start, skipping brackets inside string literals. Returns -1 when the
// payload ends before the container is closed.
func matchingClose(s string, start int, open, close byte) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == open:
			depth++
		case c == close:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// normalize applies the standard repair transforms in a fixed order.
// Every transform is idempotent and harmless on already-valid JSON.
func normalize(s string) string {
	s = normalizeSmartQuotes(s)
	s = quoteUnquotedKeys(s)
	s = singleQuotedToDouble(s)
	s = stripTrailingCommas(s)
	s = collapseDuplicateCommas(s)
	s = collapseNumericRanges(s)
	s = removeControlChars(s)
	return s
}

// aggressiveRepair is the last-resort transform: drop everything outside
// printable ASCII and re-run the structural fixes on what remains.
func aggressiveRepair(s string) string {
	s = stripNonPrintable(s)
	s = quoteUnquotedKeys(s)
	s = stripTrailingCommas(s)
	s = collapseDuplicateCommas(s)
	return s
}

// normalizeSmartQuotes converts typographic quotes to their ASCII
// equivalents so the quote-aware passes can see them.
func normalizeSmartQuotes(s string) string {
	return smartQuoteReplace.Replace(s)
}

// quoteUnquotedKeys wraps bare object keys in double quotes:
// {name: 1} becomes {"name": 1}.
func quoteUnquotedKeys(s string) string {
	return unquotedKeyRe.ReplaceAllString(s, `$1"$2"$3:`)
}

// singleQuotedToDouble converts single-quoted strings in key or value
// position to double-quoted ones. Apostrophes inside double-quoted text
// are left alone because the pattern anchors on structural neighbours.
func singleQuotedToDouble(s string) string {
	return singleQuotedRe.ReplaceAllString(s, `$1"$2"$3`)
}

// stripTrailingCommas removes commas that sit directly before a closing
// brace or bracket.
func stripTrailingCommas(s string) string {
	return trailingCommaRe.ReplaceAllString(s, "$1")
}

// collapseDuplicateCommas folds runs of consecutive commas into one.
func collapseDuplicateCommas(s string) string {
	return duplicateCommaRe.ReplaceAllString(s, ",")
}

// collapseNumericRanges replaces a quoted numeric range such as "35-40"
// with the unquoted midpoint 37.5. Models emit ranges where a schema
// asks for a single number; the midpoint keeps the value usable.
func collapseNumericRanges(s string) string {
	return numericRangeRe.ReplaceAllStringFunc(s, func(m string) string {
		parts := numericRangeRe.FindStringSubmatch(m)
		lo, err1 := strconv.ParseFloat(parts[1], 64)
		hi, err2 := strconv.ParseFloat(parts[2], 64)
		if err1 != nil || err2 != nil {
			return m
		}
		return strconv.FormatFloat((lo+hi)/2, 'f', -1, 64)
	})
}

// removeControlChars drops raw control characters from structural
// positions and escapes the common ones (newline, tab, carriage return)
// when they appear unescaped inside string literals.
func removeControlChars(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	inString := false
	escaped := false
	for _, r := range s {
		if escaped {
			b.WriteRune(r)
			escaped = false
			continue
		}
		switch {
		case r == '\\' && inString:
			b.WriteRune(r)
			escaped = true
		case r == '"':
			inString = !inString
			b.WriteRune(r)
		case r == '\n' || r == '\t' || r == '\r':
			if inString {
				switch r {
				case '\n':
					b.WriteString(`\n`)
				case '\t':
					b.WriteString(`\t`)
				case '\r':
					b.WriteString(`\r`)
				}
			} else {
				b.WriteRune(r)
			}
		case r < 0x20:
			// other control characters are dropped everywhere
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// stripNonPrintable keeps printable ASCII plus newline and tab, dropping
// every other rune. This destroys non-English text on purpose: at this
// point in the chain a parseable skeleton beats fidelity.
func stripNonPrintable(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 0x20 && r <= 0x7e) || r == '\n' || r == '\t' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
