package ai

// Model output often wraps JSON in prose or markdown fences. These helpers
// pull out the first balanced object or array span so the caller can attempt
// a strict parse on just that slice.

// ExtractObject returns the first balanced {...} span in s.
func ExtractObject(s string) (string, bool) {
	return extractSpan(s, '{', '}')
}

// ExtractArray returns the first balanced [...] span in s.
func ExtractArray(s string) (string, bool) {
	return extractSpan(s, '[', ']')
}

func extractSpan(s string, open, close byte) (string, bool) {
	start := -1
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			if depth > 0 {
				inString = true
			}
		case open:
			if depth == 0 {
				start = i
			}
			depth++
		case close:
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
