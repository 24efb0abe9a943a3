package db

import "strings"

// MatchGlob reports whether key matches a Redis-style glob: '*' matches any run of bytes
// (including '/'), '?' matches one byte, '\' escapes the next byte.
// Character classes are not supported.
func MatchGlob(pattern, key string) bool {
	p, k := 0, 0
	starP, starK := -1, 0

	for k < len(key) {
		switch {
		case p < len(pattern) && pattern[p] == '*':
			starP, starK = p, k
			p++
		case p < len(pattern) && pattern[p] == '\\' && p+1 < len(pattern) && pattern[p+1] == key[k]:
			p += 2
			k++
		case p < len(pattern) && (pattern[p] == '?' || (pattern[p] != '\\' && pattern[p] == key[k])):
			p++
			k++
		case starP >= 0:
			starK++
			p, k = starP+1, starK
		default:
			return false
		}
	}

	for p < len(pattern) && pattern[p] == '*' {
		p++
	}
	return p == len(pattern)
}

// EscapeGlob quotes every glob metacharacter in s so it matches only itself,
// both in MatchGlob and in Redis SCAN MATCH.
func EscapeGlob(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
