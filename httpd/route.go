package httpd

// route is one entry in a server's table. prefixLen is the length of
// uriPattern up to its first unescaped wildcard, computed once at
// registration; the matched request's URITail starts at that offset.
type route struct {
	methodPattern string
	uriPattern    string
	prefixLen     int
	handler       Handler
}

// literalPrefix is the part of the URI pattern compared for specificity.
func (r *route) literalPrefix() string {
	return r.uriPattern[:r.prefixLen]
}

// literalPrefixLen returns the index of the first unescaped '*' or '?'
// in pattern, or len(pattern) when the pattern is a pure literal.
func literalPrefixLen(pattern string) int {
	escaped := false
	for i := 0; i < len(pattern); i++ {
		switch {
		case escaped:
			escaped = false
		case pattern[i] == '\\':
			escaped = true
		case pattern[i] == '*' || pattern[i] == '?':
			return i
		}
	}
	return len(pattern)
}
