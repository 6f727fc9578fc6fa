package httpd

import (
	"sort"
	"strings"
	"sync"
)

// router keeps a server's routes ordered by descending specificity:
// longer literal prefixes sort first, so exact and narrow routes always
// win over catch-alls no matter when they were registered. The mutex
// lets routes be added while connections are already being matched.
type router struct {
	mu     sync.RWMutex
	routes []route
}

// add inserts a route at its sorted position.
func (rt *router) add(methodPattern, uriPattern string, h Handler) {
	r := route{
		methodPattern: methodPattern,
		uriPattern:    uriPattern,
		prefixLen:     literalPrefixLen(uriPattern),
		handler:       h,
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()

	i := sort.Search(len(rt.routes), func(i int) bool {
		return lessSpecific(&rt.routes[i], &r)
	})
	rt.routes = append(rt.routes, route{})
	copy(rt.routes[i+1:], rt.routes[i:])
	rt.routes[i] = r
}

// lessSpecific orders by (literal URI prefix, method pattern), greater
// strings first. A longer prefix extending a shorter shared one compares
// greater, which is exactly what gives it priority.
func lessSpecific(a, b *route) bool {
	if pa, pb := a.literalPrefix(), b.literalPrefix(); pa != pb {
		return pa < pb
	}
	return a.methodPattern < b.methodPattern
}

// match returns the first route in specificity order accepting the
// method and URI, along with the URI tail past the route's literal
// prefix. Requests no route claims fall back to NotFoundResponder.
func (rt *router) match(method, uri string) (Handler, string) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()

	method = strings.ToUpper(method)
	for i := range rt.routes {
		r := &rt.routes[i]
		if !globMatch(strings.ToUpper(r.methodPattern), method) {
			continue
		}
		if !globMatch(r.uriPattern, uri) {
			continue
		}

		tail := ""
		if r.prefixLen < len(uri) {
			tail = uri[r.prefixLen:]
		}
		return r.handler, tail
	}
	return NotFoundResponder, ""
}

// Glob reports whether s matches pattern under the engine's route
// pattern rules. Exposed for plugins that scope themselves to a URI
// pattern.
func Glob(pattern, s string) bool {
	return globMatch(pattern, s)
}

// globMatch reports whether s matches pattern, where '*' matches any
// run of bytes (slashes included), '?' matches one byte and '\\'
// escapes the next pattern byte.
func globMatch(pattern, s string) bool {
	var pi, si int
	starP, starS := -1, 0

	for si < len(s) {
		if pi < len(pattern) {
			switch c := pattern[pi]; {
			case c == '*':
				starP, starS = pi, si
				pi++
				continue
			case c == '?':
				pi++
				si++
				continue
			case c == '\\' && pi+1 < len(pattern):
				if pattern[pi+1] == s[si] {
					pi += 2
					si++
					continue
				}
			case c == s[si]:
				pi++
				si++
				continue
			}
		}
		if starP < 0 {
			return false
		}
		// Backtrack: let the last '*' swallow one more byte.
		starS++
		pi, si = starP+1, starS
	}

	for pi < len(pattern) && pattern[pi] == '*' {
		pi++
	}
	return pi == len(pattern)
}
