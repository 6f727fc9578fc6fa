package httpd

import (
	"testing"
)

func TestLiteralPrefixLen(t *testing.T) {
	cases := []struct {
		pattern string
		want    int
	}{
		{"/health", 7},
		{"/echo/*", 6},
		{"/api/?", 5},
		{"*", 0},
		{"*/x", 0},
		{`/a\*b`, 5},
		{`/a\**`, 4},
		{"", 0},
	}

	for _, c := range cases {
		if got := literalPrefixLen(c.pattern); got != c.want {
			t.Errorf("literalPrefixLen(%q) = %d, want %d", c.pattern, got, c.want)
		}
	}
}

func TestGlobMatch(t *testing.T) {
	cases := []struct {
		pattern, s string
		want       bool
	}{
		{"*", "", true},
		{"*", "/anything/at/all", true},
		{"/a/*", "/a/b/c", true},
		{"/a/*", "/a/", true},
		{"/a/*", "/a", false},
		{"/a/?", "/a/b", true},
		{"/a/?", "/a/bc", false},
		{"*z", "abcz", true},
		{"*z", "abc", false},
		{"*.gz", "bundle.tar.gz", true},
		{`\*`, "*", true},
		{`\*`, "x", false},
		{"/health", "/health", true},
		{"/health", "/healthz", false},
		{"GET", "GET", true},
	}

	for _, c := range cases {
		if got := globMatch(c.pattern, c.s); got != c.want {
			t.Errorf("globMatch(%q, %q) = %v, want %v", c.pattern, c.s, got, c.want)
		}
	}
}

// Narrow routes must win over catch-alls no matter the registration
// order.
func TestSpecificityOrderIndependence(t *testing.T) {
	apiHandler := func(req *Request) (Fields, error) { return Fields{Body: []byte("api")}, nil }
	adminHandler := func(req *Request) (Fields, error) { return Fields{Body: []byte("admin")}, nil }

	orders := []func(rt *router){
		func(rt *router) {
			rt.add("GET", "/api/*", apiHandler)
			rt.add("GET", "/api/admin/*", adminHandler)
		},
		func(rt *router) {
			rt.add("GET", "/api/admin/*", adminHandler)
			rt.add("GET", "/api/*", apiHandler)
		},
	}

	for i, register := range orders {
		var rt router
		register(&rt)

		h, tail := rt.match("GET", "/api/admin/x")
		fields, _ := h(&Request{})
		if string(fields.Body) != "admin" {
			t.Errorf("order %d: /api/admin/x resolved to %q handler", i, fields.Body)
		}
		if tail != "x" {
			t.Errorf("order %d: tail = %q, want %q", i, tail, "x")
		}
	}
}

func TestExactLiteralRoute(t *testing.T) {
	var rt router
	rt.add("GET", "/health", func(req *Request) (Fields, error) {
		return Fields{Body: []byte("ok")}, nil
	})

	h, tail := rt.match("GET", "/health")
	fields, _ := h(&Request{})
	if string(fields.Body) != "ok" {
		t.Errorf("exact route did not match its own path")
	}
	if tail != "" {
		t.Errorf("exact route tail = %q, want empty", tail)
	}

	h, _ = rt.match("GET", "/healthz")
	fields, _ = h(&Request{})
	if fields.Status != "404" {
		t.Errorf("/healthz should fall through to the 404 responder, got %+v", fields)
	}
}

func TestMatchMethodCaseInsensitive(t *testing.T) {
	var rt router
	rt.add("get", "/x", func(req *Request) (Fields, error) {
		return Fields{Body: []byte("hit")}, nil
	})

	h, _ := rt.match("GET", "/x")
	fields, _ := h(&Request{})
	if string(fields.Body) != "hit" {
		t.Error("lowercase method pattern should match an uppercase method")
	}
}

func TestMatchDistinguishesMethods(t *testing.T) {
	var rt router
	rt.add("GET", "/x", func(req *Request) (Fields, error) { return Fields{Body: []byte("get")}, nil })
	rt.add("POST", "/x", func(req *Request) (Fields, error) { return Fields{Body: []byte("post")}, nil })

	h, _ := rt.match("POST", "/x")
	fields, _ := h(&Request{})
	if string(fields.Body) != "post" {
		t.Errorf("POST /x resolved to %q handler", fields.Body)
	}
}

func TestMatchURITailClamped(t *testing.T) {
	var rt router
	rt.add("GET", "/echo/*", func(req *Request) (Fields, error) { return Fields{}, nil })

	// The pattern's literal prefix is longer than this URI; '*' still
	// matches the empty run and the tail clamps to empty.
	if _, tail := rt.match("GET", "/echo/"); tail != "" {
		t.Errorf("tail = %q, want empty", tail)
	}
	if _, tail := rt.match("GET", "/echo/hello"); tail != "hello" {
		t.Errorf("tail = %q, want %q", tail, "hello")
	}
}

func TestDefaultNotFound(t *testing.T) {
	var rt router

	h, _ := rt.match("GET", "/unknown")
	fields, err := h(&Request{})
	if err != nil {
		t.Fatalf("default responder errored: %v", err)
	}
	if fields.Status != "404" {
		t.Errorf("default responder status = %q, want 404", fields.Status)
	}
}

func BenchmarkMatch(b *testing.B) {
	var rt router
	rt.add("GET", "/api/*", func(req *Request) (Fields, error) { return Fields{}, nil })
	rt.add("GET", "/api/admin/*", func(req *Request) (Fields, error) { return Fields{}, nil })
	rt.add("GET", "/static/*", func(req *Request) (Fields, error) { return Fields{}, nil })
	rt.add("GET", "/health", func(req *Request) (Fields, error) { return Fields{}, nil })
	rt.add("*", "*", func(req *Request) (Fields, error) { return Fields{}, nil })

	for b.Loop() {
		rt.match("GET", "/api/admin/devices/attic-temp")
	}
}
