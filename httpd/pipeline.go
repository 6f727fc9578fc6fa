package httpd

import (
	"bytes"
	"fmt"

	"github.com/klauspost/compress/gzip"
)

// respond runs the full assembly pipeline for one request: handler
// invocation, field merge, file delivery, the plugin chain, and
// finalization. It always returns a response fit for serialization;
// failures along the way land in the error channel, never escape.
func (s *Server) respond(req *Request, h Handler) *Response {
	res := newResponse()

	fields, err := invokeHandler(h, req)
	res.merge(fields)
	if err != nil {
		s.logf(LogLifecycle, "info", "handler failed on %s %s: %v", req.Method, req.URI, err)
		res.ErrorStatus = "500 Internal Server Error"
	}

	if res.File != "" && res.ErrorStatus == "" {
		s.deliverFile(req, res)
	}

	s.runPlugins(sharedPluginChain(), req, res)
	s.runPlugins(s.pluginChain(), req, res)

	s.finalize(req, res)
	return res
}

// invokeHandler is the engine's single recovery boundary: a panicking
// handler is reported as an ordinary error and becomes a 500.
func invokeHandler(h Handler, req *Request) (fields Fields, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h(req)
}

func (s *Server) runPlugins(plugins []Plugin, req *Request, res *Response) {
	for _, p := range plugins {
		if err := invokePlugin(p, req, res); err != nil {
			s.logf(LogLifecycle, "info", "plugin failed on %s %s: %v", req.Method, req.URI, err)
			// A broken plugin overrides any earlier state, error or not.
			res.fail("500 Internal Server Error", "")
		}
	}
}

func invokePlugin(p Plugin, req *Request, res *Response) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("plugin panic: %v", r)
		}
	}()
	return p(req, res)
}

// deliverFile loads res.File into the body. The Content-Type comes from
// the file's extension unless a handler already chose one. When the
// client accepts gzip and a pre-compressed .gz sibling exists, the
// sibling is served instead and the compression step is suppressed.
func (s *Server) deliverFile(req *Request, res *Response) {
	if res.ContentType == "" {
		res.ContentType = MimeTypeByPath(res.File)
	}

	if req.AcceptsGzip() {
		if exists, _ := s.fs.FileExists(res.File + ".gz"); exists {
			if data, err := s.fs.ReadFile(res.File + ".gz"); err == nil {
				res.Body = data
				res.Header["Content-Encoding"] = "gzip"
				res.gzipped = true
				return
			}
		}
	}

	data, err := s.fs.ReadFile(res.File)
	if err != nil {
		res.fail("Not Found", fmt.Sprintf("file %q could not be read", res.File))
		return
	}
	res.Body = data
}

// finalize collapses the error channel, resolves directives and the
// canonical status, and settles content negotiation.
func (s *Server) finalize(req *Request, res *Response) {
	if res.ErrorStatus != "" {
		res.Status = res.ErrorStatus
		res.Body = []byte(res.ErrorBody)
	} else {
		if res.ContentType != "" {
			if _, found := res.Header["Content-Type"]; !found {
				res.Header["Content-Type"] = res.ContentType
			}
		}
		if res.NoCache {
			res.Header["Cache-Control"] = "no-cache, no-store"
		}
	}

	res.Status = ResolveStatus(res.Status)
	if statusCode(res.Status) != 200 && len(res.Body) == 0 {
		// Minimal default error page: the status itself.
		res.Body = []byte(res.Status)
	}

	if req.AcceptsGzip() && !res.gzipped && len(res.Body) > GzipThreshold {
		if compressed, err := gzipBytes(res.Body); err == nil {
			res.Body = compressed
			res.Header["Content-Encoding"] = "gzip"
			res.gzipped = true
		}
	}

	if _, found := res.Header["Content-Type"]; !found && s.defaultContentType != "" {
		res.Header["Content-Type"] = s.defaultContentType
	}
}

func gzipBytes(data []byte) ([]byte, error) {
	var b bytes.Buffer
	zw := gzip.NewWriter(&b)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}
