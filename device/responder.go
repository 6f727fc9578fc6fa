package device

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hearthlab/hearth/httpd"
)

// ListResponder serves the whole registry as JSON. Register it on an
// exact route such as ("GET", "/devices").
func ListResponder(reg *Registry) httpd.Handler {
	return func(req *httpd.Request) (httpd.Fields, error) {
		body, err := json.Marshal(reg.List())
		if err != nil {
			return httpd.Fields{}, err
		}
		return httpd.Fields{
			Body:        body,
			ContentType: "application/json",
			NoCache:     true,
		}, nil
	}
}

// GetResponder serves one device, addressed by the route's URI tail.
// Register it on a wildcard route such as ("GET", "/devices/*").
func GetResponder(reg *Registry) httpd.Handler {
	return func(req *httpd.Request) (httpd.Fields, error) {
		id := strings.Trim(req.URITail, "/")

		d, found := reg.Get(id)
		if !found {
			return httpd.Fields{
				ErrorStatus: "404",
				ErrorBody:   fmt.Sprintf("unknown device %q", id),
			}, nil
		}

		body, err := json.Marshal(d)
		if err != nil {
			return httpd.Fields{}, err
		}
		return httpd.Fields{
			Body:        body,
			ContentType: "application/json",
			NoCache:     true,
		}, nil
	}
}

// SetResponder accepts a JSON reading in the request body and stores it
// for the device named by the URI tail. Meant for a POST wildcard route.
func SetResponder(reg *Registry) httpd.Handler {
	return func(req *httpd.Request) (httpd.Fields, error) {
		id := strings.Trim(req.URITail, "/")

		var r Reading
		if err := json.Unmarshal(req.Body, &r); err != nil {
			return httpd.Fields{
				ErrorStatus: "400",
				ErrorBody:   "reading is not valid JSON",
			}, nil
		}
		if r.Time.IsZero() {
			r.Time = time.Now()
		}

		if !reg.SetReading(id, r) {
			return httpd.Fields{
				ErrorStatus: "404",
				ErrorBody:   fmt.Sprintf("unknown device %q", id),
			}, nil
		}

		d, _ := reg.Get(id)
		body, err := json.Marshal(d)
		if err != nil {
			return httpd.Fields{}, err
		}
		return httpd.Fields{Body: body, ContentType: "application/json"}, nil
	}
}
