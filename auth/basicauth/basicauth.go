// Package basicauth guards dashboard URIs with HTTP basic
// authentication, expressed as an httpd plugin: it runs after the
// handler and pushes unauthorized requests into the error channel, so
// whatever the handler produced never reaches the client.
package basicauth

import (
	"crypto/subtle"
	"encoding/base64"
	"strings"

	"github.com/hearthlab/hearth/httpd"
)

// Plugin protects URIs matching uriPattern. users maps usernames to
// plaintext passwords (the controller keeps them in its local config;
// nothing here persists credentials).
func Plugin(realm string, users map[string]string, uriPattern string) httpd.Plugin {
	return func(req *httpd.Request, res *httpd.Response) error {
		if !httpd.Glob(uriPattern, req.URI) {
			return nil
		}
		if authorized(req, users) {
			return nil
		}

		res.Header["WWW-Authenticate"] = `Basic realm="` + realm + `"`
		res.ErrorStatus = "401 Unauthorized"
		res.ErrorBody = ""
		return nil
	}
}

func authorized(req *httpd.Request, users map[string]string) bool {
	value, found := req.HeaderValue("authorization")
	if !found {
		return false
	}

	scheme, encoded, found := strings.Cut(value, " ")
	if !found || !strings.EqualFold(scheme, "Basic") {
		return false
	}

	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return false
	}
	user, pass, found := strings.Cut(string(decoded), ":")
	if !found {
		return false
	}

	want, known := users[user]
	if !known {
		// Burn the comparison anyway so unknown users cost the same.
		subtle.ConstantTimeCompare([]byte(pass), []byte(pass))
		return false
	}
	return subtle.ConstantTimeCompare([]byte(pass), []byte(want)) == 1
}
