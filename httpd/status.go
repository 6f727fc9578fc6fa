package httpd

import (
	"strconv"
	"strings"
	"sync"
)

// statusTable maps numeric codes and reason phrases to the canonical
// "<code> <message>" form the wire serializer emits. Seeded with the
// registered HTTP codes; DefineStatusCode extends it at setup time.
type statusTable struct {
	mu        sync.RWMutex
	byCode    map[int]string
	byMessage map[string]int
}

var statuses = newStatusTable()

func newStatusTable() *statusTable {
	t := &statusTable{
		byCode:    make(map[int]string, len(seedStatuses)),
		byMessage: make(map[string]int, len(seedStatuses)),
	}
	for code, message := range seedStatuses {
		t.byCode[code] = message
		t.byMessage[message] = code
	}
	return t
}

// DefineStatusCode registers or overrides a status code and its message.
func DefineStatusCode(code int, message string) {
	statuses.mu.Lock()
	defer statuses.mu.Unlock()
	statuses.byCode[code] = message
	statuses.byMessage[message] = code
}

// ResolveStatus canonicalizes a status given as a bare code ("404"), a
// bare message ("Not Found") or an already canonical string. Unknown
// codes keep their number; unknown strings pass through untouched.
func ResolveStatus(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "200 OK"
	}

	statuses.mu.RLock()
	defer statuses.mu.RUnlock()

	if code, err := strconv.Atoi(s); err == nil {
		if message, found := statuses.byCode[code]; found {
			return s + " " + message
		}
		return s + " Unknown Status Code"
	}
	if code, found := statuses.byMessage[s]; found {
		return strconv.Itoa(code) + " " + s
	}
	return s
}

// statusCode extracts the numeric code from a canonical status string.
func statusCode(status string) int {
	if i := strings.IndexByte(status, ' '); i > 0 {
		status = status[:i]
	}
	code, _ := strconv.Atoi(status)
	return code
}

var seedStatuses = map[int]string{
	100: "Continue",
	101: "Switching Protocols",
	102: "Processing",
	103: "Early Hints",

	200: "OK",
	201: "Created",
	202: "Accepted",
	203: "Non-Authoritative Information",
	204: "No Content",
	205: "Reset Content",
	206: "Partial Content",
	207: "Multi-Status",
	208: "Already Reported",
	226: "IM Used",

	300: "Multiple Choices",
	301: "Moved Permanently",
	302: "Found",
	303: "See Other",
	304: "Not Modified",
	305: "Use Proxy",
	307: "Temporary Redirect",
	308: "Permanent Redirect",

	400: "Bad Request",
	401: "Unauthorized",
	402: "Payment Required",
	403: "Forbidden",
	404: "Not Found",
	405: "Method Not Allowed",
	406: "Not Acceptable",
	407: "Proxy Authentication Required",
	408: "Request Timeout",
	409: "Conflict",
	410: "Gone",
	411: "Length Required",
	412: "Precondition Failed",
	413: "Request Entity Too Large",
	414: "Request URI Too Long",
	415: "Unsupported Media Type",
	416: "Requested Range Not Satisfiable",
	417: "Expectation Failed",
	418: "I'm a teapot",
	421: "Misdirected Request",
	422: "Unprocessable Entity",
	423: "Locked",
	424: "Failed Dependency",
	426: "Upgrade Required",
	428: "Precondition Required",
	429: "Too Many Requests",
	431: "Request Header Fields Too Large",
	451: "Unavailable For Legal Reasons",

	500: "Internal Server Error",
	501: "Not Implemented",
	502: "Bad Gateway",
	503: "Service Unavailable",
	504: "Gateway Timeout",
	505: "HTTP Version Not Supported",
	506: "Variant Also Negotiates",
	507: "Insufficient Storage",
	508: "Loop Detected",
	510: "Not Extended",
	511: "Network Authentication Required",
}
