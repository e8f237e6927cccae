package http

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

// maxClientIDLength matches the client_id columns.
const maxClientIDLength = 64

// clientIPHeaders are consulted in order. Headers holding a list contribute their
// first entry.
var clientIPHeaders = []struct {
	name string
	list bool
}{
	{"CF-Connecting-IP", false},
	{"X-Forwarded-For", true},
	{"X-Real-IP", false},
	{"X-Original-Forwarded-For", true},
}

// ClientIP identifies the visitor for rate limiting and geo lookup. Header values
// that are not IP addresses are skipped. It falls back to the peer address with
// the port stripped. The result is canonical and never longer than maxClientIDLength.
func ClientIP(r *http.Request) string {
	for _, h := range clientIPHeaders {
		v := r.Header.Get(h.name)
		if h.list {
			v, _, _ = strings.Cut(v, ",")
		}
		if ip, ok := parseIP(v); ok {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}

	if ip, ok := parseIP(host); ok {
		return ip
	}
	if len(host) > maxClientIDLength {
		host = host[:maxClientIDLength]
	}

	return host
}

func parseIP(v string) (string, bool) {
	v = strings.TrimSpace(v)
	if v == "" || len(v) > maxClientIDLength {
		return "", false
	}

	addr, err := netip.ParseAddr(v)
	if err != nil {
		return "", false
	}

	return addr.Unmap().WithZone("").String(), true
}
