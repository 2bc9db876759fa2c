package leads

import (
	"net"
	"net/http"
	"net/netip"
	"strings"
)

const ipv4MappedPrefix = "::ffff:"

// ClientIP extracts the best-effort client address from r.
func ClientIP(r *http.Request) string {
	if r == nil {
		return ""
	}
	return ClientIPFrom(r.Header.Get("X-Forwarded-For"), r.RemoteAddr)
}

// ClientIPFrom picks the first X-Forwarded-For entry, falling back to the
// connection address, and strips an IPv4-mapped IPv6 prefix.
func ClientIPFrom(forwardedFor, remoteAddr string) string {
	ip := ""
	if forwardedFor != "" {
		first, _, _ := strings.Cut(forwardedFor, ",")
		ip = strings.TrimSpace(first)
	}
	if ip == "" {
		ip = strings.TrimSpace(remoteAddr)
		if host, _, err := net.SplitHostPort(ip); err == nil {
			ip = host
		}
	}
	ip = strings.Trim(ip, "[]")
	if len(ip) > len(ipv4MappedPrefix) && strings.EqualFold(ip[:len(ipv4MappedPrefix)], ipv4MappedPrefix) {
		ip = ip[len(ipv4MappedPrefix):]
	}
	return ip
}

// IsPrivateIP reports whether ip is loopback, RFC1918/ULA private, link-local
// or unparseable. Geolocation is skipped for all of these.
func IsPrivateIP(ip string) bool {
	addr, err := netip.ParseAddr(strings.TrimSpace(ip))
	if err != nil {
		return true
	}
	addr = addr.Unmap()
	return addr.IsLoopback() ||
		addr.IsPrivate() ||
		addr.IsLinkLocalUnicast() ||
		addr.IsUnspecified()
}
