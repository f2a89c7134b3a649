package netcheck

import (
	"net"
	"net/url"
	"sync"
	"time"
)

// DialProbe checks reachability by opening a TCP connection to the API
// host. Results are cached briefly so a burst of requests does not dial
// once per call.
type DialProbe struct {
	addr    string
	timeout time.Duration

	mu      sync.Mutex
	last    Status
	checked time.Time
	ttl     time.Duration
}

// NewDialProbe builds a probe for the host of the given base URL. An
// unparseable URL yields a probe that always reports unknown.
func NewDialProbe(baseURL string) *DialProbe {
	p := &DialProbe{timeout: 3 * time.Second, ttl: 10 * time.Second}
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return p
	}
	host := u.Host
	if u.Port() == "" {
		switch u.Scheme {
		case "https":
			host = net.JoinHostPort(u.Hostname(), "443")
		default:
			host = net.JoinHostPort(u.Hostname(), "80")
		}
	}
	p.addr = host
	return p
}

// Status dials the API host, reusing a recent result when available.
func (p *DialProbe) Status() Status {
	if p.addr == "" {
		return StatusUnknown
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if time.Since(p.checked) < p.ttl && p.last != StatusUnknown {
		return p.last
	}

	conn, err := net.DialTimeout("tcp", p.addr, p.timeout)
	p.checked = time.Now()
	if err != nil {
		p.last = StatusOffline
		return p.last
	}
	conn.Close()
	p.last = StatusOnline
	return p.last
}
