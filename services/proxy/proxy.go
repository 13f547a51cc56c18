package proxy

import (
	"fmt"
	"net"
	"net/url"
	"sort"
	"sync"
	"time"

	"nattapol/villaharvester/logger"
)

const (
	dialTimeout      = 5 * time.Second
	handshakeTimeout = 3 * time.Second
	retestInterval   = 30 * time.Minute

	// Latency assigned to entries that fail the test, so sorting
	// pushes them behind every working proxy.
	brokenLatency = time.Hour
)

// Info describes one upstream proxy and its last test result.
type Info struct {
	URL      string
	Latency  time.Duration
	LastTest time.Time
	Working  bool
}

// Manager keeps a configured pool of upstream proxies, verifies each
// entry with a TCP dial (plus a SOCKS5 handshake for socks5 URLs) and
// hands out the fastest working one. Test results are cached and the
// pool is re-tested once they go stale.
type Manager struct {
	mu       sync.RWMutex
	proxies  []Info
	lastTest time.Time
	log      *logger.Logger
}

// NewManager builds a manager over the given proxy URLs
// (e.g. "socks5://10.0.0.1:1080"). Entries are not tested until the
// first Fastest or Refresh call.
func NewManager(urls []string) *Manager {
	m := &Manager{log: logger.ForProxy()}
	for _, raw := range urls {
		if raw == "" {
			continue
		}
		m.proxies = append(m.proxies, Info{URL: raw, Latency: brokenLatency})
	}
	return m
}

// Refresh tests every configured proxy concurrently and re-sorts the
// pool by latency.
func (m *Manager) Refresh() {
	m.mu.Lock()
	defer m.mu.Unlock()

	var wg sync.WaitGroup
	for i := range m.proxies {
		wg.Add(1)
		go func(p *Info) {
			defer wg.Done()
			m.test(p)
		}(&m.proxies[i])
	}
	wg.Wait()

	sort.Slice(m.proxies, func(i, j int) bool {
		return m.proxies[i].Latency < m.proxies[j].Latency
	})
	m.lastTest = time.Now()

	m.log.Debug().
		Int("total", len(m.proxies)).
		Int("working", m.workingLocked()).
		Msg("Proxy pool tested")
}

// Fastest returns the URL of the lowest-latency working proxy,
// re-testing the pool first if the cached results are stale.
func (m *Manager) Fastest() (string, error) {
	m.mu.RLock()
	stale := time.Since(m.lastTest) > retestInterval
	m.mu.RUnlock()
	if stale {
		m.Refresh()
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, p := range m.proxies {
		if p.Working {
			return p.URL, nil
		}
	}
	return "", fmt.Errorf("no working proxies among %d configured", len(m.proxies))
}

// Stats reports the current state of the pool.
func (m *Manager) Stats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := map[string]interface{}{
		"total_proxies":   len(m.proxies),
		"working_proxies": m.workingLocked(),
		"last_test":       m.lastTest,
	}
	for _, p := range m.proxies {
		if p.Working {
			stats["fastest_proxy"] = p.URL
			stats["fastest_latency"] = p.Latency
			break
		}
	}
	return stats
}

func (m *Manager) workingLocked() int {
	n := 0
	for _, p := range m.proxies {
		if p.Working {
			n++
		}
	}
	return n
}

// test dials the proxy and, for socks5 entries, verifies the server
// actually speaks SOCKS5 before trusting it.
func (m *Manager) test(p *Info) {
	u, err := url.Parse(p.URL)
	if err != nil || u.Host == "" {
		m.log.Debug().Str("proxy", p.URL).Msg("Unparseable proxy URL")
		p.Working = false
		p.Latency = brokenLatency
		return
	}

	start := time.Now()
	conn, err := net.DialTimeout("tcp", u.Host, dialTimeout)
	if err != nil {
		m.log.Debug().Str("proxy", p.URL).Err(err).Msg("TCP connection failed")
		p.Working = false
		p.Latency = brokenLatency
		return
	}
	defer conn.Close()

	if u.Scheme == "socks5" && !socks5Handshake(conn) {
		m.log.Debug().Str("proxy", p.URL).Msg("SOCKS5 handshake failed")
		p.Working = false
		p.Latency = brokenLatency
		return
	}

	p.Working = true
	p.Latency = time.Since(start)
	p.LastTest = time.Now()

	m.log.Debug().
		Str("proxy", p.URL).
		Dur("latency", p.Latency).
		Msg("Proxy working")
}

// socks5Handshake performs the method-negotiation exchange: the client
// offers no-auth and the server must accept SOCKS5 with method 0.
func socks5Handshake(conn net.Conn) bool {
	conn.SetDeadline(time.Now().Add(handshakeTimeout))
	defer conn.SetDeadline(time.Time{})

	if _, err := conn.Write([]byte{0x05, 0x01, 0x00}); err != nil {
		return false
	}

	resp := make([]byte, 2)
	if _, err := conn.Read(resp); err != nil {
		return false
	}
	return resp[0] == 0x05 && resp[1] == 0x00
}
