package fetcher

import "sync/atomic"

// userAgents is the built-in rotation pool. All entries mimic common
// desktop browsers rather than identifying the crawler, since some sites
// serve degraded content to unknown agents.
var userAgents = []string{
	"Mozilla/5.0 (X11; Linux x86_64; rv:109.0) Gecko/20100101 Firefox/115.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:125.0) Gecko/20100101 Firefox/125.0",
}

// agentPool hands out User-Agent strings round-robin. When pinned, every
// request gets the same value.
type agentPool struct {
	pinned string
	next   atomic.Uint64
}

// newAgentPool returns a pool that rotates the built-in agents, or always
// returns pinned when it is non-empty.
func newAgentPool(pinned string) *agentPool {
	return &agentPool{pinned: pinned}
}

// Next returns the User-Agent to use for the next request.
func (p *agentPool) Next() string {
	if p.pinned != "" {
		return p.pinned
	}
	n := p.next.Add(1) - 1
	return userAgents[n%uint64(len(userAgents))]
}
