package ping

import (
	"log"
	"sort"
	"sync"
	"time"

	"linkmon/internal/models"
)

// DefaultHosts maps latency providers to the hosts pinged locally for them
var DefaultHosts = map[string]string{
	"cloudflare": "1.1.1.1",
	"google":     "8.8.8.8",
	"facebook":   "facebook.com",
	"x":          "x.com",
}

// Placeholder produces synthetic samples by pinging provider hosts from this machine
type Placeholder struct {
	pinger  models.Pinger
	hosts   map[string]string
	timeout time.Duration
}

// NewPlaceholder creates a placeholder source; nil hosts uses DefaultHosts
func NewPlaceholder(pinger models.Pinger, hosts map[string]string, timeout time.Duration) *Placeholder {
	if len(hosts) == 0 {
		hosts = DefaultHosts
	}
	return &Placeholder{pinger: pinger, hosts: hosts, timeout: timeout}
}

// Sample pings every provider concurrently and returns one synthetic sample stamped at ts.
// Failed pings are recorded as failed provider entries.
func (p *Placeholder) Sample(ts int64) models.PingSample {
	providers := make([]string, 0, len(p.hosts))
	for provider := range p.hosts {
		providers = append(providers, provider)
	}
	sort.Strings(providers)

	results := make([]float64, len(providers))
	var wg sync.WaitGroup
	for i, provider := range providers {
		wg.Add(1)
		go func(i int, host string) {
			defer wg.Done()
			rtt, err := p.pinger.Ping(host, p.timeout)
			if err != nil {
				log.Printf("[placeholder] Failed to ping %s: %v", host, err)
				return
			}
			results[i] = rtt
		}(i, p.hosts[provider])
	}
	wg.Wait()

	sample := models.PingSample{
		Timestamp: ts,
		Latencies: make(map[string]float64, len(providers)),
		Synthetic: true,
	}
	for i, provider := range providers {
		sample.Latencies[provider] = results[i]
	}
	return sample
}
