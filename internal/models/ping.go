package models

import "sort"

// DefaultProviders are the latency providers reported by the backend
var DefaultProviders = []string{"cloudflare", "google", "facebook", "x"}

// PingSample represents one ping round across all providers
type PingSample struct {
	Timestamp int64              `json:"untimesec"`
	Latencies map[string]float64 `json:"latencies"`
	Synthetic bool               `json:"synthetic,omitempty"`
}

// Latency returns the provider latency in milliseconds and whether the ping succeeded
func (s PingSample) Latency(provider string) (float64, bool) {
	v, ok := s.Latencies[provider]
	if !ok || v <= 0 {
		return 0, false
	}
	return v, true
}

// Failed reports whether every provider in the sample failed
func (s PingSample) Failed() bool {
	for _, v := range s.Latencies {
		if v > 0 {
			return false
		}
	}
	return true
}

// Providers returns the sorted union of provider ids present in samples
func Providers(samples []PingSample) []string {
	seen := make(map[string]struct{})
	for _, s := range samples {
		for p := range s.Latencies {
			seen[p] = struct{}{}
		}
	}
	providers := make([]string, 0, len(seen))
	for p := range seen {
		providers = append(providers, p)
	}
	sort.Strings(providers)
	return providers
}
