package loadbalancer

import (
	"sync"

	"github.com/tair/membership-platform/pkg/logger"
)

// RoundRobin rotates requests across checkout-service replicas
type RoundRobin struct {
	servers []string
	current int
	mu      sync.Mutex
}

// NewRoundRobin creates a round-robin balancer over the given instance URLs
func NewRoundRobin(servers []string) *RoundRobin {
	if len(servers) == 0 {
		servers = []string{"http://localhost:8080"}
	}

	logger.Logger.Info().
		Int("instance_count", len(servers)).
		Strs("instances", servers).
		Msg("Round-robin balancer initialized")

	return &RoundRobin{servers: servers}
}

// Next returns the next instance URL in rotation
func (rr *RoundRobin) Next() string {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	if len(rr.servers) == 0 {
		return ""
	}

	server := rr.servers[rr.current]
	rr.current = (rr.current + 1) % len(rr.servers)
	return server
}

// GetStats returns balancer statistics for the gateway stats endpoint
func (rr *RoundRobin) GetStats() map[string]interface{} {
	rr.mu.Lock()
	defer rr.mu.Unlock()

	return map[string]interface{}{
		"algorithm":      "round-robin",
		"instance_count": len(rr.servers),
		"instances":      rr.servers,
		"current_index":  rr.current,
	}
}
