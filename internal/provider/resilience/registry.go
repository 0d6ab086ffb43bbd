package resilience

import (
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

// SourceHealth represents the health status of an external data source.
type SourceHealth struct {
	// Name is the source identifier.
	Name string

	// CircuitState is the current circuit breaker state.
	CircuitState gobreaker.State

	// Counts contains circuit breaker statistics.
	Counts gobreaker.Counts

	// LastSuccessAt is the timestamp of the last successful request.
	LastSuccessAt *time.Time

	// LastFailureAt is the timestamp of the last failed request.
	LastFailureAt *time.Time

	// LastError is the most recent error message, if any.
	LastError string
}

// IsHealthy returns true if the source is considered healthy.
func (h *SourceHealth) IsHealthy() bool {
	return h.CircuitState == gobreaker.StateClosed
}

// IsDegraded returns true if the source is in a degraded state (half-open).
func (h *SourceHealth) IsDegraded() bool {
	return h.CircuitState == gobreaker.StateHalfOpen
}

// IsUnhealthy returns true if the source is unhealthy (circuit open).
func (h *SourceHealth) IsUnhealthy() bool {
	return h.CircuitState == gobreaker.StateOpen
}

// Registry tracks registered data-source clients and their health
// status. Constructed by the composition root and handed to the clients
// and the ops handlers; there is no ambient global instance.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]*registeredSource
}

type registeredSource struct {
	client        *Client
	lastSuccessAt *time.Time
	lastFailureAt *time.Time
	lastError     string
}

// NewRegistry creates a new source registry.
func NewRegistry() *Registry {
	return &Registry{
		sources: make(map[string]*registeredSource),
	}
}

// Register adds a source client to the registry.
func (r *Registry) Register(name string, client *Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[name] = &registeredSource{
		client: client,
	}
}

// Unregister removes a source from the registry.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sources, name)
}

// RecordSuccess records a successful request for a source.
func (r *Registry) RecordSuccess(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sources[name]; ok {
		now := time.Now()
		s.lastSuccessAt = &now
	}
}

// RecordFailure records a failed request for a source.
func (r *Registry) RecordFailure(name string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sources[name]; ok {
		now := time.Now()
		s.lastFailureAt = &now
		if err != nil {
			s.lastError = err.Error()
		}
	}
}

// GetHealth returns the health status of a specific source.
func (r *Registry) GetHealth(name string) *SourceHealth {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sources[name]
	if !ok {
		return nil
	}

	return &SourceHealth{
		Name:          name,
		CircuitState:  s.client.CircuitBreakerState(),
		Counts:        s.client.CircuitBreakerCounts(),
		LastSuccessAt: s.lastSuccessAt,
		LastFailureAt: s.lastFailureAt,
		LastError:     s.lastError,
	}
}

// GetAllHealth returns the health status of all registered sources.
func (r *Registry) GetAllHealth() []*SourceHealth {
	r.mu.RLock()
	defer r.mu.RUnlock()

	health := make([]*SourceHealth, 0, len(r.sources))
	for name, s := range r.sources {
		health = append(health, &SourceHealth{
			Name:          name,
			CircuitState:  s.client.CircuitBreakerState(),
			Counts:        s.client.CircuitBreakerCounts(),
			LastSuccessAt: s.lastSuccessAt,
			LastFailureAt: s.lastFailureAt,
			LastError:     s.lastError,
		})
	}

	return health
}

// GetSourceNames returns the names of all registered sources.
func (r *Registry) GetSourceNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	return names
}

// SourceCount returns the number of registered sources.
func (r *Registry) SourceCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sources)
}
