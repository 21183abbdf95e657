package connectivity

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"aulas-booking-client/config"
)

// Monitor exposes "is the network currently reachable" as an
// always-current value with a subscribe/unsubscribe broadcast pair.
// Transitions come from the shell reporting native reachability and
// from an optional interval probe against the remote API.
type Monitor struct {
	cfg    *config.ConnectivityConfig
	client *http.Client

	mu     sync.Mutex
	online bool
	subs   map[int]chan bool
	nextID int
}

// NewMonitor creates a monitor with the given initial reachability.
func NewMonitor(cfg *config.ConnectivityConfig, initial bool) *Monitor {
	return &Monitor{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		online: initial,
		subs:   make(map[int]chan bool),
	}
}

// IsOnline returns the last known reachability value.
func (m *Monitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Set records a reachability transition and broadcasts it to every
// subscriber. Repeated reports of the same value are not re-broadcast.
func (m *Monitor) Set(online bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.online == online {
		return
	}
	m.online = online
	if online {
		log.Println("network status: online")
	} else {
		log.Println("network status: offline")
	}
	for _, ch := range m.subs {
		select {
		case ch <- online:
		default:
			// Slow subscribers miss intermediate transitions; they can
			// always read IsOnline for the current value.
		}
	}
}

// Subscribe registers a new listener for reachability transitions and
// returns its id and receive channel.
func (m *Monitor) Subscribe() (int, <-chan bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	ch := make(chan bool, 4)
	m.subs[id] = ch
	return id, ch
}

// Unsubscribe removes a listener. Must be called when the subscribing
// view closes so no handler acts on a torn-down wizard.
func (m *Monitor) Unsubscribe(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ch, ok := m.subs[id]; ok {
		delete(m.subs, id)
		close(ch)
	}
}

// ProbeOnce checks whether the probe URL is reachable and records the
// result. Any HTTP response counts as reachable; only transport
// failures mean offline.
func (m *Monitor) ProbeOnce(ctx context.Context) bool {
	online := m.probe(ctx)
	m.Set(online)
	return online
}

func (m *Monitor) probe(ctx context.Context) bool {
	if m.cfg == nil || m.cfg.ProbeURL == "" {
		return m.IsOnline()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, m.cfg.ProbeURL, nil)
	if err != nil {
		return false
	}
	resp, err := m.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return true
}

// Run starts the reachability probe loop.
func (m *Monitor) Run(ctx context.Context) {
	if m.cfg == nil || !m.cfg.ProbeEnabled {
		log.Println("Connectivity probe is disabled. Not starting.")
		return
	}
	log.Println("Starting connectivity probe...")

	m.ProbeOnce(ctx)

	timer := time.NewTimer(m.cfg.Interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Connectivity probe shutting down.")
			return
		case <-timer.C:
			m.ProbeOnce(ctx)
			timer.Reset(m.cfg.Interval)
		}
	}
}
