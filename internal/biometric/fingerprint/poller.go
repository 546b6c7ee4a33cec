package fingerprint

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

const (
	defaultInterval = 2 * time.Second
	defaultLease    = 30 * time.Second
)

// ErrStopPolling is returned by a ReadingHandler to stop the poller, e.g. when the session has closed.
var ErrStopPolling = errors.New("fingerprint: stop polling")

// ErrLeaseExpired is returned by Run when nobody renewed the lease in time.
var ErrLeaseExpired = errors.New("fingerprint: poller lease expired")

// ReadingHandler receives each positive reading for the session. Errors other than ErrStopPolling are logged
// and polling continues.
type ReadingHandler func(ctx context.Context, sessionID, fingerprintID string) error

// State is the outcome of the most recent poll.
type State string

const (
	StateStarting    State = "starting"
	StateIdle        State = "idle"
	StateUnavailable State = "unavailable"
	StateIdentified  State = "identified"
)

// Status is a snapshot of a poller.
type Status struct {
	State             State
	LastPollAt        time.Time
	LastFingerprintID string
	LastError         string
	Identified        int
}

// Poller polls a Reader for one session on a fixed interval until cancelled or its lease expires.
type Poller struct {
	sessionID string
	reader    Reader
	handler   ReadingHandler
	interval  time.Duration
	lease     time.Duration
	nowF      func() time.Time

	mu        sync.Mutex
	status    Status
	touchedAt time.Time
}

// NewPoller returns a poller for sessionID. Non-positive interval and lease use 2s and 30s.
func NewPoller(sessionID string, reader Reader, handler ReadingHandler, interval, lease time.Duration) *Poller {
	if interval <= 0 {
		interval = defaultInterval
	}
	if lease <= 0 {
		lease = defaultLease
	}
	p := &Poller{
		sessionID: sessionID,
		reader:    reader,
		handler:   handler,
		interval:  interval,
		lease:     lease,
		nowF:      time.Now,
		status:    Status{State: StateStarting},
	}
	p.touchedAt = p.nowF()
	return p
}

// Touch renews the lease.
func (p *Poller) Touch() {
	p.mu.Lock()
	p.touchedAt = p.nowF()
	p.mu.Unlock()
}

// Status returns the current poll status.
func (p *Poller) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Run polls until ctx is done (returns nil), the lease expires (ErrLeaseExpired) or the handler asks to stop.
// Each tick is independent; a failed tick never aborts the loop.
func (p *Poller) Run(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
		if p.leaseExpired() {
			log.Printf("poller: session %s lease expired, stopping", p.sessionID)
			return ErrLeaseExpired
		}
		if err := p.tick(ctx); err != nil {
			return err
		}
	}
}

func (p *Poller) leaseExpired() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.nowF().Sub(p.touchedAt) > p.lease
}

// tick performs one poll. Only ErrStopPolling from the handler is returned.
func (p *Poller) tick(ctx context.Context) error {
	reading, err := p.reader.Identify(ctx)
	now := p.nowF()
	switch {
	case err == nil:
		p.setStatus(func(s *Status) {
			s.State = StateIdentified
			s.LastFingerprintID = reading.FingerprintID
			s.LastError = ""
			s.Identified++
		}, now)
	case errors.Is(err, ErrNoRead):
		p.setStatus(func(s *Status) {
			s.State = StateIdle
			s.LastError = ""
		}, now)
		return nil
	default:
		if ctx.Err() != nil {
			return nil
		}
		log.Printf("poller: session %s device read failed: %v", p.sessionID, err)
		p.setStatus(func(s *Status) {
			s.State = StateUnavailable
			s.LastError = err.Error()
		}, now)
		return nil
	}

	if p.handler == nil {
		return nil
	}
	if err := p.handler(ctx, p.sessionID, reading.FingerprintID); err != nil {
		if errors.Is(err, ErrStopPolling) {
			log.Printf("poller: session %s stopping: %v", p.sessionID, err)
			return err
		}
		log.Printf("poller: session %s fingerprint %s not recorded: %v", p.sessionID, reading.FingerprintID, err)
	}
	return nil
}

func (p *Poller) setStatus(update func(*Status), at time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	update(&p.status)
	p.status.LastPollAt = at
}
