package fingerprint

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

type runningPoller struct {
	poller *Poller
	cancel context.CancelFunc
	done   chan struct{}
}

// Supervisor runs at most one Poller per session. Safe for concurrent use.
type Supervisor struct {
	reader   Reader
	interval time.Duration
	lease    time.Duration

	mu      sync.Mutex
	pollers map[string]*runningPoller
	wg      sync.WaitGroup
}

// NewSupervisor returns a supervisor whose pollers read from reader.
func NewSupervisor(reader Reader, interval, lease time.Duration) *Supervisor {
	return &Supervisor{
		reader:   reader,
		interval: interval,
		lease:    lease,
		pollers:  make(map[string]*runningPoller),
	}
}

// Start launches a poller for sessionID. Returns false if one is already running.
func (s *Supervisor) Start(sessionID string, handler ReadingHandler) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pollers[sessionID]; ok {
		return false
	}
	ctx, cancel := context.WithCancel(context.Background())
	rp := &runningPoller{
		poller: NewPoller(sessionID, s.reader, handler, s.interval, s.lease),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	s.pollers[sessionID] = rp
	s.wg.Add(1)
	go s.run(ctx, sessionID, rp)
	log.Printf("poller: started for session %s", sessionID)
	return true
}

func (s *Supervisor) run(ctx context.Context, sessionID string, rp *runningPoller) {
	defer s.wg.Done()
	defer close(rp.done)
	err := rp.poller.Run(ctx)
	if err != nil && !errors.Is(err, ErrLeaseExpired) && !errors.Is(err, ErrStopPolling) {
		log.Printf("poller: session %s exited: %v", sessionID, err)
	}
	s.mu.Lock()
	if s.pollers[sessionID] == rp {
		delete(s.pollers, sessionID)
	}
	s.mu.Unlock()
	rp.cancel()
}

// Stop cancels the session's poller without waiting for it. Returns false if none was running.
func (s *Supervisor) Stop(sessionID string) bool {
	s.mu.Lock()
	rp, ok := s.pollers[sessionID]
	if ok {
		delete(s.pollers, sessionID)
	}
	s.mu.Unlock()
	if !ok {
		return false
	}
	rp.cancel()
	log.Printf("poller: stopped for session %s", sessionID)
	return true
}

// Touch renews the session poller's lease. Returns false if none is running.
func (s *Supervisor) Touch(sessionID string) bool {
	s.mu.Lock()
	rp, ok := s.pollers[sessionID]
	s.mu.Unlock()
	if ok {
		rp.poller.Touch()
	}
	return ok
}

// Status returns the session poller's status. ok is false if none is running.
func (s *Supervisor) Status(sessionID string) (Status, bool) {
	s.mu.Lock()
	rp, ok := s.pollers[sessionID]
	s.mu.Unlock()
	if !ok {
		return Status{}, false
	}
	return rp.poller.Status(), true
}

// Running returns the number of running pollers.
func (s *Supervisor) Running() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pollers)
}

// StopAll cancels every poller and waits for them to exit.
func (s *Supervisor) StopAll() {
	s.mu.Lock()
	for id, rp := range s.pollers {
		rp.cancel()
		delete(s.pollers, id)
	}
	s.mu.Unlock()
	s.wg.Wait()
}
