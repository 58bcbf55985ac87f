// Package timer schedules script timers. The service owns ids and
// scheduling; firing only delivers a Fire on a channel so callbacks always
// run on the script goroutine.
package timer

import (
	"sync"
	"time"
)

// Fire is delivered when a timer expires.
type Fire struct {
	ID        int
	Repeating bool
}

// Service manages timed wake-ups. Repeating timers use fixed-interval
// semantics: the next run is scheduled when the current one fires.
type Service struct {
	out  chan<- Fire
	stop chan struct{}

	mu      sync.Mutex
	timers  map[int]*entry
	nextID  int
	stopped bool
}

type entry struct {
	interval time.Duration // 0 = one-shot
	timer    *time.Timer
}

// NewService creates a service that delivers fires on out. Delivery blocks
// until the receiver takes the fire or Stop is called.
func NewService(out chan<- Fire) *Service {
	return &Service{
		out:    out,
		stop:   make(chan struct{}),
		timers: make(map[int]*entry),
	}
}

// After schedules a one-shot timer and returns its id.
func (s *Service) After(d time.Duration) int {
	return s.schedule(d, 0)
}

// Every schedules a repeating timer and returns its id. Intervals shorter
// than a millisecond are raised to one.
func (s *Service) Every(d time.Duration) int {
	d = max(d, time.Millisecond)
	return s.schedule(d, d)
}

func (s *Service) schedule(d, interval time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	if s.stopped {
		return id
	}

	s.timers[id] = &entry{
		interval: interval,
		timer:    time.AfterFunc(max(d, 0), func() { s.fire(id) }),
	}
	return id
}

func (s *Service) fire(id int) {
	s.mu.Lock()
	e, ok := s.timers[id]
	if !ok {
		s.mu.Unlock()
		return
	}
	repeating := e.interval > 0
	if repeating {
		e.timer = time.AfterFunc(e.interval, func() { s.fire(id) })
	} else {
		delete(s.timers, id)
	}
	s.mu.Unlock()

	select {
	case s.out <- Fire{ID: id, Repeating: repeating}:
	case <-s.stop:
	}
}

// Cancel stops a timer. Unknown ids are ignored. A fire already in flight
// may still be delivered; receivers should drop fires for ids they no
// longer track.
func (s *Service) Cancel(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.timers[id]; ok {
		e.timer.Stop()
		delete(s.timers, id)
	}
}

// Active returns the number of scheduled timers.
func (s *Service) Active() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// Stop cancels every timer and releases blocked deliveries. Later calls to
// After and Every return ids that never fire.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return
	}
	s.stopped = true
	for _, e := range s.timers {
		e.timer.Stop()
	}
	s.timers = make(map[int]*entry)
	close(s.stop)
}
