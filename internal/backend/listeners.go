package backend

import "sync"

// Listeners keeps the session-change subscribers of a client.
type Listeners struct {
	mu     sync.RWMutex
	nextID int
	fns    map[int]func(Event, *Session)
}

type subscription struct {
	l    *Listeners
	id   int
	once sync.Once
}

func (s *subscription) Unsubscribe() {
	s.once.Do(func() {
		s.l.mu.Lock()
		defer s.l.mu.Unlock()
		delete(s.l.fns, s.id)
	})
}

func (l *Listeners) Subscribe(fn func(Event, *Session)) Subscription {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fns == nil {
		l.fns = make(map[int]func(Event, *Session))
	}
	l.nextID++
	l.fns[l.nextID] = fn
	return &subscription{l: l, id: l.nextID}
}

// Notify calls every subscriber outside the lock.
func (l *Listeners) Notify(ev Event, s *Session) {
	l.mu.RLock()
	fns := make([]func(Event, *Session), 0, len(l.fns))
	for _, fn := range l.fns {
		fns = append(fns, fn)
	}
	l.mu.RUnlock()

	for _, fn := range fns {
		fn(ev, s)
	}
}

func (l *Listeners) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.fns)
}
