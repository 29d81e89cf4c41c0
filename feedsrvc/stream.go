package feedsrvc

import "context"

// Subscribe registers a live-tail listener. The returned channel receives a
// signal (coalesced, buffer of one) whenever an event is appended; the
// subscriber re-reads the log from its cursor on each signal. Cancelling ctx
// removes the listener; no other per-reader state is held.
func (s *FeedSrvc) Subscribe(ctx context.Context) <-chan struct{} {
	ch := make(chan struct{}, 1)

	s.subsLock.Lock()
	s.subs = append(s.subs, ch)
	s.subsLock.Unlock()

	go func() {
		<-ctx.Done()
		s.subsLock.Lock()
		for i, sub := range s.subs {
			if sub == ch {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				break
			}
		}
		s.subsLock.Unlock()
	}()

	return ch
}

func (s *FeedSrvc) notify() {
	s.subsLock.Lock()
	defer s.subsLock.Unlock()

	for _, sub := range s.subs {
		select {
		case sub <- struct{}{}:
		default:
			// Listener already has a pending signal.
		}
	}
}
