package runloop

import "sync"

// Subscription is a handle to a registered listener. Cancel removes it and is
// safe to call more than once.
type Subscription struct {
	once   sync.Once
	cancel func()
}

// NewSubscription wraps a cancel function.
func NewSubscription(cancel func()) *Subscription {
	return &Subscription{cancel: cancel}
}

// Cancel unregisters the listener.
func (s *Subscription) Cancel() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		if s.cancel != nil {
			s.cancel()
		}
	})
}

// SubscriptionList collects subscriptions so they can be released together.
type SubscriptionList struct {
	subs []*Subscription
}

// Add appends subscriptions to the list.
func (l *SubscriptionList) Add(subs ...*Subscription) {
	l.subs = append(l.subs, subs...)
}

// CancelAll cancels every subscription in registration order and empties the list.
func (l *SubscriptionList) CancelAll() {
	subs := l.subs
	l.subs = nil
	for _, s := range subs {
		s.Cancel()
	}
}

// Len returns the number of held subscriptions.
func (l *SubscriptionList) Len() int {
	return len(l.subs)
}
