package services

import (
	"context"
	"slices"
	"sync"

	"github.com/AchilleasB/campus-events/event-service/internal/core/ports"
)

// LiveList keeps a local copy of a query result in step with the data store.
// A change signal always triggers a full refetch; the signal itself carries
// nothing.
type LiveList[T any] struct {
	mu    sync.RWMutex
	items []T
	fetch func(context.Context) ([]T, error)
	key   func(T) string
}

func NewLiveList[T any](fetch func(context.Context) ([]T, error), key func(T) string) *LiveList[T] {
	return &LiveList[T]{fetch: fetch, key: key}
}

// Items returns a copy of the current list.
func (l *LiveList[T]) Items() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return slices.Clone(l.items)
}

func (l *LiveList[T]) Refresh(ctx context.Context) error {
	items, err := l.fetch(ctx)
	if err != nil {
		return err
	}
	l.mu.Lock()
	l.items = items
	l.mu.Unlock()
	return nil
}

// Watch subscribes to table and sends the refetched list after every change
// signal. Signals that arrive during a refetch are coalesced into one. The
// subscription is released and the channel closed when ctx is done. Fetch
// errors are passed to onError and the previous list is kept.
func (l *LiveList[T]) Watch(ctx context.Context, sub ports.ChangeSubscriber, table string, onError func(error)) <-chan []T {
	out := make(chan []T)
	signal := make(chan struct{}, 1)
	unsubscribe := sub.Subscribe(table, func() {
		select {
		case signal <- struct{}{}:
		default:
		}
	})

	go func() {
		defer close(out)
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case <-signal:
			}
			if err := l.Refresh(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				if onError != nil {
					onError(err)
				}
				continue
			}
			select {
			case out <- l.Items():
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Mutate applies change to the item with the given key locally, then runs
// commit. If commit fails the local list is restored and the error returned.
func (l *LiveList[T]) Mutate(ctx context.Context, key string, change func(T) T, commit func(context.Context) error) error {
	l.mu.Lock()
	snapshot := slices.Clone(l.items)
	for i, item := range l.items {
		if l.key(item) == key {
			l.items[i] = change(item)
		}
	}
	l.mu.Unlock()

	if err := commit(ctx); err != nil {
		l.mu.Lock()
		l.items = snapshot
		l.mu.Unlock()
		return err
	}
	return nil
}
