package distributed

import (
	"context"
	"fmt"
	"sync"
	"time"

	rlerrors "github.com/vnykmshr/ringlimit/pkg/common/errors"
	"github.com/vnykmshr/ringlimit/pkg/common/validation"
)

// MemoryStore is an in-process Store. Records expire according to the
// supplied clock, so it can share a mock clock with the Limiter in tests.
type MemoryStore struct {
	mu      sync.Mutex
	clock   Clock
	records map[string]*memoryRecord
}

type memoryRecord struct {
	fields    map[string]int64
	expiresAt time.Time
}

// NewMemoryStore creates an empty MemoryStore. A nil clock uses SystemClock.
func NewMemoryStore(clock Clock) *MemoryStore {
	if clock == nil {
		clock = SystemClock{}
	}
	return &MemoryStore{
		clock:   clock,
		records: make(map[string]*memoryRecord),
	}
}

// Apply implements Store.
func (s *MemoryStore) Apply(ctx context.Context, key string, m Mutation) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	rec := s.live(key, now)
	if rec == nil {
		rec = &memoryRecord{fields: make(map[string]int64)}
		s.records[key] = rec
	}

	rec.fields[m.Field] += m.Delta
	value := rec.fields[m.Field]
	for _, f := range m.Delete {
		delete(rec.fields, f)
	}
	if m.TTL > 0 {
		rec.expiresAt = now.Add(m.TTL)
	}

	return value, nil
}

// Fetch implements Store.
func (s *MemoryStore) Fetch(ctx context.Context, key string, fields ...string) ([]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	values := make([]int64, len(fields))
	rec := s.live(key, s.clock.Now())
	if rec == nil {
		return values, nil
	}
	for i, f := range fields {
		values[i] = rec.fields[f]
	}
	return values, nil
}

// Len returns the number of unexpired records.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	n := 0
	for key := range s.records {
		if s.live(key, now) != nil {
			n++
		}
	}
	return n
}

// Sweep drops every expired record and returns how many were removed.
// Reads and writes already skip expired records; Sweep reclaims the memory
// held by subjects that are never seen again.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	removed := 0
	for key := range s.records {
		if s.live(key, now) == nil {
			removed++
		}
	}
	return removed
}

// live returns the record for key, dropping it if it has expired. Callers hold s.mu.
func (s *MemoryStore) live(key string, now time.Time) *memoryRecord {
	rec, ok := s.records[key]
	if !ok {
		return nil
	}
	if !rec.expiresAt.IsZero() && !now.Before(rec.expiresAt) {
		delete(s.records, key)
		return nil
	}
	return rec
}

// MemoryLocker is an in-process Locker built on one buffered channel per
// lock name. It coordinates goroutines, not processes.
type MemoryLocker struct {
	mu     sync.Mutex
	sems   map[string]chan struct{}
	owners map[string]string
}

// NewMemoryLocker creates an empty MemoryLocker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{
		sems:   make(map[string]chan struct{}),
		owners: make(map[string]string),
	}
}

// WithLock implements Locker.
func (m *MemoryLocker) WithLock(ctx context.Context, name, owner string, acquire time.Duration, body func(ctx context.Context) error) error {
	if err := validation.ValidatePositiveDuration("memlock", "acquire", acquire); err != nil {
		return err
	}

	sem := m.semaphore(name)

	timer := time.NewTimer(acquire)
	defer timer.Stop()

	select {
	case sem <- struct{}{}:
	case <-timer.C:
		return fmt.Errorf("%w: %s after %s", rlerrors.ErrLockTimeout, name, acquire)
	case <-ctx.Done():
		return ctx.Err()
	}

	m.setOwner(name, owner)
	defer func() {
		m.setOwner(name, "")
		<-sem
	}()

	return body(ctx)
}

// Owner returns the owner currently holding name.
func (m *MemoryLocker) Owner(name string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	owner, ok := m.owners[name]
	return owner, ok
}

func (m *MemoryLocker) semaphore(name string) chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	sem, ok := m.sems[name]
	if !ok {
		sem = make(chan struct{}, 1)
		m.sems[name] = sem
	}
	return sem
}

func (m *MemoryLocker) setOwner(name, owner string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if owner == "" {
		delete(m.owners, name)
		return
	}
	m.owners[name] = owner
}
