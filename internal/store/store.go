// Package store provides the transactional persistence handle the workflow
// coordinator writes through. A processed item and its draft response are
// committed as one logical unit; a failure status is committed as a
// best-effort second transaction.
package store

import (
	"errors"
	"fmt"
	"sync"

	"mailflow/internal/types"
)

// ErrUnsupportedEntity is returned when Add receives a type the store does
// not persist.
var ErrUnsupportedEntity = errors.New("unsupported entity type")

// Store is the transactional handle consumed by the coordinator. Add stages
// an entity; Commit writes all staged entities atomically; Rollback discards
// them. Implementations must tolerate Rollback with nothing staged.
type Store interface {
	Add(entity interface{}) error
	Commit() error
	Rollback() error
}

// =============================================================================
// IN-MEMORY STORE
// =============================================================================

// MemoryStore is a Store keeping committed records in maps. Used by tests
// and by one-shot CLI runs that do not configure a database. The error
// fields inject faults for failure-path tests.
type MemoryStore struct {
	mu      sync.Mutex
	staged  []interface{}
	items   map[string]*types.Item
	resps   map[string]*types.Response
	commits int

	// Fault injection: returned verbatim when set.
	AddErr    error
	CommitErr error
	// CommitErrOnce fails only the next Commit, then clears. Used to
	// exercise the failure-status path without making the secondary
	// commit fatal.
	CommitErrOnce error
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]*types.Item),
		resps: make(map[string]*types.Response),
	}
}

// Add stages an item or response for the next Commit.
func (m *MemoryStore) Add(entity interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.AddErr != nil {
		return m.AddErr
	}

	switch entity.(type) {
	case *types.Item, *types.Response:
		m.staged = append(m.staged, entity)
		return nil
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedEntity, entity)
	}
}

// Commit writes all staged entities.
func (m *MemoryStore) Commit() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.CommitErr != nil {
		return m.CommitErr
	}
	if m.CommitErrOnce != nil {
		err := m.CommitErrOnce
		m.CommitErrOnce = nil
		m.staged = nil
		return err
	}

	for _, entity := range m.staged {
		switch e := entity.(type) {
		case *types.Item:
			copied := *e
			m.items[e.ID] = &copied
		case *types.Response:
			copied := *e
			m.resps[e.ID] = &copied
		}
	}
	m.staged = nil
	m.commits++
	return nil
}

// Rollback discards staged entities.
func (m *MemoryStore) Rollback() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.staged = nil
	return nil
}

// Item returns a committed item by id.
func (m *MemoryStore) Item(id string) (*types.Item, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	return item, ok
}

// ResponseForItem returns the committed response referencing the item.
func (m *MemoryStore) ResponseForItem(itemID string) (*types.Response, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.resps {
		if r.ItemID == itemID {
			return r, true
		}
	}
	return nil, false
}

// Commits returns how many commits have succeeded.
func (m *MemoryStore) Commits() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.commits
}
