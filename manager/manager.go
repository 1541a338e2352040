// Package manager implements the session store: the single synchronization
// boundary between callers, the active-session cache, and durable storage.
//
// One authoritative Session value exists per id. Cache misses reconstruct the
// session from the persistent store at most once under concurrent callers
// (singleflight), and every mutation is serialized per session id while
// operations on different ids proceed in parallel. Writes are write-through:
// the full record is written first, then the metadata projection, and a
// metadata-only failure is repaired lazily on the next load.
package manager

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/parley-labs/parley/observability"
	"github.com/parley-labs/parley/persona"
	"github.com/parley-labs/parley/session"
	"github.com/parley-labs/parley/store"
)

// entry is one active session plus its per-id mutation lock.
type entry struct {
	mu        sync.Mutex
	sess      *session.Session
	dirty     bool
	lastSaved time.Time
}

// Manager owns the active-session cache and its reconciliation with the
// persistent store. All session mutations in the system flow through it.
type Manager struct {
	store    store.Store
	personas persona.Provider
	observer observability.Observer
	cfg      Config

	mu      sync.RWMutex
	entries map[string]*entry

	loads singleflight.Group

	closeOnce sync.Once
	stopFlush chan struct{}
	flushDone chan struct{}
}

// Option configures a Manager after construction.
type Option func(*Manager)

// WithObserver overrides the default NoOpObserver.
func WithObserver(o observability.Observer) Option {
	return func(m *Manager) { m.observer = o }
}

// New creates a Manager over the given store and persona catalog. The
// returned Manager lives for the process lifetime; Close flushes unsaved
// sessions and stops the background flusher.
func New(s store.Store, personas persona.Provider, cfg Config, opts ...Option) *Manager {
	m := &Manager{
		store:     s,
		personas:  personas,
		observer:  observability.NoOpObserver{},
		cfg:       cfg,
		entries:   make(map[string]*entry),
		stopFlush: make(chan struct{}),
		flushDone: make(chan struct{}),
	}

	for _, opt := range opts {
		opt(m)
	}

	if cfg.FlushInterval > 0 {
		go m.flushLoop()
	} else {
		close(m.flushDone)
	}

	return m
}

// Create resolves the persona, builds a new session in the CREATED state,
// installs it into the cache, and persists it. A nil cfg uses the store's
// session defaults.
func (m *Manager) Create(ctx context.Context, clientID, personaName string, typ session.Type, cfg *session.Config) (*session.Session, error) {
	desc, err := m.personas.Descriptor(ctx, personaName)
	if err != nil {
		return nil, err
	}

	sessCfg := m.cfg.SessionDefaults
	if cfg != nil {
		sessCfg = *cfg
	}

	sess := session.New(clientID, session.PersonaRef{Name: personaName, Descriptor: *desc}, typ, sessCfg)

	e := &entry{sess: sess}
	e.mu.Lock()
	defer e.mu.Unlock()

	m.mu.Lock()
	m.entries[sess.ID] = e
	m.mu.Unlock()

	if err := m.persistEntry(ctx, e); err != nil {
		m.mu.Lock()
		delete(m.entries, sess.ID)
		m.mu.Unlock()
		return nil, err
	}

	m.emit(ctx, EventSessionCreate, observability.LevelInfo, "manager.Create", map[string]any{
		"session_id": sess.ID,
		"client_id":  clientID,
		"persona":    personaName,
		"type":       string(typ),
	})

	return sess.Clone(), nil
}

// Get returns a snapshot of the session, loading it from the persistent
// store on a cache miss. Concurrent misses for the same id reconstruct the
// session exactly once.
func (m *Manager) Get(ctx context.Context, id string) (*session.Session, error) {
	e, err := m.entryFor(ctx, id)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sess.Clone(), nil
}

// Save persists the full session record and its metadata projection,
// regardless of the session's auto-save setting.
func (m *Manager) Save(ctx context.Context, id string) error {
	e, err := m.entryFor(ctx, id)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return m.writeThrough(ctx, e)
}

// Delete removes the session from the cache and the persistent store.
// It reports whether a session existed under the id.
func (m *Manager) Delete(ctx context.Context, id string) (bool, error) {
	e, err := m.entryFor(ctx, id)
	if errors.Is(err, ErrSessionNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	m.mu.Lock()
	delete(m.entries, id)
	m.mu.Unlock()

	if err := m.store.Delete(ctx, store.CollectionSessions, id); err != nil {
		return false, fmt.Errorf("%w: delete session record: %v", ErrPersistence, err)
	}
	if err := m.store.Delete(ctx, store.CollectionMetadata, metadataKey(id)); err != nil {
		return false, fmt.Errorf("%w: delete metadata record: %v", ErrPersistence, err)
	}

	m.emit(ctx, EventSessionDelete, observability.LevelInfo, "manager.Delete", map[string]any{
		"session_id": id,
	})
	return true, nil
}

// Flush persists every session mutated while auto-save was off.
func (m *Manager) Flush(ctx context.Context) error {
	m.mu.RLock()
	dirty := make([]*entry, 0)
	for _, e := range m.entries {
		dirty = append(dirty, e)
	}
	m.mu.RUnlock()

	var firstErr error
	flushed := 0
	for _, e := range dirty {
		e.mu.Lock()
		if e.dirty {
			if err := m.writeThrough(ctx, e); err != nil {
				if firstErr == nil {
					firstErr = err
				}
			} else {
				flushed++
			}
		}
		e.mu.Unlock()
	}

	if flushed > 0 {
		m.emit(ctx, EventFlush, observability.LevelVerbose, "manager.Flush", map[string]any{
			"sessions": flushed,
		})
	}
	return firstErr
}

// Close stops the background flusher and flushes unsaved sessions.
func (m *Manager) Close() error {
	var err error
	m.closeOnce.Do(func() {
		if m.cfg.FlushInterval > 0 {
			close(m.stopFlush)
			<-m.flushDone
		}
		err = m.Flush(context.Background())
	})
	return err
}

// WithSession runs fn with exclusive access to the live session instance.
// The per-id lock is held for the duration of fn; the turn pipeline uses
// this to keep a whole client→assistant exchange serialized. fn must not
// retain the *session.Session beyond its return.
func (m *Manager) WithSession(ctx context.Context, id string, fn func(s *session.Session) error) error {
	e, err := m.entryFor(ctx, id)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.sess)
}

// PersistAfterMutation applies the session's auto-save policy from inside a
// WithSession callback: a synchronous write-through when auto-save is on,
// a dirty mark otherwise.
func (m *Manager) PersistAfterMutation(ctx context.Context, s *session.Session) error {
	m.mu.RLock()
	e := m.entries[s.ID]
	m.mu.RUnlock()
	if e == nil {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, s.ID)
	}
	return m.persistEntry(ctx, e)
}

// entryFor returns the cache entry for id, reconstructing it from the
// persistent store at most once under concurrent callers.
func (m *Manager) entryFor(ctx context.Context, id string) (*entry, error) {
	m.mu.RLock()
	e, ok := m.entries[id]
	m.mu.RUnlock()
	if ok {
		return e, nil
	}

	v, err, _ := m.loads.Do(id, func() (any, error) {
		// Double-check: another caller may have installed the entry
		// between the cache miss and the singleflight slot.
		m.mu.RLock()
		e, ok := m.entries[id]
		m.mu.RUnlock()
		if ok {
			return e, nil
		}

		sess, err := m.loadSession(ctx, id)
		if err != nil {
			return nil, err
		}

		e = &entry{sess: sess, lastSaved: time.Now()}
		m.mu.Lock()
		m.entries[id] = e
		m.mu.Unlock()
		return e, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*entry), nil
}

// loadSession reconstructs a session from its persisted record and repairs
// the metadata projection, which may be stale after a partial write.
func (m *Manager) loadSession(ctx context.Context, id string) (*session.Session, error) {
	data, err := m.store.Load(ctx, store.CollectionSessions, id)
	if err != nil {
		if errors.Is(err, store.ErrKeyNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
		}
		return nil, fmt.Errorf("%w: load session record: %v", ErrPersistence, err)
	}

	var sess session.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("%w: decode session record %s: %v", ErrPersistence, id, err)
	}

	m.repairMetadata(ctx, &sess)

	m.emit(ctx, EventSessionLoad, observability.LevelVerbose, "manager.Get", map[string]any{
		"session_id": id,
		"messages":   sess.MessageCount(),
	})

	return &sess, nil
}

// repairMetadata rewrites the metadata projection from the full record.
// Best-effort: the projection is a rebuildable cache, so failures are
// observed but not surfaced.
func (m *Manager) repairMetadata(ctx context.Context, sess *session.Session) {
	data, err := json.Marshal(sess.Metadata())
	if err == nil {
		err = m.store.Save(ctx, store.CollectionMetadata, metadataKey(sess.ID), data)
	}
	if err != nil {
		m.emit(ctx, EventError, observability.LevelWarning, "manager.repairMetadata", map[string]any{
			"session_id": sess.ID,
			"error":      err.Error(),
		})
		return
	}

	m.emit(ctx, EventMetadataRepair, observability.LevelVerbose, "manager.repairMetadata", map[string]any{
		"session_id": sess.ID,
	})
}

// persistEntry applies the session's auto-save policy. Callers must hold the
// entry lock.
func (m *Manager) persistEntry(ctx context.Context, e *entry) error {
	if !e.sess.Config.AutoSaveEnabled() {
		e.dirty = true
		return nil
	}
	return m.writeThrough(ctx, e)
}

// writeThrough writes the full record first and the metadata projection
// second, so a metadata-only failure is the only tolerated partial state.
// Callers must hold the entry lock.
func (m *Manager) writeThrough(ctx context.Context, e *entry) error {
	sess := e.sess

	full, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("%w: encode session %s: %v", ErrPersistence, sess.ID, err)
	}
	if err := m.store.Save(ctx, store.CollectionSessions, sess.ID, full); err != nil {
		return fmt.Errorf("%w: session record %s: %v", ErrPersistence, sess.ID, err)
	}

	e.dirty = false
	e.lastSaved = time.Now()

	md, err := json.Marshal(sess.Metadata())
	if err != nil {
		return fmt.Errorf("%w: encode metadata %s: %v", ErrPersistence, sess.ID, err)
	}
	if err := m.store.Save(ctx, store.CollectionMetadata, metadataKey(sess.ID), md); err != nil {
		// The full record is durable; the projection will be rebuilt on
		// the next load.
		return fmt.Errorf("%w: metadata record %s: %v", ErrPersistence, sess.ID, err)
	}

	m.emit(ctx, EventSessionSave, observability.LevelVerbose, "manager.save", map[string]any{
		"session_id": sess.ID,
		"messages":   sess.MessageCount(),
	})
	return nil
}

func (m *Manager) flushLoop() {
	defer close(m.flushDone)

	ticker := time.NewTicker(m.cfg.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopFlush:
			return
		case <-ticker.C:
			m.flushEligible()
		}
	}
}

// flushEligible persists dirty sessions whose auto-save interval has elapsed.
func (m *Manager) flushEligible() {
	ctx := context.Background()

	m.mu.RLock()
	candidates := make([]*entry, 0)
	for _, e := range m.entries {
		candidates = append(candidates, e)
	}
	m.mu.RUnlock()

	for _, e := range candidates {
		e.mu.Lock()
		if e.dirty && time.Since(e.lastSaved) >= e.sess.Config.AutoSaveInterval {
			if err := m.writeThrough(ctx, e); err != nil {
				m.emit(ctx, EventError, observability.LevelWarning, "manager.flushLoop", map[string]any{
					"session_id": e.sess.ID,
					"error":      err.Error(),
				})
			}
		}
		e.mu.Unlock()
	}
}

func (m *Manager) emit(ctx context.Context, typ observability.EventType, level observability.Level, source string, data map[string]any) {
	m.observer.OnEvent(ctx, observability.Event{
		Type:      typ,
		Level:     level,
		Timestamp: time.Now(),
		Source:    source,
		Data:      data,
	})
}

func metadataKey(id string) string {
	return id + "_metadata"
}
