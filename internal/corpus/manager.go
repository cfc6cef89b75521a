package corpus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"earmark/internal/services"
	"earmark/internal/vectorstore"
)

const lockRetryDelay = 100 * time.Millisecond

// VectorIndex is the slice of the vector store the manager consumes.
// Narrowed to an interface so tests can inject slow or failing indexes.
type VectorIndex interface {
	AllocateGeneration(ctx context.Context) (int64, error)
	Upsert(ctx context.Context, generation int64, items []vectorstore.Item) error
	CurrentGeneration(ctx context.Context) (int64, bool, error)
	SetCurrentGeneration(ctx context.Context, generation int64) error
	DeleteGeneration(ctx context.Context, generation int64) error
	RetireExcept(ctx context.Context, keep int64) error
	DeleteAll(ctx context.Context) error
	Query(ctx context.Context, generation int64, vector []float32, topK int, minSimilarity float64) ([]vectorstore.Match, error)
	Stats(ctx context.Context) (vectorstore.Stats, error)
}

// Manager owns the reference corpus lifecycle. Replacements follow
// store-then-retire: the new generation is written in full, the current
// pointer flips atomically, and the superseded generation stays on disk
// until the next replacement sweeps it. Deferring the sweep lets queries
// pinned to the old generation finish against a complete corpus.
// Queries dereference the pointer exactly once, so a query racing a
// replacement sees either the old corpus or the new one, never a mixture
// and never an empty index.
type Manager struct {
	index    VectorIndex
	lockPath string
	logger   *slog.Logger
	retry    services.RetryPolicy

	mu sync.Mutex

	// current caches the durable pointer; 0 means no corpus is indexed.
	current atomic.Int64
}

// Option customizes the manager.
type Option func(*Manager)

// WithRetryPolicy overrides the retry policy for index operations.
func WithRetryPolicy(policy services.RetryPolicy) Option {
	return func(m *Manager) {
		m.retry = policy
	}
}

// New constructs a manager and seeds the generation cache from the index.
func New(ctx context.Context, index VectorIndex, lockPath string, logger *slog.Logger, opts ...Option) (*Manager, error) {
	if logger == nil {
		logger = slog.Default()
	}
	manager := &Manager{
		index:    index,
		lockPath: lockPath,
		logger:   logger.With("component", "corpus"),
	}
	for _, opt := range opts {
		opt(manager)
	}

	generation, ok, err := index.CurrentGeneration(ctx)
	if err != nil {
		return nil, services.Wrap(services.ErrIndexUnavailable, "corpus", "new", "read current generation", err)
	}
	if ok {
		manager.current.Store(generation)
	}
	return manager, nil
}

// Store replaces the reference corpus with items. Concurrent replacements
// are serialized per process and across processes; a failure at any point
// before the pointer flip leaves the previous corpus untouched.
func (m *Manager) Store(ctx context.Context, items []vectorstore.Item) error {
	if len(items) == 0 {
		return services.Wrap(services.ErrValidation, "corpus", "store", "no chunks to index", nil)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	unlock, err := m.acquireLock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	// Generations superseded by earlier replacements are swept here, at
	// the start of the next replacement, never right after a pointer
	// flip: queries pinned to the outgoing generation must be able to
	// finish reading it.
	if err := m.index.RetireExcept(ctx, m.current.Load()); err != nil {
		m.logger.Warn("failed to retire old generations", "error", err)
	}

	generation, err := m.index.AllocateGeneration(ctx)
	if err != nil {
		return services.Wrap(services.ErrIndexUnavailable, "corpus", "store", "allocate generation", err)
	}

	err = services.Retry(ctx, m.retry, func(ctx context.Context) error {
		return m.index.Upsert(ctx, generation, items)
	})
	if err != nil {
		m.discard(generation)
		return services.Wrap(services.ErrIndexUnavailable, "corpus", "store",
			fmt.Sprintf("write generation %d", generation), err)
	}

	err = services.Retry(ctx, m.retry, func(ctx context.Context) error {
		return m.index.SetCurrentGeneration(ctx, generation)
	})
	if err != nil {
		m.discard(generation)
		return services.Wrap(services.ErrIndexUnavailable, "corpus", "store",
			fmt.Sprintf("activate generation %d", generation), err)
	}
	m.current.Store(generation)
	m.logger.Info("reference corpus replaced", "generation", generation, "chunks", len(items))
	return nil
}

// Clear removes the indexed corpus entirely.
func (m *Manager) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	unlock, err := m.acquireLock(ctx)
	if err != nil {
		return err
	}
	defer unlock()

	if err := m.index.DeleteAll(ctx); err != nil {
		return services.Wrap(services.ErrIndexUnavailable, "corpus", "clear", "delete corpus", err)
	}
	m.current.Store(0)
	m.logger.Info("reference corpus cleared")
	return nil
}

// Query searches the current corpus. The generation is read once at entry,
// pinning the whole query to a single corpus snapshot. Callers issuing a
// series of related queries should pin once via Snapshot instead.
func (m *Manager) Query(ctx context.Context, vector []float32, topK int, minSimilarity float64) ([]vectorstore.Match, error) {
	generation := m.current.Load()
	if generation == 0 {
		return nil, services.ErrNoPrimaryIndexed
	}
	return m.queryGeneration(ctx, generation, vector, topK, minSimilarity)
}

// Snapshot pins the current generation and returns a read view of it.
// Returns ErrNoPrimaryIndexed when nothing is indexed.
func (m *Manager) Snapshot() (*Snapshot, error) {
	generation := m.current.Load()
	if generation == 0 {
		return nil, services.ErrNoPrimaryIndexed
	}
	return &Snapshot{manager: m, generation: generation}, nil
}

// Snapshot is a read view of one corpus generation. Every query through
// the same snapshot reads the same rows, even across a concurrent
// replacement: the pinned generation is not swept until the replacement
// after the one that supersedes it.
type Snapshot struct {
	manager    *Manager
	generation int64
}

// Query searches the pinned generation.
func (s *Snapshot) Query(ctx context.Context, vector []float32, topK int, minSimilarity float64) ([]vectorstore.Match, error) {
	return s.manager.queryGeneration(ctx, s.generation, vector, topK, minSimilarity)
}

func (m *Manager) queryGeneration(ctx context.Context, generation int64, vector []float32, topK int, minSimilarity float64) ([]vectorstore.Match, error) {
	var matches []vectorstore.Match
	err := services.Retry(ctx, m.retry, func(ctx context.Context) error {
		var queryErr error
		matches, queryErr = m.index.Query(ctx, generation, vector, topK, minSimilarity)
		return queryErr
	})
	if err != nil {
		return nil, services.Wrap(services.ErrIndexUnavailable, "corpus", "query",
			fmt.Sprintf("generation %d", generation), err)
	}
	return matches, nil
}

// HasCorpus reports whether a corpus is currently indexed.
func (m *Manager) HasCorpus() bool {
	return m.current.Load() != 0
}

// Stats reports index statistics.
func (m *Manager) Stats(ctx context.Context) (vectorstore.Stats, error) {
	stats, err := m.index.Stats(ctx)
	if err != nil {
		return vectorstore.Stats{}, services.Wrap(services.ErrIndexUnavailable, "corpus", "stats", "read stats", err)
	}
	return stats, nil
}

// acquireLock takes the cross-process replacement lock. The in-process
// mutex is already held, so this only contends with other processes.
func (m *Manager) acquireLock(ctx context.Context) (func(), error) {
	if m.lockPath == "" {
		return func() {}, nil
	}
	fileLock := flock.New(m.lockPath)
	ok, err := fileLock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return nil, services.Wrap(services.ErrIndexUnavailable, "corpus", "lock", m.lockPath, err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrIndexUnavailable, "corpus", "lock", "lock not acquired: "+m.lockPath, nil)
	}
	return func() {
		if err := fileLock.Unlock(); err != nil {
			m.logger.Warn("failed to release replacement lock", "path", m.lockPath, "error", err)
		}
	}, nil
}

// discard removes a partially written generation, best effort.
func (m *Manager) discard(generation int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := m.index.DeleteGeneration(ctx, generation); err != nil {
		m.logger.Warn("failed to discard partial generation", "generation", generation, "error", err)
	}
}
