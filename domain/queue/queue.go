// Package queue owns the non-repeating random traversal of the photo
// catalog: every image is shown exactly once per pass, passes reshuffle
// transparently, and the position survives process restarts.
package queue

import (
	"errors"
	"log/slog"
	"math/rand"
	"path/filepath"

	"github.com/soocke/inky-frame-go/domain/catalog"
)

// ErrEmptyCatalog is returned when the photo directory holds no eligible
// images. The cycle is skipped and retried on the next tick.
var ErrEmptyCatalog = errors.New("queue: no eligible images in photo directory")

// Queue produces an infinite, restart-durable, exhaustive-before-repeat
// sequence of catalog entries. Not safe for concurrent use; call Next from
// a single goroutine.
type Queue struct {
	dir       string
	statePath string
	rng       *rand.Rand
	logger    *slog.Logger

	st     state
	loaded bool
}

// New returns a Queue over the images in dir, persisting its traversal
// state at statePath. The caller supplies the random source so shuffle
// behavior is reproducible in tests.
func New(dir, statePath string, rng *rand.Rand, logger *slog.Logger) *Queue {
	return &Queue{dir: dir, statePath: statePath, rng: rng, logger: logger}
}

// Next returns the path of the next image to display.
//
// The persisted state is validated against a fresh catalog scan: a changed
// signature, absent state or dangling order entries regenerate the
// permutation; an exhausted pass reshuffles. The advanced position is
// persisted before returning, so a crash mid-cycle redisplays at most one
// image and never skips one.
func (q *Queue) Next() (string, error) {
	entries, sig, err := catalog.List(q.dir)
	if err != nil {
		return "", err
	}
	if len(entries) == 0 {
		return "", ErrEmptyCatalog
	}

	if !q.loaded {
		q.restore()
	}

	if q.st.Signature != sig || !q.ordersResolve(entries) {
		q.logger.Info("catalog changed, regenerating queue",
			slog.Int("images", len(entries)))
		q.reshuffle(entries, sig)
	} else if q.st.Position == len(q.st.Order) {
		q.logger.Info("pass exhausted, reshuffling",
			slog.Int("images", len(entries)))
		q.reshuffle(entries, sig)
	}

	name := q.st.Order[q.st.Position]
	q.st.Position++
	if err := saveState(q.statePath, q.st); err != nil {
		// The frame still displays; worst case the same image repeats
		// once after a restart.
		q.logger.Warn("persisting queue state failed", slog.String("err", err.Error()))
	}
	return filepath.Join(q.dir, name), nil
}

// Remaining reports how many images are left in the current pass. Zero
// before the first Next call or right after a pass completes.
func (q *Queue) Remaining() int {
	if !q.loaded {
		q.restore()
	}
	return len(q.st.Order) - q.st.Position
}

// Reset discards the persisted state; the next call to Next starts a fresh
// pass.
func (q *Queue) Reset() error {
	q.st = state{}
	q.loaded = true
	err := removeState(q.statePath)
	if err != nil {
		return err
	}
	return nil
}

func (q *Queue) restore() {
	q.loaded = true
	st, ok, err := loadState(q.statePath)
	if err != nil {
		q.logger.Warn("queue state unreadable, starting fresh", slog.String("err", err.Error()))
		return
	}
	if !ok {
		return
	}
	q.st = st
	q.logger.Info("queue state restored",
		slog.Int("remaining", len(st.Order)-st.Position),
		slog.Int("total", len(st.Order)))
}

// ordersResolve reports whether every identifier in the persisted order
// still exists in the current catalog.
func (q *Queue) ordersResolve(entries []catalog.Entry) bool {
	if len(q.st.Order) == 0 {
		return false
	}
	present := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		present[e.Name] = struct{}{}
	}
	for _, name := range q.st.Order {
		if _, ok := present[name]; !ok {
			return false
		}
	}
	return true
}

// reshuffle builds a uniform random permutation of the catalog and resets
// the pass position.
func (q *Queue) reshuffle(entries []catalog.Entry, sig string) {
	order := make([]string, len(entries))
	for i, e := range entries {
		order[i] = e.Name
	}
	q.rng.Shuffle(len(order), func(i, j int) {
		order[i], order[j] = order[j], order[i]
	})
	q.st = state{Order: order, Position: 0, Signature: sig}
}
