// Package sampler draws randomized sets of unique emoji prompts from a
// fixed catalog. Symbols issued earlier in the process are excluded from
// later draws until the catalog is exhausted, at which point the issued
// set resets and drawing continues from the full catalog.
package sampler

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hikaru/emojitale/internal/observability"
)

const (
	// MinDraw and MaxDraw bound a single draw request. Requests outside
	// the range are clamped, not rejected.
	MinDraw = 1
	MaxDraw = 10
)

// Sampler tracks which catalog symbols have been issued during this
// process lifetime. The issued set is never persisted.
type Sampler struct {
	mu      sync.Mutex
	catalog *Catalog
	issued  map[string]struct{}
	rng     *rand.Rand
	logger  zerolog.Logger
}

// Option configures a Sampler.
type Option func(*Sampler)

// WithRand sets the randomness source. Tests inject a seeded source for
// deterministic draws.
func WithRand(rng *rand.Rand) Option {
	return func(s *Sampler) { s.rng = rng }
}

// WithLogger sets the logger used by the sampler.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Sampler) { s.logger = logger }
}

// New creates a Sampler over the given catalog. A nil or empty catalog
// is fatal: the sampler cannot exist without symbols to draw.
func New(catalog *Catalog, opts ...Option) (*Sampler, error) {
	observability.EnsureRegistered()

	if catalog == nil || catalog.Len() == 0 {
		return nil, fmt.Errorf("sampler requires a non-empty catalog")
	}

	s := &Sampler{
		catalog: catalog,
		issued:  make(map[string]struct{}),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		logger:  log.Logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.logger.Info().Int("symbols", catalog.Len()).Msg("Emoji sampler ready")
	return s, nil
}

// Draw returns count distinct symbols, sampled uniformly without
// replacement. count is clamped to [MinDraw, MaxDraw]. When the unissued
// remainder cannot satisfy the request, the issued set is cleared and
// the draw comes from the full catalog, so a reset draw may repeat
// symbols issued earlier in the run. When the whole catalog is smaller
// than count, the draw returns every symbol once: the returned length is
// authoritative, not the requested count.
func (s *Sampler) Draw(count int) []string {
	if count < MinDraw {
		count = MinDraw
	}
	if count > MaxDraw {
		count = MaxDraw
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pool := s.remainderLocked()
	if len(pool) < count {
		s.logger.Warn().
			Int("remaining", len(pool)).
			Int("requested", count).
			Msg("Catalog exhausted, resetting issued tracking")
		s.issued = make(map[string]struct{})
		observability.RecordSamplerReset()
		pool = s.catalog.Symbols()
	}

	if count > len(pool) {
		s.logger.Warn().
			Int("catalog", len(pool)).
			Int("requested", count).
			Msg("Draw larger than catalog, returning short result")
		count = len(pool)
	}

	s.rng.Shuffle(len(pool), func(i, j int) {
		pool[i], pool[j] = pool[j], pool[i]
	})
	drawn := pool[:count]

	for _, symbol := range drawn {
		s.issued[symbol] = struct{}{}
	}

	observability.RecordDraw()
	s.logger.Debug().Int("count", len(drawn)).Msg("Drew emojis")

	out := make([]string, count)
	copy(out, drawn)
	return out
}

// Reset unconditionally clears the issued set. Idempotent.
func (s *Sampler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.issued = make(map[string]struct{})
	observability.RecordSamplerReset()
	s.logger.Info().Msg("Issued emoji tracking reset")
}

// Remaining reports how many catalog symbols are still unissued.
func (s *Sampler) Remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.Len() - len(s.issued)
}

// remainderLocked returns the unissued symbols in catalog order. The
// caller must hold mu.
func (s *Sampler) remainderLocked() []string {
	remainder := make([]string, 0, s.catalog.Len()-len(s.issued))
	for _, symbol := range s.catalog.symbols {
		if _, used := s.issued[symbol]; !used {
			remainder = append(remainder, symbol)
		}
	}
	return remainder
}
