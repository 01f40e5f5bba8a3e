package search

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/nutrifind/go-food-search/index"
	apperrors "github.com/nutrifind/go-food-search/internal/errors"
	"github.com/nutrifind/go-food-search/internal/tokenizer"
	"github.com/nutrifind/go-food-search/model"
	"github.com/nutrifind/go-food-search/services"
)

// State is the observable phase of a session's current search.
type State string

const (
	StateIdle       State = "idle"
	StateDebouncing State = "debouncing"
	StateResolving  State = "resolving"
	StateComplete   State = "complete"
	StateCancelled  State = "cancelled"
)

// Session owns the mutable per-caller search state: last signature, the
// published result list and the debounce timer. At most one resolution is
// current; a new Search supersedes any in-flight one via the generation
// counter.
type Session struct {
	engine *Engine

	generation atomic.Uint64

	mu            sync.Mutex
	state         State
	lastSignature string
	result        services.SearchResult
	hasResult     bool
	debounce      *time.Timer
}

func newSession(e *Engine) *Session {
	return &Session{engine: e, state: StateIdle}
}

// State returns the session's current phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Result returns the last completed result, if any. Cancelled resolutions
// never overwrite it.
func (s *Session) Result() (services.SearchResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result, s.hasResult
}

// Search submits a request. Identical back-to-back requests with results
// already displayed are a no-op; an empty request short-circuits to the
// alphabetical default listing; anything else supersedes the in-flight
// resolution and debounces before resolving.
func (s *Session) Search(req services.SearchRequest) {
	sig := signatureOf(req)

	s.mu.Lock()
	if sig == s.lastSignature && s.hasResult &&
		(s.state == StateIdle || s.state == StateComplete) {
		s.mu.Unlock()
		return
	}

	gen := s.generation.Add(1)
	if s.debounce != nil {
		s.debounce.Stop()
		s.debounce = nil
	}

	if isEmptyRequest(req) {
		s.mu.Unlock()
		s.publishDefaultListing(gen, sig)
		return
	}

	s.state = StateDebouncing
	s.debounce = time.AfterFunc(s.engine.cfg.DebounceInterval, func() {
		s.resolve(gen, req, sig)
	})
	s.mu.Unlock()
}

// CancelActive abandons any in-flight resolution without touching the last
// displayed result.
func (s *Session) CancelActive() {
	s.generation.Add(1)
	s.mu.Lock()
	if s.debounce != nil {
		s.debounce.Stop()
		s.debounce = nil
	}
	if s.state == StateDebouncing || s.state == StateResolving {
		s.state = StateCancelled
	}
	s.mu.Unlock()
}

// LoadPage cuts one page from the completed result list and resolves its
// records. Fetch problems degrade to a partial page, never an error to the
// caller beyond logging.
func (s *Session) LoadPage(page int) (services.Page, error) {
	if page < 1 {
		return services.Page{}, apperrors.NewValidationError("page", "must be >= 1")
	}

	s.mu.Lock()
	result, ok := s.result, s.hasResult
	s.mu.Unlock()
	if !ok {
		return services.Page{}, apperrors.ErrNoSnapshot
	}

	size := s.engine.cfg.PageSize
	start := (page - 1) * size
	if start > len(result.IDs) {
		start = len(result.IDs)
	}
	end := start + size
	if end > len(result.IDs) {
		end = len(result.IDs)
	}

	records, err := s.engine.fetcher.Fetch(result.IDs[start:end])
	if err != nil {
		log.Printf("Warning: record fetch failed for page %d: %v", page, err)
		records = nil
	}

	return services.Page{
		Records:  records,
		Page:     page,
		PageSize: size,
		Total:    result.Total,
		HasMore:  end < len(result.IDs),
	}, nil
}

// resolve runs the pipeline for one debounced request. It reads only the
// snapshot sources captured here; a publish during resolution does not
// affect it.
func (s *Session) resolve(gen uint64, req services.SearchRequest, sig string) {
	cancelled := func() bool { return s.generation.Load() != gen }
	if cancelled() {
		return
	}

	src, ok := s.engine.Sources()
	if !ok {
		s.publish(gen, services.SearchResult{
			QueryID:   uuid.New().String(),
			Signature: sig,
		})
		return
	}

	s.mu.Lock()
	if s.generation.Load() != gen {
		s.mu.Unlock()
		return
	}
	s.state = StateResolving
	s.mu.Unlock()

	started := time.Now()
	intent := s.engine.parser.Parse(req, vocabularyFunc(src))

	var excluded index.IDSet
	if len(req.ExcludedIDs) > 0 {
		excluded = index.NewIDSet(req.ExcludedIDs...)
	}

	ranked, done := s.engine.resolveIntent(src, intent, req.Mode, req.Toggles, excluded, cancelled)
	if !done {
		s.markCancelled(gen)
		return
	}

	ids := make([]uint32, len(ranked))
	for i, sc := range ranked {
		ids[i] = sc.Record.ID
	}

	s.publish(gen, services.SearchResult{
		QueryID:   uuid.New().String(),
		Signature: sig,
		IDs:       ids,
		Total:     len(ids),
		Context:   intent.Context(),
		Took:      time.Since(started).Milliseconds(),
	})
}

// publishDefaultListing completes an empty request with the alphabetical
// listing, independent of any previous result.
func (s *Session) publishDefaultListing(gen uint64, sig string) {
	result := services.SearchResult{
		QueryID:   uuid.New().String(),
		Signature: sig,
	}
	if src, ok := s.engine.Sources(); ok {
		ids := alphabeticalIDs(src.Snapshot)
		result.IDs = ids
		result.Total = len(ids)
	}
	s.publish(gen, result)
}

// publish installs a completed result unless the resolution was superseded.
func (s *Session) publish(gen uint64, result services.SearchResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation.Load() != gen {
		return
	}
	s.result = result
	s.hasResult = true
	s.lastSignature = result.Signature
	s.state = StateComplete
	s.debounce = nil
}

// markCancelled records cancellation only when no newer search has already
// moved the session on.
func (s *Session) markCancelled(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.generation.Load() == gen {
		s.state = StateCancelled
	}
}

// signatureOf canonicalizes a request into a comparable signature: the query
// is lower-cased and whitespace-collapsed, every filter parameter is
// included.
func signatureOf(req services.SearchRequest) string {
	canonical := req
	canonical.Query = tokenizer.Clean(req.Query)
	data, err := json.Marshal(canonical)
	if err != nil {
		// Marshalling a plain DTO cannot realistically fail; fall back to a
		// formatted dump rather than colliding signatures.
		return fmt.Sprintf("%+v", canonical)
	}
	return string(data)
}

// isEmptyRequest reports whether the request imposes nothing at all.
func isEmptyRequest(req services.SearchRequest) bool {
	return strings.TrimSpace(req.Query) == "" &&
		len(req.Goals) == 0 &&
		req.DietFilter == "" &&
		len(req.ExcludedDiets) == 0 &&
		len(req.ExcludedAllergens) == 0 &&
		!req.ExcludeAllAllergens &&
		req.ConsumerAgeMonths == 0 &&
		len(req.ExcludedIDs) == 0 &&
		req.PHSort == "" &&
		req.Toggles == (model.Toggles{}) &&
		req.Profile.ConsumerAgeMonths == 0 &&
		len(req.Profile.RequiredDiets) == 0 &&
		len(req.Profile.AvoidedAllergens) == 0
}
