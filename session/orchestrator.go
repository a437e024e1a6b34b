package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/amirhf/imageSearch/services/search-web/models"
)

var errSearchAborted = errors.New("search aborted")

const (
	NotFoundMessage = "No products found for the search criteria."
	FailureMessage  = "Error processing the request. Please try again later."
)

// Search outcomes reported to an Observer.
const (
	OutcomeSuccess  = "success"
	OutcomeNotFound = "not_found"
	OutcomeFailure  = "failure"
	OutcomeStale    = "stale"
)

// Searcher submits a query to the search service.
type Searcher interface {
	Search(ctx context.Context, q models.Query) ([]models.SearchResult, error)
}

// Observer is notified when a search finishes.
type Observer interface {
	SearchFinished(outcome string, elapsed time.Duration)
}

// Orchestrator tracks the lifecycle of the latest search. Every search gets a
// sequence number; a response whose number is no longer the latest is dropped.
type Orchestrator struct {
	searcher  Searcher
	presenter *Presenter
	logger    *slog.Logger

	state   models.RequestState
	loading bool
	errMsg  string
	seq     uint64
}

func NewOrchestrator(searcher Searcher, presenter *Presenter, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		searcher:  searcher,
		presenter: presenter,
		logger:    logger,
	}
}

// Search runs one search for the query returned by input. mu guards the
// orchestrator and the input; it is held while the search begins and ends but
// not while the searcher runs. Loading is cleared on every path, including a
// panicking searcher, unless a newer search has started since. It returns the
// outcome label.
func (o *Orchestrator) Search(ctx context.Context, mu sync.Locker, input func() models.Query) (outcome string) {
	mu.Lock()
	q := input()
	seq := o.begin()
	mu.Unlock()

	var (
		results []models.SearchResult
		err     = errSearchAborted
	)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("search panicked: %v", r)
		}
		mu.Lock()
		outcome = o.finish(seq, results, err)
		mu.Unlock()
	}()

	results, err = o.searcher.Search(ctx, q)
	return outcome
}

// begin enters Loading and clears the previous outcome before the new one is
// known. It returns the ticket the response must present to finish.
func (o *Orchestrator) begin() uint64 {
	o.seq++
	o.state = models.StateLoading
	o.loading = true
	o.errMsg = ""
	o.presenter.Clear()
	return o.seq
}

// finish applies the outcome of search seq. It reports the outcome label.
func (o *Orchestrator) finish(seq uint64, results []models.SearchResult, err error) string {
	if seq != o.seq {
		o.logger.Debug("discarding stale search response", "seq", seq, "latest", o.seq)
		return OutcomeStale
	}
	o.loading = false

	switch {
	case err == nil:
		o.presenter.Replace(results)
		o.state = models.StateSucceeded
		return OutcomeSuccess
	case errors.Is(err, models.ErrNotFound):
		o.logger.Info("search returned no products", "error", err)
		o.errMsg = NotFoundMessage
		o.state = models.StateFailed
		return OutcomeNotFound
	default:
		o.logger.Error("search request failed", "error", err)
		o.errMsg = FailureMessage
		o.state = models.StateFailed
		return OutcomeFailure
	}
}

// Reset returns to Idle and invalidates any search in flight.
func (o *Orchestrator) Reset() {
	o.seq++
	o.state = models.StateIdle
	o.loading = false
	o.errMsg = ""
	o.presenter.Clear()
}

func (o *Orchestrator) State() models.RequestState { return o.state }
func (o *Orchestrator) Loading() bool              { return o.loading }
func (o *Orchestrator) ErrorMessage() string       { return o.errMsg }
