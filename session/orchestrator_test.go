package session

import (
	"context"
	"sync"
	"testing"

	"github.com/amirhf/imageSearch/services/search-web/models"
	"github.com/amirhf/imageSearch/services/search-web/searchclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrchestrator_Search(t *testing.T) {
	query := func() models.Query { return models.Query{Text: "boots"} }

	tests := []struct {
		name     string
		searcher *fakeSearcher
		outcome  string
		state    models.RequestState
		message  string
		results  int
	}{
		{
			name:     "success",
			searcher: &fakeSearcher{results: []models.SearchResult{{ID: "1", ProductTitle: "Boot"}}},
			outcome:  OutcomeSuccess,
			state:    models.StateSucceeded,
			results:  1,
		},
		{
			name:     "not found",
			searcher: &fakeSearcher{err: &searchclient.NotFoundError{}},
			outcome:  OutcomeNotFound,
			state:    models.StateFailed,
			message:  NotFoundMessage,
		},
		{
			name:     "panic",
			searcher: &fakeSearcher{panicV: "boom"},
			outcome:  OutcomeFailure,
			state:    models.StateFailed,
			message:  FailureMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			presenter := NewPresenter()
			o := NewOrchestrator(tt.searcher, presenter, nil)
			var mu sync.Mutex

			outcome := o.Search(context.Background(), &mu, query)

			assert.Equal(t, tt.outcome, outcome)
			assert.Equal(t, tt.state, o.State())
			assert.False(t, o.Loading())
			assert.Equal(t, tt.message, o.ErrorMessage())
			assert.Equal(t, tt.results, presenter.Len())
			require.Len(t, tt.searcher.calls(), 1)
			assert.Equal(t, "boots", tt.searcher.calls()[0].Text)
		})
	}
}

func TestOrchestrator_ResetMakesResponseStale(t *testing.T) {
	var mu sync.Mutex
	searcher := &fakeSearcher{results: []models.SearchResult{{ID: "1", ProductTitle: "Boot"}}}
	presenter := NewPresenter()
	o := NewOrchestrator(searcher, presenter, nil)
	searcher.during = func(models.Query) {
		mu.Lock()
		o.Reset()
		mu.Unlock()
	}

	outcome := o.Search(context.Background(), &mu, func() models.Query { return models.Query{} })

	assert.Equal(t, OutcomeStale, outcome)
	assert.Equal(t, models.StateIdle, o.State())
	assert.Zero(t, presenter.Len())
}
