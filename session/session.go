package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/amirhf/imageSearch/services/search-web/models"
)

// View is a snapshot of everything the rendering layer displays.
type View struct {
	Text         string              `json:"text"`
	Preview      string              `json:"preview,omitempty"`
	HasImage     bool                `json:"has_image"`
	State        models.RequestState `json:"state"`
	Loading      bool                `json:"loading"`
	ErrorMessage string              `json:"error_message"`
	Results      []ItemView          `json:"results"`
}

// Option configures a Session.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	observer Observer
}

// WithLogger sets the logger used for search diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithObserver reports finished searches to obs.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// Session is one user's search state.
type Session struct {
	mu        sync.Mutex
	input     *InputCollector
	presenter *Presenter
	orch      *Orchestrator
	observer  Observer
	lastSeen  time.Time
}

func New(searcher Searcher, previews *PreviewStore, opts ...Option) *Session {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	presenter := NewPresenter()
	return &Session{
		input:     NewInputCollector(previews),
		presenter: presenter,
		orch:      NewOrchestrator(searcher, presenter, o.logger),
		observer:  o.observer,
		lastSeen:  time.Now(),
	}
}

func (s *Session) SetText(value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.input.SetText(value)
}

func (s *Session) SelectImage(img *models.Image) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.input.SelectImage(img)
}

func (s *Session) RemoveImage() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.input.RemoveImage()
}

// ClearAll resets the input, the results and the error message.
func (s *Session) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	s.input.Reset()
	s.orch.Reset()
}

// HandleKey runs a search when key is ConfirmKey and reports whether it did.
func (s *Session) HandleKey(ctx context.Context, key string) bool {
	if key != ConfirmKey {
		return false
	}
	s.Search(ctx)
	return true
}

// Search submits the current input and blocks until the outcome is applied.
// Failures are turned into the session's error message.
func (s *Session) Search(ctx context.Context) {
	start := time.Now()
	outcome := s.orch.Search(ctx, &s.mu, func() models.Query {
		s.touch()
		return s.input.Query()
	})

	s.mu.Lock()
	s.touch()
	s.mu.Unlock()
	if s.observer != nil {
		s.observer.SearchFinished(outcome, time.Since(start))
	}
}

func (s *Session) OnImageLoad(id models.ResultID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.presenter.OnImageLoad(id)
}

func (s *Session) OnImageError(id models.ResultID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.presenter.OnImageError(id)
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return View{
		Text:         s.input.Text(),
		Preview:      s.input.Preview(),
		HasImage:     s.input.Image() != nil,
		State:        s.orch.State(),
		Loading:      s.orch.Loading(),
		ErrorMessage: s.orch.ErrorMessage(),
		Results:      s.presenter.Items(),
	}
}

// OwnsPreview reports whether uri is the preview of this session's image.
func (s *Session) OwnsPreview(uri string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return uri != "" && s.input.Preview() == uri
}

// Close releases the session's preview, if any.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.input.RemoveImage()
}

// expired reports whether the session has been idle since before cutoff. A
// session with a search in flight is never idle.
func (s *Session) expired(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.orch.Loading() && s.lastSeen.Before(cutoff)
}

func (s *Session) touch() {
	s.lastSeen = time.Now()
}
