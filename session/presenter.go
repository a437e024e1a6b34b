package session

import "github.com/amirhf/imageSearch/services/search-web/models"

// ItemView is one result as the rendering layer should draw it. ImageURL is
// empty when there is no thumbnail to load.
type ItemView struct {
	ID       models.ResultID   `json:"id"`
	Title    string            `json:"product_title"`
	ImageURL string            `json:"image_url,omitempty"`
	Src      string            `json:"src"`
	State    models.ImageState `json:"image_state"`
	Overlay  bool              `json:"loading_overlay"`
}

// Presenter keeps the current result set and per-thumbnail load state.
type Presenter struct {
	results []models.SearchResult
	states  map[models.ResultID]models.ImageState
}

func NewPresenter() *Presenter {
	return &Presenter{states: map[models.ResultID]models.ImageState{}}
}

// Replace swaps in a new result set and rebuilds the state map from scratch.
// Results without an image URL go straight to the placeholder and never load.
func (p *Presenter) Replace(results []models.SearchResult) {
	states := make(map[models.ResultID]models.ImageState, len(results))
	for _, r := range results {
		if r.ImageURL == "" {
			states[r.ID] = models.ImageLoaded
			continue
		}
		states[r.ID] = models.ImageLoading
	}
	p.results = append([]models.SearchResult(nil), results...)
	p.states = states
}

func (p *Presenter) Clear() {
	p.results = nil
	p.states = map[models.ResultID]models.ImageState{}
}

// OnImageLoad marks a thumbnail as loaded. Only a loading entry moves.
func (p *Presenter) OnImageLoad(id models.ResultID) bool {
	return p.transition(id, models.ImageLoaded)
}

// OnImageError marks a thumbnail as failed so it renders the placeholder.
func (p *Presenter) OnImageError(id models.ResultID) bool {
	return p.transition(id, models.ImageErrored)
}

func (p *Presenter) transition(id models.ResultID, to models.ImageState) bool {
	st, ok := p.states[id]
	if !ok || st != models.ImageLoading {
		return false
	}
	p.states[id] = to
	return true
}

func (p *Presenter) ImageState(id models.ResultID) (models.ImageState, bool) {
	st, ok := p.states[id]
	return st, ok
}

func (p *Presenter) Len() int { return len(p.results) }

// Items renders the result set in server order.
func (p *Presenter) Items() []ItemView {
	items := make([]ItemView, 0, len(p.results))
	for _, r := range p.results {
		st := p.states[r.ID]
		item := ItemView{
			ID:       r.ID,
			Title:    r.ProductTitle,
			ImageURL: r.ImageURL,
			Src:      r.ImageURL,
			State:    st,
			Overlay:  st == models.ImageLoading,
		}
		if r.ImageURL == "" || st == models.ImageErrored {
			item.Src = Placeholder()
		}
		items = append(items, item)
	}
	return items
}
