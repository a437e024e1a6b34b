package session

import (
	"strings"
	"sync"

	"github.com/amirhf/imageSearch/services/search-web/models"
	"github.com/google/uuid"
)

// DefaultPreviewPrefix is the URI path previews are served under.
const DefaultPreviewPrefix = "/previews/"

// PreviewStore hands out short-lived URIs for selected images. Each URI stays
// resolvable until it is released.
type PreviewStore struct {
	mu     sync.RWMutex
	prefix string
	images map[string]*models.Image
}

func NewPreviewStore(prefix string) *PreviewStore {
	if prefix == "" {
		prefix = DefaultPreviewPrefix
	}
	return &PreviewStore{
		prefix: prefix,
		images: make(map[string]*models.Image),
	}
}

// Acquire registers img and returns its preview URI.
func (s *PreviewStore) Acquire(img *models.Image) string {
	token := uuid.New().String()

	s.mu.Lock()
	s.images[token] = img
	s.mu.Unlock()

	return s.prefix + token
}

// Release drops the image behind uri. It reports false when the URI is
// unknown or was already released.
func (s *PreviewStore) Release(uri string) bool {
	token, ok := strings.CutPrefix(uri, s.prefix)
	if !ok {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.images[token]; !ok {
		return false
	}
	delete(s.images, token)
	return true
}

// URI returns the preview URI for token.
func (s *PreviewStore) URI(token string) string {
	return s.prefix + token
}

// Lookup returns the image registered under token.
func (s *PreviewStore) Lookup(token string) (*models.Image, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	img, ok := s.images[token]
	return img, ok
}

// Len returns the number of unreleased previews.
func (s *PreviewStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.images)
}
