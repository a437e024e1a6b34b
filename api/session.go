package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/amirhf/imageSearch/services/search-web/models"
	"github.com/amirhf/imageSearch/services/search-web/session"
	"github.com/go-chi/chi/v5"
)

const sessionCookie = "search_session"

// SessionHandler exposes a browser's search session over HTTP. Every
// mutating call answers with the resulting session.View.
type SessionHandler struct {
	sessions *session.Manager
	previews *session.PreviewStore
	logger   *slog.Logger
}

func NewSessionHandler(sessions *session.Manager, previews *session.PreviewStore, logger *slog.Logger) *SessionHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionHandler{sessions: sessions, previews: previews, logger: logger}
}

// Routes mounts the session API on r.
func (h *SessionHandler) Routes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/state", h.State)
		r.Put("/query/text", h.SetText)
		r.Post("/query/image", h.SelectImage)
		r.Delete("/query/image", h.RemoveImage)
		r.Post("/query/key", h.Key)
		r.Post("/search", h.Search)
		r.Post("/clear", h.Clear)
		r.Post("/results/{id}/loaded", h.ImageLoaded)
		r.Post("/results/{id}/error", h.ImageError)
	})
	r.Get(session.DefaultPreviewPrefix+"{token}", h.Preview)
}

// session resolves the caller's session, issuing a cookie for new ones.
func (h *SessionHandler) session(w http.ResponseWriter, r *http.Request) *session.Session {
	var id string
	if c, err := r.Cookie(sessionCookie); err == nil {
		id = c.Value
	}
	newID, s := h.sessions.Get(id)
	if newID != id {
		http.SetCookie(w, &http.Cookie{
			Name:     sessionCookie,
			Value:    newID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return s
}

func (h *SessionHandler) State(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.session(w, r).View())
}

func (h *SessionHandler) SetText(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	s := h.session(w, r)
	s.SetText(body.Text)
	writeJSON(w, http.StatusOK, s.View())
}

// SelectImage stores the uploaded "image" part. A request without one is
// treated as a cancelled picker.
func (h *SessionHandler) SelectImage(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			writeJSON(w, http.StatusOK, s.View())
			return
		}
		http.Error(w, "Invalid multipart body", http.StatusBadRequest)
		return
	}
	img, err := readImage(r)
	if err != nil {
		http.Error(w, "Invalid image upload", http.StatusBadRequest)
		return
	}
	if img != nil && !strings.HasPrefix(img.ContentType, "image/") {
		http.Error(w, "Only image files are accepted", http.StatusUnsupportedMediaType)
		return
	}

	s.SelectImage(img)
	writeJSON(w, http.StatusOK, s.View())
}

func (h *SessionHandler) RemoveImage(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	s.RemoveImage()
	writeJSON(w, http.StatusOK, s.View())
}

func (h *SessionHandler) Key(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Key string `json:"key"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	s := h.session(w, r)
	s.HandleKey(context.WithoutCancel(r.Context()), body.Key)
	writeJSON(w, http.StatusOK, s.View())
}

// Search runs a search to completion even if the caller disconnects.
func (h *SessionHandler) Search(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	s.Search(context.WithoutCancel(r.Context()))
	writeJSON(w, http.StatusOK, s.View())
}

func (h *SessionHandler) Clear(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	s.ClearAll()
	writeJSON(w, http.StatusOK, s.View())
}

func (h *SessionHandler) ImageLoaded(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	s.OnImageLoad(models.ResultID(chi.URLParam(r, "id")))
	writeJSON(w, http.StatusOK, s.View())
}

func (h *SessionHandler) ImageError(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s.OnImageError(models.ResultID(chi.URLParam(r, "id"))) {
		h.logger.Debug("thumbnail failed to load", "id", chi.URLParam(r, "id"))
	}
	writeJSON(w, http.StatusOK, s.View())
}

// Preview serves the bytes behind a preview URI to the session that owns it,
// until the preview is released.
func (h *SessionHandler) Preview(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	c, err := r.Cookie(sessionCookie)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	s, ok := h.sessions.Lookup(c.Value)
	if !ok || !s.OwnsPreview(h.previews.URI(token)) {
		http.NotFound(w, r)
		return
	}
	img, ok := h.previews.Lookup(token)
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", img.ContentType)
	w.Header().Set("Cache-Control", "private, no-store")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Security-Policy", "sandbox; default-src 'none'")
	w.Write(img.Data)
}
