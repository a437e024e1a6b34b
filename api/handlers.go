package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/amirhf/imageSearch/services/search-web/models"
)

const maxUploadBytes = 32 << 20

// ProductStore loads catalog rows by id.
type ProductStore interface {
	ProductsByIDs(ctx context.Context, ids []int64) ([]models.Product, error)
}

// Matcher ranks catalog products against a query.
type Matcher interface {
	Match(ctx context.Context, q models.Query) ([]models.Match, error)
}

// StatusRecorder counts product search responses.
type StatusRecorder interface {
	ProductSearchServed(status int)
}

// Handler serves the product search API.
type Handler struct {
	store    ProductStore
	matcher  Matcher
	maxScore float64
	logger   *slog.Logger
	recorder StatusRecorder
}

func NewHandler(store ProductStore, matcher Matcher, maxScore float64, logger *slog.Logger, recorder StatusRecorder) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:    store,
		matcher:  matcher,
		maxScore: maxScore,
		logger:   logger,
		recorder: recorder,
	}
}

// Search handles POST /api/v1/search with multipart text and/or image.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q, err := readQuery(w, r)
	if err != nil {
		h.respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if q.Text == "" && q.Image == nil {
		h.respond(w, http.StatusBadRequest, map[string]string{"error": "text or image is required"})
		return
	}

	matches, err := h.matcher.Match(r.Context(), q)
	if err != nil {
		h.logger.Error("multimodal query failed", "error", err)
		h.respond(w, http.StatusInternalServerError, map[string]string{
			"error":   "error querying the multimodal endpoint",
			"details": err.Error(),
		})
		return
	}

	var ids []int64
	for _, m := range matches {
		if m.Score <= h.maxScore {
			ids = append(ids, m.ID)
		}
	}
	if len(ids) == 0 {
		h.respond(w, http.StatusNotFound, map[string]string{
			"message": fmt.Sprintf("no products found with score <= %g", h.maxScore),
		})
		return
	}

	products, err := h.store.ProductsByIDs(r.Context(), ids)
	if err != nil {
		h.logger.Error("product lookup failed", "error", err, "ids", len(ids))
		h.respond(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	if products == nil {
		products = []models.Product{}
	}
	h.logger.Debug("product search served", "matches", len(matches), "kept", len(ids), "products", len(products))
	h.respond(w, http.StatusOK, products)
}

func (h *Handler) respond(w http.ResponseWriter, status int, body any) {
	if h.recorder != nil {
		h.recorder.ProductSearchServed(status)
	}
	writeJSON(w, status, body)
}

// readQuery extracts the optional text and image parts. A request that is
// not multipart yields an empty query.
func readQuery(w http.ResponseWriter, r *http.Request) (models.Query, error) {
	var q models.Query
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return q, nil
		}
		return q, fmt.Errorf("invalid multipart body: %w", err)
	}

	q.Text = r.FormValue("text")
	img, err := readImage(r)
	if err != nil {
		return q, err
	}
	q.Image = img
	return q, nil
}

// readImage returns the uploaded "image" part, or nil when there is none.
func readImage(r *http.Request) (*models.Image, error) {
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return &models.Image{
		Filename:    header.Filename,
		ContentType: imageContentType(header.Header.Get("Content-Type"), data),
		Data:        data,
	}, nil
}

// imageContentType trusts the sniffed type when it names an image, then a
// declared image type. Scriptable declared types (SVG) are never trusted.
func imageContentType(declared string, data []byte) string {
	sniffed := http.DetectContentType(data)
	if strings.HasPrefix(sniffed, "image/") {
		return sniffed
	}
	declared = strings.ToLower(strings.TrimSpace(declared))
	if strings.HasPrefix(declared, "image/") && !strings.HasPrefix(declared, "image/svg") {
		return declared
	}
	return sniffed
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
