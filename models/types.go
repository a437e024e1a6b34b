package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ErrNotFound is matched (via errors.Is) by search errors meaning the service
// found no products for the query.
var ErrNotFound = errors.New("no products found")

// Image is a user-selected image file. Filename and ContentType are sent
// unchanged to the search service.
type Image struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Query is the user's current search input. Both fields are optional.
type Query struct {
	Text  string
	Image *Image
}

// ResultID identifies a search result. The service may encode it as a JSON
// number or string; both decode to the same key.
type ResultID string

func (id *ResultID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ResultID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("result id: %w", err)
	}
	*id = ResultID(n.String())
	return nil
}

// SearchResult is one product match returned by the search service.
type SearchResult struct {
	ID           ResultID `json:"id"`
	ImageURL     string   `json:"image_url,omitempty"`
	ProductTitle string   `json:"product_title"`
}

// RequestState is the lifecycle state of the most recent search.
type RequestState int

const (
	StateIdle RequestState = iota
	StateLoading
	StateSucceeded
	StateFailed
)

func (s RequestState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

func (s RequestState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *RequestState) UnmarshalText(text []byte) error {
	for _, st := range []RequestState{StateIdle, StateLoading, StateSucceeded, StateFailed} {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown request state %q", text)
}

// ImageState is the load state of a single result thumbnail.
type ImageState int

const (
	ImageLoading ImageState = iota
	ImageLoaded
	ImageErrored
)

func (s ImageState) String() string {
	switch s {
	case ImageLoading:
		return "loading"
	case ImageLoaded:
		return "loaded"
	case ImageErrored:
		return "errored"
	default:
		return "unknown"
	}
}

func (s ImageState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *ImageState) UnmarshalText(text []byte) error {
	for _, st := range []ImageState{ImageLoading, ImageLoaded, ImageErrored} {
		if st.String() == string(text) {
			*s = st
			return nil
		}
	}
	return fmt.Errorf("unknown image state %q", text)
}

// Product is a catalog row as returned by the product search API.
type Product struct {
	ID           string `json:"id"`
	ProductID    int64  `json:"product_id"`
	Gender       string `json:"gender"`
	Category     string `json:"category"`
	SubCategory  string `json:"sub_category"`
	ProductType  string `json:"product_type"`
	Colour       string `json:"colour"`
	Usage        string `json:"usage"`
	ProductTitle string `json:"product_title"`
	Image        string `json:"image"`
	ImageURL     string `json:"image_url"`
}

// Match is a similarity hit from the multimodal service. Lower scores are
// closer matches.
type Match struct {
	ID    int64   `json:"id"`
	Score float64 `json:"score"`
}

// ProductIDString renders a catalog id the way results are keyed.
func ProductIDString(id int64) string {
	return strconv.FormatInt(id, 10)
}
