package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResultID_AcceptsNumbersAndStrings(t *testing.T) {
	var results []SearchResult
	err := json.Unmarshal([]byte(`[
		{"id": 1, "image_url": "http://x/1.jpg", "product_title": "Red Sneaker"},
		{"id": "sku-9", "product_title": "Hat"},
		{"id": 12345678901, "image_url": null, "product_title": "Belt"}
	]`), &results)
	require.NoError(t, err)
	require.Len(t, results, 3)
	require.Equal(t, ResultID("1"), results[0].ID)
	require.Equal(t, ResultID("sku-9"), results[1].ID)
	require.Equal(t, ResultID("12345678901"), results[2].ID)
	require.Empty(t, results[2].ImageURL)
}

func TestResultID_RejectsObjects(t *testing.T) {
	var r SearchResult
	require.Error(t, json.Unmarshal([]byte(`{"id": {"nested": true}}`), &r))
}

func TestStatesRoundTripAsText(t *testing.T) {
	raw, err := json.Marshal(struct {
		State RequestState `json:"state"`
		Image ImageState   `json:"image"`
	}{StateFailed, ImageErrored})
	require.NoError(t, err)
	require.JSONEq(t, `{"state":"failed","image":"errored"}`, string(raw))

	var back struct {
		State RequestState `json:"state"`
		Image ImageState   `json:"image"`
	}
	require.NoError(t, json.Unmarshal(raw, &back))
	require.Equal(t, StateFailed, back.State)
	require.Equal(t, ImageErrored, back.Image)

	var bad RequestState
	require.Error(t, bad.UnmarshalText([]byte("sleeping")))
}
