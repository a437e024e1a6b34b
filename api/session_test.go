package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/amirhf/imageSearch/services/search-web/models"
	"github.com/amirhf/imageSearch/services/search-web/searchclient"
	"github.com/amirhf/imageSearch/services/search-web/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type browser struct {
	t      *testing.T
	base   string
	client *http.Client
}

func newBrowser(t *testing.T, remote http.HandlerFunc) (*browser, *session.PreviewStore) {
	t.Helper()
	upstream := httptest.NewServer(remote)
	t.Cleanup(upstream.Close)

	searcher, err := searchclient.NewClient(upstream.URL)
	require.NoError(t, err)

	previews := session.NewPreviewStore("")
	manager := session.NewManager(func() *session.Session {
		return session.New(searcher, previews)
	})
	server := httptest.NewServer(NewSessionRouter(NewSessionHandler(manager, previews, nil), []string{"*"}, nil))
	t.Cleanup(server.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{t: t, base: server.URL, client: &http.Client{Jar: jar}}, previews
}

func (b *browser) do(method, path, contentType string, body io.Reader) (int, session.View) {
	b.t.Helper()
	req, err := http.NewRequest(method, b.base+path, body)
	require.NoError(b.t, err)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := b.client.Do(req)
	require.NoError(b.t, err)
	defer resp.Body.Close()

	var v session.View
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(b.t, json.NewDecoder(resp.Body).Decode(&v))
	}
	return resp.StatusCode, v
}

func (b *browser) json(method, path string, body any) session.View {
	b.t.Helper()
	raw, _ := json.Marshal(body)
	status, v := b.do(method, path, "application/json", bytes.NewReader(raw))
	require.Equal(b.t, http.StatusOK, status)
	return v
}

func (b *browser) upload(filename string, data []byte) (int, session.View) {
	b.t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("image", filename)
	require.NoError(b.t, err)
	part.Write(data)
	require.NoError(b.t, w.Close())
	return b.do(http.MethodPost, "/api/query/image", w.FormDataContentType(), &buf)
}

// uploadAs sends data as the "image" part with an explicit declared type.
func (b *browser) uploadAs(filename, contentType string, data []byte) (int, session.View) {
	b.t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filename))
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	require.NoError(b.t, err)
	part.Write(data)
	require.NoError(b.t, w.Close())
	return b.do(http.MethodPost, "/api/query/image", w.FormDataContentType(), &buf)
}

func TestSessionAPI_TextSearchFlow(t *testing.T) {
	b, _ := newBrowser(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "red shoes", r.FormValue("text"))
		json.NewEncoder(w).Encode([]map[string]any{
			{"id": 1, "image_url": "http://x/1.jpg", "product_title": "Red Sneaker"},
			{"id": 2, "product_title": "Plain Sock"},
		})
	})

	v := b.json(http.MethodPut, "/api/query/text", map[string]string{"text": "red shoes"})
	assert.Equal(t, "red shoes", v.Text)

	v = b.json(http.MethodPost, "/api/query/key", map[string]string{"key": "a"})
	assert.Equal(t, models.StateIdle, v.State)

	v = b.json(http.MethodPost, "/api/query/key", map[string]string{"key": "Enter"})
	require.Len(t, v.Results, 2)
	assert.False(t, v.Loading)
	assert.Empty(t, v.ErrorMessage)
	assert.Equal(t, models.ImageLoading, v.Results[0].State)
	assert.Equal(t, session.Placeholder(), v.Results[1].Src)

	v = b.json(http.MethodPost, "/api/results/1/error", nil)
	assert.Equal(t, models.ImageErrored, v.Results[0].State)
	assert.Equal(t, session.Placeholder(), v.Results[0].Src)

	_, v = b.do(http.MethodGet, "/api/state", "", nil)
	assert.Equal(t, models.StateSucceeded, v.State)
}

func TestSessionAPI_NotFound(t *testing.T) {
	b, _ := newBrowser(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	v := b.json(http.MethodPost, "/api/search", nil)
	assert.Equal(t, session.NotFoundMessage, v.ErrorMessage)
	assert.Empty(t, v.Results)
	assert.False(t, v.Loading)
}

func TestSessionAPI_ImageLifecycle(t *testing.T) {
	b, previews := newBrowser(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	status, v := b.upload("shoe.png", pngBytes)
	require.Equal(t, http.StatusOK, status)
	require.True(t, v.HasImage)
	require.True(t, strings.HasPrefix(v.Preview, session.DefaultPreviewPrefix))

	resp, err := b.client.Get(b.base + v.Preview)
	require.NoError(t, err)
	data, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Equal(t, pngBytes, data)

	v = b.json(http.MethodPost, "/api/search", nil)
	assert.Equal(t, session.FailureMessage, v.ErrorMessage)

	preview := v.Preview
	v = b.json(http.MethodDelete, "/api/query/image", nil)
	assert.False(t, v.HasImage)
	assert.Empty(t, v.Preview)
	assert.Zero(t, previews.Len())

	resp, err = b.client.Get(b.base + preview)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSessionAPI_RejectsNonImageUpload(t *testing.T) {
	b, _ := newBrowser(t, func(w http.ResponseWriter, r *http.Request) {})

	status, _ := b.upload("notes.txt", []byte("just some text"))
	assert.Equal(t, http.StatusUnsupportedMediaType, status)
}

func TestSessionAPI_CancelledPickerIsNoop(t *testing.T) {
	b, _ := newBrowser(t, func(w http.ResponseWriter, r *http.Request) {})

	_, v := b.upload("shoe.png", pngBytes)
	preview := v.Preview

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.Close())
	status, v := b.do(http.MethodPost, "/api/query/image", w.FormDataContentType(), &buf)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, preview, v.Preview)
}

func TestSessionAPI_ClearAll(t *testing.T) {
	b, previews := newBrowser(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]any{{"id": "a", "product_title": "A"}})
	})

	b.json(http.MethodPut, "/api/query/text", map[string]string{"text": "hat"})
	b.upload("hat.png", pngBytes)
	v := b.json(http.MethodPost, "/api/search", nil)
	require.Len(t, v.Results, 1)

	v = b.json(http.MethodPost, "/api/clear", nil)
	assert.Empty(t, v.Text)
	assert.False(t, v.HasImage)
	assert.Empty(t, v.Preview)
	assert.Empty(t, v.Results)
	assert.Empty(t, v.ErrorMessage)
	assert.Equal(t, models.StateIdle, v.State)
	assert.Zero(t, previews.Len())
}

func TestSessionAPI_SessionsAreIsolated(t *testing.T) {
	b, _ := newBrowser(t, func(w http.ResponseWriter, r *http.Request) {})
	b.json(http.MethodPut, "/api/query/text", map[string]string{"text": "mine"})

	resp, err := http.Get(b.base + "/api/state")
	require.NoError(t, err)
	defer resp.Body.Close()
	var v session.View
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	assert.Empty(t, v.Text)
}

func TestSessionAPI_BadJSON(t *testing.T) {
	b, _ := newBrowser(t, func(w http.ResponseWriter, r *http.Request) {})
	status, _ := b.do(http.MethodPut, "/api/query/text", "application/json", strings.NewReader("{"))
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestSessionAPI_PreviewIsPrivateToSession(t *testing.T) {
	b, _ := newBrowser(t, func(w http.ResponseWriter, r *http.Request) {})

	_, v := b.upload("shoe.png", pngBytes)
	require.NotEmpty(t, v.Preview)

	resp, err := b.client.Get(b.base + v.Preview)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.Contains(t, resp.Header.Get("Content-Security-Policy"), "sandbox")

	resp, err = http.Get(b.base + v.Preview)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "no cookie")

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	other := &browser{t: t, base: b.base, client: &http.Client{Jar: jar}}
	status, _ := other.do(http.MethodGet, "/api/state", "", nil)
	require.Equal(t, http.StatusOK, status)

	resp, err = other.client.Get(b.base + v.Preview)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "another session")
}

func TestSessionAPI_RejectsScriptableSVG(t *testing.T) {
	b, previews := newBrowser(t, func(w http.ResponseWriter, r *http.Request) {})
	svg := []byte(`<svg xmlns="http://www.w3.org/2000/svg"><script>fetch('/api/state')</script></svg>`)

	status, _ := b.uploadAs("x.svg", "image/svg+xml", svg)
	assert.Equal(t, http.StatusUnsupportedMediaType, status)

	_, v := b.do(http.MethodGet, "/api/state", "", nil)
	assert.False(t, v.HasImage)
	assert.Empty(t, v.Preview)
	assert.Zero(t, previews.Len())
}

func TestSessionAPI_DeclaredTypeDoesNotOverrideSniffedImage(t *testing.T) {
	b, _ := newBrowser(t, func(w http.ResponseWriter, r *http.Request) {})

	_, v := b.uploadAs("shoe.svg", "image/svg+xml", pngBytes)
	require.NotEmpty(t, v.Preview)

	resp, err := b.client.Get(b.base + v.Preview)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
}
