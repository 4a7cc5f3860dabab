package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pemapp/internal/catalog"
	"pemapp/internal/gemini"
	"pemapp/internal/history"
	"pemapp/internal/models"
)

// pngBytes is a tiny payload that sniffs as image/png.
var pngBytes = []byte("\x89PNG\r\n\x1a\n0000000000")

type stubAnalyzer struct {
	text  string
	err   error
	calls int
}

func (s *stubAnalyzer) AnalyzeImage(ctx context.Context, imageBase64, mimeType string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

const validModelOutput = `{
	"title": "CRM 列表页分析",
	"metrics": [
		{"id": 1, "score": 8, "comment": "a"},
		{"id": 2, "score": 6, "comment": "b"},
		{"id": 3, "score": 9, "comment": "c"},
		{"id": 4, "score": 7, "comment": "d"},
		{"id": 5, "score": 5, "comment": "e"},
		{"id": 6, "score": 8, "comment": "f"}
	],
	"issues": [
		{"title": "t", "description": "d", "severity": 3, "frequency": 3, "fixCost": 1.5, "location": "nav"}
	],
	"summary": "s",
	"recommendations": ["r1"]
}`

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New([]catalog.MetricDefinition{
		{ID: 1, Dimension: models.DimensionOperability, Question: "q1"},
		{ID: 2, Dimension: models.DimensionOperability, Question: "q2"},
		{ID: 3, Dimension: models.DimensionLearnability, Question: "q3"},
		{ID: 4, Dimension: models.DimensionLearnability, Question: "q4"},
		{ID: 5, Dimension: models.DimensionClarity, Question: "q5"},
		{ID: 6, Dimension: models.DimensionClarity, Question: "q6"},
	})
	require.NoError(t, err)
	return cat
}

func identityMiddleware(identity models.Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !identity.IsGuest() {
			c.Set(IdentityContextKey, identity)
		}
		c.Next()
	}
}

func newAnalyzeRouter(t *testing.T, ai Analyzer, store history.Store, identity models.Identity) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(identityMiddleware(identity))
	h := NewAnalyzeHandler(zap.NewNop(), ai, testCatalog(t), store)
	r.POST("/api/analyze", h.Analyze)
	return r
}

func multipartImage(t *testing.T, fieldContentType string, content []byte, sourceURL string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="image"; filename="screenshot.png"`)
	header.Set("Content-Type", fieldContentType)
	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)

	if sourceURL != "" {
		require.NoError(t, w.WriteField("sourceUrl", sourceURL))
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func postAnalyze(t *testing.T, r *gin.Engine, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAnalyzeSuccess(t *testing.T) {
	ai := &stubAnalyzer{text: validModelOutput}
	store := history.NewMemoryStore()
	r := newAnalyzeRouter(t, ai, store, models.Identity{})

	body, contentType := multipartImage(t, "image/png", pngBytes, "https://figma.com/file/abc")
	rec := postAnalyze(t, r, body, contentType)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var item models.HistoryItem
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &item))
	assert.InDelta(t, 7.2, item.Result.OverallScore, 1e-9)
	assert.Equal(t, "Good", item.Result.RatingLevel)
	assert.Equal(t, "https://figma.com/file/abc", item.Result.SourceURL)
	assert.Contains(t, item.PreviewURL, "data:image/png;base64,")

	// The result landed in the guest history.
	items, err := store.List(context.Background(), history.Namespace(models.Identity{}))
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, item.ID, items[0].ID)
}

func TestAnalyzeWritesToIdentityNamespace(t *testing.T) {
	ai := &stubAnalyzer{text: validModelOutput}
	store := history.NewMemoryStore()
	identity := models.Identity{Email: "alice@example.com", Name: "Alice"}
	r := newAnalyzeRouter(t, ai, store, identity)

	body, contentType := multipartImage(t, "image/png", pngBytes, "")
	rec := postAnalyze(t, r, body, contentType)
	require.Equal(t, http.StatusOK, rec.Code)

	items, err := store.List(context.Background(), history.Namespace(identity))
	require.NoError(t, err)
	assert.Len(t, items, 1)

	guest, err := store.List(context.Background(), history.Namespace(models.Identity{}))
	require.NoError(t, err)
	assert.Empty(t, guest)
}

func TestAnalyzeRejectsNonImage(t *testing.T) {
	ai := &stubAnalyzer{text: validModelOutput}
	store := history.NewMemoryStore()
	r := newAnalyzeRouter(t, ai, store, models.Identity{})

	body, contentType := multipartImage(t, "text/plain", []byte("not an image at all"), "")
	rec := postAnalyze(t, r, body, contentType)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, ai.calls, "the model must not be called for a rejected upload")

	items, err := store.List(context.Background(), history.Namespace(models.Identity{}))
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestAnalyzeMissingFile(t *testing.T) {
	r := newAnalyzeRouter(t, &stubAnalyzer{}, history.NewMemoryStore(), models.Identity{})

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.Close())
	rec := postAnalyze(t, r, &buf, w.FormDataContentType())
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeInvocationFailures(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"missing key", gemini.ErrMissingKey, http.StatusInternalServerError, "API Key"},
		{"region blocked", gemini.ErrRegionBlocked, http.StatusBadGateway, "当前地区不支持"},
		{"access denied", gemini.ErrAccessDenied, http.StatusBadGateway, "访问被拒绝"},
		{"unavailable", gemini.ErrUnavailable, http.StatusBadGateway, "服务暂时不可用"},
		{"anything else", gemini.ErrEmptyResponse, http.StatusBadGateway, "分析失败"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := history.NewMemoryStore()
			r := newAnalyzeRouter(t, &stubAnalyzer{err: tt.err}, store, models.Identity{})

			body, contentType := multipartImage(t, "image/png", pngBytes, "")
			rec := postAnalyze(t, r, body, contentType)
			assert.Equal(t, tt.wantStatus, rec.Code)

			var resp map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Contains(t, resp["error"], tt.wantMsg)

			items, err := store.List(context.Background(), history.Namespace(models.Identity{}))
			require.NoError(t, err)
			assert.Empty(t, items, "no partial result may be persisted")
		})
	}
}

func TestAnalyzeMalformedModelOutput(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"not json", "抱歉，我无法完成分析。"},
		{"missing issues field", `{"metrics": [], "summary": "s", "recommendations": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := history.NewMemoryStore()
			r := newAnalyzeRouter(t, &stubAnalyzer{text: tt.text}, store, models.Identity{})

			body, contentType := multipartImage(t, "image/png", pngBytes, "")
			rec := postAnalyze(t, r, body, contentType)
			assert.Equal(t, http.StatusBadGateway, rec.Code)

			var resp map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, genericFailure, resp["error"])

			items, err := store.List(context.Background(), history.Namespace(models.Identity{}))
			require.NoError(t, err)
			assert.Empty(t, items, "history must stay unchanged on a malformed response")
		})
	}
}
