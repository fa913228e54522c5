package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kamusis/kbot/internal/bot"
	"github.com/kamusis/kbot/internal/history"
	"github.com/kamusis/kbot/internal/knowledge"
	"github.com/kamusis/kbot/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, withHistory bool, opts ...Option) (*gin.Engine, *history.Store) {
	t.Helper()
	var store *history.Store
	botOpts := []bot.Option{}
	if withHistory {
		store = history.NewStore(filepath.Join(t.TempDir(), "history.json"))
		botOpts = append(botOpts, bot.WithHistory(store))
	}
	b, err := bot.New(knowledge.Fallback(time.Now()), botOpts...)
	require.NoError(t, err)
	return New(b, opts...).SetupRouter(), store
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	r, _ := newTestServer(t, false)
	w := do(r, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestPostMessage(t *testing.T) {
	r, _ := newTestServer(t, false)

	w := do(r, http.MethodPost, "/api/messages", `{"message":"What is the capital of France?"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp MessageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "The capital of France is Paris.", resp.Reply)
	assert.Equal(t, string(bot.KindKnowledge), resp.Kind)
	assert.Equal(t, 1.0, resp.Confidence)
	assert.Equal(t, "what is the capital of france?", resp.Question)
	assert.NotEmpty(t, resp.ID)
}

func TestPostMessage_Math(t *testing.T) {
	r, _ := newTestServer(t, false)
	w := do(r, http.MethodPost, "/api/messages", `{"message":"12 * 12"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp MessageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "🧮 The answer is: 144", resp.Reply)
	assert.Equal(t, string(bot.KindMath), resp.Kind)
}

func TestPostMessage_BadRequest(t *testing.T) {
	r, _ := newTestServer(t, false)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/api/messages", `{"message":"  "}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/api/messages", `not json`).Code)

	long := `{"message":"` + strings.Repeat("a", bot.MaxMessageRunes+1) + `"}`
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/api/messages", long).Code)

	huge := `{"message":"` + strings.Repeat("-", 20_000_000) + `1"}`
	assert.Equal(t, http.StatusRequestEntityTooLarge, do(r, http.MethodPost, "/api/messages", huge).Code)
}

func TestPostMessage_PathologicalMath(t *testing.T) {
	r, _ := newTestServer(t, false)

	signs := `{"message":"` + strings.Repeat("-", bot.MaxMessageRunes-2) + `1"}`
	w := do(r, http.MethodPost, "/api/messages", signs)
	require.Equal(t, http.StatusOK, w.Code)
	var resp MessageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "🧮 The answer is: 1", resp.Reply)

	nested := `{"message":"` + strings.Repeat("(", 500) + "1+1" + strings.Repeat(")", 500) + `"}`
	w = do(r, http.MethodPost, "/api/messages", nested)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, string(bot.KindMath), resp.Kind)
	assert.Contains(t, resp.Reply, "couldn't solve")
}

func TestHistoryRoutes(t *testing.T) {
	r, store := newTestServer(t, true)

	w := do(r, http.MethodPost, "/api/messages", `{"message":"hi"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var sent MessageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sent))

	w = do(r, http.MethodGet, "/api/history", "")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Conversation []history.Message `json:"conversation"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Conversation, 2)
	assert.Equal(t, "hi", body.Conversation[0].Message)
	assert.Equal(t, sent.ID, body.Conversation[1].ID)

	w = do(r, http.MethodGet, "/api/history/export", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "chatbot-conversation-")
	var doc history.Export
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &doc))
	assert.Len(t, doc.Conversation, 2)

	assert.Equal(t, http.StatusNoContent, do(r, http.MethodDelete, "/api/history", "").Code)
	msgs, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestHistoryDisabled(t *testing.T) {
	r, _ := newTestServer(t, false)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/history", "").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodDelete, "/api/history", "").Code)
}

func TestKnowledgeStats(t *testing.T) {
	r, _ := newTestServer(t, false)
	w := do(r, http.MethodGet, "/api/knowledge/stats", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Total      int             `json:"total"`
		Categories []CategoryStats `json:"categories"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 21, body.Total)
	require.Len(t, body.Categories, 4)
	assert.Equal(t, knowledge.CategoryComprehensive, body.Categories[0].Name)
}

func TestMetricsRoute(t *testing.T) {
	p := metrics.NewPrometheus()
	r, _ := newTestServer(t, false, WithMetricsHandler(p.Handler()))
	w := do(r, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)

	r, _ = newTestServer(t, false)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/metrics", "").Code)
}
