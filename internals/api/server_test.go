package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edudocs/coursebot/internals/rag"
	"github.com/edudocs/coursebot/internals/tools"
)

type fakeAssistant struct {
	answer  string
	sources []tools.Source
	stats   rag.CourseStats
	err     error

	gotQuery   string
	gotSession string
}

func (f *fakeAssistant) Query(_ context.Context, query, sessionID string) (string, []tools.Source, error) {
	f.gotQuery = query
	f.gotSession = sessionID
	return f.answer, f.sources, f.err
}

func (f *fakeAssistant) NewSessionID() string { return "generated-session" }

func (f *fakeAssistant) Stats(_ context.Context) (rag.CourseStats, error) {
	return f.stats, f.err
}

func postQuery(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/query", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func newTestServer(assistant Assistant) http.Handler {
	return NewServer(assistant, slog.New(slog.DiscardHandler)).Handler()
}

func TestHandleQuery_Success(t *testing.T) {
	assistant := &fakeAssistant{
		answer:  "MCP is a protocol.",
		sources: []tools.Source{{Label: "MCP Course - Lesson 1", Link: "http://example.com/1"}},
	}
	rec := postQuery(t, newTestServer(assistant), `{"query":"What is MCP?","session_id":"s-1"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp struct {
		Answer    string         `json:"answer"`
		Sources   []tools.Source `json:"sources"`
		SessionID string         `json:"session_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "MCP is a protocol.", resp.Answer)
	require.Len(t, resp.Sources, 1)
	assert.Equal(t, "MCP Course - Lesson 1", resp.Sources[0].Label)
	assert.Equal(t, "s-1", resp.SessionID)

	assert.Equal(t, "What is MCP?", assistant.gotQuery)
	assert.Equal(t, "s-1", assistant.gotSession)
}

func TestHandleQuery_GeneratesSessionID(t *testing.T) {
	assistant := &fakeAssistant{answer: "hi"}
	rec := postQuery(t, newTestServer(assistant), `{"query":"hello"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "generated-session", resp["session_id"])
	assert.Equal(t, "generated-session", assistant.gotSession)
}

func TestHandleQuery_NilSourcesEncodeAsEmptyArray(t *testing.T) {
	rec := postQuery(t, newTestServer(&fakeAssistant{answer: "hi"}), `{"query":"hello"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"sources":[]`)
}

func TestHandleQuery_EmptyQuery(t *testing.T) {
	rec := postQuery(t, newTestServer(&fakeAssistant{}), `{"session_id":"s-1"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleQuery_BadBody(t *testing.T) {
	rec := postQuery(t, newTestServer(&fakeAssistant{}), `{not json`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleQuery_AssistantError(t *testing.T) {
	rec := postQuery(t, newTestServer(&fakeAssistant{err: errors.New("model down")}), `{"query":"q"}`)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHandleCourses(t *testing.T) {
	assistant := &fakeAssistant{
		stats: rag.CourseStats{
			TotalCourses: 2,
			CourseTitles: []string{"Course A", "Course B"},
		},
	}
	req := httptest.NewRequest(http.MethodGet, "/api/courses", nil)
	rec := httptest.NewRecorder()
	newTestServer(assistant).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var stats rag.CourseStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.TotalCourses)
	assert.Equal(t, []string{"Course A", "Course B"}, stats.CourseTitles)
}
