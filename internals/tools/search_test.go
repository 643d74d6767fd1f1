package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edudocs/coursebot/internals/vectorstore"
)

type mockSearchStore struct {
	results     vectorstore.SearchResults
	searchErr   error
	lessonLinks map[string]string // "title/lesson" -> link

	gotQuery  string
	gotCourse string
	gotLesson *int
}

func (m *mockSearchStore) Search(_ context.Context, query, courseName string, lessonNumber *int) (vectorstore.SearchResults, error) {
	m.gotQuery = query
	m.gotCourse = courseName
	m.gotLesson = lessonNumber
	if m.searchErr != nil {
		return vectorstore.SearchResults{}, m.searchErr
	}
	return m.results, nil
}

func (m *mockSearchStore) GetLessonLink(_ context.Context, courseTitle string, lessonNumber int) (string, error) {
	return m.lessonLinks[fmt.Sprintf("%s/%d", courseTitle, lessonNumber)], nil
}

func intPtr(n int) *int { return &n }

func execSearch(t *testing.T, tool *SearchTool, input string) string {
	t.Helper()
	out, err := tool.Execute(context.Background(), json.RawMessage(input))
	require.NoError(t, err)
	return out
}

func TestSearchTool_FormatsResultsAndTracksSources(t *testing.T) {
	store := &mockSearchStore{
		results: vectorstore.SearchResults{
			Documents: []string{"Intro text"},
			Metadata:  []vectorstore.ChunkMeta{{CourseTitle: "A", LessonNumber: intPtr(1)}},
			Distances: []float64{0.1},
		},
		lessonLinks: map[string]string{"A/1": "http://example.com/lesson1"},
	}
	tool := NewSearchTool(store)

	out := execSearch(t, tool, `{"query":"intro"}`)

	assert.Contains(t, out, "[A - Lesson 1]")
	assert.Contains(t, out, "Intro text")

	srcs := tool.LastSources()
	require.Len(t, srcs, 1)
	assert.Equal(t, "A - Lesson 1", srcs[0].Label)
	assert.Equal(t, "http://example.com/lesson1", srcs[0].Link)
}

func TestSearchTool_PassesFiltersThrough(t *testing.T) {
	store := &mockSearchStore{
		results: vectorstore.SearchResults{
			Documents: []string{"x"},
			Metadata:  []vectorstore.ChunkMeta{{CourseTitle: "MCP Course", LessonNumber: intPtr(2)}},
			Distances: []float64{0.3},
		},
	}
	tool := NewSearchTool(store)

	execSearch(t, tool, `{"query":"tools","course_name":"MCP","lesson_number":2}`)

	assert.Equal(t, "tools", store.gotQuery)
	assert.Equal(t, "MCP", store.gotCourse)
	require.NotNil(t, store.gotLesson)
	assert.Equal(t, 2, *store.gotLesson)
}

func TestSearchTool_OmitsLessonSuffixWithoutLessonNumber(t *testing.T) {
	store := &mockSearchStore{
		results: vectorstore.SearchResults{
			Documents: []string{"overview text"},
			Metadata:  []vectorstore.ChunkMeta{{CourseTitle: "A"}},
			Distances: []float64{0.2},
		},
	}
	tool := NewSearchTool(store)

	out := execSearch(t, tool, `{"query":"overview"}`)

	assert.Contains(t, out, "[A]\noverview text")
	require.Len(t, tool.LastSources(), 1)
	assert.Equal(t, "A", tool.LastSources()[0].Label)
	assert.Empty(t, tool.LastSources()[0].Link)
}

func TestSearchTool_MultipleMatchesBlankLineSeparated(t *testing.T) {
	store := &mockSearchStore{
		results: vectorstore.SearchResults{
			Documents: []string{"first", "second"},
			Metadata: []vectorstore.ChunkMeta{
				{CourseTitle: "A", LessonNumber: intPtr(1)},
				{CourseTitle: "B", LessonNumber: intPtr(2)},
			},
			Distances: []float64{0.1, 0.2},
		},
	}
	tool := NewSearchTool(store)

	out := execSearch(t, tool, `{"query":"q"}`)

	assert.Equal(t, "[A - Lesson 1]\nfirst\n\n[B - Lesson 2]\nsecond", out)
	assert.Len(t, tool.LastSources(), 2)
}

func TestSearchTool_StoreErrorSurfacedVerbatim(t *testing.T) {
	store := &mockSearchStore{searchErr: errors.New("db down")}
	tool := NewSearchTool(store)

	out := execSearch(t, tool, `{"query":"anything"}`)

	assert.Equal(t, "db down", out)
	assert.Empty(t, tool.LastSources())
}

func TestSearchTool_EmptyResultsNameAppliedFilters(t *testing.T) {
	store := &mockSearchStore{}
	tool := NewSearchTool(store)

	assert.Equal(t, "No relevant content found.",
		execSearch(t, tool, `{"query":"q"}`))
	assert.Equal(t, "No relevant content found in course 'MCP'.",
		execSearch(t, tool, `{"query":"q","course_name":"MCP"}`))
	assert.Equal(t, "No relevant content found in course 'MCP' in lesson 3.",
		execSearch(t, tool, `{"query":"q","course_name":"MCP","lesson_number":3}`))
	assert.Equal(t, "No relevant content found in lesson 3.",
		execSearch(t, tool, `{"query":"q","lesson_number":3}`))
}

func TestSearchTool_OverwritesSourcesEachExecution(t *testing.T) {
	store := &mockSearchStore{
		results: vectorstore.SearchResults{
			Documents: []string{"one"},
			Metadata:  []vectorstore.ChunkMeta{{CourseTitle: "A", LessonNumber: intPtr(1)}},
			Distances: []float64{0.1},
		},
	}
	tool := NewSearchTool(store)

	execSearch(t, tool, `{"query":"q"}`)
	require.Len(t, tool.LastSources(), 1)

	store.results = vectorstore.SearchResults{
		Documents: []string{"two", "three"},
		Metadata: []vectorstore.ChunkMeta{
			{CourseTitle: "B", LessonNumber: intPtr(2)},
			{CourseTitle: "B", LessonNumber: intPtr(3)},
		},
		Distances: []float64{0.1, 0.2},
	}
	execSearch(t, tool, `{"query":"q"}`)

	srcs := tool.LastSources()
	require.Len(t, srcs, 2)
	assert.Equal(t, "B - Lesson 2", srcs[0].Label)
}

func TestSearchTool_Definition(t *testing.T) {
	def := NewSearchTool(&mockSearchStore{}).Definition()

	assert.Equal(t, "search_course_content", def.Name)
	assert.Contains(t, def.InputSchema.Properties, "query")
	assert.Contains(t, def.InputSchema.Properties, "course_name")
	assert.Contains(t, def.InputSchema.Properties, "lesson_number")
	assert.Equal(t, []string{"query"}, def.InputSchema.Required)
}
