package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/edudocs/coursebot/internals/vectorstore"
)

// SearchStore is the slice of the vector store the search tool needs.
type SearchStore interface {
	Search(ctx context.Context, query, courseName string, lessonNumber *int) (vectorstore.SearchResults, error)
	GetLessonLink(ctx context.Context, courseTitle string, lessonNumber int) (string, error)
}

// SearchTool answers content queries by similarity search over course
// chunks. It is the only tool that writes the citation list.
type SearchTool struct {
	store       SearchStore
	lastSources []Source
}

func NewSearchTool(store SearchStore) *SearchTool {
	return &SearchTool{store: store}
}

func (t *SearchTool) Definition() anthropic.ToolParam {
	return anthropic.ToolParam{
		Name:        "search_course_content",
		Description: anthropic.String("Search course materials with smart course name matching and lesson filtering"),
		InputSchema: anthropic.ToolInputSchemaParam{
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "What to search for in the course content",
				},
				"course_name": map[string]interface{}{
					"type":        "string",
					"description": "Course title (partial matches work, e.g. 'MCP', 'Introduction')",
				},
				"lesson_number": map[string]interface{}{
					"type":        "integer",
					"description": "Specific lesson number to search within (e.g. 1, 3)",
				},
			},
			Required: []string{"query"},
		},
	}
}

type searchInput struct {
	Query        string `json:"query"`
	CourseName   string `json:"course_name"`
	LessonNumber *int   `json:"lesson_number"`
}

func (t *SearchTool) Execute(ctx context.Context, raw json.RawMessage) (string, error) {
	var input searchInput
	if err := json.Unmarshal(raw, &input); err != nil {
		return "", fmt.Errorf("unmarshal search_course_content input: %w", err)
	}

	results, err := t.store.Search(ctx, input.Query, input.CourseName, input.LessonNumber)
	if err != nil {
		// Store failures are surfaced to the model as the tool output so
		// it can tell the user what went wrong.
		return err.Error(), nil
	}

	if len(results.Documents) == 0 {
		return emptyMessage(input.CourseName, input.LessonNumber), nil
	}

	return t.format(ctx, results), nil
}

func emptyMessage(courseName string, lessonNumber *int) string {
	var filter strings.Builder
	filter.WriteString("No relevant content found")
	if courseName != "" {
		fmt.Fprintf(&filter, " in course '%s'", courseName)
	}
	if lessonNumber != nil {
		fmt.Fprintf(&filter, " in lesson %d", *lessonNumber)
	}
	filter.WriteString(".")
	return filter.String()
}

// format renders matches as labeled blocks and overwrites the citation
// list, one source per match. Lesson links are resolved best-effort; a
// failed lookup just yields a label-only source.
func (t *SearchTool) format(ctx context.Context, results vectorstore.SearchResults) string {
	blocks := make([]string, 0, len(results.Documents))
	sources := make([]Source, 0, len(results.Documents))

	for i, doc := range results.Documents {
		meta := results.Metadata[i]

		label := meta.CourseTitle
		if label == "" {
			label = "unknown"
		}
		if meta.LessonNumber != nil {
			label = fmt.Sprintf("%s - Lesson %d", label, *meta.LessonNumber)
		}
		blocks = append(blocks, fmt.Sprintf("[%s]\n%s", label, doc))

		src := Source{Label: label}
		if meta.LessonNumber != nil {
			if link, err := t.store.GetLessonLink(ctx, meta.CourseTitle, *meta.LessonNumber); err == nil {
				src.Link = link
			}
		}
		sources = append(sources, src)
	}

	t.lastSources = sources
	return strings.Join(blocks, "\n\n")
}

func (t *SearchTool) LastSources() []Source { return t.lastSources }

func (t *SearchTool) ResetSources() { t.lastSources = nil }
