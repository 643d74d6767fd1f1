package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/edudocs/coursebot/internals/vectorstore"
)

// CatalogStore is the slice of the vector store the outline tool needs.
type CatalogStore interface {
	GetCourseOutline(ctx context.Context, courseName string) (*vectorstore.Outline, error)
}

// OutlineTool answers structural queries: course title, link, and the full
// lesson list. Outline results are structural, not retrieval citations, so
// this tool never touches the citation list.
type OutlineTool struct {
	store CatalogStore
}

func NewOutlineTool(store CatalogStore) *OutlineTool {
	return &OutlineTool{store: store}
}

func (t *OutlineTool) Definition() anthropic.ToolParam {
	return anthropic.ToolParam{
		Name:        "get_course_outline",
		Description: anthropic.String("Get the complete outline of a course including its title, link, and all lessons"),
		InputSchema: anthropic.ToolInputSchemaParam{
			Properties: map[string]interface{}{
				"course_name": map[string]interface{}{
					"type":        "string",
					"description": "Course title to get the outline for (partial matches work, e.g. 'MCP', 'Introduction')",
				},
			},
			Required: []string{"course_name"},
		},
	}
}

type outlineInput struct {
	CourseName string `json:"course_name"`
}

func (t *OutlineTool) Execute(ctx context.Context, raw json.RawMessage) (string, error) {
	var input outlineInput
	if err := json.Unmarshal(raw, &input); err != nil {
		return "", fmt.Errorf("unmarshal get_course_outline input: %w", err)
	}

	outline, err := t.store.GetCourseOutline(ctx, input.CourseName)
	if err != nil {
		return "", fmt.Errorf("course outline: %w", err)
	}
	if outline == nil {
		return fmt.Sprintf("No course found matching '%s'", input.CourseName), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Course: %s\n", outline.Title)
	if outline.Link != "" {
		fmt.Fprintf(&b, "Course Link: %s\n", outline.Link)
	}
	fmt.Fprintf(&b, "\nLessons (%d total):\n", len(outline.Lessons))
	// Stored order, not re-sorted.
	for _, l := range outline.Lessons {
		fmt.Fprintf(&b, "Lesson %d: %s\n", l.Number, l.Title)
	}
	return strings.TrimRight(b.String(), "\n"), nil
}
