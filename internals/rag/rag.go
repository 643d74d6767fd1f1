// Package rag wires the vector store, tool manager, session history and
// conversation driver into one query surface.
package rag

import (
	"context"
	"log/slog"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/edudocs/coursebot/internals/course"
	"github.com/edudocs/coursebot/internals/coursesrc"
	"github.com/edudocs/coursebot/internals/ingest"
	"github.com/edudocs/coursebot/internals/llm"
	"github.com/edudocs/coursebot/internals/tools"
)

// Generator produces one answer per call, optionally driving the tool loop.
type Generator interface {
	Generate(ctx context.Context, query, history string, tools []anthropic.ToolParam, executor llm.ToolExecutor) (string, error)
}

// Sessions tracks bounded per-conversation history.
type Sessions interface {
	Create() string
	GetHistory(id string) string
	AddExchange(id, question, answer string)
}

// Store is everything the system needs from the vector index: the two tool
// views plus the ingestion write path.
type Store interface {
	tools.SearchStore
	tools.CatalogStore
	AddCourse(ctx context.Context, c course.Course) error
	AddChunks(ctx context.Context, chunks []course.Chunk) error
	CourseTitles(ctx context.Context) ([]string, error)
	Clear(ctx context.Context) error
}

type System struct {
	store    Store
	gen      Generator
	sessions Sessions
	loader   *ingest.Loader
	manager  *tools.Manager
	log      *slog.Logger
}

func NewSystem(store Store, gen Generator, sessions Sessions, processor *ingest.Processor, log *slog.Logger) *System {
	manager := tools.NewManager()
	manager.Register(tools.NewSearchTool(store))
	manager.Register(tools.NewOutlineTool(store))

	return &System{
		store:    store,
		gen:      gen,
		sessions: sessions,
		loader:   ingest.NewLoader(store, processor, log),
		manager:  manager,
		log:      log,
	}
}

// NewSessionID starts a fresh conversation.
func (s *System) NewSessionID() string {
	return s.sessions.Create()
}

// Query answers one question, returning the answer text together with the
// citations collected during tool execution. The citation list is read and
// reset here so a later query can never surface stale sources.
func (s *System) Query(ctx context.Context, query, sessionID string) (string, []tools.Source, error) {
	var history string
	if sessionID != "" {
		history = s.sessions.GetHistory(sessionID)
	}

	prompt := "Answer this question about course materials: " + query

	answer, err := s.gen.Generate(ctx, prompt, history, s.manager.Definitions(), s.manager)
	if err != nil {
		return "", nil, err
	}

	sources := s.manager.LastSources()
	s.manager.ResetSources()

	if sessionID != "" {
		s.sessions.AddExchange(sessionID, query, answer)
	}
	return answer, sources, nil
}

// AddCourses ingests every document from the fetcher, skipping courses whose
// titles already exist in the catalog. Returns the number of courses and
// chunks added.
func (s *System) AddCourses(ctx context.Context, fetcher coursesrc.Fetcher) (int, int, error) {
	return s.loader.Load(ctx, fetcher)
}

// ClearCourses drops all ingested data.
func (s *System) ClearCourses(ctx context.Context) error {
	return s.store.Clear(ctx)
}

type CourseStats struct {
	TotalCourses int      `json:"total_courses"`
	CourseTitles []string `json:"course_titles"`
}

func (s *System) Stats(ctx context.Context) (CourseStats, error) {
	titles, err := s.store.CourseTitles(ctx)
	if err != nil {
		return CourseStats{}, err
	}
	return CourseStats{TotalCourses: len(titles), CourseTitles: titles}, nil
}
