package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/edudocs/coursebot/internals/course"
	"github.com/edudocs/coursebot/internals/coursesrc"
)

// Store is the write side of the vector index the loader fills.
type Store interface {
	AddCourse(ctx context.Context, c course.Course) error
	AddChunks(ctx context.Context, chunks []course.Chunk) error
	CourseTitles(ctx context.Context) ([]string, error)
}

// Loader parses fetched documents and writes them to the store, skipping
// courses whose titles are already in the catalog.
type Loader struct {
	store     Store
	processor *Processor
	log       *slog.Logger
}

func NewLoader(store Store, processor *Processor, log *slog.Logger) *Loader {
	return &Loader{store: store, processor: processor, log: log}
}

// Load ingests every document from the fetcher. Returns the number of
// courses and chunks added. Documents that fail to parse are skipped with a
// warning rather than aborting the batch.
func (l *Loader) Load(ctx context.Context, fetcher coursesrc.Fetcher) (int, int, error) {
	existing, err := l.store.CourseTitles(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("list existing courses: %w", err)
	}
	known := make(map[string]bool, len(existing))
	for _, t := range existing {
		known[t] = true
	}

	docs, err := fetcher.Documents(ctx)
	if err != nil {
		return 0, 0, err
	}

	coursesAdded, chunksAdded := 0, 0
	for _, doc := range docs {
		c, chunks, err := l.processor.Process(doc.Name, doc.Content)
		if err != nil {
			l.log.Warn("skipping document", "doc", doc.Name, "err", err)
			continue
		}
		if known[c.Title] {
			l.log.Info("course already ingested", "course", c.Title)
			continue
		}

		if err := l.store.AddCourse(ctx, c); err != nil {
			return coursesAdded, chunksAdded, err
		}
		if err := l.store.AddChunks(ctx, chunks); err != nil {
			return coursesAdded, chunksAdded, err
		}

		known[c.Title] = true
		coursesAdded++
		chunksAdded += len(chunks)
		l.log.Info("course ingested", "course", c.Title, "lessons", len(c.Lessons), "chunks", len(chunks))
	}
	return coursesAdded, chunksAdded, nil
}
