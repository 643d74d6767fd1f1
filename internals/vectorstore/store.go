// Package vectorstore is the similarity-search index over course content.
// It keeps two collections: CourseChunk, the embedded lesson text, and
// Course, a per-course catalog entry carrying the serialized lesson list.
package vectorstore

import "github.com/edudocs/coursebot/internals/course"

// ChunkMeta describes where a matched chunk came from. LessonNumber is nil
// for chunks taken from text before the first lesson marker.
type ChunkMeta struct {
	CourseTitle  string
	LessonNumber *int
	ChunkIndex   int
}

// SearchResults is one similarity query's matches. Documents, Metadata and
// Distances are always equal-length and index-aligned.
type SearchResults struct {
	Documents []string
	Metadata  []ChunkMeta
	Distances []float64
}

// Outline is a catalog entry resolved by semantic title lookup. Lessons keep
// their stored order.
type Outline struct {
	Title   string
	Link    string
	Lessons []course.Lesson
}
