// Package course holds the domain types shared between ingestion and the
// vector store: a course, its lessons, and the content chunks derived from it.
package course

// Lesson is one numbered unit of a course. Link may be empty for material
// that has no public page.
type Lesson struct {
	Number int    `json:"lesson_number"`
	Title  string `json:"lesson_title"`
	Link   string `json:"lesson_link,omitempty"`
}

type Course struct {
	Title      string
	Link       string
	Instructor string
	Lessons    []Lesson
}

// Chunk is a slice of lesson text sized for embedding. LessonNumber is nil
// for text that appears before the first lesson marker.
type Chunk struct {
	Content      string
	CourseTitle  string
	LessonNumber *int
	Index        int
}
