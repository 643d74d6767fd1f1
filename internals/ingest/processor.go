// Package ingest parses course documents into catalog entries and
// embedding-sized content chunks.
//
// Expected document shape:
//
//	Course Title: <title>
//	Course Link: <url>
//	Course Instructor: <name>
//
//	Lesson 0: Introduction
//	Lesson Link: <url>
//	<lesson text...>
package ingest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/edudocs/coursebot/internals/course"
)

const (
	DefaultChunkSize    = 800
	DefaultChunkOverlap = 100
)

var (
	lessonMarker = regexp.MustCompile(`^Lesson\s+(\d+):\s*(.*)$`)
	sentenceEnd  = regexp.MustCompile(`(?s)(.*?[.!?])(?:\s+|$)`)
)

type Processor struct {
	chunkSize    int
	chunkOverlap int
}

func NewProcessor(chunkSize, chunkOverlap int) *Processor {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = DefaultChunkOverlap
	}
	return &Processor{chunkSize: chunkSize, chunkOverlap: chunkOverlap}
}

// Process parses one document. docName is used as the course title when the
// document carries no "Course Title:" header. Every chunk's text is
// prefixed with its course and lesson so matches stay attributable even
// out of context.
func (p *Processor) Process(docName, text string) (course.Course, []course.Chunk, error) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	c := course.Course{Title: strings.TrimSpace(docName)}

	// Header lines run until the first lesson marker.
	i := 0
	for ; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if lessonMarker.MatchString(line) {
			break
		}
		switch {
		case strings.HasPrefix(line, "Course Title:"):
			c.Title = strings.TrimSpace(strings.TrimPrefix(line, "Course Title:"))
		case strings.HasPrefix(line, "Course Link:"):
			c.Link = strings.TrimSpace(strings.TrimPrefix(line, "Course Link:"))
		case strings.HasPrefix(line, "Course Instructor:"):
			c.Instructor = strings.TrimSpace(strings.TrimPrefix(line, "Course Instructor:"))
		}
	}
	if c.Title == "" {
		return course.Course{}, nil, fmt.Errorf("document %q has no course title", docName)
	}

	var chunks []course.Chunk
	chunkIndex := 0

	flush := func(lessonNumber *int, body []string) {
		text := strings.TrimSpace(strings.Join(body, "\n"))
		if text == "" {
			return
		}
		for _, piece := range p.chunkText(text) {
			content := fmt.Sprintf("Course %s content: %s", c.Title, piece)
			if lessonNumber != nil {
				content = fmt.Sprintf("Course %s Lesson %d content: %s", c.Title, *lessonNumber, piece)
			}
			chunks = append(chunks, course.Chunk{
				Content:      content,
				CourseTitle:  c.Title,
				LessonNumber: lessonNumber,
				Index:        chunkIndex,
			})
			chunkIndex++
		}
	}

	var currentLesson *course.Lesson
	var body []string

	for ; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])

		if m := lessonMarker.FindStringSubmatch(line); m != nil {
			if currentLesson != nil {
				n := currentLesson.Number
				flush(&n, body)
				c.Lessons = append(c.Lessons, *currentLesson)
			} else {
				flush(nil, body)
			}
			body = nil

			num, err := strconv.Atoi(m[1])
			if err != nil {
				return course.Course{}, nil, fmt.Errorf("document %q: bad lesson number %q", docName, m[1])
			}
			currentLesson = &course.Lesson{Number: num, Title: strings.TrimSpace(m[2])}
			continue
		}

		if currentLesson != nil && strings.HasPrefix(line, "Lesson Link:") && currentLesson.Link == "" && len(body) == 0 {
			currentLesson.Link = strings.TrimSpace(strings.TrimPrefix(line, "Lesson Link:"))
			continue
		}

		body = append(body, lines[i])
	}

	if currentLesson != nil {
		n := currentLesson.Number
		flush(&n, body)
		c.Lessons = append(c.Lessons, *currentLesson)
	} else {
		flush(nil, body)
	}

	return c, chunks, nil
}

// chunkText packs whole sentences into chunks of at most chunkSize
// characters, carrying chunkOverlap characters' worth of trailing sentences
// into the next chunk.
func (p *Processor) chunkText(text string) []string {
	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	var current []string
	currentLen := 0

	for idx := 0; idx < len(sentences); idx++ {
		s := sentences[idx]
		sepLen := 0
		if currentLen > 0 {
			sepLen = 1
		}
		if currentLen > 0 && currentLen+sepLen+len(s) > p.chunkSize {
			chunks = append(chunks, strings.Join(current, " "))

			// Back up over trailing sentences to build the overlap.
			var carried []string
			carriedLen := 0
			for j := len(current) - 1; j >= 0 && carriedLen < p.chunkOverlap; j-- {
				carried = append([]string{current[j]}, carried...)
				carriedLen += len(current[j]) + 1
			}
			current = carried
			currentLen = carriedLen
		}
		current = append(current, s)
		currentLen += sepLen + len(s)
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}
	return chunks
}

func splitSentences(text string) []string {
	text = strings.Join(strings.Fields(text), " ")
	if text == "" {
		return nil
	}

	var out []string
	rest := text
	for {
		m := sentenceEnd.FindStringSubmatchIndex(rest)
		if m == nil {
			break
		}
		out = append(out, strings.TrimSpace(rest[m[2]:m[3]]))
		rest = rest[m[1]:]
		if rest == "" {
			return out
		}
	}
	if s := strings.TrimSpace(rest); s != "" {
		out = append(out, s)
	}
	return out
}
