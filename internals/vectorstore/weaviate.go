package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/edudocs/coursebot/internals/course"
	"github.com/edudocs/coursebot/internals/embeddings"
)

const (
	classChunk   = "CourseChunk"
	classCatalog = "Course"
)

// Weaviate stores course chunks and the course catalog in a Weaviate
// instance. Vectors are computed client-side through the embeddings
// provider, so both classes are created with the vectorizer disabled.
type Weaviate struct {
	client     *weaviate.Client
	embedder   embeddings.Provider
	maxResults int
}

func NewWeaviate(host, scheme string, embedder embeddings.Provider, maxResults int) (*Weaviate, error) {
	if maxResults <= 0 {
		maxResults = 5
	}
	client, err := weaviate.NewClient(weaviate.Config{Host: host, Scheme: scheme})
	if err != nil {
		return nil, fmt.Errorf("weaviate client: %w", err)
	}
	return &Weaviate{client: client, embedder: embedder, maxResults: maxResults}, nil
}

// EnsureSchema creates the CourseChunk and Course classes if they do not
// exist yet. Safe to call on every startup.
func (w *Weaviate) EnsureSchema(ctx context.Context) error {
	for _, class := range []*models.Class{chunkClass(), catalogClass()} {
		exists, err := w.client.Schema().ClassExistenceChecker().WithClassName(class.Class).Do(ctx)
		if err != nil {
			return fmt.Errorf("check class %s: %w", class.Class, err)
		}
		if exists {
			continue
		}
		if err := w.client.Schema().ClassCreator().WithClass(class).Do(ctx); err != nil {
			return fmt.Errorf("create class %s: %w", class.Class, err)
		}
	}
	return nil
}

func chunkClass() *models.Class {
	return &models.Class{
		Class:      classChunk,
		Vectorizer: "none",
		Properties: []*models.Property{
			{Name: "content", DataType: []string{"text"}},
			{Name: "courseTitle", DataType: []string{"text"}},
			{Name: "lessonNumber", DataType: []string{"int"}},
			{Name: "chunkIndex", DataType: []string{"int"}},
		},
	}
}

func catalogClass() *models.Class {
	return &models.Class{
		Class:      classCatalog,
		Vectorizer: "none",
		Properties: []*models.Property{
			{Name: "title", DataType: []string{"text"}},
			{Name: "courseLink", DataType: []string{"text"}},
			{Name: "instructor", DataType: []string{"text"}},
			{Name: "lessonsJson", DataType: []string{"text"}},
		},
	}
}

// Search runs a similarity query over course chunks. A non-empty courseName
// is first resolved to an exact catalog title by semantic lookup; both
// filters are applied server-side.
func (w *Weaviate) Search(ctx context.Context, query, courseName string, lessonNumber *int) (SearchResults, error) {
	var operands []*filters.WhereBuilder

	if courseName != "" {
		title, err := w.resolveCourseTitle(ctx, courseName)
		if err != nil {
			return SearchResults{}, err
		}
		if title == "" {
			return SearchResults{}, fmt.Errorf("No course found matching '%s'", courseName)
		}
		operands = append(operands, filters.Where().
			WithPath([]string{"courseTitle"}).
			WithOperator(filters.Equal).
			WithValueText(title))
	}
	if lessonNumber != nil {
		operands = append(operands, filters.Where().
			WithPath([]string{"lessonNumber"}).
			WithOperator(filters.Equal).
			WithValueInt(int64(*lessonNumber)))
	}

	vec, err := w.embedder.Embed(ctx, query)
	if err != nil {
		return SearchResults{}, fmt.Errorf("embed query: %w", err)
	}

	q := w.client.GraphQL().Get().
		WithClassName(classChunk).
		WithFields(
			graphql.Field{Name: "content"},
			graphql.Field{Name: "courseTitle"},
			graphql.Field{Name: "lessonNumber"},
			graphql.Field{Name: "chunkIndex"},
			graphql.Field{Name: "_additional", Fields: []graphql.Field{{Name: "distance"}}},
		).
		WithNearVector(w.client.GraphQL().NearVectorArgBuilder().WithVector(vec)).
		WithLimit(w.maxResults)

	switch len(operands) {
	case 0:
	case 1:
		q = q.WithWhere(operands[0])
	default:
		q = q.WithWhere(filters.Where().WithOperator(filters.And).WithOperands(operands))
	}

	resp, err := q.Do(ctx)
	if err != nil {
		return SearchResults{}, fmt.Errorf("chunk search: %w", err)
	}
	objs, err := gqlObjects(resp, classChunk)
	if err != nil {
		return SearchResults{}, err
	}

	out := SearchResults{}
	for _, obj := range objs {
		out.Documents = append(out.Documents, asString(obj["content"]))
		out.Metadata = append(out.Metadata, ChunkMeta{
			CourseTitle:  asString(obj["courseTitle"]),
			LessonNumber: asIntPtr(obj["lessonNumber"]),
			ChunkIndex:   asInt(obj["chunkIndex"]),
		})
		out.Distances = append(out.Distances, additionalDistance(obj))
	}
	return out, nil
}

// GetCourseOutline resolves the best catalog match for courseName. A nil
// outline with a nil error means no course matched.
func (w *Weaviate) GetCourseOutline(ctx context.Context, courseName string) (*Outline, error) {
	obj, err := w.bestCatalogMatch(ctx, courseName,
		graphql.Field{Name: "title"},
		graphql.Field{Name: "courseLink"},
		graphql.Field{Name: "lessonsJson"},
	)
	if err != nil || obj == nil {
		return nil, err
	}

	lessons, err := decodeLessons(asString(obj["lessonsJson"]))
	if err != nil {
		return nil, fmt.Errorf("course %q: %w", asString(obj["title"]), err)
	}
	return &Outline{
		Title:   asString(obj["title"]),
		Link:    asString(obj["courseLink"]),
		Lessons: lessons,
	}, nil
}

// GetLessonLink returns the stored link for one lesson of a course, looked
// up by exact title. Empty string when the course or lesson has no link.
func (w *Weaviate) GetLessonLink(ctx context.Context, courseTitle string, lessonNumber int) (string, error) {
	resp, err := w.client.GraphQL().Get().
		WithClassName(classCatalog).
		WithFields(graphql.Field{Name: "lessonsJson"}).
		WithWhere(filters.Where().
			WithPath([]string{"title"}).
			WithOperator(filters.Equal).
			WithValueText(courseTitle)).
		WithLimit(1).
		Do(ctx)
	if err != nil {
		return "", fmt.Errorf("catalog lookup: %w", err)
	}
	objs, err := gqlObjects(resp, classCatalog)
	if err != nil {
		return "", err
	}
	if len(objs) == 0 {
		return "", nil
	}

	lessons, err := decodeLessons(asString(objs[0]["lessonsJson"]))
	if err != nil {
		return "", fmt.Errorf("course %q: %w", courseTitle, err)
	}
	for _, l := range lessons {
		if l.Number == lessonNumber {
			return l.Link, nil
		}
	}
	return "", nil
}

// AddCourse writes one catalog entry, embedding the course title so that
// partial names resolve semantically.
func (w *Weaviate) AddCourse(ctx context.Context, c course.Course) error {
	vec, err := w.embedder.Embed(ctx, c.Title)
	if err != nil {
		return fmt.Errorf("embed course title: %w", err)
	}
	lessonsJSON, err := json.Marshal(c.Lessons)
	if err != nil {
		return fmt.Errorf("marshal lessons: %w", err)
	}

	_, err = w.client.Data().Creator().
		WithClassName(classCatalog).
		WithID(uuid.NewString()).
		WithProperties(map[string]interface{}{
			"title":       c.Title,
			"courseLink":  c.Link,
			"instructor":  c.Instructor,
			"lessonsJson": string(lessonsJSON),
		}).
		WithVector(vec).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("add course %q: %w", c.Title, err)
	}
	return nil
}

// AddChunks embeds and writes content chunks in one batch.
func (w *Weaviate) AddChunks(ctx context.Context, chunks []course.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vecs, err := w.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}

	objs := make([]*models.Object, len(chunks))
	for i, c := range chunks {
		props := map[string]interface{}{
			"content":     c.Content,
			"courseTitle": c.CourseTitle,
			"chunkIndex":  c.Index,
		}
		if c.LessonNumber != nil {
			props["lessonNumber"] = *c.LessonNumber
		}
		objs[i] = &models.Object{
			Class:      classChunk,
			ID:         strfmt.UUID(uuid.NewString()),
			Properties: props,
			Vector:     models.C11yVector(vecs[i]),
		}
	}

	if _, err := w.client.Batch().ObjectsBatcher().WithObjects(objs...).Do(ctx); err != nil {
		return fmt.Errorf("batch insert chunks: %w", err)
	}
	return nil
}

// CourseTitles lists every catalog title, used for startup dedup and the
// course stats endpoint.
func (w *Weaviate) CourseTitles(ctx context.Context) ([]string, error) {
	resp, err := w.client.GraphQL().Get().
		WithClassName(classCatalog).
		WithFields(graphql.Field{Name: "title"}).
		WithLimit(1000).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	objs, err := gqlObjects(resp, classCatalog)
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(objs))
	for _, obj := range objs {
		titles = append(titles, asString(obj["title"]))
	}
	return titles, nil
}

// Clear drops both classes and recreates an empty schema.
func (w *Weaviate) Clear(ctx context.Context) error {
	for _, name := range []string{classChunk, classCatalog} {
		if err := w.client.Schema().ClassDeleter().WithClassName(name).Do(ctx); err != nil {
			return fmt.Errorf("drop class %s: %w", name, err)
		}
	}
	return w.EnsureSchema(ctx)
}

func (w *Weaviate) resolveCourseTitle(ctx context.Context, courseName string) (string, error) {
	obj, err := w.bestCatalogMatch(ctx, courseName, graphql.Field{Name: "title"})
	if err != nil || obj == nil {
		return "", err
	}
	return asString(obj["title"]), nil
}

func (w *Weaviate) bestCatalogMatch(ctx context.Context, courseName string, fields ...graphql.Field) (map[string]interface{}, error) {
	vec, err := w.embedder.Embed(ctx, courseName)
	if err != nil {
		return nil, fmt.Errorf("embed course name: %w", err)
	}
	resp, err := w.client.GraphQL().Get().
		WithClassName(classCatalog).
		WithFields(fields...).
		WithNearVector(w.client.GraphQL().NearVectorArgBuilder().WithVector(vec)).
		WithLimit(1).
		Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("catalog search: %w", err)
	}
	objs, err := gqlObjects(resp, classCatalog)
	if err != nil {
		return nil, err
	}
	if len(objs) == 0 {
		return nil, nil
	}
	return objs[0], nil
}

func decodeLessons(raw string) ([]course.Lesson, error) {
	if raw == "" {
		return nil, nil
	}
	var lessons []course.Lesson
	if err := json.Unmarshal([]byte(raw), &lessons); err != nil {
		return nil, fmt.Errorf("decode lessons: %w", err)
	}
	return lessons, nil
}

func gqlObjects(resp *models.GraphQLResponse, className string) ([]map[string]interface{}, error) {
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("graphql: %s", resp.Errors[0].Message)
	}
	get, ok := resp.Data["Get"].(map[string]interface{})
	if !ok {
		return nil, nil
	}
	raw, _ := get[className].([]interface{})
	objs := make([]map[string]interface{}, 0, len(raw))
	for _, r := range raw {
		if m, ok := r.(map[string]interface{}); ok {
			objs = append(objs, m)
		}
	}
	return objs, nil
}

func additionalDistance(obj map[string]interface{}) float64 {
	add, ok := obj["_additional"].(map[string]interface{})
	if !ok {
		return 0
	}
	d, _ := add["distance"].(float64)
	return d
}

func asString(v interface{}) string {
	s, _ := v.(string)
	return s
}

func asInt(v interface{}) int {
	f, _ := v.(float64)
	return int(f)
}

func asIntPtr(v interface{}) *int {
	f, ok := v.(float64)
	if !ok {
		return nil
	}
	n := int(f)
	return &n
}
