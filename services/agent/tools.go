package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"coursechat/models"
	"coursechat/services/vectorstore"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/invopop/jsonschema"
	"github.com/samber/lo"
)

// Tool is a capability the model can invoke. Execute always returns a
// human-readable string; faults are converted to descriptive strings at the
// tool boundary so the model can read and react to them.
type Tool interface {
	Name() string
	Description() string
	InputSchema() anthropic.ToolInputSchemaParam
	Execute(ctx context.Context, args map[string]any) string
}

// SourceProvider is implemented by tools that track citation sources from
// their most recent execution.
type SourceProvider interface {
	LastSources() []models.Source
	ResetSources()
}

// CourseStore is the retrieval contract the tools depend on.
type CourseStore interface {
	Search(ctx context.Context, query, courseName string, lessonNumber *int) vectorstore.SearchResults
	GetLessonLink(ctx context.Context, courseTitle string, lessonNumber int) string
	ResolveCourseName(ctx context.Context, name string) string
	GetAllCoursesMetadata(ctx context.Context) ([]*models.CourseMetadata, error)
}

func generateAnthropicSchema[T any]() anthropic.ToolInputSchemaParam {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	schema := reflector.Reflect(v)

	return anthropic.ToolInputSchemaParam{
		Properties: schema.Properties,
	}
}

// decodeArgs maps the model-supplied argument map onto a typed input struct.
func decodeArgs(args map[string]any, v any) error {
	data, err := json.Marshal(args)
	if err != nil {
		return fmt.Errorf("failed to encode tool arguments: %v", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse tool arguments: %v", err)
	}
	return nil
}

type SearchCourseContentInput struct {
	Query        string `json:"query" jsonschema:"required,description=What to search for in the course content"`
	CourseName   string `json:"course_name,omitempty" jsonschema:"description=Course title (partial matches work, e.g. 'MCP', 'Introduction')"`
	LessonNumber *int   `json:"lesson_number,omitempty" jsonschema:"description=Specific lesson number to search within (e.g. 1, 2, 3)"`
}

// CourseSearchTool performs filtered semantic search over course content and
// records one citation source per rendered result.
type CourseSearchTool struct {
	store       CourseStore
	lastSources []models.Source
}

func NewCourseSearchTool(store CourseStore) *CourseSearchTool {
	return &CourseSearchTool{store: store}
}

func (t *CourseSearchTool) Name() string {
	return "search_course_content"
}

func (t *CourseSearchTool) Description() string {
	return "Search course materials with smart course name matching and lesson filtering"
}

func (t *CourseSearchTool) InputSchema() anthropic.ToolInputSchemaParam {
	return generateAnthropicSchema[SearchCourseContentInput]()
}

func (t *CourseSearchTool) Execute(ctx context.Context, args map[string]any) string {
	// Sources reflect only the most recent execution.
	t.lastSources = nil

	var input SearchCourseContentInput
	if err := decodeArgs(args, &input); err != nil {
		return fmt.Sprintf("Invalid search arguments: %v", err)
	}

	results := t.store.Search(ctx, input.Query, input.CourseName, input.LessonNumber)
	if results.Err != "" {
		return results.Err
	}

	if results.IsEmpty() {
		return emptyResultMessage(input.CourseName, input.LessonNumber)
	}

	return t.formatResults(ctx, results)
}

func emptyResultMessage(courseName string, lessonNumber *int) string {
	var sb strings.Builder
	sb.WriteString("No relevant content found")
	if courseName != "" {
		fmt.Fprintf(&sb, " in course '%s'", courseName)
	}
	if lessonNumber != nil {
		fmt.Fprintf(&sb, " in lesson %d", *lessonNumber)
	}
	sb.WriteString(".")
	return sb.String()
}

func (t *CourseSearchTool) formatResults(ctx context.Context, results vectorstore.SearchResults) string {
	var formatted []string
	var sources []models.Source

	for i, document := range results.Documents {
		var metadata map[string]any
		if i < len(results.Metadata) {
			metadata = results.Metadata[i]
		}

		courseTitle := "unknown"
		if title, ok := metadata["course_title"].(string); ok && title != "" {
			courseTitle = title
		}

		header := courseTitle
		var link string
		if lesson, ok := lessonNumberFromMetadata(metadata); ok {
			header = fmt.Sprintf("%s - Lesson %d", courseTitle, lesson)
			link = t.store.GetLessonLink(ctx, courseTitle, lesson)
		}

		sources = append(sources, models.Source{Text: header, Link: link})
		formatted = append(formatted, fmt.Sprintf("[%s]\n%s", header, document))
	}

	t.lastSources = sources
	return strings.Join(formatted, "\n\n")
}

// lessonNumberFromMetadata handles both native ints and the float64 values
// that structpb metadata round-trips produce.
func lessonNumberFromMetadata(metadata map[string]any) (int, bool) {
	switch v := metadata["lesson_number"].(type) {
	case int:
		return v, true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func (t *CourseSearchTool) LastSources() []models.Source {
	return t.lastSources
}

func (t *CourseSearchTool) ResetSources() {
	t.lastSources = nil
}

type GetCourseOutlineInput struct {
	CourseName string `json:"course_name" jsonschema:"required,description=Course title or partial name (e.g. 'MCP', 'Introduction')"`
}

// CourseOutlineTool resolves a possibly approximate course name and renders
// that course's lesson outline.
type CourseOutlineTool struct {
	store CourseStore
}

func NewCourseOutlineTool(store CourseStore) *CourseOutlineTool {
	return &CourseOutlineTool{store: store}
}

func (t *CourseOutlineTool) Name() string {
	return "get_course_outline"
}

func (t *CourseOutlineTool) Description() string {
	return "Get the complete outline of a course including title, link, and all lessons"
}

func (t *CourseOutlineTool) InputSchema() anthropic.ToolInputSchemaParam {
	return generateAnthropicSchema[GetCourseOutlineInput]()
}

func (t *CourseOutlineTool) Execute(ctx context.Context, args map[string]any) string {
	var input GetCourseOutlineInput
	if err := decodeArgs(args, &input); err != nil {
		return fmt.Sprintf("Invalid outline arguments: %v", err)
	}

	resolved := t.store.ResolveCourseName(ctx, input.CourseName)
	if resolved == "" {
		return fmt.Sprintf("No course found matching '%s'", input.CourseName)
	}

	allCourses, err := t.store.GetAllCoursesMetadata(ctx)
	if err != nil {
		return fmt.Sprintf("Failed to load course metadata: %v", err)
	}

	var course *models.CourseMetadata
	for _, candidate := range allCourses {
		if candidate.Title == resolved {
			course = candidate
			break
		}
	}
	if course == nil {
		// Resolution succeeded but the catalog has no record for the title.
		return fmt.Sprintf("No course found matching '%s'", input.CourseName)
	}

	lines := []string{fmt.Sprintf("**%s**", course.Title)}
	if course.CourseLink != "" {
		lines = append(lines, "", fmt.Sprintf("🔗 [View Course](%s)", course.CourseLink))
	}
	lines = append(lines, "", "**Lessons:**")

	if len(course.Lessons) == 0 {
		lines = append(lines, "*No lessons available*")
	} else {
		lessons := make([]models.LessonMetadata, len(course.Lessons))
		copy(lessons, course.Lessons)
		sort.Slice(lessons, func(i, j int) bool {
			return lessons[i].LessonNumber < lessons[j].LessonNumber
		})
		lines = append(lines, lo.Map(lessons, func(lesson models.LessonMetadata, _ int) string {
			return fmt.Sprintf("%d. %s", lesson.LessonNumber, lesson.LessonTitle)
		})...)
	}

	return strings.Join(lines, "\n")
}
