package vectorstore

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"coursechat/models"
)

type fakeCourseRepository struct {
	titles      []string
	titlesErr   error
	lessonLink  string
	lessonErr   error
	metadata    []*models.CourseMetadata
	metadataErr error
}

func (r *fakeCourseRepository) UpsertCourse(course *models.Course) error { return nil }

func (r *fakeCourseRepository) GetCourseTitles() ([]string, error) {
	return r.titles, r.titlesErr
}

func (r *fakeCourseRepository) GetAllCoursesMetadata() ([]*models.CourseMetadata, error) {
	return r.metadata, r.metadataErr
}

func (r *fakeCourseRepository) GetLessonLink(courseTitle string, lessonNumber int) (string, error) {
	return r.lessonLink, r.lessonErr
}

func (r *fakeCourseRepository) CountCourses() (int, error) { return len(r.titles), nil }

func (r *fakeCourseRepository) Close() error { return nil }

func intPtr(n int) *int { return &n }

func TestSearchResultsStates(t *testing.T) {
	empty := SearchResults{}
	if !empty.IsEmpty() {
		t.Error("zero-value results should be empty")
	}

	errResult := ErrorResults("something broke")
	if errResult.Err != "something broke" {
		t.Errorf("Err = %q", errResult.Err)
	}
	if errResult.IsEmpty() {
		t.Error("error results must not report as empty")
	}

	populated := SearchResults{Documents: []string{"doc"}}
	if populated.IsEmpty() {
		t.Error("results with documents must not report as empty")
	}
}

func TestBuildMetadataFilter(t *testing.T) {
	tests := []struct {
		name         string
		courseTitle  string
		lessonNumber *int
		expected     map[string]any
	}{
		{
			name:     "no filters",
			expected: nil,
		},
		{
			name:        "course only",
			courseTitle: "Python Basics",
			expected: map[string]any{
				"course_title": map[string]any{"$eq": "Python Basics"},
			},
		},
		{
			name:         "lesson only",
			lessonNumber: intPtr(3),
			expected: map[string]any{
				"lesson_number": map[string]any{"$eq": 3},
			},
		},
		{
			name:         "both filters",
			courseTitle:  "Python Basics",
			lessonNumber: intPtr(3),
			expected: map[string]any{
				"course_title":  map[string]any{"$eq": "Python Basics"},
				"lesson_number": map[string]any{"$eq": 3},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := buildMetadataFilter(tt.courseTitle, tt.lessonNumber)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("filter = %#v, expected %#v", got, tt.expected)
			}
		})
	}
}

func TestResolveCourseName(t *testing.T) {
	titles := []string{
		"Introduction to Python Programming",
		"Advanced Machine Learning",
		"Web Development with JavaScript",
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "exact title", input: "Advanced Machine Learning", expected: "Advanced Machine Learning"},
		{name: "partial match", input: "Python", expected: "Introduction to Python Programming"},
		{name: "case insensitive", input: "javascript", expected: "Web Development with JavaScript"},
		{name: "no match", input: "Quantum Basket Weaving", expected: ""},
	}

	store := &Store{courses: &fakeCourseRepository{titles: titles}}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := store.ResolveCourseName(context.Background(), tt.input)
			if got != tt.expected {
				t.Errorf("ResolveCourseName(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestResolveCourseNameRepositoryError(t *testing.T) {
	store := &Store{courses: &fakeCourseRepository{titlesErr: errors.New("db unavailable")}}

	if got := store.ResolveCourseName(context.Background(), "Python"); got != "" {
		t.Errorf("expected empty resolution on repository error, got %q", got)
	}
}

func TestGetLessonLink(t *testing.T) {
	store := &Store{courses: &fakeCourseRepository{lessonLink: "http://example.com/lesson1"}}
	if got := store.GetLessonLink(context.Background(), "Python Basics", 1); got != "http://example.com/lesson1" {
		t.Errorf("link = %q", got)
	}

	store = &Store{courses: &fakeCourseRepository{lessonErr: errors.New("db unavailable")}}
	if got := store.GetLessonLink(context.Background(), "Python Basics", 1); got != "" {
		t.Errorf("expected empty link on repository error, got %q", got)
	}
}

func TestGetCourseStats(t *testing.T) {
	store := &Store{courses: &fakeCourseRepository{titles: []string{"A", "B"}}}

	stats, err := store.GetCourseStats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalCourses != 2 {
		t.Errorf("TotalCourses = %d", stats.TotalCourses)
	}
	if !reflect.DeepEqual(stats.CourseTitles, []string{"A", "B"}) {
		t.Errorf("CourseTitles = %v", stats.CourseTitles)
	}
}

func TestGetCourseStatsEmptyCatalog(t *testing.T) {
	store := &Store{courses: &fakeCourseRepository{}}

	stats, err := store.GetCourseStats(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalCourses != 0 {
		t.Errorf("TotalCourses = %d", stats.TotalCourses)
	}
	if stats.CourseTitles == nil {
		t.Error("CourseTitles must be an empty slice, not nil")
	}
}

func TestGetCourseStatsRepositoryError(t *testing.T) {
	store := &Store{courses: &fakeCourseRepository{titlesErr: errors.New("db unavailable")}}

	if _, err := store.GetCourseStats(context.Background()); err == nil {
		t.Fatal("expected an error")
	}
}
