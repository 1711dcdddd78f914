package models

// Lesson is a single lesson within a course.
type Lesson struct {
	LessonNumber int    `json:"lesson_number"`
	Title        string `json:"lesson_title"`
	LessonLink   string `json:"lesson_link,omitempty"`
}

// Course represents one full course document from the catalog.
type Course struct {
	Title      string   `json:"title"`
	CourseLink string   `json:"course_link,omitempty"`
	Instructor string   `json:"instructor,omitempty"`
	Lessons    []Lesson `json:"lessons"`
}

// CourseChunk is one embeddable piece of course content. LessonNumber is nil
// for course-level text that belongs to no particular lesson.
type CourseChunk struct {
	Content      string
	CourseTitle  string
	LessonNumber *int
	ChunkIndex   int
}

// CourseMetadata is the catalog view exposed to the outline tool and the
// courses API endpoint.
type CourseMetadata struct {
	Title      string           `json:"title"`
	CourseLink string           `json:"course_link,omitempty"`
	Lessons    []LessonMetadata `json:"lessons"`
}

type LessonMetadata struct {
	LessonNumber int    `json:"lesson_number"`
	LessonTitle  string `json:"lesson_title"`
}
