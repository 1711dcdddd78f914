package docproc

import (
	"strings"
	"testing"
)

const sampleDocument = `Course Title: Python Fundamentals
Course Link: http://example.com/python
Course Instructor: Ada Example

Lesson 0: Welcome
Lesson Link: http://example.com/python/lesson0
Welcome to the course. This lesson introduces the basics.

Lesson 1: Variables
Lesson Link: http://example.com/python/lesson1
Variables hold values. Assignment uses the equals sign.
`

func TestProcessParsesCourseMetadata(t *testing.T) {
	processor := NewProcessor(800, 100)

	course, _, err := processor.Process(strings.NewReader(sampleDocument))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if course.Title != "Python Fundamentals" {
		t.Errorf("Title = %q", course.Title)
	}
	if course.CourseLink != "http://example.com/python" {
		t.Errorf("CourseLink = %q", course.CourseLink)
	}
	if course.Instructor != "Ada Example" {
		t.Errorf("Instructor = %q", course.Instructor)
	}
}

func TestProcessParsesLessons(t *testing.T) {
	processor := NewProcessor(800, 100)

	course, _, err := processor.Process(strings.NewReader(sampleDocument))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(course.Lessons) != 2 {
		t.Fatalf("lessons = %d, expected 2", len(course.Lessons))
	}
	if course.Lessons[0].LessonNumber != 0 || course.Lessons[0].Title != "Welcome" {
		t.Errorf("lesson 0 = %+v", course.Lessons[0])
	}
	if course.Lessons[0].LessonLink != "http://example.com/python/lesson0" {
		t.Errorf("lesson 0 link = %q", course.Lessons[0].LessonLink)
	}
	if course.Lessons[1].LessonNumber != 1 || course.Lessons[1].Title != "Variables" {
		t.Errorf("lesson 1 = %+v", course.Lessons[1])
	}
}

func TestProcessChunksCarryLessonContext(t *testing.T) {
	processor := NewProcessor(800, 100)

	course, chunks, err := processor.Process(strings.NewReader(sampleDocument))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(chunks) != 2 {
		t.Fatalf("chunks = %d, expected 2", len(chunks))
	}

	first := chunks[0]
	if !strings.HasPrefix(first.Content, "Course Python Fundamentals Lesson 0 content:") {
		t.Errorf("first chunk not prefixed with lesson context: %q", first.Content)
	}
	if first.CourseTitle != course.Title {
		t.Errorf("CourseTitle = %q", first.CourseTitle)
	}
	if first.LessonNumber == nil || *first.LessonNumber != 0 {
		t.Errorf("LessonNumber = %v", first.LessonNumber)
	}
	if first.ChunkIndex != 0 || chunks[1].ChunkIndex != 1 {
		t.Errorf("chunk indexes = %d, %d", first.ChunkIndex, chunks[1].ChunkIndex)
	}
}

func TestProcessRequiresTitle(t *testing.T) {
	processor := NewProcessor(800, 100)

	_, _, err := processor.Process(strings.NewReader("Lesson 0: Intro\nsome content"))
	if err == nil {
		t.Fatal("expected an error for a document without a course title")
	}
}

func TestProcessSkipsEmptyLessons(t *testing.T) {
	doc := `Course Title: Sparse Course

Lesson 0: Empty

Lesson 1: Full
This lesson has content.
`
	processor := NewProcessor(800, 100)

	course, chunks, err := processor.Process(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(course.Lessons) != 2 {
		t.Fatalf("lessons = %d, expected 2", len(course.Lessons))
	}
	if len(chunks) != 1 {
		t.Fatalf("chunks = %d, expected only the non-empty lesson's chunk", len(chunks))
	}
	if *chunks[0].LessonNumber != 1 {
		t.Errorf("chunk lesson = %d", *chunks[0].LessonNumber)
	}
}

func TestChunkTextSingleChunk(t *testing.T) {
	processor := NewProcessor(800, 100)

	chunks := processor.ChunkText("One sentence. Another sentence.")
	if len(chunks) != 1 {
		t.Fatalf("chunks = %d, expected 1", len(chunks))
	}
	if chunks[0] != "One sentence. Another sentence." {
		t.Errorf("chunk = %q", chunks[0])
	}
}

func TestChunkTextRespectsSizeLimit(t *testing.T) {
	processor := NewProcessor(50, 0)

	text := "First sentence goes here. Second sentence goes here. Third sentence goes here."
	chunks := processor.ChunkText(text)

	if len(chunks) < 2 {
		t.Fatalf("chunks = %d, expected the text to split", len(chunks))
	}
	for _, chunk := range chunks {
		if !strings.HasSuffix(chunk, ".") {
			t.Errorf("chunk does not end on a sentence boundary: %q", chunk)
		}
	}
	joined := strings.Join(chunks, " ")
	for _, sentence := range []string{"First sentence", "Second sentence", "Third sentence"} {
		if !strings.Contains(joined, sentence) {
			t.Errorf("sentence lost during chunking: %q", sentence)
		}
	}
}

func TestChunkTextOverlap(t *testing.T) {
	processor := NewProcessor(60, 30)

	text := "Alpha sentence one is here. Beta sentence two is here. Gamma sentence three is here."
	chunks := processor.ChunkText(text)

	if len(chunks) < 2 {
		t.Fatalf("chunks = %d, expected at least 2", len(chunks))
	}
	// The second chunk starts with the tail sentence of the first.
	lastOfFirst := "Beta sentence two is here."
	if !strings.Contains(chunks[0], lastOfFirst) {
		t.Fatalf("unexpected first chunk: %q", chunks[0])
	}
	if !strings.HasPrefix(chunks[1], lastOfFirst) {
		t.Errorf("second chunk missing overlap: %q", chunks[1])
	}
}

func TestChunkTextNormalizesWhitespace(t *testing.T) {
	processor := NewProcessor(800, 100)

	chunks := processor.ChunkText("Spread   across\n\nlines. And  more.")
	if len(chunks) != 1 {
		t.Fatalf("chunks = %d", len(chunks))
	}
	if chunks[0] != "Spread across lines. And more." {
		t.Errorf("chunk = %q", chunks[0])
	}
}

func TestChunkTextEmptyInput(t *testing.T) {
	processor := NewProcessor(800, 100)

	if chunks := processor.ChunkText("   "); chunks != nil {
		t.Errorf("chunks = %v, expected nil", chunks)
	}
}
