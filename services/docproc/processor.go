package docproc

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"regexp"
	"strconv"
	"strings"

	"coursechat/models"
)

// Processor parses course documents and cuts their lesson content into
// overlapping, sentence-aware chunks ready for embedding.
type Processor struct {
	chunkSize    int
	chunkOverlap int
}

func NewProcessor(chunkSize, chunkOverlap int) *Processor {
	if chunkSize <= 0 {
		chunkSize = 800
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = 100
	}
	return &Processor{chunkSize: chunkSize, chunkOverlap: chunkOverlap}
}

var lessonHeader = regexp.MustCompile(`^Lesson\s+(\d+):\s*(.+)$`)

// ProcessFile parses one course document from disk.
func (p *Processor) ProcessFile(path string) (*models.Course, []models.CourseChunk, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open course document: %w", err)
	}
	defer file.Close()

	course, chunks, err := p.Process(file)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to process %s: %w", path, err)
	}
	return course, chunks, nil
}

// Process parses a course document of the form:
//
//	Course Title: <title>
//	Course Link: <url>
//	Course Instructor: <name>
//
//	Lesson 0: <title>
//	Lesson Link: <url>
//	<content...>
func (p *Processor) Process(r io.Reader) (*models.Course, []models.CourseChunk, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	course := &models.Course{}

	var currentLesson *models.Lesson
	var lessonContent strings.Builder
	lessonBodies := make(map[int]string)

	flushLesson := func() {
		if currentLesson == nil {
			return
		}
		course.Lessons = append(course.Lessons, *currentLesson)
		lessonBodies[currentLesson.LessonNumber] = strings.TrimSpace(lessonContent.String())
		lessonContent.Reset()
		currentLesson = nil
	}

	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		switch {
		case course.Title == "" && strings.HasPrefix(trimmed, "Course Title:"):
			course.Title = strings.TrimSpace(strings.TrimPrefix(trimmed, "Course Title:"))
		case strings.HasPrefix(trimmed, "Course Link:") && currentLesson == nil:
			course.CourseLink = strings.TrimSpace(strings.TrimPrefix(trimmed, "Course Link:"))
		case strings.HasPrefix(trimmed, "Course Instructor:"):
			course.Instructor = strings.TrimSpace(strings.TrimPrefix(trimmed, "Course Instructor:"))
		case lessonHeader.MatchString(trimmed):
			flushLesson()
			matches := lessonHeader.FindStringSubmatch(trimmed)
			number, _ := strconv.Atoi(matches[1])
			currentLesson = &models.Lesson{
				LessonNumber: number,
				Title:        strings.TrimSpace(matches[2]),
			}
		case currentLesson != nil && strings.HasPrefix(trimmed, "Lesson Link:"):
			currentLesson.LessonLink = strings.TrimSpace(strings.TrimPrefix(trimmed, "Lesson Link:"))
		case currentLesson != nil:
			lessonContent.WriteString(line)
			lessonContent.WriteString("\n")
		}
	}
	flushLesson()

	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read course document: %w", err)
	}
	if course.Title == "" {
		return nil, nil, fmt.Errorf("document has no 'Course Title:' header")
	}

	var chunks []models.CourseChunk
	chunkIndex := 0
	for _, lesson := range course.Lessons {
		body := lessonBodies[lesson.LessonNumber]
		if body == "" {
			continue
		}

		lessonNumber := lesson.LessonNumber
		for i, text := range p.ChunkText(body) {
			if i == 0 {
				text = fmt.Sprintf("Course %s Lesson %d content: %s", course.Title, lessonNumber, text)
			}
			chunks = append(chunks, models.CourseChunk{
				Content:      text,
				CourseTitle:  course.Title,
				LessonNumber: &lessonNumber,
				ChunkIndex:   chunkIndex,
			})
			chunkIndex++
		}
	}

	log.Printf("[INFO] Processed course %q: %d lessons, %d chunks", course.Title, len(course.Lessons), len(chunks))
	return course, chunks, nil
}

var sentenceEnd = regexp.MustCompile(`[.!?]+(?:\s+|$)`)

func splitSentences(text string) []string {
	var sentences []string
	last := 0
	for _, loc := range sentenceEnd.FindAllStringIndex(text, -1) {
		if sentence := strings.TrimSpace(text[last:loc[1]]); sentence != "" {
			sentences = append(sentences, sentence)
		}
		last = loc[1]
	}
	if rest := strings.TrimSpace(text[last:]); rest != "" {
		sentences = append(sentences, rest)
	}
	return sentences
}

// ChunkText builds chunks of whole sentences up to the configured size, with
// a sentence-aligned character overlap between consecutive chunks.
func (p *Processor) ChunkText(text string) []string {
	normalized := strings.Join(strings.Fields(text), " ")
	sentences := splitSentences(normalized)
	if len(sentences) == 0 {
		return nil
	}

	var chunks []string
	var current []string
	currentLen := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		chunks = append(chunks, strings.Join(current, " "))

		// Keep trailing sentences up to the overlap budget for continuity.
		var kept []string
		keptLen := 0
		for i := len(current) - 1; i >= 0; i-- {
			if keptLen+len(current[i]) > p.chunkOverlap {
				break
			}
			keptLen += len(current[i]) + 1
			kept = append([]string{current[i]}, kept...)
		}
		current = kept
		currentLen = keptLen
	}

	for _, sentence := range sentences {
		if currentLen > 0 && currentLen+len(sentence) > p.chunkSize {
			flush()
		}
		current = append(current, sentence)
		currentLen += len(sentence) + 1
	}
	if len(current) > 0 {
		chunks = append(chunks, strings.Join(current, " "))
	}

	// Drop a trailing chunk that is pure overlap of the previous one.
	if n := len(chunks); n > 1 && strings.HasSuffix(chunks[n-2], chunks[n-1]) {
		chunks = chunks[:n-1]
	}

	return chunks
}
