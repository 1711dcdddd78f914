package db

import (
	"database/sql"
	"fmt"

	"coursechat/models"

	_ "github.com/lib/pq"
)

type CourseRepository interface {
	UpsertCourse(course *models.Course) error
	GetCourseTitles() ([]string, error)
	GetAllCoursesMetadata() ([]*models.CourseMetadata, error)
	GetLessonLink(courseTitle string, lessonNumber int) (string, error)
	CountCourses() (int, error)
	Close() error
}

type PostgresCourseRepository struct {
	db *sql.DB
}

func NewPostgresCourseRepository(databaseURL string) (*PostgresCourseRepository, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresCourseRepository{db: db}, nil
}

func (r *PostgresCourseRepository) UpsertCourse(course *models.Course) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var courseID int
	query := `
		INSERT INTO courses (title, course_link, instructor)
		VALUES ($1, $2, $3)
		ON CONFLICT (title) DO UPDATE SET course_link = $2, instructor = $3
		RETURNING id`

	if err := tx.QueryRow(query, course.Title, course.CourseLink, course.Instructor).Scan(&courseID); err != nil {
		return fmt.Errorf("failed to upsert course: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM lessons WHERE course_id = $1`, courseID); err != nil {
		return fmt.Errorf("failed to clear lessons: %w", err)
	}

	for _, lesson := range course.Lessons {
		_, err := tx.Exec(`
			INSERT INTO lessons (course_id, lesson_number, lesson_title, lesson_link)
			VALUES ($1, $2, $3, $4)`,
			courseID, lesson.LessonNumber, lesson.Title, lesson.LessonLink)
		if err != nil {
			return fmt.Errorf("failed to insert lesson %d: %w", lesson.LessonNumber, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit course upsert: %w", err)
	}

	return nil
}

func (r *PostgresCourseRepository) GetCourseTitles() ([]string, error) {
	rows, err := r.db.Query(`SELECT title FROM courses ORDER BY title`)
	if err != nil {
		return nil, fmt.Errorf("failed to query course titles: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("failed to scan course title: %w", err)
		}
		titles = append(titles, title)
	}

	return titles, rows.Err()
}

func (r *PostgresCourseRepository) GetAllCoursesMetadata() ([]*models.CourseMetadata, error) {
	rows, err := r.db.Query(`
		SELECT c.id, c.title, c.course_link
		FROM courses c
		ORDER BY c.title`)
	if err != nil {
		return nil, fmt.Errorf("failed to query courses: %w", err)
	}
	defer rows.Close()

	var courses []*models.CourseMetadata
	courseIDs := make(map[string]int)

	for rows.Next() {
		var id int
		course := &models.CourseMetadata{Lessons: []models.LessonMetadata{}}
		if err := rows.Scan(&id, &course.Title, &course.CourseLink); err != nil {
			return nil, fmt.Errorf("failed to scan course: %w", err)
		}
		courseIDs[course.Title] = id
		courses = append(courses, course)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, course := range courses {
		lessonRows, err := r.db.Query(`
			SELECT lesson_number, lesson_title
			FROM lessons
			WHERE course_id = $1
			ORDER BY lesson_number`, courseIDs[course.Title])
		if err != nil {
			return nil, fmt.Errorf("failed to query lessons for %q: %w", course.Title, err)
		}

		for lessonRows.Next() {
			var lesson models.LessonMetadata
			if err := lessonRows.Scan(&lesson.LessonNumber, &lesson.LessonTitle); err != nil {
				lessonRows.Close()
				return nil, fmt.Errorf("failed to scan lesson: %w", err)
			}
			course.Lessons = append(course.Lessons, lesson)
		}
		if err := lessonRows.Err(); err != nil {
			lessonRows.Close()
			return nil, err
		}
		lessonRows.Close()
	}

	return courses, nil
}

func (r *PostgresCourseRepository) GetLessonLink(courseTitle string, lessonNumber int) (string, error) {
	query := `
		SELECT l.lesson_link
		FROM lessons l
		JOIN courses c ON c.id = l.course_id
		WHERE c.title = $1 AND l.lesson_number = $2`

	var link sql.NullString
	err := r.db.QueryRow(query, courseTitle, lessonNumber).Scan(&link)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil
		}
		return "", fmt.Errorf("failed to get lesson link: %w", err)
	}

	return link.String, nil
}

func (r *PostgresCourseRepository) CountCourses() (int, error) {
	var count int
	if err := r.db.QueryRow(`SELECT COUNT(*) FROM courses`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count courses: %w", err)
	}
	return count, nil
}

func (r *PostgresCourseRepository) Close() error {
	return r.db.Close()
}
