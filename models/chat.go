package models

// Source is a citation record produced by a content search execution and
// returned to the frontend alongside the final answer.
type Source struct {
	Text string `json:"text"`
	Link string `json:"link,omitempty"`
}

type QueryRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id,omitempty"`
}

type QueryResponse struct {
	Answer    string   `json:"answer"`
	Sources   []Source `json:"sources"`
	SessionID string   `json:"session_id"`
}

// CourseStats is the payload of the courses analytics endpoint.
type CourseStats struct {
	TotalCourses int      `json:"total_courses"`
	CourseTitles []string `json:"course_titles"`
}
