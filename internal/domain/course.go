package domain

import "time"

type CourseStatus string

const CourseStatusReady CourseStatus = "READY"

type Course struct {
	ID          string       `db:"id"           json:"id"`
	Title       string       `db:"title"        json:"title"`
	Source      string       `db:"source"       json:"source"`
	Status      CourseStatus `db:"status"       json:"status"`
	CreatorID   string       `db:"creator_id"   json:"creator_id"`
	CreatedAt   time.Time    `db:"created_at"   json:"created_at"`
	GeneratedAt time.Time    `db:"generated_at" json:"generated_at"`
	CategoryIDs []string     `db:"category_ids" json:"category_ids"`
}

type Category struct {
	ID        string    `db:"id"         json:"id"`
	CourseID  string    `db:"course_id"  json:"course_id"`
	Title     string    `db:"title"      json:"title"`
	Position  int       `db:"position"   json:"position"`
	QuizCount int       `db:"quiz_count" json:"quiz_count"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Quiz struct {
	ID            string    `db:"id"             json:"id"`
	CategoryID    string    `db:"category_id"    json:"category_id"`
	CourseID      string    `db:"course_id"      json:"course_id"`
	Position      int       `db:"position"       json:"position"`
	Question      string    `db:"question"       json:"question"`
	Choices       []string  `db:"choices"        json:"choices"`
	CorrectAnswer string    `db:"correct_answer" json:"correct_answer"`
	CreatedAt     time.Time `db:"created_at"     json:"created_at"`
}

// CourseSummary is a course with its category titles resolved.
type CourseSummary struct {
	Course
	CategoryTitles []string `db:"category_titles" json:"category_titles"`
}
