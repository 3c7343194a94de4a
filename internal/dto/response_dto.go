package dto

import "time"

type ErrorResponse struct {
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

// OptionDTO deliberately omits correctness and weight: users see choices, not
// the answer key.
type OptionDTO struct {
	ID        uint   `json:"id"`
	Text      string `json:"text"`
	SortOrder int    `json:"sort_order"`
}

type QuestionDTO struct {
	ID        uint        `json:"id"`
	TestID    uint        `json:"test_id"`
	Text      string      `json:"text"`
	SortOrder int         `json:"sort_order"`
	Options   []OptionDTO `json:"options,omitempty"`
}

type TestSummaryDTO struct {
	ID            uint   `json:"id"`
	Code          string `json:"code"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	Group         string `json:"group,omitempty"`
	IsActive      bool   `json:"is_active"`
	QuestionCount int    `json:"question_count"`
}

type TestDetailDTO struct {
	ID          uint          `json:"id"`
	Code        string        `json:"code"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Questions   []QuestionDTO `json:"questions,omitempty"`
}

type AttemptDTO struct {
	ID              uint       `json:"id"`
	UserID          uint       `json:"user_id"`
	TestID          uint       `json:"test_id"`
	Status          string     `json:"status"`
	StartedAt       time.Time  `json:"started_at"`
	FinishedAt      *time.Time `json:"finished_at,omitempty"`
	Score           *float64   `json:"score,omitempty"`
	Percent         *float64   `json:"percent,omitempty"`
	LevelGuess      *string    `json:"level_guess,omitempty"`
	DurationSeconds *int       `json:"duration_seconds,omitempty"`
}

type ScoreResultDTO struct {
	TotalQuestions int     `json:"total_questions"`
	TotalScore     float64 `json:"total_score"`
	CorrectCount   int     `json:"correct_count"`
	WrongCount     int     `json:"wrong_count"`
	Percent        float64 `json:"percent"`
	Level          string  `json:"level"`
}

type AwardDTO struct {
	Awarded       int `json:"awarded"`
	MonthlyTotal  int `json:"monthly_total"`
	LifetimeTotal int `json:"lifetime_total"`
}

// SessionStateDTO is what the chat orchestrator renders after every action:
// either the next question to present, or the final result.
type SessionStateDTO struct {
	Attempt  AttemptDTO      `json:"attempt"`
	Resumed  bool            `json:"resumed,omitempty"`
	Finished bool            `json:"finished"`
	Question *QuestionDTO    `json:"question,omitempty"`
	Result   *ScoreResultDTO `json:"result,omitempty"`
	Points   *AwardDTO       `json:"points,omitempty"`
}

type AttemptSummaryDTO struct {
	AttemptDTO
	UserFullName string `json:"user_full_name,omitempty"`
	Username     string `json:"username,omitempty"`
	Phone        string `json:"phone,omitempty"`
	TestName     string `json:"test_name,omitempty"`
	TestCode     string `json:"test_code,omitempty"`
}

// AttemptReportRowDTO is one line of the detail table handed to the report
// renderer collaborator.
type AttemptReportRowDTO struct {
	QuestionID     uint    `json:"question_id"`
	QuestionText   string  `json:"question_text"`
	SortOrder      int     `json:"sort_order"`
	ChosenAnswer   string  `json:"chosen_answer"`
	CorrectAnswers string  `json:"correct_answers"`
	IsCorrect      bool    `json:"is_correct"`
	AwardedScore   float64 `json:"awarded_score"`
}

type AttemptReportDTO struct {
	Summary AttemptSummaryDTO     `json:"summary"`
	Rows    []AttemptReportRowDTO `json:"rows"`
}

type ProfileDTO struct {
	ID            uint   `json:"id"`
	TgID          int64  `json:"tg_id"`
	FullName      string `json:"full_name,omitempty"`
	Username      string `json:"username,omitempty"`
	Phone         string `json:"phone,omitempty"`
	IsStudent     bool   `json:"is_student"`
	MonthlyTotal  int    `json:"monthly_total"`
	LifetimeTotal int    `json:"lifetime_total"`
}
