package model

import "time"

// Question is one entry of the question bank.
type Question struct {
	ID          int64
	Role        string
	Text        string
	ModelAnswer string
	Keywords    string // comma-separated
	Difficulty  string // easy/medium/hard
	CreatedAt   time.Time
}

// Interview is one practice run of a candidate for a role.
// QuestionIDs keeps the picked order; Index points at the current question.
type Interview struct {
	ID          string
	Candidate   string
	Role        string
	QuestionIDs []int64
	Index       int
	TotalScore  float64
	Completed   bool
	CreatedAt   time.Time
	CompletedAt time.Time // zero until completed
}

// Answer is a scored answer to one interview question.
type Answer struct {
	ID           int64
	InterviewID  string
	QuestionID   int64
	SubmissionID string
	Text         string
	Trigger      Trigger
	Score        float64
	Feedback     string
	AnsweredAt   time.Time
}

// Trigger names the path that caused a submission.
type Trigger string

const (
	TriggerManual   Trigger = "manual"
	TriggerShortcut Trigger = "shortcut"
	TriggerSkip     Trigger = "skip"
	TriggerExpiry   Trigger = "expiry"
)

// Submission is the form payload sent when a question page submits.
type Submission struct {
	ID          string // client generated, used to drop duplicate deliveries
	InterviewID string
	Candidate   string
	Answer      string
	Trigger     Trigger
	Skipped     bool
}

// Role is a selectable interview track.
type Role struct {
	Key   string
	Label string
}

// CurrentQuestion is what a client needs to render one question page.
type CurrentQuestion struct {
	InterviewID string
	Question    Question
	Number      int // 1-based
	Total       int
	Progress    float64 // percent
}

// SubmitResult reports the outcome of a submission.
type SubmitResult struct {
	Score     float64
	Feedback  string
	Completed bool
	Duplicate bool
	Next      *CurrentQuestion // nil when the interview is complete
}

// Feedback is the scoring outcome for one answer.
type Feedback struct {
	Score    float64
	Feedback string
	Matched  []string
	Missing  []string
}

// Resource is a suggested learning resource.
type Resource struct {
	Name string
	URL  string
}

// Insights summarizes a completed interview.
type Insights struct {
	PerformanceLevel string
	PerformanceColor string // success/info/warning/danger
	Strengths        []string
	Weaknesses       []string
	Resources        []Resource
	HighPerforming   int
	LowPerforming    int
}

// AnswerDetail joins an answer with its question for result views.
type AnswerDetail struct {
	Answer   Answer
	Question Question
}

// Results is the full report for a completed interview.
type Results struct {
	Interview Interview
	Answers   []AnswerDetail
	Insights  Insights
}

// InterviewSummary is a row of the history and dashboard views.
type InterviewSummary struct {
	ID          string
	Role        string
	TotalScore  float64
	Answered    int
	CompletedAt time.Time
}

// Dashboard aggregates a candidate's completed interviews.
type Dashboard struct {
	Candidate       string
	TotalInterviews int
	AverageScore    float64
	Recent          []InterviewSummary
}
