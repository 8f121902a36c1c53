package model

// QuestionStore persists the question bank.
type QuestionStore interface {
	CountQuestions() (int, error)
	InsertQuestions(qs []Question) error
	QuestionsByRole(role string) ([]Question, error)
	QuestionByID(id int64) (Question, error)
}

// InterviewStore persists interviews and their answers.
type InterviewStore interface {
	CreateInterview(iv Interview) error
	GetInterview(id string) (Interview, error)
	OpenInterview(candidate string) (Interview, error)
	// RecordAnswer stores the answer and moves the interview to nextIndex
	// atomically. It reports false when the submission id was already recorded.
	RecordAnswer(a Answer, nextIndex int) (bool, error)
	CompleteInterview(id string, totalScore float64) error
	AnswersFor(interviewID string) ([]Answer, error)
	CompletedInterviews(candidate string, limit int) ([]InterviewSummary, error)
}

// Store is the full storage contract of the service.
type Store interface {
	QuestionStore
	InterviewStore
}

// PracticeAPI is the read/write contract exposed to clients over the socket
// and HTTP surfaces.
type PracticeAPI interface {
	Roles() ([]Role, error)
	Start(candidate, role string) (CurrentQuestion, error)
	Resume(candidate string) (CurrentQuestion, error)
	Current(interviewID, candidate string) (CurrentQuestion, error)
	Submit(sub Submission) (SubmitResult, error)
	Results(interviewID, candidate string) (Results, error)
	History(candidate string) ([]InterviewSummary, error)
	Dashboard(candidate string) (Dashboard, error)
}
