package model

import "time"

// Shared defaults used by both the service and the terminal client.
const (
	DefaultQuestionsPerInterview = 5
	DefaultQuestionDuration      = 30 * time.Second
	DefaultGracePeriod           = 3 * time.Second
	DefaultAutosaveInterval      = 5 * time.Second
	DefaultCompactBreakpoint     = 768
	DefaultCandidate             = "candidate"

	// SkippedAnswer is stored for skipped questions.
	SkippedAnswer = "Question skipped by user."
	// TimeoutAnswer replaces an empty answer at submission.
	TimeoutAnswer = "Time ran out - no answer provided."
)
