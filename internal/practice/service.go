// Package practice runs interview sessions: it picks questions, scores
// submitted answers and builds the results, history and dashboard views.
package practice

import (
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/tinytelemetry/mockview/internal/model"
	"github.com/tinytelemetry/mockview/internal/questionbank"
	"github.com/tinytelemetry/mockview/internal/scoring"
)

// dashboardRecent is how many interviews the dashboard lists.
const dashboardRecent = 5

var _ model.PracticeAPI = (*Service)(nil)

// Config tunes a Service.
type Config struct {
	QuestionsPerInterview int
	FuzzyDistance         int
}

// Service implements model.PracticeAPI on top of a model.Store.
type Service struct {
	store  model.Store
	bank   *questionbank.Bank
	scorer scoring.Scorer
	perIv  int

	perm  func(n int) []int
	newID func() string

	mu sync.Mutex // serializes Submit and completion
}

// NewService creates a practice service. bank supplies the role list.
func NewService(store model.Store, bank *questionbank.Bank, cfg Config) *Service {
	if cfg.QuestionsPerInterview <= 0 {
		cfg.QuestionsPerInterview = model.DefaultQuestionsPerInterview
	}
	return &Service{
		store:  store,
		bank:   bank,
		scorer: scoring.Scorer{FuzzyDistance: cfg.FuzzyDistance},
		perIv:  cfg.QuestionsPerInterview,
		perm:   rand.Perm,
		newID:  uuid.NewString,
	}
}

func normalizeCandidate(c string) string {
	c = strings.TrimSpace(c)
	if c == "" {
		return model.DefaultCandidate
	}
	return c
}

// Roles lists the selectable roles.
func (s *Service) Roles() ([]model.Role, error) {
	return append([]model.Role(nil), s.bank.Roles...), nil
}

// Start opens a new interview for candidate with randomly picked questions.
func (s *Service) Start(candidate, role string) (model.CurrentQuestion, error) {
	candidate = normalizeCandidate(candidate)
	if !s.bank.HasRole(role) {
		return model.CurrentQuestion{}, fmt.Errorf("practice: start %q: %w", role, model.ErrUnknownRole)
	}

	qs, err := s.store.QuestionsByRole(role)
	if err != nil {
		return model.CurrentQuestion{}, fmt.Errorf("practice: start: %w", err)
	}
	if len(qs) < s.perIv {
		return model.CurrentQuestion{}, fmt.Errorf("practice: start %q: have %d, need %d: %w",
			role, len(qs), s.perIv, model.ErrNotEnoughQuestions)
	}

	ids := make([]int64, 0, s.perIv)
	for _, i := range s.perm(len(qs))[:s.perIv] {
		ids = append(ids, qs[i].ID)
	}

	iv := model.Interview{
		ID:          s.newID(),
		Candidate:   candidate,
		Role:        role,
		QuestionIDs: ids,
	}
	if err := s.store.CreateInterview(iv); err != nil {
		return model.CurrentQuestion{}, fmt.Errorf("practice: start: %w", err)
	}
	log.Printf("practice: %s started interview %s (%s)", candidate, iv.ID, role)
	return s.current(iv)
}

// Resume returns the current question of the candidate's unfinished interview.
func (s *Service) Resume(candidate string) (model.CurrentQuestion, error) {
	iv, err := s.store.OpenInterview(normalizeCandidate(candidate))
	if err != nil {
		return model.CurrentQuestion{}, fmt.Errorf("practice: resume: %w", err)
	}
	s.mu.Lock()
	finished, err := s.finishPending(iv)
	s.mu.Unlock()
	if err != nil {
		return model.CurrentQuestion{}, err
	}
	if finished {
		return model.CurrentQuestion{}, fmt.Errorf("practice: resume: no open interview: %w", model.ErrNotFound)
	}
	return s.current(iv)
}

// Current returns the question the interview is waiting on.
func (s *Service) Current(interviewID, candidate string) (model.CurrentQuestion, error) {
	iv, err := s.owned(interviewID, candidate)
	if err != nil {
		return model.CurrentQuestion{}, err
	}
	return s.current(iv)
}

func (s *Service) owned(interviewID, candidate string) (model.Interview, error) {
	iv, err := s.store.GetInterview(interviewID)
	if err != nil {
		return model.Interview{}, fmt.Errorf("practice: %w", err)
	}
	if iv.Candidate != normalizeCandidate(candidate) {
		return model.Interview{}, fmt.Errorf("practice: interview %s: %w", interviewID, model.ErrForbidden)
	}
	return iv, nil
}

func (s *Service) current(iv model.Interview) (model.CurrentQuestion, error) {
	total := len(iv.QuestionIDs)
	if iv.Completed || iv.Index >= total {
		return model.CurrentQuestion{}, fmt.Errorf("practice: interview %s: %w", iv.ID, model.ErrInterviewComplete)
	}
	q, err := s.store.QuestionByID(iv.QuestionIDs[iv.Index])
	if err != nil {
		return model.CurrentQuestion{}, fmt.Errorf("practice: current question: %w", err)
	}
	return model.CurrentQuestion{
		InterviewID: iv.ID,
		Question:    q,
		Number:      iv.Index + 1,
		Total:       total,
		Progress:    float64(iv.Index+1) / float64(total) * 100,
	}, nil
}

// Submit scores and stores the answer to the current question and advances
// the interview. Redelivery of a submission id already stored is reported as
// a duplicate and changes nothing.
func (s *Service) Submit(sub model.Submission) (model.SubmitResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	iv, err := s.owned(sub.InterviewID, sub.Candidate)
	if err != nil {
		return model.SubmitResult{}, err
	}

	total := len(iv.QuestionIDs)
	if iv.Completed || iv.Index >= total {
		if _, err := s.finishPending(iv); err != nil {
			return model.SubmitResult{}, err
		}
		if dup, err := s.alreadyStored(iv.ID, sub.ID); err != nil {
			return model.SubmitResult{}, err
		} else if dup {
			return model.SubmitResult{Duplicate: true, Completed: true}, nil
		}
		return model.SubmitResult{}, fmt.Errorf("practice: submit: %w", model.ErrInterviewComplete)
	}

	q, err := s.store.QuestionByID(iv.QuestionIDs[iv.Index])
	if err != nil {
		return model.SubmitResult{}, fmt.Errorf("practice: submit: %w", err)
	}

	text := sub.Answer
	switch {
	case sub.Skipped:
		text = model.SkippedAnswer
	case strings.TrimSpace(text) == "":
		text = model.TimeoutAnswer
	}
	trigger := sub.Trigger
	if trigger == "" {
		trigger = model.TriggerManual
	}

	fb := s.scorer.Score(q, text)
	next := iv.Index + 1
	stored, err := s.store.RecordAnswer(model.Answer{
		InterviewID:  iv.ID,
		QuestionID:   q.ID,
		SubmissionID: sub.ID,
		Text:         text,
		Trigger:      trigger,
		Score:        fb.Score,
		Feedback:     fb.Feedback,
	}, next)
	if err != nil {
		return model.SubmitResult{}, fmt.Errorf("practice: submit: %w", err)
	}
	if !stored {
		return s.duplicate(iv.ID)
	}

	res := model.SubmitResult{Score: fb.Score, Feedback: fb.Feedback}
	if next >= total {
		if err := s.complete(iv.ID); err != nil {
			return model.SubmitResult{}, err
		}
		res.Completed = true
		return res, nil
	}

	iv.Index = next
	cur, err := s.current(iv)
	if err != nil {
		return model.SubmitResult{}, err
	}
	res.Next = &cur
	return res, nil
}

func (s *Service) duplicate(interviewID string) (model.SubmitResult, error) {
	iv, err := s.store.GetInterview(interviewID)
	if err != nil {
		return model.SubmitResult{}, fmt.Errorf("practice: submit: %w", err)
	}
	if _, err := s.finishPending(iv); err != nil {
		return model.SubmitResult{}, err
	}
	res := model.SubmitResult{Duplicate: true}
	cur, err := s.current(iv)
	switch {
	case errors.Is(err, model.ErrInterviewComplete):
		res.Completed = true
	case err != nil:
		return model.SubmitResult{}, err
	default:
		res.Next = &cur
	}
	return res, nil
}

func (s *Service) alreadyStored(interviewID, submissionID string) (bool, error) {
	if submissionID == "" {
		return false, nil
	}
	answers, err := s.store.AnswersFor(interviewID)
	if err != nil {
		return false, fmt.Errorf("practice: submit: %w", err)
	}
	for _, a := range answers {
		if a.SubmissionID == submissionID {
			return true, nil
		}
	}
	return false, nil
}

// finishPending completes an interview whose answers are all recorded but
// whose completion never landed. The caller holds s.mu.
func (s *Service) finishPending(iv model.Interview) (bool, error) {
	if iv.Completed || iv.Index < len(iv.QuestionIDs) {
		return false, nil
	}
	if err := s.complete(iv.ID); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Service) complete(interviewID string) error {
	answers, err := s.store.AnswersFor(interviewID)
	if err != nil {
		return fmt.Errorf("practice: complete: %w", err)
	}
	scores := make([]float64, len(answers))
	for i, a := range answers {
		scores[i] = a.Score
	}
	total := scoring.Average(scores)
	if err := s.store.CompleteInterview(interviewID, total); err != nil {
		return fmt.Errorf("practice: complete: %w", err)
	}
	log.Printf("practice: interview %s completed with %.2f", interviewID, total)
	return nil
}

// Results returns the report of a completed interview.
func (s *Service) Results(interviewID, candidate string) (model.Results, error) {
	iv, err := s.owned(interviewID, candidate)
	if err != nil {
		return model.Results{}, err
	}
	s.mu.Lock()
	finished, err := s.finishPending(iv)
	s.mu.Unlock()
	if err != nil {
		return model.Results{}, err
	}
	if finished {
		if iv, err = s.store.GetInterview(interviewID); err != nil {
			return model.Results{}, fmt.Errorf("practice: results: %w", err)
		}
	}
	if !iv.Completed {
		return model.Results{}, fmt.Errorf("practice: results %s: %w", interviewID, model.ErrNotComplete)
	}

	answers, err := s.store.AnswersFor(interviewID)
	if err != nil {
		return model.Results{}, fmt.Errorf("practice: results: %w", err)
	}
	details := make([]model.AnswerDetail, 0, len(answers))
	for _, a := range answers {
		q, err := s.store.QuestionByID(a.QuestionID)
		if err != nil && !errors.Is(err, model.ErrNotFound) {
			return model.Results{}, fmt.Errorf("practice: results: %w", err)
		}
		details = append(details, model.AnswerDetail{Answer: a, Question: q})
	}

	return model.Results{
		Interview: iv,
		Answers:   details,
		Insights:  scoring.Insights(iv, answers),
	}, nil
}

// History lists the candidate's completed interviews, newest first.
func (s *Service) History(candidate string) ([]model.InterviewSummary, error) {
	out, err := s.store.CompletedInterviews(normalizeCandidate(candidate), 0)
	if err != nil {
		return nil, fmt.Errorf("practice: history: %w", err)
	}
	return out, nil
}

// Dashboard aggregates the candidate's completed interviews.
func (s *Service) Dashboard(candidate string) (model.Dashboard, error) {
	candidate = normalizeCandidate(candidate)
	all, err := s.store.CompletedInterviews(candidate, 0)
	if err != nil {
		return model.Dashboard{}, fmt.Errorf("practice: dashboard: %w", err)
	}
	scores := make([]float64, len(all))
	for i, iv := range all {
		scores[i] = iv.TotalScore
	}
	d := model.Dashboard{
		Candidate:       candidate,
		TotalInterviews: len(all),
		AverageScore:    scoring.Average(scores),
		Recent:          all,
	}
	if len(d.Recent) > dashboardRecent {
		d.Recent = d.Recent[:dashboardRecent]
	}
	return d, nil
}
