package duckdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tinytelemetry/mockview/internal/model"
)

// CreateInterview persists a new interview with its ordered question list.
func (s *Store) CreateInterview(iv model.Interview) error {
	if iv.CreatedAt.IsZero() {
		iv.CreatedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("duckdb: begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO interviews (id, candidate, role, question_index, created_at)
		VALUES (?, ?, ?, ?, ?)`, iv.ID, iv.Candidate, iv.Role, iv.Index, iv.CreatedAt)
	if err != nil {
		return fmt.Errorf("duckdb: insert interview: %w", err)
	}
	for i, qid := range iv.QuestionIDs {
		_, err := tx.ExecContext(ctx, `INSERT INTO interview_questions (interview_id, seq, question_id) VALUES (?, ?, ?)`,
			iv.ID, i, qid)
		if err != nil {
			return fmt.Errorf("duckdb: insert interview question: %w", err)
		}
	}
	return tx.Commit()
}

// GetInterview loads an interview or returns model.ErrNotFound.
func (s *Store) GetInterview(id string) (model.Interview, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	return s.loadInterview(ctx, id)
}

// loadInterview requires the caller to hold s.mu.
func (s *Store) loadInterview(ctx context.Context, id string) (model.Interview, error) {
	var (
		iv          model.Interview
		completedAt sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, `SELECT id, candidate, role, question_index, total_score, completed, created_at, completed_at
		FROM interviews WHERE id = ?`, id).
		Scan(&iv.ID, &iv.Candidate, &iv.Role, &iv.Index, &iv.TotalScore, &iv.Completed, &iv.CreatedAt, &completedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Interview{}, fmt.Errorf("duckdb: interview %s: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return model.Interview{}, fmt.Errorf("duckdb: interview %s: %w", id, err)
	}
	if completedAt.Valid {
		iv.CompletedAt = completedAt.Time
	}

	rows, err := s.db.QueryContext(ctx, `SELECT question_id FROM interview_questions WHERE interview_id = ? ORDER BY seq`, id)
	if err != nil {
		return model.Interview{}, fmt.Errorf("duckdb: interview questions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var qid int64
		if err := rows.Scan(&qid); err != nil {
			return model.Interview{}, fmt.Errorf("duckdb: scan interview question: %w", err)
		}
		iv.QuestionIDs = append(iv.QuestionIDs, qid)
	}
	return iv, rows.Err()
}

// OpenInterview returns the candidate's most recent unfinished interview or
// model.ErrNotFound.
func (s *Store) OpenInterview(candidate string) (model.Interview, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	var id string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM interviews
		WHERE candidate = ? AND NOT completed
		ORDER BY created_at DESC LIMIT 1`, candidate).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Interview{}, fmt.Errorf("duckdb: open interview for %s: %w", candidate, model.ErrNotFound)
	}
	if err != nil {
		return model.Interview{}, fmt.Errorf("duckdb: open interview for %s: %w", candidate, err)
	}
	return s.loadInterview(ctx, id)
}

// RecordAnswer stores a and moves the interview to nextIndex in one
// transaction. A non-empty submission id that is already stored for the
// interview makes it a no-op reporting false.
func (s *Store) RecordAnswer(a model.Answer, nextIndex int) (bool, error) {
	if a.AnsweredAt.IsZero() {
		a.AnsweredAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("duckdb: begin: %w", err)
	}
	defer tx.Rollback()

	if a.SubmissionID != "" {
		var n int
		err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM answers WHERE interview_id = ? AND submission_id = ?`,
			a.InterviewID, a.SubmissionID).Scan(&n)
		if err != nil {
			return false, fmt.Errorf("duckdb: check submission: %w", err)
		}
		if n > 0 {
			return false, nil
		}
	}

	_, err = tx.ExecContext(ctx, `INSERT INTO answers
		(interview_id, question_id, submission_id, user_answer, trigger_kind, score, feedback, answered_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.InterviewID, a.QuestionID, a.SubmissionID, a.Text, string(a.Trigger), a.Score, a.Feedback, a.AnsweredAt)
	if err != nil {
		return false, fmt.Errorf("duckdb: insert answer: %w", err)
	}

	res, err := tx.ExecContext(ctx, `UPDATE interviews SET question_index = ? WHERE id = ?`, nextIndex, a.InterviewID)
	if err != nil {
		return false, fmt.Errorf("duckdb: advance interview: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return false, fmt.Errorf("duckdb: interview %s: %w", a.InterviewID, model.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("duckdb: commit answer: %w", err)
	}
	return true, nil
}

// CompleteInterview marks an interview finished with its final score.
func (s *Store) CompleteInterview(id string, totalScore float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	res, err := s.db.ExecContext(ctx, `UPDATE interviews SET completed = true, completed_at = ?, total_score = ? WHERE id = ?`,
		time.Now().UTC(), totalScore, id)
	if err != nil {
		return fmt.Errorf("duckdb: complete interview: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("duckdb: interview %s: %w", id, model.ErrNotFound)
	}
	return nil
}

// AnswersFor returns the answers of an interview in the order they were given.
func (s *Store) AnswersFor(interviewID string) ([]model.Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `SELECT id, interview_id, question_id, submission_id, user_answer, trigger_kind, score, feedback, answered_at
		FROM answers WHERE interview_id = ? ORDER BY answered_at, id`, interviewID)
	if err != nil {
		return nil, fmt.Errorf("duckdb: answers: %w", err)
	}
	defer rows.Close()

	var out []model.Answer
	for rows.Next() {
		var (
			a       model.Answer
			trigger string
		)
		if err := rows.Scan(&a.ID, &a.InterviewID, &a.QuestionID, &a.SubmissionID, &a.Text, &trigger, &a.Score, &a.Feedback, &a.AnsweredAt); err != nil {
			return nil, fmt.Errorf("duckdb: scan answer: %w", err)
		}
		a.Trigger = model.Trigger(trigger)
		out = append(out, a)
	}
	return out, rows.Err()
}

// CompletedInterviews lists a candidate's finished interviews, newest first.
// A limit of zero or less returns all of them.
func (s *Store) CompletedInterviews(candidate string, limit int) ([]model.InterviewSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	query := `SELECT i.id, i.role, i.total_score, i.completed_at,
			(SELECT COUNT(*) FROM answers a WHERE a.interview_id = i.id) AS answered
		FROM interviews i
		WHERE i.candidate = ? AND i.completed
		ORDER BY i.completed_at DESC, i.id`
	args := []any{candidate}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("duckdb: completed interviews: %w", err)
	}
	defer rows.Close()

	var out []model.InterviewSummary
	for rows.Next() {
		var (
			sum         model.InterviewSummary
			completedAt sql.NullTime
		)
		if err := rows.Scan(&sum.ID, &sum.Role, &sum.TotalScore, &completedAt, &sum.Answered); err != nil {
			return nil, fmt.Errorf("duckdb: scan interview summary: %w", err)
		}
		if completedAt.Valid {
			sum.CompletedAt = completedAt.Time
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}
