package duckdb

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/tinytelemetry/mockview/internal/model"
)

const questionColumns = `id, role, question_text, model_answer, keywords, difficulty, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuestion(r rowScanner) (model.Question, error) {
	var q model.Question
	err := r.Scan(&q.ID, &q.Role, &q.Text, &q.ModelAnswer, &q.Keywords, &q.Difficulty, &q.CreatedAt)
	return q, err
}

// CountQuestions returns the size of the question bank.
func (s *Store) CountQuestions() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM questions`).Scan(&n); err != nil {
		return 0, fmt.Errorf("duckdb: count questions: %w", err)
	}
	return n, nil
}

// InsertQuestions adds questions in one transaction. IDs are assigned by the
// database; the ID field of the input is ignored.
func (s *Store) InsertQuestions(qs []model.Question) error {
	if len(qs) == 0 {
		return nil
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

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO questions (role, question_text, model_answer, keywords, difficulty)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("duckdb: prepare question insert: %w", err)
	}
	defer stmt.Close()

	for _, q := range qs {
		diff := q.Difficulty
		if diff == "" {
			diff = "medium"
		}
		if _, err := stmt.ExecContext(ctx, q.Role, q.Text, q.ModelAnswer, q.Keywords, diff); err != nil {
			return fmt.Errorf("duckdb: insert question: %w", err)
		}
	}
	return tx.Commit()
}

// QuestionsByRole returns every question of a role in id order.
func (s *Store) QuestionsByRole(role string) ([]model.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `SELECT `+questionColumns+` FROM questions WHERE role = ? ORDER BY id`, role)
	if err != nil {
		return nil, fmt.Errorf("duckdb: questions by role: %w", err)
	}
	defer rows.Close()

	var out []model.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, fmt.Errorf("duckdb: scan question: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

// QuestionByID returns one question or model.ErrNotFound.
func (s *Store) QuestionByID(id int64) (model.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx, cancel := s.queryCtx()
	defer cancel()

	q, err := scanQuestion(s.db.QueryRowContext(ctx, `SELECT `+questionColumns+` FROM questions WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Question{}, fmt.Errorf("duckdb: question %d: %w", id, model.ErrNotFound)
	}
	if err != nil {
		return model.Question{}, fmt.Errorf("duckdb: question %d: %w", id, err)
	}
	return q, nil
}
