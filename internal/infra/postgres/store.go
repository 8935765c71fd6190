package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quizline-service/internal/app"
	"quizline-service/internal/domain"
)

// Store is the Postgres implementation of app.Store. Entities are flat
// rows keyed by id with explicit foreign keys; relationships are queries.
type Store struct {
	pool *pgxpool.Pool
}

var _ app.Store = (*Store)(nil)

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// CreateQuiz inserts the quiz with all questions and answers in one
// transaction; a quiz is never visible half-assembled.
func (s *Store) CreateQuiz(ctx context.Context, bundle domain.QuizBundle) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO quizzes (id, name, creator_id, file_path, created_at) VALUES ($1, $2, $3, $4, $5)`,
		bundle.Quiz.ID, bundle.Quiz.Name, bundle.Quiz.CreatorID, bundle.Quiz.FilePath, bundle.Quiz.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert quiz: %w", err)
	}
	for _, q := range bundle.Questions {
		_, err = tx.Exec(ctx,
			`INSERT INTO questions (id, quiz_id, number, text) VALUES ($1, $2, $3, $4)`,
			q.ID, q.QuizID, q.Number, q.Text)
		if err != nil {
			return fmt.Errorf("insert question: %w", err)
		}
	}
	for _, a := range bundle.Answers {
		_, err = tx.Exec(ctx,
			`INSERT INTO answers (id, question_id, text, is_correct, origin_letter) VALUES ($1, $2, $3, $4, $5)`,
			a.ID, a.QuestionID, a.Text, a.IsCorrect, a.OriginLetter)
		if err != nil {
			return fmt.Errorf("insert answer: %w", err)
		}
	}
	return tx.Commit(ctx)
}

func (s *Store) ListQuizzes(ctx context.Context) ([]domain.Quiz, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, creator_id, file_path, created_at FROM quizzes ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	var quizzes []domain.Quiz
	for rows.Next() {
		var q domain.Quiz
		if err := rows.Scan(&q.ID, &q.Name, &q.CreatorID, &q.FilePath, &q.CreatedAt); err != nil {
			return nil, err
		}
		quizzes = append(quizzes, q)
	}
	return quizzes, rows.Err()
}

func (s *Store) GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error) {
	var q domain.Quiz
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, creator_id, file_path, created_at FROM quizzes WHERE id=$1`, quizID).
		Scan(&q.ID, &q.Name, &q.CreatorID, &q.FilePath, &q.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("get quiz: %w", err)
	}
	return q, nil
}

func (s *Store) GetQuestions(ctx context.Context, quizID string) ([]domain.Question, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, quiz_id, number, text FROM questions WHERE quiz_id=$1 ORDER BY number`, quizID)
	if err != nil {
		return nil, fmt.Errorf("get questions: %w", err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(&q.ID, &q.QuizID, &q.Number, &q.Text); err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func (s *Store) GetAnswers(ctx context.Context, questionID string) ([]domain.Answer, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, question_id, text, is_correct, origin_letter FROM answers WHERE question_id=$1 ORDER BY origin_letter`, questionID)
	if err != nil {
		return nil, fmt.Errorf("get answers: %w", err)
	}
	defer rows.Close()

	var answers []domain.Answer
	for rows.Next() {
		var a domain.Answer
		if err := rows.Scan(&a.ID, &a.QuestionID, &a.Text, &a.IsCorrect, &a.OriginLetter); err != nil {
			return nil, err
		}
		answers = append(answers, a)
	}
	return answers, rows.Err()
}

func (s *Store) CreateAttempt(ctx context.Context, a domain.Attempt) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO attempts (id, quiz_id, user_id, correct_count, wrong_count, skipped_count,
		   duration_seconds, best_correct, best_wrong, best_skipped, best_duration, started_at, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		a.ID, a.QuizID, a.UserID, a.CorrectCount, a.WrongCount, a.SkippedCount,
		a.DurationSeconds, a.BestCorrect, a.BestWrong, a.BestSkipped, a.BestDuration, a.StartedAt, a.CompletedAt)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

func (s *Store) GetAttempt(ctx context.Context, attemptID string) (domain.Attempt, error) {
	a, err := s.scanAttempt(s.pool.QueryRow(ctx, attemptSelect+` WHERE id=$1`, attemptID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}
	if err != nil {
		return domain.Attempt{}, fmt.Errorf("get attempt: %w", err)
	}
	return a, nil
}

func (s *Store) UpdateAttempt(ctx context.Context, a domain.Attempt) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE attempts SET correct_count=$2, wrong_count=$3, skipped_count=$4, duration_seconds=$5,
		   best_correct=$6, best_wrong=$7, best_skipped=$8, best_duration=$9, completed_at=$10
		 WHERE id=$1`,
		a.ID, a.CorrectCount, a.WrongCount, a.SkippedCount, a.DurationSeconds,
		a.BestCorrect, a.BestWrong, a.BestSkipped, a.BestDuration, a.CompletedAt)
	if err != nil {
		return fmt.Errorf("update attempt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAttemptNotFound
	}
	return nil
}

func (s *Store) FindInProgressAttempt(ctx context.Context, userID, quizID string) (domain.Attempt, bool, error) {
	a, err := s.scanAttempt(s.pool.QueryRow(ctx,
		attemptSelect+` WHERE user_id=$1 AND quiz_id=$2 AND completed_at IS NULL ORDER BY started_at DESC LIMIT 1`,
		userID, quizID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Attempt{}, false, nil
	}
	if err != nil {
		return domain.Attempt{}, false, fmt.Errorf("find attempt: %w", err)
	}
	return a, true, nil
}

func (s *Store) UpsertRecordedAnswer(ctx context.Context, rec domain.RecordedAnswer) error {
	var answerID *string
	if rec.AnswerID != "" {
		answerID = &rec.AnswerID
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO recorded_answers (attempt_id, question_id, answer_id, is_correct, is_skipped)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (attempt_id, question_id)
		 DO UPDATE SET answer_id=EXCLUDED.answer_id, is_correct=EXCLUDED.is_correct, is_skipped=EXCLUDED.is_skipped`,
		rec.AttemptID, rec.QuestionID, answerID, rec.IsCorrect, rec.IsSkipped)
	if err != nil {
		return fmt.Errorf("upsert recorded answer: %w", err)
	}
	return nil
}

func (s *Store) GetRecordedAnswer(ctx context.Context, attemptID, questionID string) (domain.RecordedAnswer, bool, error) {
	var (
		rec      domain.RecordedAnswer
		answerID *string
	)
	err := s.pool.QueryRow(ctx,
		`SELECT attempt_id, question_id, answer_id, is_correct, is_skipped
		 FROM recorded_answers WHERE attempt_id=$1 AND question_id=$2`,
		attemptID, questionID).
		Scan(&rec.AttemptID, &rec.QuestionID, &answerID, &rec.IsCorrect, &rec.IsSkipped)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.RecordedAnswer{}, false, nil
	}
	if err != nil {
		return domain.RecordedAnswer{}, false, fmt.Errorf("get recorded answer: %w", err)
	}
	if answerID != nil {
		rec.AnswerID = *answerID
	}
	return rec, true, nil
}

func (s *Store) ListRecordedAnswerQuestionIDs(ctx context.Context, attemptID string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT question_id FROM recorded_answers WHERE attempt_id=$1`, attemptID)
	if err != nil {
		return nil, fmt.Errorf("list recorded answers: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) ListCompletedAttempts(ctx context.Context, quizID string) ([]domain.Attempt, error) {
	rows, err := s.pool.Query(ctx,
		attemptSelect+` WHERE quiz_id=$1 AND completed_at IS NOT NULL ORDER BY completed_at`, quizID)
	if err != nil {
		return nil, fmt.Errorf("list completed attempts: %w", err)
	}
	defer rows.Close()

	var attempts []domain.Attempt
	for rows.Next() {
		a, err := s.scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

func (s *Store) CountCompletedAttempts(ctx context.Context, quizID string) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM attempts WHERE quiz_id=$1 AND completed_at IS NOT NULL`, quizID).
		Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count completed attempts: %w", err)
	}
	return count, nil
}

const attemptSelect = `SELECT id, quiz_id, user_id, correct_count, wrong_count, skipped_count,
 duration_seconds, best_correct, best_wrong, best_skipped, best_duration, started_at, completed_at
 FROM attempts`

func (s *Store) scanAttempt(row pgx.Row) (domain.Attempt, error) {
	var (
		a         domain.Attempt
		completed *time.Time
	)
	err := row.Scan(&a.ID, &a.QuizID, &a.UserID, &a.CorrectCount, &a.WrongCount, &a.SkippedCount,
		&a.DurationSeconds, &a.BestCorrect, &a.BestWrong, &a.BestSkipped, &a.BestDuration,
		&a.StartedAt, &completed)
	if err != nil {
		return domain.Attempt{}, err
	}
	a.CompletedAt = completed
	return a, nil
}
