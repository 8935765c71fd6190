package app

import (
	"context"

	"quizline-service/internal/domain"
)

// Store abstracts attempt and quiz persistence (in-memory, Postgres, etc).
type Store interface {
	CreateQuiz(ctx context.Context, bundle domain.QuizBundle) error
	ListQuizzes(ctx context.Context) ([]domain.Quiz, error)
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
	// GetQuestions returns the quiz's questions ordered by number.
	GetQuestions(ctx context.Context, quizID string) ([]domain.Question, error)
	GetAnswers(ctx context.Context, questionID string) ([]domain.Answer, error)

	CreateAttempt(ctx context.Context, attempt domain.Attempt) error
	GetAttempt(ctx context.Context, attemptID string) (domain.Attempt, error)
	UpdateAttempt(ctx context.Context, attempt domain.Attempt) error
	FindInProgressAttempt(ctx context.Context, userID, quizID string) (domain.Attempt, bool, error)

	UpsertRecordedAnswer(ctx context.Context, rec domain.RecordedAnswer) error
	GetRecordedAnswer(ctx context.Context, attemptID, questionID string) (domain.RecordedAnswer, bool, error)
	ListRecordedAnswerQuestionIDs(ctx context.Context, attemptID string) ([]string, error)

	ListCompletedAttempts(ctx context.Context, quizID string) ([]domain.Attempt, error)
	CountCompletedAttempts(ctx context.Context, quizID string) (int, error)
}

// QuestionRepository loads quiz content, possibly through a cache. The
// plain Store satisfies it; the redis layer wraps it with a read-through
// cache.
type QuestionRepository interface {
	GetQuestions(ctx context.Context, quizID string) ([]domain.Question, error)
	GetAnswers(ctx context.Context, questionID string) ([]domain.Answer, error)
}

// Billing owns access grants. Granting is external to the engine: the
// engine only checks the grant and reports the cost when it is missing.
type Billing interface {
	HasAccessGrant(ctx context.Context, userID, quizID string) (bool, error)
	GrantAccess(ctx context.Context, userID, quizID string) error
}

// Presenter is the capability the presentation boundary implements to
// deliver engine output. Two variants exist: an interactive reply that
// can acknowledge the triggering action, and a plain message whose
// acknowledge is a no-op. The engine never cares which one is live.
type Presenter interface {
	ShowQuestion(view domain.QuestionView) error
	ShowFeedback(feedback domain.AnswerFeedback) error
	ShowSummary(summary domain.Summary) error
	Acknowledge(text string) error
}
