package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNoValidQuestions is the terminal ingestion failure: nothing
	// survived validation, so no quiz can be assembled.
	ErrNoValidQuestions = errors.New("no valid questions found")
	// ErrMissingQuestionText rejects a block containing a question with empty text.
	ErrMissingQuestionText = errors.New("question text missing")
	// ErrInsufficientAnswers rejects a block containing a question with fewer than 2 answers.
	ErrInsufficientAnswers = errors.New("question needs at least 2 answers")
	// ErrAmbiguousCorrectMarker rejects a block containing a question that
	// does not have exactly one correct-marked answer.
	ErrAmbiguousCorrectMarker = errors.New("question must have exactly one correct answer")

	// ErrQuizNotFound indicates the quiz does not exist.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrQuestionNotFound indicates a question ID is not part of the quiz.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrAnswerNotFound indicates a submitted answer ID is invalid.
	ErrAnswerNotFound = errors.New("answer not found")
	// ErrAttemptNotFound indicates the attempt does not exist.
	ErrAttemptNotFound = errors.New("attempt not found")
	// ErrAttemptCompleted rejects mutations of a finished attempt.
	ErrAttemptCompleted = errors.New("attempt already completed")
	// ErrUnauthorized rejects callers acting on someone else's attempt.
	ErrUnauthorized = errors.New("attempt belongs to another user")
	// ErrAccessDenied means the user has no access grant for the quiz.
	ErrAccessDenied = errors.New("access to quiz denied")
)

// AccessDeniedError carries the cost the caller must settle before an
// access grant can be issued. errors.Is(err, ErrAccessDenied) matches it.
type AccessDeniedError struct {
	QuizID string
	Cost   int64
}

func (e *AccessDeniedError) Error() string {
	return fmt.Sprintf("access to quiz %s denied: costs %d", e.QuizID, e.Cost)
}

func (e *AccessDeniedError) Is(target error) bool {
	return target == ErrAccessDenied
}
