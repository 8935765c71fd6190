package app

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"quizline-service/internal/domain"
)

// SessionService is the attempt state machine: it creates and resumes
// attempts, records answers with consistent counter deltas, and hands
// completed attempts to scoring. All state-changing operations on one
// attempt are serialized through its session context lock.
type SessionService struct {
	store     Store
	questions QuestionRepository
	billing   Billing
	registry  *contextRegistry
	now       func() time.Time

	rndMu sync.Mutex
	rnd   *rand.Rand

	// startMu makes the has-in-progress check and attempt creation atomic
	// with respect to concurrent duplicate starts for the same pair.
	startMu sync.Mutex
}

func NewSessionService(store Store, questions QuestionRepository, billing Billing) *SessionService {
	return &SessionService{
		store:     store,
		questions: questions,
		billing:   billing,
		registry:  newContextRegistry(),
		now:       time.Now,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// NewSessionServiceWithClock is test-only for deterministic timestamps.
func NewSessionServiceWithClock(store Store, questions QuestionRepository, billing Billing, now func() time.Time) *SessionService {
	s := NewSessionService(store, questions, billing)
	s.now = now
	return s
}

// StartResult is the outcome of StartOrResume. Summary is non-nil when a
// resumed attempt turned out to have every question answered and was
// completed on the spot.
type StartResult struct {
	Attempt  domain.Attempt
	Progress domain.AttemptProgress
	Resumed  bool
	Summary  *domain.Summary
}

// AdvanceResult carries either the next question to render or, when the
// attempt ran off the end, the completion summary.
type AdvanceResult struct {
	Question *domain.QuestionView
	Summary  *domain.Summary
}

// StartOrResume resumes the user's in-progress attempt for the quiz, or
// creates a fresh one. It requires an access grant; without one it fails
// with an AccessDeniedError carrying the quiz cost.
func (s *SessionService) StartOrResume(ctx context.Context, userID, quizID string) (StartResult, error) {
	if _, err := s.store.GetQuiz(ctx, quizID); err != nil {
		return StartResult{}, err
	}
	questions, err := s.questions.GetQuestions(ctx, quizID)
	if err != nil {
		return StartResult{}, err
	}

	granted, err := s.billing.HasAccessGrant(ctx, userID, quizID)
	if err != nil {
		return StartResult{}, err
	}
	if !granted {
		return StartResult{}, &domain.AccessDeniedError{QuizID: quizID, Cost: Cost(len(questions))}
	}

	s.startMu.Lock()
	defer s.startMu.Unlock()

	attempt, found, err := s.store.FindInProgressAttempt(ctx, userID, quizID)
	if err != nil {
		return StartResult{}, err
	}
	if found {
		return s.resume(ctx, attempt, questions)
	}

	now := s.now()
	attempt = domain.Attempt{
		ID:        uuid.NewString(),
		QuizID:    quizID,
		UserID:    userID,
		StartedAt: now,
	}
	if err := s.store.CreateAttempt(ctx, attempt); err != nil {
		return StartResult{}, err
	}
	s.registry.getOrCreate(attempt.ID, now)
	return StartResult{
		Attempt: attempt,
		Progress: domain.AttemptProgress{
			Attempt:        attempt,
			TotalQuestions: len(questions),
		},
	}, nil
}

// resume finds the first question (by ascending number) without a recorded
// answer. If none remain the attempt is completed immediately.
func (s *SessionService) resume(ctx context.Context, attempt domain.Attempt, questions []domain.Question) (StartResult, error) {
	answeredIDs, err := s.store.ListRecordedAnswerQuestionIDs(ctx, attempt.ID)
	if err != nil {
		return StartResult{}, err
	}
	answered := make(map[string]bool, len(answeredIDs))
	for _, id := range answeredIDs {
		answered[id] = true
	}

	nextIndex := len(questions)
	for i, q := range questions {
		if !answered[q.ID] {
			nextIndex = i
			break
		}
	}

	// Restore the start time if the context was lost (process restart).
	sctx := s.registry.getOrCreate(attempt.ID, s.now())

	if nextIndex >= len(questions) {
		sctx.mu.Lock()
		defer sctx.mu.Unlock()
		summary, err := s.finish(ctx, attempt, sctx)
		if err != nil {
			return StartResult{}, err
		}
		return StartResult{Attempt: summary.Attempt, Resumed: true, Summary: &summary}, nil
	}

	sctx.mu.Lock()
	sctx.cursor = nextIndex
	sctx.mu.Unlock()

	return StartResult{
		Attempt: attempt,
		Resumed: true,
		Progress: domain.AttemptProgress{
			Attempt:        attempt,
			AnsweredCount:  len(answeredIDs),
			TotalQuestions: len(questions),
			NextIndex:      nextIndex,
		},
	}, nil
}

// Restart abandons every in-progress attempt the user has for the quiz
// and starts a fresh one. The start path never leaves more than one
// behind, but stray rows heal here too. Abandoned attempts are stamped
// completed but never scored: they earn no best snapshot and no rank.
func (s *SessionService) Restart(ctx context.Context, userID, quizID string) (StartResult, error) {
	s.startMu.Lock()
	for {
		attempt, found, err := s.store.FindInProgressAttempt(ctx, userID, quizID)
		if err != nil {
			s.startMu.Unlock()
			return StartResult{}, err
		}
		if !found {
			break
		}
		now := s.now()
		attempt.CompletedAt = &now
		if err := s.store.UpdateAttempt(ctx, attempt); err != nil {
			s.startMu.Unlock()
			return StartResult{}, err
		}
		s.registry.drop(attempt.ID)
	}
	s.startMu.Unlock()

	return s.StartOrResume(ctx, userID, quizID)
}

// RecordAnswer upserts the user's answer to a question. An empty answerID
// means the question was skipped. On re-answer the old category's counter
// is decremented and the new one incremented, so the counters always equal
// the per-category count of recorded answers.
func (s *SessionService) RecordAnswer(ctx context.Context, userID, attemptID, questionID, answerID string) (domain.AnswerFeedback, error) {
	attempt, err := s.store.GetAttempt(ctx, attemptID)
	if err != nil {
		return domain.AnswerFeedback{}, err
	}
	if attempt.UserID != userID {
		return domain.AnswerFeedback{}, domain.ErrUnauthorized
	}

	sctx := s.registry.getOrCreate(attemptID, attempt.StartedAt)
	sctx.mu.Lock()
	defer sctx.mu.Unlock()

	// Re-read under the lock; a concurrent completion may have landed.
	attempt, err = s.store.GetAttempt(ctx, attemptID)
	if err != nil {
		return domain.AnswerFeedback{}, err
	}
	if attempt.Completed() {
		return domain.AnswerFeedback{}, domain.ErrAttemptCompleted
	}

	// The question must belong to the attempt's quiz; counters would
	// otherwise absorb answers from foreign quizzes.
	questions, err := s.questions.GetQuestions(ctx, attempt.QuizID)
	if err != nil {
		return domain.AnswerFeedback{}, err
	}
	inQuiz := false
	for _, q := range questions {
		if q.ID == questionID {
			inQuiz = true
			break
		}
	}
	if !inQuiz {
		return domain.AnswerFeedback{}, domain.ErrQuestionNotFound
	}

	answers, err := s.questions.GetAnswers(ctx, questionID)
	if err != nil {
		return domain.AnswerFeedback{}, err
	}
	if len(answers) == 0 {
		return domain.AnswerFeedback{}, domain.ErrQuestionNotFound
	}

	var correctText string
	for _, a := range answers {
		if a.IsCorrect {
			correctText = a.Text
		}
	}

	rec := domain.RecordedAnswer{
		AttemptID:  attemptID,
		QuestionID: questionID,
		IsSkipped:  answerID == "",
	}
	if answerID != "" {
		var selected *domain.Answer
		for i := range answers {
			if answers[i].ID == answerID {
				selected = &answers[i]
				break
			}
		}
		if selected == nil {
			return domain.AnswerFeedback{}, domain.ErrAnswerNotFound
		}
		rec.AnswerID = answerID
		rec.IsCorrect = selected.IsCorrect
	}

	existing, exists, err := s.store.GetRecordedAnswer(ctx, attemptID, questionID)
	if err != nil {
		return domain.AnswerFeedback{}, err
	}
	if exists {
		decrementCategory(&attempt, existing)
	}
	incrementCategory(&attempt, rec)

	if err := s.store.UpsertRecordedAnswer(ctx, rec); err != nil {
		return domain.AnswerFeedback{}, err
	}
	if err := s.store.UpdateAttempt(ctx, attempt); err != nil {
		return domain.AnswerFeedback{}, err
	}

	return domain.AnswerFeedback{
		QuestionID:        questionID,
		Correct:           rec.IsCorrect,
		Skipped:           rec.IsSkipped,
		CorrectAnswerText: correctText,
	}, nil
}

func decrementCategory(attempt *domain.Attempt, rec domain.RecordedAnswer) {
	switch {
	case rec.IsSkipped:
		if attempt.SkippedCount > 0 {
			attempt.SkippedCount--
		}
	case rec.IsCorrect:
		if attempt.CorrectCount > 0 {
			attempt.CorrectCount--
		}
	default:
		if attempt.WrongCount > 0 {
			attempt.WrongCount--
		}
	}
}

func incrementCategory(attempt *domain.Attempt, rec domain.RecordedAnswer) {
	switch {
	case rec.IsSkipped:
		attempt.SkippedCount++
	case rec.IsCorrect:
		attempt.CorrectCount++
	default:
		attempt.WrongCount++
	}
}

// Advance moves the attempt to the next question and renders it; past the
// last question it completes the attempt and returns the summary instead.
func (s *SessionService) Advance(ctx context.Context, userID, attemptID string) (AdvanceResult, error) {
	attempt, err := s.store.GetAttempt(ctx, attemptID)
	if err != nil {
		return AdvanceResult{}, err
	}
	if attempt.UserID != userID {
		return AdvanceResult{}, domain.ErrUnauthorized
	}

	sctx := s.registry.getOrCreate(attemptID, attempt.StartedAt)
	sctx.mu.Lock()
	defer sctx.mu.Unlock()

	attempt, err = s.store.GetAttempt(ctx, attemptID)
	if err != nil {
		return AdvanceResult{}, err
	}
	if attempt.Completed() {
		return AdvanceResult{}, domain.ErrAttemptCompleted
	}

	questions, err := s.questions.GetQuestions(ctx, attempt.QuizID)
	if err != nil {
		return AdvanceResult{}, err
	}

	next := sctx.cursor + 1
	if next >= len(questions) {
		summary, err := s.finish(ctx, attempt, sctx)
		if err != nil {
			return AdvanceResult{}, err
		}
		return AdvanceResult{Summary: &summary}, nil
	}

	view, err := s.renderLocked(ctx, attemptID, questions, next)
	if err != nil {
		return AdvanceResult{}, err
	}
	sctx.cursor = next
	return AdvanceResult{Question: &view}, nil
}

// RenderQuestion renders the question at the given index with a freshly
// shuffled answer order, and moves the attempt's cursor there. Safe to
// call repeatedly for the same index; each render shuffles anew.
func (s *SessionService) RenderQuestion(ctx context.Context, attemptID string, index int) (domain.QuestionView, error) {
	attempt, err := s.store.GetAttempt(ctx, attemptID)
	if err != nil {
		return domain.QuestionView{}, err
	}

	sctx := s.registry.getOrCreate(attemptID, attempt.StartedAt)
	sctx.mu.Lock()
	defer sctx.mu.Unlock()

	questions, err := s.questions.GetQuestions(ctx, attempt.QuizID)
	if err != nil {
		return domain.QuestionView{}, err
	}
	if index < 0 || index >= len(questions) {
		return domain.QuestionView{}, domain.ErrQuestionNotFound
	}
	view, err := s.renderLocked(ctx, attemptID, questions, index)
	if err != nil {
		return domain.QuestionView{}, err
	}
	sctx.cursor = index
	return view, nil
}

func (s *SessionService) renderLocked(ctx context.Context, attemptID string, questions []domain.Question, index int) (domain.QuestionView, error) {
	question := questions[index]
	answers, err := s.questions.GetAnswers(ctx, question.ID)
	if err != nil {
		return domain.QuestionView{}, err
	}

	s.rndMu.Lock()
	display := presentAnswers(answers, s.rnd)
	s.rndMu.Unlock()

	return domain.QuestionView{
		AttemptID:  attemptID,
		QuestionID: question.ID,
		Index:      index,
		Total:      len(questions),
		Text:       question.Text,
		Answers:    display,
	}, nil
}

// Progress reports how far an in-progress attempt has come.
func (s *SessionService) Progress(ctx context.Context, attemptID string) (domain.AttemptProgress, error) {
	attempt, err := s.store.GetAttempt(ctx, attemptID)
	if err != nil {
		return domain.AttemptProgress{}, err
	}
	questions, err := s.questions.GetQuestions(ctx, attempt.QuizID)
	if err != nil {
		return domain.AttemptProgress{}, err
	}
	answeredIDs, err := s.store.ListRecordedAnswerQuestionIDs(ctx, attempt.ID)
	if err != nil {
		return domain.AttemptProgress{}, err
	}
	return domain.AttemptProgress{
		Attempt:        attempt,
		AnsweredCount:  len(answeredIDs),
		TotalQuestions: len(questions),
	}, nil
}

// QuizCost returns the access-grant price for a quiz.
func (s *SessionService) QuizCost(ctx context.Context, quizID string) (int64, error) {
	questions, err := s.questions.GetQuestions(ctx, quizID)
	if err != nil {
		return 0, err
	}
	return Cost(len(questions)), nil
}
