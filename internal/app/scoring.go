package app

import (
	"context"

	"quizline-service/internal/domain"
)

// finish freezes an attempt: computes its duration from the session
// context, merges the best-so-far snapshot, stamps completion, and ranks
// it among all completed attempts of the quiz. Callers must hold the
// attempt's session context lock.
func (s *SessionService) finish(ctx context.Context, attempt domain.Attempt, sctx *sessionContext) (domain.Summary, error) {
	now := s.now()
	attempt.DurationSeconds = int(now.Sub(sctx.startedAt).Seconds())

	completed, err := s.store.ListCompletedAttempts(ctx, attempt.QuizID)
	if err != nil {
		return domain.Summary{}, err
	}

	isBest := mergeBestSnapshot(&attempt, completed)

	attempt.CompletedAt = &now
	if err := s.store.UpdateAttempt(ctx, attempt); err != nil {
		return domain.Summary{}, err
	}
	s.registry.drop(attempt.ID)

	rank, err := s.rank(ctx, attempt)
	if err != nil {
		return domain.Summary{}, err
	}

	return domain.Summary{Attempt: attempt, Rank: rank, IsBest: isBest}, nil
}

// mergeBestSnapshot fills the attempt's Best* fields from the user's prior
// completed attempts: the prior best is the one with the highest
// BestCorrect, ties broken by lowest BestDuration. The current attempt
// becomes the new best when it scores strictly more correct answers, or
// ties and finished faster. Abandoned attempts carry a zero snapshot and
// so never act as a prior best. Reports whether the attempt is the best.
func mergeBestSnapshot(attempt *domain.Attempt, completed []domain.Attempt) bool {
	var prior *domain.Attempt
	for i := range completed {
		c := &completed[i]
		if c.UserID != attempt.UserID || c.ID == attempt.ID || c.BestCorrect == 0 {
			continue
		}
		if prior == nil ||
			c.BestCorrect > prior.BestCorrect ||
			(c.BestCorrect == prior.BestCorrect && c.BestDuration < prior.BestDuration) {
			prior = c
		}
	}

	if prior == nil ||
		attempt.CorrectCount > prior.BestCorrect ||
		(attempt.CorrectCount == prior.BestCorrect && attempt.DurationSeconds < prior.BestDuration) {
		attempt.BestCorrect = attempt.CorrectCount
		attempt.BestWrong = attempt.WrongCount
		attempt.BestSkipped = attempt.SkippedCount
		attempt.BestDuration = attempt.DurationSeconds
		return true
	}

	attempt.BestCorrect = prior.BestCorrect
	attempt.BestWrong = prior.BestWrong
	attempt.BestSkipped = prior.BestSkipped
	attempt.BestDuration = prior.BestDuration
	return false
}

// rank places the attempt among all completed attempts of the quiz,
// itself included: position is 1 plus the number of attempts with strictly
// more correct answers.
func (s *SessionService) rank(ctx context.Context, attempt domain.Attempt) (domain.Rank, error) {
	completed, err := s.store.ListCompletedAttempts(ctx, attempt.QuizID)
	if err != nil {
		return domain.Rank{}, err
	}
	total, err := s.store.CountCompletedAttempts(ctx, attempt.QuizID)
	if err != nil {
		return domain.Rank{}, err
	}

	better := 0
	for _, c := range completed {
		if c.CorrectCount > attempt.CorrectCount {
			better++
		}
	}

	percentile := 100.0
	if total > 0 {
		percentile = float64(total-better) / float64(total) * 100
	}
	return domain.Rank{
		Position:          better + 1,
		Percentile:        percentile,
		TotalParticipants: total,
	}, nil
}
