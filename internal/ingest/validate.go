package ingest

import (
	"fmt"

	"quizline-service/internal/domain"
)

// Validate checks the structural invariants of a parsed block: at least
// one question, every question with text, at least 2 answers, and exactly
// one answer marked correct. A failing block is dropped whole before
// assembly; the returned error carries the offending question's position.
func Validate(block domain.ParsedBlock) error {
	if len(block.Questions) == 0 {
		return fmt.Errorf("block is empty: %w", domain.ErrNoValidQuestions)
	}
	for i, q := range block.Questions {
		if q.Text == "" {
			return fmt.Errorf("question %d: %w", i+1, domain.ErrMissingQuestionText)
		}
		if len(q.Answers) < 2 {
			return fmt.Errorf("question %d: %w", i+1, domain.ErrInsufficientAnswers)
		}
		correct := 0
		for _, a := range q.Answers {
			if a.IsCorrect {
				correct++
			}
		}
		if correct != 1 {
			return fmt.Errorf("question %d has %d correct answers: %w", i+1, correct, domain.ErrAmbiguousCorrectMarker)
		}
	}
	return nil
}
