package ingest

import (
	"log"
	"sort"
	"time"

	"github.com/google/uuid"

	"quizline-service/internal/domain"
)

// Assemble merges the questions of all valid blocks into one quiz, sorted
// ascending by question number (stable, so ties keep block-then-local
// order). Blocks number independently, so the merged list can repeat a
// number; colliding questions are bumped to the next free value without
// disturbing the order, keeping (quiz, number) unique. Invalid blocks are
// dropped whole and logged; if nothing survives, the terminal
// ErrNoValidQuestions is returned.
func Assemble(blocks []domain.ParsedBlock, name, creatorID string) (domain.QuizBundle, error) {
	var questions []domain.ParsedQuestion
	for i, block := range blocks {
		if err := Validate(block); err != nil {
			log.Printf("ingest: dropping block %d: %v", i+1, err)
			continue
		}
		questions = append(questions, block.Questions...)
	}
	if len(questions) == 0 {
		return domain.QuizBundle{}, domain.ErrNoValidQuestions
	}

	sort.SliceStable(questions, func(i, j int) bool {
		return questions[i].Number < questions[j].Number
	})
	last := 0
	for i := range questions {
		if questions[i].Number <= last {
			questions[i].Number = last + 1
		}
		last = questions[i].Number
	}

	bundle := domain.QuizBundle{
		Quiz: domain.Quiz{
			ID:        uuid.NewString(),
			Name:      name,
			CreatorID: creatorID,
			CreatedAt: time.Now().UTC(),
		},
	}
	for _, pq := range questions {
		question := domain.Question{
			ID:     uuid.NewString(),
			QuizID: bundle.Quiz.ID,
			Number: pq.Number,
			Text:   pq.Text,
		}
		bundle.Questions = append(bundle.Questions, question)
		for idx, pa := range pq.Answers {
			bundle.Answers = append(bundle.Answers, domain.Answer{
				ID:           uuid.NewString(),
				QuestionID:   question.ID,
				Text:         pa.Text,
				IsCorrect:    pa.IsCorrect,
				OriginLetter: originLetter(idx),
			})
		}
	}
	return bundle, nil
}

// originLetter is the stable letter assigned to an answer at creation.
// Display letters are reassigned on every render and never read from here.
func originLetter(idx int) string {
	return string(rune('A' + idx))
}
