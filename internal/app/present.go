package app

import (
	"math/rand"

	"quizline-service/internal/domain"
)

// presentAnswers shuffles the answers into a fresh display order and
// assigns sequential labels A, B, C, … The shuffle happens on every
// render; scoring resolves by answer ID, never by label, so display order
// carries no meaning beyond the single render.
func presentAnswers(answers []domain.Answer, rnd *rand.Rand) []domain.DisplayAnswer {
	shuffled := make([]domain.Answer, len(answers))
	copy(shuffled, answers)
	rnd.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	display := make([]domain.DisplayAnswer, len(shuffled))
	for i, a := range shuffled {
		display[i] = domain.DisplayAnswer{
			AnswerID: a.ID,
			Label:    string(rune('A' + i)),
			Text:     a.Text,
		}
	}
	return display
}
