package app

import (
	"math/rand"
	"testing"

	"quizline-service/internal/domain"
)

func TestPresentAnswersAssignsSequentialLabels(t *testing.T) {
	answers := []domain.Answer{
		{ID: "a1", Text: "one", OriginLetter: "A"},
		{ID: "a2", Text: "two", OriginLetter: "B", IsCorrect: true},
		{ID: "a3", Text: "three", OriginLetter: "C"},
		{ID: "a4", Text: "four", OriginLetter: "D"},
	}
	rnd := rand.New(rand.NewSource(42))

	display := presentAnswers(answers, rnd)
	if len(display) != len(answers) {
		t.Fatalf("expected %d display answers, got %d", len(answers), len(display))
	}

	seen := make(map[string]bool)
	for i, d := range display {
		want := string(rune('A' + i))
		if d.Label != want {
			t.Fatalf("display %d label = %q, want %q", i, d.Label, want)
		}
		seen[d.AnswerID] = true
	}
	for _, a := range answers {
		if !seen[a.ID] {
			t.Fatalf("answer %s lost in presentation", a.ID)
		}
	}
}

func TestPresentAnswersShufflesAcrossRenders(t *testing.T) {
	answers := []domain.Answer{
		{ID: "a1", Text: "one"}, {ID: "a2", Text: "two"},
		{ID: "a3", Text: "three"}, {ID: "a4", Text: "four"},
		{ID: "a5", Text: "five"}, {ID: "a6", Text: "six"},
	}
	rnd := rand.New(rand.NewSource(1))

	first := presentAnswers(answers, rnd)
	for i := 0; i < 50; i++ {
		next := presentAnswers(answers, rnd)
		if !sameOrder(first, next) {
			return
		}
	}
	t.Fatalf("50 renders produced identical order; shuffle is not happening")
}

func TestPresentAnswersDoesNotMutateInput(t *testing.T) {
	answers := []domain.Answer{
		{ID: "a1", Text: "one"}, {ID: "a2", Text: "two"}, {ID: "a3", Text: "three"},
	}
	rnd := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		presentAnswers(answers, rnd)
	}
	for i, want := range []string{"a1", "a2", "a3"} {
		if answers[i].ID != want {
			t.Fatalf("input slice mutated: %+v", answers)
		}
	}
}

func sameOrder(a, b []domain.DisplayAnswer) bool {
	for i := range a {
		if a[i].AnswerID != b[i].AnswerID {
			return false
		}
	}
	return true
}
