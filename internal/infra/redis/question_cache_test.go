package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"quizline-service/internal/app"
	"quizline-service/internal/domain"
	"quizline-service/internal/infra/memory"
)

type countingSource struct {
	app.QuestionRepository
	questionCalls int
	answerCalls   int
}

func (s *countingSource) GetQuestions(ctx context.Context, quizID string) ([]domain.Question, error) {
	s.questionCalls++
	return s.QuestionRepository.GetQuestions(ctx, quizID)
}

func (s *countingSource) GetAnswers(ctx context.Context, questionID string) ([]domain.Answer, error) {
	s.answerCalls++
	return s.QuestionRepository.GetAnswers(ctx, questionID)
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}

func seededSource(t *testing.T) *countingSource {
	t.Helper()
	store := memory.NewStore()
	err := store.CreateQuiz(context.Background(), domain.QuizBundle{
		Quiz: domain.Quiz{ID: "quiz-1", Name: "cached"},
		Questions: []domain.Question{
			{ID: "q1", QuizID: "quiz-1", Number: 1, Text: "one"},
			{ID: "q2", QuizID: "quiz-1", Number: 2, Text: "two"},
		},
		Answers: []domain.Answer{
			{ID: "a1", QuestionID: "q1", Text: "yes", IsCorrect: true, OriginLetter: "A"},
			{ID: "a2", QuestionID: "q1", Text: "no", OriginLetter: "B"},
		},
	})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	return &countingSource{QuestionRepository: store}
}

func TestQuestionCacheReadThrough(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	source := seededSource(t)
	cache := NewQuestionCache(newClient(mr), source, time.Minute)
	ctx := context.Background()

	questions, err := cache.GetQuestions(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("get questions: %v", err)
	}
	if len(questions) != 2 || questions[0].ID != "q1" {
		t.Fatalf("unexpected questions: %+v", questions)
	}
	if source.questionCalls != 1 {
		t.Fatalf("expected one source call, got %d", source.questionCalls)
	}
	if !mr.Exists(questionsKey("quiz-1")) {
		t.Fatalf("expected %s to be cached", questionsKey("quiz-1"))
	}

	// Second read hits the cache, not the source.
	again, err := cache.GetQuestions(ctx, "quiz-1")
	if err != nil {
		t.Fatalf("get questions again: %v", err)
	}
	if len(again) != 2 {
		t.Fatalf("unexpected cached questions: %+v", again)
	}
	if source.questionCalls != 1 {
		t.Fatalf("expected cache hit, source calls=%d", source.questionCalls)
	}
}

func TestQuestionCacheAnswers(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	source := seededSource(t)
	cache := NewQuestionCache(newClient(mr), source, time.Minute)
	ctx := context.Background()

	answers, err := cache.GetAnswers(ctx, "q1")
	if err != nil {
		t.Fatalf("get answers: %v", err)
	}
	if len(answers) != 2 || !answers[0].IsCorrect {
		t.Fatalf("unexpected answers: %+v", answers)
	}

	if _, err := cache.GetAnswers(ctx, "q1"); err != nil {
		t.Fatalf("get answers again: %v", err)
	}
	if source.answerCalls != 1 {
		t.Fatalf("expected cache hit, source calls=%d", source.answerCalls)
	}
}

func TestQuestionCacheExpiry(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	source := seededSource(t)
	cache := NewQuestionCache(newClient(mr), source, time.Minute)
	ctx := context.Background()

	if _, err := cache.GetQuestions(ctx, "quiz-1"); err != nil {
		t.Fatalf("get questions: %v", err)
	}

	// Jitter stretches the TTL by at most 10%.
	mr.FastForward(2 * time.Minute)

	if _, err := cache.GetQuestions(ctx, "quiz-1"); err != nil {
		t.Fatalf("get questions after expiry: %v", err)
	}
	if source.questionCalls != 2 {
		t.Fatalf("expected reload after expiry, source calls=%d", source.questionCalls)
	}
}

func TestQuestionCacheSourceErrorsPassThrough(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	source := seededSource(t)
	cache := NewQuestionCache(newClient(mr), source, time.Minute)

	if _, err := cache.GetQuestions(context.Background(), "missing"); err != domain.ErrQuizNotFound {
		t.Fatalf("expected quiz not found, got %v", err)
	}
}
