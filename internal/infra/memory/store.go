package memory

import (
	"context"
	"sort"
	"sync"

	"quizline-service/internal/app"
	"quizline-service/internal/domain"
)

// Store is an in-memory implementation of app.Store, useful for tests and
// running without Postgres.
type Store struct {
	mu        sync.RWMutex
	quizzes   map[string]domain.Quiz
	quizOrder []string
	// questions holds each quiz's questions ordered by number; answers are
	// keyed by question ID.
	questions map[string][]domain.Question
	answers   map[string][]domain.Answer
	attempts  map[string]domain.Attempt
	// attemptOK keeps attempt IDs in creation order. records nests
	// attempt ID -> question ID -> record; recordIDs holds each attempt's
	// question IDs in first-answer order.
	attemptOK []string
	records   map[string]map[string]domain.RecordedAnswer
	recordIDs map[string][]string
}

var _ app.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{
		quizzes:   make(map[string]domain.Quiz),
		questions: make(map[string][]domain.Question),
		answers:   make(map[string][]domain.Answer),
		attempts:  make(map[string]domain.Attempt),
		records:   make(map[string]map[string]domain.RecordedAnswer),
		recordIDs: make(map[string][]string),
	}
}

func (s *Store) CreateQuiz(_ context.Context, bundle domain.QuizBundle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.quizzes[bundle.Quiz.ID] = bundle.Quiz
	s.quizOrder = append(s.quizOrder, bundle.Quiz.ID)

	questions := make([]domain.Question, len(bundle.Questions))
	copy(questions, bundle.Questions)
	sort.SliceStable(questions, func(i, j int) bool {
		return questions[i].Number < questions[j].Number
	})
	s.questions[bundle.Quiz.ID] = questions

	for _, a := range bundle.Answers {
		s.answers[a.QuestionID] = append(s.answers[a.QuestionID], a)
	}
	return nil
}

func (s *Store) ListQuizzes(_ context.Context) ([]domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quizzes := make([]domain.Quiz, 0, len(s.quizOrder))
	for _, id := range s.quizOrder {
		quizzes = append(quizzes, s.quizzes[id])
	}
	return quizzes, nil
}

func (s *Store) GetQuiz(_ context.Context, quizID string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	quiz, ok := s.quizzes[quizID]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return quiz, nil
}

func (s *Store) GetQuestions(_ context.Context, quizID string) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.quizzes[quizID]; !ok {
		return nil, domain.ErrQuizNotFound
	}
	questions := make([]domain.Question, len(s.questions[quizID]))
	copy(questions, s.questions[quizID])
	return questions, nil
}

func (s *Store) GetAnswers(_ context.Context, questionID string) ([]domain.Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.answers[questionID]
	if !ok {
		return nil, domain.ErrQuestionNotFound
	}
	answers := make([]domain.Answer, len(stored))
	copy(answers, stored)
	return answers, nil
}

func (s *Store) CreateAttempt(_ context.Context, attempt domain.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[attempt.ID] = attempt
	s.attemptOK = append(s.attemptOK, attempt.ID)
	return nil
}

func (s *Store) GetAttempt(_ context.Context, attemptID string) (domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	attempt, ok := s.attempts[attemptID]
	if !ok {
		return domain.Attempt{}, domain.ErrAttemptNotFound
	}
	return attempt, nil
}

func (s *Store) UpdateAttempt(_ context.Context, attempt domain.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.attempts[attempt.ID]; !ok {
		return domain.ErrAttemptNotFound
	}
	s.attempts[attempt.ID] = attempt
	return nil
}

func (s *Store) FindInProgressAttempt(_ context.Context, userID, quizID string) (domain.Attempt, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.attemptOK) - 1; i >= 0; i-- {
		attempt := s.attempts[s.attemptOK[i]]
		if attempt.UserID == userID && attempt.QuizID == quizID && !attempt.Completed() {
			return attempt, true, nil
		}
	}
	return domain.Attempt{}, false, nil
}

func (s *Store) UpsertRecordedAnswer(_ context.Context, rec domain.RecordedAnswer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byQuestion, ok := s.records[rec.AttemptID]
	if !ok {
		byQuestion = make(map[string]domain.RecordedAnswer)
		s.records[rec.AttemptID] = byQuestion
	}
	if _, exists := byQuestion[rec.QuestionID]; !exists {
		s.recordIDs[rec.AttemptID] = append(s.recordIDs[rec.AttemptID], rec.QuestionID)
	}
	byQuestion[rec.QuestionID] = rec
	return nil
}

func (s *Store) GetRecordedAnswer(_ context.Context, attemptID, questionID string) (domain.RecordedAnswer, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[attemptID][questionID]
	return rec, ok, nil
}

func (s *Store) ListRecordedAnswerQuestionIDs(_ context.Context, attemptID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, len(s.recordIDs[attemptID]))
	copy(ids, s.recordIDs[attemptID])
	return ids, nil
}

func (s *Store) ListCompletedAttempts(_ context.Context, quizID string) ([]domain.Attempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var completed []domain.Attempt
	for _, id := range s.attemptOK {
		attempt := s.attempts[id]
		if attempt.QuizID == quizID && attempt.Completed() {
			completed = append(completed, attempt)
		}
	}
	return completed, nil
}

func (s *Store) CountCompletedAttempts(ctx context.Context, quizID string) (int, error) {
	completed, err := s.ListCompletedAttempts(ctx, quizID)
	if err != nil {
		return 0, err
	}
	return len(completed), nil
}
