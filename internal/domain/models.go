package domain

import "time"

// ParsedAnswer is one answer candidate recovered from source text.
type ParsedAnswer struct {
	Text      string
	IsCorrect bool
}

// ParsedQuestion is a question recovered from source text. Number comes
// from the source when present, otherwise it is auto-assigned per block.
type ParsedQuestion struct {
	Number  int
	Text    string
	Answers []ParsedAnswer
}

// ParsedBlock is a run of questions bounded by the ++++ block marker.
// Blocks exist only during ingestion and are discarded after assembly.
type ParsedBlock struct {
	Questions []ParsedQuestion
}

// Quiz is a persisted, immutable set of questions.
type Quiz struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatorID string    `json:"creatorId"`
	FilePath  string    `json:"filePath,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Question belongs to a quiz. Number is unique within the quiz and defines
// presentation order; numbers are not necessarily contiguous.
type Question struct {
	ID     string `json:"id"`
	QuizID string `json:"quizId"`
	Number int    `json:"number"`
	Text   string `json:"text"`
}

// Answer belongs to a question. OriginLetter is assigned once at assembly
// and never reused for display; exactly one answer per question is correct.
type Answer struct {
	ID           string `json:"id"`
	QuestionID   string `json:"questionId"`
	Text         string `json:"text"`
	IsCorrect    bool   `json:"isCorrect"`
	OriginLetter string `json:"originLetter"`
}

// QuizBundle is the assembled, ready-to-persist form of a quiz. Answers
// reference their question by ID; no in-memory back-references exist.
type QuizBundle struct {
	Quiz      Quiz
	Questions []Question
	Answers   []Answer
}

// Attempt is one user's run through a quiz. Counters are mutated only by
// the session engine while CompletedAt is nil; once set the record is
// frozen. Best* is the denormalized best-so-far snapshot for the
// (user, quiz) pair, recomputed at completion.
type Attempt struct {
	ID              string     `json:"id"`
	QuizID          string     `json:"quizId"`
	UserID          string     `json:"userId"`
	CorrectCount    int        `json:"correctCount"`
	WrongCount      int        `json:"wrongCount"`
	SkippedCount    int        `json:"skippedCount"`
	DurationSeconds int        `json:"durationSeconds"`
	BestCorrect     int        `json:"bestCorrect"`
	BestWrong       int        `json:"bestWrong"`
	BestSkipped     int        `json:"bestSkipped"`
	BestDuration    int        `json:"bestDuration"`
	StartedAt       time.Time  `json:"startedAt"`
	CompletedAt     *time.Time `json:"completedAt,omitempty"`
}

// Completed reports whether the attempt has been finalized.
func (a *Attempt) Completed() bool {
	return a.CompletedAt != nil
}

// RecordedAnswer is the user's current answer to one question within an
// attempt. AnswerID is empty when the question was skipped. At most one
// exists per (attempt, question); re-answering overwrites it in place.
type RecordedAnswer struct {
	AttemptID  string `json:"attemptId"`
	QuestionID string `json:"questionId"`
	AnswerID   string `json:"answerId,omitempty"`
	IsCorrect  bool   `json:"isCorrect"`
	IsSkipped  bool   `json:"isSkipped"`
}

// DisplayAnswer is an ephemeral per-render view of an answer. Label is the
// shuffled display letter, distinct from the answer's origin letter.
type DisplayAnswer struct {
	AnswerID string `json:"answerId"`
	Label    string `json:"label"`
	Text     string `json:"text"`
}

// QuestionView is what the presentation layer renders for one question.
type QuestionView struct {
	AttemptID  string          `json:"attemptId"`
	QuestionID string          `json:"questionId"`
	Index      int             `json:"index"`
	Total      int             `json:"total"`
	Text       string          `json:"text"`
	Answers    []DisplayAnswer `json:"answers"`
}

// AnswerFeedback summarizes the outcome of recording one answer.
type AnswerFeedback struct {
	QuestionID        string `json:"questionId"`
	Correct           bool   `json:"correct"`
	Skipped           bool   `json:"skipped"`
	CorrectAnswerText string `json:"correctAnswerText"`
}

// Rank places a completed attempt among all completed attempts of a quiz.
type Rank struct {
	Position          int     `json:"position"`
	Percentile        float64 `json:"percentile"`
	TotalParticipants int     `json:"totalParticipants"`
}

// Summary is the completion report for an attempt.
type Summary struct {
	Attempt Attempt `json:"attempt"`
	Rank    Rank    `json:"rank"`
	IsBest  bool    `json:"isBest"`
}

// AttemptProgress describes a resumable in-progress attempt.
type AttemptProgress struct {
	Attempt        Attempt `json:"attempt"`
	AnsweredCount  int     `json:"answeredCount"`
	TotalQuestions int     `json:"totalQuestions"`
	NextIndex      int     `json:"nextIndex"`
}
