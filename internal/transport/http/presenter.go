package http

import (
	"encoding/json"
	"io"

	"quizline-service/internal/app"
	"quizline-service/internal/domain"
)

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type accessDeniedPayload struct {
	QuizID string `json:"quizId"`
	Cost   int64  `json:"cost"`
}

// interactivePresenter delivers engine output over a live websocket and
// can acknowledge the user action that triggered it. All writes go
// through the connection's single writer goroutine via the send channel.
type interactivePresenter struct {
	send chan<- outboundMessage[any]
}

var _ app.Presenter = (*interactivePresenter)(nil)

func (p *interactivePresenter) ShowQuestion(view domain.QuestionView) error {
	p.send <- outboundMessage[any]{Type: "question", Payload: view}
	return nil
}

func (p *interactivePresenter) ShowFeedback(feedback domain.AnswerFeedback) error {
	p.send <- outboundMessage[any]{Type: "feedback", Payload: feedback}
	return nil
}

func (p *interactivePresenter) ShowSummary(summary domain.Summary) error {
	p.send <- outboundMessage[any]{Type: "summary", Payload: summary}
	return nil
}

func (p *interactivePresenter) Acknowledge(text string) error {
	p.send <- outboundMessage[any]{Type: "ack", Payload: errorPayload{Message: text}}
	return nil
}

// plainPresenter writes engine output as JSON lines to a writer, for
// clients without an interactive channel. Acknowledge is a no-op: there
// is no action to acknowledge on a plain message.
type plainPresenter struct {
	w io.Writer
}

var _ app.Presenter = (*plainPresenter)(nil)

// NewPlainPresenter wraps w in the plain-message presentation variant.
func NewPlainPresenter(w io.Writer) app.Presenter {
	return &plainPresenter{w: w}
}

func (p *plainPresenter) ShowQuestion(view domain.QuestionView) error {
	return json.NewEncoder(p.w).Encode(outboundMessage[any]{Type: "question", Payload: view})
}

func (p *plainPresenter) ShowFeedback(feedback domain.AnswerFeedback) error {
	return json.NewEncoder(p.w).Encode(outboundMessage[any]{Type: "feedback", Payload: feedback})
}

func (p *plainPresenter) ShowSummary(summary domain.Summary) error {
	return json.NewEncoder(p.w).Encode(outboundMessage[any]{Type: "summary", Payload: summary})
}

func (p *plainPresenter) Acknowledge(string) error {
	return nil
}
