package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"quizline-service/internal/app"
	"quizline-service/internal/domain"
)

// WSHandler is the interactive presentation boundary: it renders
// questions with freshly shuffled answers, records answers and skips, and
// shows feedback and the completion summary. feedbackDelay paces the gap
// between feedback and the next question; it is presentation-only and
// zero in tests.
type WSHandler struct {
	service       *app.SessionService
	upgrader      websocket.Upgrader
	feedbackDelay time.Duration
}

func NewWSHandler(service *app.SessionService, feedbackDelay time.Duration) *WSHandler {
	return &WSHandler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		feedbackDelay: feedbackDelay,
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	QuestionID string `json:"questionId"`
	AnswerID   string `json:"answerId"`
}

// ServeWS upgrades HTTP requests to websockets and drives an attempt.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	userID := r.URL.Query().Get("userId")
	if quizID == "" || userID == "" {
		http.Error(w, "missing quizId or userId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage[any], 16)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	presenter := &interactivePresenter{send: send}
	ctx := r.Context()

	attemptID, done := h.begin(ctx, presenter, send, userID, quizID)
	if !done {
	readLoop:
		for {
			var inbound inboundMessage
			if err := conn.ReadJSON(&inbound); err != nil {
				break
			}
			switch inbound.Type {
			case "answer", "skip":
				var payload answerPayload
				if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
					send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid payload"}}
					continue
				}
				if inbound.Type == "skip" {
					payload.AnswerID = ""
				}
				if finished := h.handleAnswer(ctx, presenter, send, userID, attemptID, payload); finished {
					break readLoop
				}
			case "restart":
				var finished bool
				attemptID, finished = h.handleRestart(ctx, presenter, send, userID, quizID)
				if finished {
					break readLoop
				}
			default:
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
			}
		}
	}

	close(send)
	<-writerDone
}

// begin starts or resumes the attempt and renders the first pending
// question. Returns done=true when there is nothing left to drive (access
// denied, error, or the resume completed the attempt on the spot).
func (h *WSHandler) begin(ctx context.Context, presenter app.Presenter, send chan<- outboundMessage[any], userID, quizID string) (string, bool) {
	result, err := h.service.StartOrResume(ctx, userID, quizID)
	if err != nil {
		var denied *domain.AccessDeniedError
		if errors.As(err, &denied) {
			send <- outboundMessage[any]{Type: "accessDenied", Payload: accessDeniedPayload{QuizID: denied.QuizID, Cost: denied.Cost}}
			return "", true
		}
		send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
		return "", true
	}
	if result.Summary != nil {
		_ = presenter.ShowSummary(*result.Summary)
		return "", true
	}

	send <- outboundMessage[any]{Type: "progress", Payload: result.Progress}

	view, err := h.service.RenderQuestion(ctx, result.Attempt.ID, result.Progress.NextIndex)
	if err != nil {
		send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
		return "", true
	}
	_ = presenter.ShowQuestion(view)
	return result.Attempt.ID, false
}

// handleAnswer records the answer (or skip), shows feedback, pauses, and
// advances. Returns true when the attempt completed.
func (h *WSHandler) handleAnswer(ctx context.Context, presenter app.Presenter, send chan<- outboundMessage[any], userID, attemptID string, payload answerPayload) bool {
	feedback, err := h.service.RecordAnswer(ctx, userID, attemptID, payload.QuestionID, payload.AnswerID)
	if err != nil {
		send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
		return false
	}
	_ = presenter.ShowFeedback(feedback)

	if h.feedbackDelay > 0 {
		select {
		case <-time.After(h.feedbackDelay):
		case <-ctx.Done():
			return true
		}
	}

	advance, err := h.service.Advance(ctx, userID, attemptID)
	if err != nil {
		send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
		return false
	}
	if advance.Summary != nil {
		_ = presenter.ShowSummary(*advance.Summary)
		return true
	}
	_ = presenter.ShowQuestion(*advance.Question)
	return false
}

// handleRestart abandons the current attempt and starts over.
func (h *WSHandler) handleRestart(ctx context.Context, presenter app.Presenter, send chan<- outboundMessage[any], userID, quizID string) (string, bool) {
	result, err := h.service.Restart(ctx, userID, quizID)
	if err != nil {
		send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
		return "", true
	}
	_ = presenter.Acknowledge("restarted")

	send <- outboundMessage[any]{Type: "progress", Payload: result.Progress}
	view, err := h.service.RenderQuestion(ctx, result.Attempt.ID, 0)
	if err != nil {
		send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
		return "", true
	}
	_ = presenter.ShowQuestion(view)
	return result.Attempt.ID, false
}
