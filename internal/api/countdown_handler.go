package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	practicesession "github.com/quizdrill/backend/internal/domain/practice_session"
	"github.com/quizdrill/backend/internal/worker"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// CountdownMessage is pushed on every tick of a session's countdown.
type CountdownMessage struct {
	SessionID        string `json:"session_id"`
	State            string `json:"state" example:"in_progress"`
	Timed            bool   `json:"timed"`
	RemainingSeconds int    `json:"remaining_seconds" example:"3599"`
	Minutes          int    `json:"minutes" example:"59"`
	Seconds          int    `json:"seconds" example:"59"`
}

func countdownMessage(sess *practicesession.PracticeSession) CountdownMessage {
	remaining, timed := sess.Remaining()
	minutes, seconds := practicesession.Countdown(remaining)
	return CountdownMessage{
		SessionID:        sess.ID,
		State:            sess.State().String(),
		Timed:            timed,
		RemainingSeconds: int(remaining / time.Second),
		Minutes:          minutes,
		Seconds:          seconds,
	}
}

// countdown streams the remaining time of a session until it finishes.
// @Summary      Session countdown
// @Description  WebSocket. Sends a CountdownMessage on connect and on every tick; the last message has state "finished".
// @Tags         Sessions
// @Param        sessionID  path  string  true  "Session ID"
// @Failure      404  {object}  ErrorResponse
// @Router       /sessions/{sessionID}/countdown [get]
func (h *Handler) countdown(w http.ResponseWriter, r *http.Request) {
	sess, err := h.svc.Session(r.PathValue("sessionID"))
	if h.handleServiceError(w, err) {
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "session_id", sess.ID, "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// The client never sends anything; reading only detects the close.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	send := func() bool {
		msg := countdownMessage(sess)
		if err := conn.WriteJSON(msg); err != nil {
			h.logger.Debug("countdown write failed", "session_id", sess.ID, "error", err)
			return true
		}
		return msg.State != practicesession.StateInProgress.String()
	}

	if send() {
		h.closeCountdown(conn)
		return
	}

	ticker := worker.StartPeriodic(ctx, h.tick, func(time.Time) bool {
		return send()
	})
	<-ticker.Done()
	h.closeCountdown(conn)
}

func (h *Handler) closeCountdown(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session finished")
	conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
}
