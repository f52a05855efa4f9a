package telegram

import (
	"context"

	"ocr-lens/api/internal/capture"
)

// session returns the chat's capture session, creating it on first use.
// Notices raised during a cycle are sent back to the same chat.
func (r *Router) session(chatID int64) *capture.Session {
	if v, ok := r.sessions.Load(chatID); ok {
		return v.(*capture.Session)
	}
	notify := capture.NotifierFunc(func(_ context.Context, n capture.Notice) {
		r.send(chatID, n.Text())
	})
	log := r.Log.With().Int64("chat", chatID).Logger()
	v, _ := r.sessions.LoadOrStore(chatID, capture.NewSession(r.Capture, r.Prep, notify, log))
	return v.(*capture.Session)
}
