package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// WebhookPath is the secret path Telegram posts updates to. It is derived from
// the token so it stays stable across restarts.
func WebhookPath(token string) string {
	return "/webhook/" + shortHash(token)
}

// RegisterWebhook points the bot at baseURL + WebhookPath(token), dropping
// updates queued while the bot was offline.
func RegisterWebhook(bot API, baseURL, token string) (string, error) {
	public := strings.TrimRight(baseURL, "/") + WebhookPath(token)
	wh, err := tgbotapi.NewWebhook(public)
	if err != nil {
		return "", fmt.Errorf("webhook url: %w", err)
	}
	wh.DropPendingUpdates = true
	if _, err := bot.Request(wh); err != nil {
		return "", fmt.Errorf("set webhook: %w", err)
	}
	return public, nil
}

// WebhookHandler decodes posted updates and dispatches them with ctx, which must
// outlive the request because photos are analyzed in the background.
func (r *Router) WebhookHandler(ctx context.Context) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var upd tgbotapi.Update
		if err := json.NewDecoder(req.Body).Decode(&upd); err != nil {
			r.Log.Warn().Err(err).Msg("bad webhook payload")
			http.Error(w, "bad update", http.StatusBadRequest)
			return
		}
		r.HandleUpdate(ctx, upd)
		w.WriteHeader(http.StatusOK)
	}
}

// shortHash is FNV-1a 64 in hex. Not a secret by itself, only hard to guess.
func shortHash(s string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return fmt.Sprintf("%016x", h.Sum64())
}
