package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ocr-lens/api/internal/capture"
)

// maxPhotoBytes matches the Bot API download limit.
const maxPhotoBytes = 20 << 20

// imageFileID picks the largest photo size, or an image sent as a document.
func imageFileID(msg *tgbotapi.Message) (string, bool) {
	if n := len(msg.Photo); n > 0 {
		return msg.Photo[n-1].FileID, true
	}
	if d := msg.Document; d != nil && strings.HasPrefix(d.MimeType, "image/") {
		return d.FileID, true
	}
	return "", false
}

// acceptPhoto starts a capture cycle for the chat. A photo sent while a result is
// shown replaces it. A photo sent while a cycle runs is refused.
func (r *Router) acceptPhoto(ctx context.Context, chatID int64, fileID string) {
	sess := r.session(chatID)
	if sess.State() == capture.Displaying {
		_ = sess.Reset()
	}
	if !sess.CanCapture() {
		r.send(chatID, busyText)
		return
	}
	det := r.EngManager.Get(chatID)
	r.send(chatID, "Photo received, analyzing...")

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		out, err := sess.Capture(ctx, photoCamera{r: r, fileID: fileID}, det)
		switch {
		case errors.Is(err, capture.ErrBusy), errors.Is(err, capture.ErrDisplaying):
			r.send(chatID, busyText)
		case err != nil:
			// the session already told the user
		default:
			r.present(chatID, out, sess.View())
		}
	}()
}

const busyText = "Still analyzing the previous photo, please wait."

// photoCamera is the capture source for one Telegram file.
type photoCamera struct {
	r      *Router
	fileID string
}

func (c photoCamera) TakePhoto(ctx context.Context) ([]byte, error) {
	url, err := c.r.Bot.GetFileDirectURL(c.fileID)
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}
	return download(ctx, c.r.HTTPClient, url)
}

func download(ctx context.Context, hc *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("download status %d: %s", resp.StatusCode, string(b))
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxPhotoBytes+1))
	if err != nil {
		return nil, err
	}
	if len(b) > maxPhotoBytes {
		return nil, fmt.Errorf("photo exceeds %d bytes", maxPhotoBytes)
	}
	return b, nil
}
