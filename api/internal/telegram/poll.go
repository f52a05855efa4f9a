package telegram

import (
	"context"
	"errors"
	"net"
	"regexp"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

// Updater is satisfied by *tgbotapi.BotAPI.
type Updater interface {
	GetUpdates(config tgbotapi.UpdateConfig) ([]tgbotapi.Update, error)
}

const (
	pollTimeoutSec = 30
	baseRetryDelay = 1 * time.Second
	maxRetryDelay  = 15 * time.Second
	idleDelay      = 200 * time.Millisecond
)

var reRetryAfter = regexp.MustCompile(`(?i)retry after\s+(\d+)`)

func retryDelayFromError(err error) time.Duration {
	if err == nil {
		return 0
	}
	var tgErr *tgbotapi.Error
	if errors.As(err, &tgErr) && tgErr.RetryAfter > 0 {
		return time.Duration(tgErr.RetryAfter) * time.Second
	}
	s := strings.ToLower(err.Error())
	if strings.Contains(s, "too many requests") { // HTTP 429
		if m := reRetryAfter.FindStringSubmatch(s); len(m) == 2 {
			if n, _ := strconv.Atoi(m[1]); n > 0 {
				return time.Duration(n) * time.Second
			}
		}
		return 3 * time.Second
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return 2 * time.Second
	}
	return baseRetryDelay
}

// Poll long-polls bot until ctx is done, retrying failed requests with a bounded delay.
func Poll(ctx context.Context, bot Updater, log zerolog.Logger, handle func(context.Context, tgbotapi.Update)) {
	offset := 0
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("polling stopped")
			return
		default:
		}

		u := tgbotapi.NewUpdate(offset)
		u.Timeout = pollTimeoutSec

		updates, err := getUpdates(ctx, bot, u)
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			log.Info().Msg("polling stopped")
			return
		}
		if err != nil {
			d := min(max(retryDelayFromError(err), baseRetryDelay), maxRetryDelay)
			log.Warn().Err(err).Dur("retry_in", d).Msg("polling error")
			if !sleep(ctx, d) {
				return
			}
			continue
		}

		for _, upd := range updates {
			if upd.UpdateID >= offset {
				offset = upd.UpdateID + 1
			}
			handle(ctx, upd)
		}

		if len(updates) == 0 && !sleep(ctx, idleDelay) {
			return
		}
	}
}

type updatesResult struct {
	updates []tgbotapi.Update
	err     error
}

// getUpdates returns as soon as ctx is done. The abandoned long poll finishes on
// its own within pollTimeoutSec and its updates are redelivered on next start.
func getUpdates(ctx context.Context, bot Updater, u tgbotapi.UpdateConfig) ([]tgbotapi.Update, error) {
	ch := make(chan updatesResult, 1)
	go func() {
		updates, err := bot.GetUpdates(u)
		ch <- updatesResult{updates, err}
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		return res.updates, res.err
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
