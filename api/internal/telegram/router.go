package telegram

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"ocr-lens/api/internal/capture"
	"ocr-lens/api/internal/ocr"
)

// API is the subset of *tgbotapi.BotAPI the router needs.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

type Router struct {
	Bot        API
	Engines    *ocr.Engines
	EngManager *ocr.Manager
	Prep       capture.Preparer
	Capture    capture.Config
	HTTPClient *http.Client
	Log        zerolog.Logger

	sessions sync.Map // chatID -> *capture.Session
	wg       sync.WaitGroup
}

func NewRouter(bot API, engs *ocr.Engines, prep capture.Preparer, cfg capture.Config, log zerolog.Logger) *Router {
	return &Router{
		Bot:        bot,
		Engines:    engs,
		EngManager: ocr.NewManager(engs.Default()),
		Prep:       prep,
		Capture:    cfg,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
		Log:        log.With().Str("component", "telegram").Logger(),
	}
}

// HandleUpdate dispatches one update. Photos are analyzed in the background.
func (r *Router) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.CallbackQuery != nil {
		r.handleCallback(ctx, *upd.CallbackQuery)
		return
	}
	if upd.Message == nil || upd.Message.Chat == nil {
		return
	}
	msg := upd.Message
	if msg.IsCommand() {
		r.HandleCommand(ctx, msg)
		return
	}
	if fileID, ok := imageFileID(msg); ok {
		r.acceptPhoto(ctx, msg.Chat.ID, fileID)
		return
	}
	if msg.Text != "" {
		r.send(msg.Chat.ID, helpText)
	}
}

// Wait blocks until every background capture has finished.
func (r *Router) Wait() { r.wg.Wait() }

func (r *Router) HandleCommand(ctx context.Context, msg *tgbotapi.Message) {
	cid := msg.Chat.ID
	switch msg.Command() {
	case "start", "help":
		r.send(cid, helpText)
	case "health":
		r.send(cid, "OK")
	case "reset":
		r.onReset(cid)
	case "view":
		r.onToggleView(cid)
	case "engine":
		r.handleEngineCommand(cid, msg.CommandArguments())
	default:
		r.send(cid, "Unknown command. "+commandsText)
	}
}

// handleEngineCommand switches the chat's detector.
//
//	/engine
//	/engine vision
//	/engine gemini [model]
//	/engine demo
func (r *Router) handleEngineCommand(chatID int64, argLine string) {
	args := strings.Fields(argLine)
	available := strings.Join(r.Engines.Names(), " | ")
	if len(args) == 0 {
		r.send(chatID, "Current engine: "+r.EngManager.Get(chatID).Name()+"\nAvailable: "+available+
			"\nUsage: /engine <name> [model]")
		return
	}

	det, err := r.Engines.GetEngine(args[0])
	if err != nil {
		r.send(chatID, "Unknown engine. Available: "+available)
		return
	}

	type modelSetter interface {
		SetModel(string)
		GetModel() string
	}
	label := det.Name()
	if ms, ok := det.(modelSetter); ok {
		if len(args) > 1 {
			ms.SetModel(args[1])
		}
		label += " (" + ms.GetModel() + ")"
	}
	r.EngManager.Set(chatID, det)
	r.send(chatID, "Engine: "+label+".")
}

func (r *Router) onReset(chatID int64) {
	if err := r.session(chatID).Reset(); err != nil {
		if errors.Is(err, capture.ErrNothingToReset) {
			r.send(chatID, "Nothing to reset. Send a photo to start.")
			return
		}
		r.send(chatID, err.Error())
		return
	}
	r.send(chatID, "Ready for a new photo.")
}

func (r *Router) onToggleView(chatID int64) {
	sess := r.session(chatID)
	if _, err := sess.ToggleView(); err != nil {
		r.send(chatID, "No result yet. Send a photo first.")
		return
	}
	if out, ok := sess.Current(); ok {
		r.present(chatID, out, sess.View())
	}
}

func (r *Router) send(chatID int64, text string) {
	if _, err := r.Bot.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		r.Log.Warn().Err(err).Int64("chat", chatID).Msg("send failed")
	}
}
