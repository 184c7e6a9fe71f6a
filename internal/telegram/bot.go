package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"recipe-book/internal/app"
	"recipe-book/internal/config"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// maxMessageLen is Telegram's limit for one text message.
const maxMessageLen = 4096

// commandTimeout bounds a single command, network calls included.
const commandTimeout = 30 * time.Second

// Sender is the part of the Telegram API the bot talks to.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Bot relays chat messages to the command interpreter.
type Bot struct {
	api  Sender
	app  *app.App
	cfg  *config.Config
	wg   sync.WaitGroup
	poll *tgbotapi.BotAPI
}

// NewBot initializes the Telegram API. With a webhook URL configured the
// webhook is registered; otherwise Run falls back to long polling.
func NewBot(cfg *config.Config, application *app.App) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to init telegram api: %w", err)
	}
	log.Printf("Authorized on account %s", api.Self.UserName)

	if cfg.TelegramWebhookURL != "" {
		wh, err := tgbotapi.NewWebhook(cfg.TelegramWebhookURL)
		if err != nil {
			return nil, fmt.Errorf("invalid webhook url %s: %w", cfg.TelegramWebhookURL, err)
		}
		resp, err := api.Request(wh)
		if err != nil {
			return nil, fmt.Errorf("failed to set webhook to %s: %w", cfg.TelegramWebhookURL, err)
		}
		log.Printf("Webhook set response: %s", resp.Description)
	}

	b := newBot(api, cfg, application)
	b.poll = api
	return b, nil
}

func newBot(api Sender, cfg *config.Config, application *app.App) *Bot {
	return &Bot{api: api, app: application, cfg: cfg}
}

// Routes returns the HTTP handler serving the webhook and a health check.
func (b *Bot) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/webhook", b.handleWebhook)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	return r
}

// Run long-polls for updates until ctx is done. It is only used when no
// webhook is configured.
func (b *Bot) Run(ctx context.Context) {
	if b.poll == nil {
		return
	}
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.poll.GetUpdatesChan(u)
	for {
		select {
		case <-ctx.Done():
			b.poll.StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.dispatch(update)
		}
	}
}

// Wait blocks until every in-flight command has replied.
func (b *Bot) Wait() {
	b.wg.Wait()
}

func (b *Bot) handleWebhook(w http.ResponseWriter, r *http.Request) {
	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		log.Printf("Error parsing update: %v", err)
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	b.dispatch(update)
	w.WriteHeader(http.StatusOK)
}

func (b *Bot) dispatch(update tgbotapi.Update) {
	var (
		from   *tgbotapi.User
		chatID int64
		text   string
	)
	switch {
	case update.CallbackQuery != nil:
		q := update.CallbackQuery
		if q.Message == nil || q.Message.Chat == nil {
			return
		}
		from, chatID, text = q.From, q.Message.Chat.ID, q.Data
		if _, err := b.api.Request(tgbotapi.NewCallback(q.ID, "")); err != nil {
			log.Printf("Failed to answer callback: %v", err)
		}
	case update.Message != nil && update.Message.Chat != nil:
		from, chatID, text = update.Message.From, update.Message.Chat.ID, update.Message.Text
	default:
		return
	}

	if !b.isAllowed(from) {
		return
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.processMessage(chatID, text)
	}()
}

func (b *Bot) isAllowed(from *tgbotapi.User) bool {
	if from == nil {
		return false
	}
	if b.cfg.TelegramAllowUserID == 0 || from.ID != b.cfg.TelegramAllowUserID {
		log.Printf("Unauthorized access attempt from UserID: %d (@%s)", from.ID, from.UserName)
		return false
	}
	return true
}

// toCommand maps free text onto a command: links are imported and anything
// else is searched for.
func toCommand(text string) string {
	text = strings.TrimSpace(text)
	switch {
	case text == "/start":
		return "/help"
	case strings.HasPrefix(text, "/"):
		return text
	case strings.HasPrefix(text, "http://") || strings.HasPrefix(text, "https://"):
		return "/import " + text
	default:
		return "/search " + text
	}
}

func (b *Bot) processMessage(chatID int64, text string) {
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	input := toCommand(text)
	out, err := b.app.Execute(ctx, input)
	if err != nil {
		out = "❌ " + err.Error()
	}

	chunks := splitMessage(out)
	for i, chunk := range chunks {
		msg := tgbotapi.NewMessage(chatID, chunk)
		if err == nil && i == len(chunks)-1 && showsRecipe(input) {
			msg.ReplyMarkup = recipeKeyboard()
		}
		if _, sendErr := b.api.Send(msg); sendErr != nil {
			log.Printf("Failed to send reply to chat %d: %v", chatID, sendErr)
			return
		}
	}
}

// showsRecipe reports whether a command's reply is a recipe card.
func showsRecipe(input string) bool {
	name, _, _ := strings.Cut(input, " ")
	name, _, _ = strings.Cut(name, "\n")
	switch name {
	case "/recipe", "/servings", "/upload", "/import":
		return true
	}
	return false
}

func recipeKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔖 Bookmark", "/bookmark"),
			tgbotapi.NewInlineKeyboardButtonData("📅 Plan", "/planadd"),
			tgbotapi.NewInlineKeyboardButtonData("🛒 Shop", "/shopadd"),
		),
	)
}

// splitMessage cuts text into chunks Telegram accepts, preferring line breaks.
// Empty text yields no chunks, so nothing is sent.
func splitMessage(text string) []string {
	if text == "" {
		return nil
	}
	var chunks []string
	for utf8.RuneCountInString(text) > maxMessageLen {
		cut := byteOffset(text, maxMessageLen)
		if nl := strings.LastIndex(text[:cut], "\n"); nl > 0 {
			cut = nl + 1
		}
		chunks = append(chunks, text[:cut])
		text = text[cut:]
	}
	return append(chunks, text)
}

// byteOffset returns the byte index just past the first n runes of s.
func byteOffset(s string, n int) int {
	for i := range s {
		if n == 0 {
			return i
		}
		n--
	}
	return len(s)
}
