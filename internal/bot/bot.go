// Package bot is the Telegram interaction shell: it routes commands and
// callback clicks to the flux and apps cores, renders their results, and
// enforces authorization and metrics through a middleware chain.
package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/sergei-li-tech/tgops/internal/logging"
)

// api is the slice of the Bot API the handlers use. *tgbotapi.BotAPI
// satisfies it; tests substitute a recorder.
type api interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Options wires the bot's collaborators.
type Options struct {
	// AllowedUsers is the authorization allow-list.
	AllowedUsers []int64
	// LogLinks maps app name to log URL for /logs.
	LogLinks map[string]string
	// PollTimeout is the long-poll timeout in seconds.
	PollTimeout int
}

// Bot routes Telegram updates.
type Bot struct {
	client      *tgbotapi.BotAPI
	api         api
	releases    ReleaseService
	reporter    AppReporter
	logLinks    map[string]string
	allowed     map[int64]bool
	pollTimeout int
	log         zerolog.Logger

	handleCommand  Handler
	handleCallback Handler
}

// New builds a Bot on a connected Bot API client.
func New(client *tgbotapi.BotAPI, releases ReleaseService, reporter AppReporter, opts Options) *Bot {
	b := &Bot{
		client:      client,
		api:         client,
		releases:    releases,
		reporter:    reporter,
		logLinks:    opts.LogLinks,
		allowed:     make(map[int64]bool, len(opts.AllowedUsers)),
		pollTimeout: opts.PollTimeout,
		log:         logging.WithComponent("bot"),
	}
	for _, id := range opts.AllowedUsers {
		b.allowed[id] = true
	}
	if b.pollTimeout <= 0 {
		b.pollTimeout = 30
	}
	b.buildPipelines()
	return b
}

// buildPipelines assembles the middleware chains for commands and
// callbacks. Authorization runs outermost so unauthorized traffic never
// reaches the instrumented handlers.
func (b *Bot) buildPipelines() {
	b.handleCommand = Chain(b.dispatchCommand,
		Authorize(b.allowed, b.rejectCommand),
		Instrument(),
	)
	b.handleCallback = Chain(b.dispatchCallback,
		Authorize(b.allowed, b.rejectCallback),
		Instrument(),
	)
}

// Run consumes updates until ctx is cancelled. Each update is handled in
// its own goroutine; interactions share no mutable state.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.pollTimeout
	updates := b.client.GetUpdatesChan(u)

	b.log.Info().Str("username", b.client.Self.UserName).Msg("bot started")

	for {
		select {
		case <-ctx.Done():
			b.client.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			go b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil && update.Message.IsCommand():
		req := &Request{
			UserID:  update.Message.From.ID,
			ChatID:  update.Message.Chat.ID,
			Command: update.Message.Command(),
			Args:    update.Message.CommandArguments(),
		}
		if err := b.handleCommand(ctx, req); err != nil {
			b.log.Error().Err(err).Str("command", req.Command).Int64("user_id", req.UserID).Msg("command failed")
		}

	case update.CallbackQuery != nil:
		cq := update.CallbackQuery
		if cq.Message == nil {
			// Message too old to act on; just clear the loading state.
			b.answerCallback(cq.ID, "")
			return
		}
		req := &Request{
			UserID:     cq.From.ID,
			ChatID:     cq.Message.Chat.ID,
			Command:    callbackAction(cq.Data),
			Callback:   true,
			CallbackID: cq.ID,
			MessageID:  cq.Message.MessageID,
			Data:       cq.Data,
		}
		if err := b.handleCallback(ctx, req); err != nil {
			b.log.Error().Err(err).Str("action", req.Command).Int64("user_id", req.UserID).Msg("callback failed")
		}
	}
}

// callbackAction extracts the action label for metrics from raw callback
// data without fully decoding it; decode errors are still handled by the
// dispatcher.
func callbackAction(data string) string {
	for i := 0; i < len(data); i++ {
		if data[i] == ':' {
			return data[:i]
		}
	}
	return data
}

func (b *Bot) rejectCommand(req *Request) {
	b.log.Warn().Int64("user_id", req.UserID).Msg("unauthorized command")
	b.reply(req.ChatID, unauthorizedText)
}

func (b *Bot) rejectCallback(req *Request) {
	b.log.Warn().Int64("user_id", req.UserID).Msg("unauthorized callback")
	b.answerCallback(req.CallbackID, "⛔️ You are not authorized to perform this action.")
}

// reply sends plain text to a chat.
func (b *Bot) reply(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error().Err(err).Msg("send failed")
	}
}

// replyMarkdown sends Markdown text without link previews.
func (b *Bot) replyMarkdown(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.DisableWebPagePreview = true
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error().Err(err).Msg("send failed")
	}
}

// edit replaces the text of an existing message.
func (b *Bot) edit(chatID int64, messageID int, text string) {
	if _, err := b.api.Send(tgbotapi.NewEditMessageText(chatID, messageID, text)); err != nil {
		b.log.Error().Err(err).Msg("edit failed")
	}
}

// answerCallback acknowledges a callback query, clearing the client's
// loading state.
func (b *Bot) answerCallback(id, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(id, text)); err != nil {
		b.log.Error().Err(err).Msg("answer callback failed")
	}
}
