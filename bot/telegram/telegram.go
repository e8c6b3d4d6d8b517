// Package telegram implements the Telegram channel of the trivia bot.
package telegram

import (
	"context"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/jasonholloway125/Trivia-Bot/store"
	"github.com/jasonholloway125/Trivia-Bot/trivia"
)

// commandPrefix marks messages addressed to the bot. Matching is
// case-insensitive; everything else in the chat is ignored.
const commandPrefix = "!trivia"

const pollTimeoutSeconds = 30

// Dispatcher handles one inbound command and returns the reply text.
type Dispatcher interface {
	Dispatch(ctx context.Context, guildID store.GuildID, input string) string
}

// Config holds configuration for the Telegram channel.
type Config struct {
	BotToken string
}

// Bot runs the Telegram long-polling loop and forwards commands to the
// dispatcher. Each group chat is one guild.
type Bot struct {
	api        *tgbotapi.BotAPI
	dispatcher Dispatcher
	store      store.Store
}

// NewBot creates a new Telegram bot.
func NewBot(config *Config, dispatcher Dispatcher, st store.Store) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(config.BotToken)
	if err != nil {
		return nil, err
	}

	return &Bot{
		api:        api,
		dispatcher: dispatcher,
		store:      st,
	}, nil
}

// Run consumes updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	slog.Info("telegram: logged in", "username", b.api.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeoutSeconds
	u.AllowedUpdates = []string{"message", "my_chat_member"}

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			slog.Info("telegram: update loop stopped")
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.MyChatMember != nil:
		b.handleMembershipChange(update.MyChatMember)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

// handleMembershipChange reacts to the bot being added to or removed from a
// chat. Joining triggers the one-time welcome message; removal evicts the
// chat's full trivia state.
func (b *Bot) handleMembershipChange(change *tgbotapi.ChatMemberUpdated) {
	guildID := store.GuildID(change.Chat.ID)

	switch change.NewChatMember.Status {
	case "member", "administrator":
		if joined(change) {
			slog.Info("telegram: added to chat", "guild_id", guildID)
			b.send(change.Chat.ID, trivia.MsgWelcome)
		}
	case "left", "kicked":
		slog.Info("telegram: removed from chat", "guild_id", guildID)
		if b.store.Remove(guildID) {
			slog.Debug("telegram: dropped state for removed chat", "guild_id", guildID)
		}
	}
}

func joined(change *tgbotapi.ChatMemberUpdated) bool {
	switch change.OldChatMember.Status {
	case "left", "kicked", "":
		return true
	default:
		return false
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From != nil && msg.From.IsBot {
		return
	}

	command, ok := commandText(msg.Text)
	if !ok {
		return
	}

	guildID := store.GuildID(msg.Chat.ID)

	slog.Debug("telegram: received command",
		"guild_id", guildID,
		"message_id", msg.MessageID,
	)

	reply := b.dispatcher.Dispatch(ctx, guildID, command)
	if reply == "" {
		return
	}
	b.send(msg.Chat.ID, reply)
}

// commandText strips the command prefix from a chat message. It reports false
// for messages not addressed to the bot.
func commandText(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(strings.ToLower(trimmed), commandPrefix) {
		return "", false
	}
	return trimmed[len(commandPrefix):], true
}

func (b *Bot) send(chatID int64, text string) {
	slog.Debug("telegram: sending message", "chat_id", chatID, "length", len(text))

	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		slog.Error("telegram: failed to send message", "chat_id", chatID, "error", err)
	}
}
