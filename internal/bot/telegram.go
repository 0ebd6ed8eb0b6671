package bot

import (
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"listbot/internal/ratelimit"
	"listbot/internal/utils"
)

// Options configures the Telegram bot
type Options struct {
	// AuthorizedChatID restricts the bot to a single chat. Zero means no
	// restriction.
	AuthorizedChatID int64
	// Debug enables verbose logging from the Telegram API client
	Debug bool
}

// Bot runs the Telegram long-polling loop, replying to keyword commands and
// mention quick-adds in authorized chats.
type Bot struct {
	api        *tgbotapi.BotAPI
	dispatcher *Dispatcher
	opts       Options
	logger     *utils.Logger
	done       chan struct{}
	stopOnce   sync.Once
}

// New connects to the Telegram API with the given token
func New(token string, dispatcher *Dispatcher, opts Options) (*Bot, error) {
	// Retry 429s inside the transport so bursts of replies in a busy chat
	// don't drop messages
	client := ratelimit.NewClient(100*time.Second, ratelimit.Config{Jitter: true})
	api, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Telegram: %w", err)
	}
	api.Debug = opts.Debug

	return &Bot{
		api:        api,
		dispatcher: dispatcher,
		opts:       opts,
		logger:     utils.GetLogger(),
		done:       make(chan struct{}),
	}, nil
}

// Username returns the bot account's username
func (b *Bot) Username() string {
	return b.api.Self.UserName
}

// Run starts the long-polling update loop and blocks until Stop is called
func (b *Bot) Run() error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	b.logger.Info("Bot @%s started", b.Username())

	for {
		select {
		case <-b.done:
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			b.handleMessage(update.Message)
		}
	}
}

// Stop signals the update loop to exit. Safe to call multiple times.
func (b *Bot) Stop() {
	b.stopOnce.Do(func() {
		close(b.done)
	})
}

func (b *Bot) handleMessage(msg *tgbotapi.Message) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Panic while handling message %q: %v", msg.Text, r)
			b.reply(msg, "An error occurred while processing your request.")
		}
	}()

	if !b.isAuthorizedChat(msg.Chat.ID) {
		b.logger.Warn("Unauthorized chat %d tried to use bot", msg.Chat.ID)
		return
	}
	if msg.From != nil {
		b.logger.Info("Chat ID: %d (user: %d)", msg.Chat.ID, msg.From.ID)
	} else {
		// Channel posts carry no sender
		b.logger.Info("Chat ID: %d (no sender)", msg.Chat.ID)
	}

	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	// Slash commands from Telegram clients map onto the keyword set
	if msg.IsCommand() {
		b.handleSlashCommand(msg)
		return
	}

	if b.isMention(msg) {
		b.handleMention(msg, text)
		return
	}

	response, handled := b.dispatcher.Dispatch(text)
	if !handled {
		// Ordinary chat message, stay silent
		return
	}
	b.reply(msg, response)
}

func (b *Bot) handleSlashCommand(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.reply(msg, b.startBanner())
	case "help":
		b.reply(msg, b.dispatcher.HelpText())
	}
}

func (b *Bot) handleMention(msg *tgbotapi.Message, text string) {
	listName, itemsText, ok := parseMention(text, b.Username())
	if !ok {
		b.reply(msg, fmt.Sprintf(
			"Invalid mention format!\n\nQuick Add Usage:\n@%s <list_name> <item1>, <item2>, <item3>\n\nExample:\n@%s groceries milk, bread, eggs",
			b.Username(), b.Username()))
		return
	}

	response := b.dispatcher.QuickAdd(listName, itemsText)
	b.reply(msg, response)
	b.logger.Info("Quick add in chat %d: %s <- %s", msg.Chat.ID, listName, itemsText)
}

// parseMention extracts the list name and the comma-separated items from a
// "@bot <list> <items...>" message.
func parseMention(text, username string) (listName, itemsText string, ok bool) {
	prefix := "@" + username
	if !strings.HasPrefix(text, prefix) {
		return "", "", false
	}

	rest := strings.TrimSpace(text[len(prefix):])
	if rest == "" {
		return "", "", false
	}

	parts := strings.SplitN(rest, " ", 2)
	if len(parts) < 2 || strings.TrimSpace(parts[1]) == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func (b *Bot) isMention(msg *tgbotapi.Message) bool {
	for _, entity := range msg.Entities {
		if entity.Type == "mention" {
			return true
		}
	}
	return false
}

func (b *Bot) isAuthorizedChat(chatID int64) bool {
	if b.opts.AuthorizedChatID == 0 {
		return true
	}
	return chatID == b.opts.AuthorizedChatID
}

func (b *Bot) reply(msg *tgbotapi.Message, text string) {
	reply := tgbotapi.NewMessage(msg.Chat.ID, text)
	reply.ReplyToMessageID = msg.MessageID
	if _, err := b.api.Send(reply); err != nil {
		b.logger.Error("Failed to send reply: %v", err)
	}
}

func (b *Bot) startBanner() string {
	return fmt.Sprintf(`List Bot is ready!

I'll help you manage lists in this chat using simple keyword commands.

Type any of these to get started:
- help - Show all available commands
- create groceries - Create a new list
- lists - Show all your lists

Quick Example:
- create shopping
- add shopping milk
- show shopping

Quick add by mentioning me:
- @%s shopping bread, eggs, butter`, b.Username())
}
