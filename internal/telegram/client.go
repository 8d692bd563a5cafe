// Package telegram sends calendar notifications through the Telegram Bot API:
// a message when the weekday ride is seeded and a counts/price summary on
// request. Messages use MarkdownV2 and are retried with a linear backoff.
package telegram

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rewired-gh/boleia/internal/models"
	"github.com/rewired-gh/boleia/internal/stats"
)

// sender is the part of tgbotapi.BotAPI used here.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Client handles Telegram notifications
type Client struct {
	bot            sender
	chatID         int64
	maxRetries     int
	retryDelayBase time.Duration
}

// NewClient creates a new Telegram client
func NewClient(botToken, chatID string, maxRetries int, retryDelayBase time.Duration) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}
	return newClient(bot, chatID, maxRetries, retryDelayBase)
}

func newClient(bot sender, chatID string, maxRetries int, retryDelayBase time.Duration) (*Client, error) {
	chatIDInt, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat ID: %w", err)
	}

	if maxRetries <= 0 {
		maxRetries = 3
	}
	if retryDelayBase <= 0 {
		retryDelayBase = time.Second
	}

	return &Client{
		bot:            bot,
		chatID:         chatIDInt,
		maxRetries:     maxRetries,
		retryDelayBase: retryDelayBase,
	}, nil
}

// SendSeeded announces a seeded ride.
func (c *Client) SendSeeded(ev models.Event) error {
	return c.send(formatSeeded(ev))
}

// SendSummary sends the per-category counts and price breakdown.
func (c *Client) SendSummary(summary stats.Summary, people []stats.PersonCount) error {
	return c.send(formatSummary(summary, people))
}

func (c *Client) send(text string) error {
	msg := tgbotapi.NewMessage(c.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdownV2

	var lastErr error
	for i := 0; i < c.maxRetries; i++ {
		_, err := c.bot.Send(msg)
		if err == nil {
			return nil
		}
		lastErr = err
		if i < c.maxRetries-1 {
			time.Sleep(c.retryDelayBase * time.Duration(i+1))
		}
	}

	return fmt.Errorf("failed to send message after %d retries: %w", c.maxRetries, lastErr)
}

func formatSeeded(ev models.Event) string {
	var b strings.Builder
	b.WriteString("🚗 *Ride scheduled*\n\n")
	fmt.Fprintf(&b, "📅 %s\n", escapeMarkdownV2(ev.Start))
	fmt.Fprintf(&b, "🏷 %s\n", escapeMarkdownV2(ev.Title))
	if ev.Description != "" {
		fmt.Fprintf(&b, "📝 %s\n", escapeMarkdownV2(ev.Description))
	}
	if len(ev.People) > 0 {
		fmt.Fprintf(&b, "👥 %s\n", escapeMarkdownV2(strings.Join(ev.People, ", ")))
	}
	return b.String()
}

func formatSummary(summary stats.Summary, people []stats.PersonCount) string {
	var b strings.Builder
	b.WriteString("📊 *Calendar summary*\n\n")

	for _, line := range summary.Lines {
		fmt.Fprintf(&b, "• %s: %d × %s \\= *%s*\n",
			escapeMarkdownV2(line.Title),
			line.Count,
			escapeMarkdownV2(stats.FormatAmount(line.Price, "")),
			escapeMarkdownV2(stats.FormatAmount(line.Subtotal, summary.Currency)),
		)
	}
	fmt.Fprintf(&b, "\n💶 Total: *%s*\n", escapeMarkdownV2(stats.FormatAmount(summary.Total, summary.Currency)))

	if len(people) > 0 {
		b.WriteString("\n👥 *People*\n")
		for _, p := range people {
			fmt.Fprintf(&b, "• %s: %d\n", escapeMarkdownV2(p.Name), p.Count)
		}
	}
	return b.String()
}

// escapeMarkdownV2 escapes special characters for Telegram MarkdownV2
func escapeMarkdownV2(text string) string {
	var b strings.Builder
	for _, char := range text {
		switch char {
		case '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(char)
	}
	return b.String()
}
