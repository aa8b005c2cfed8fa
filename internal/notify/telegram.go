package notify

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/digkill/PromptLibrary/internal/models"
)

const maxSummaryRunes = 700

// Sender is the part of *tgbotapi.BotAPI used for announcements.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramAnnouncer posts newly published articles to a channel.
type TelegramAnnouncer struct {
	sender      Sender
	channelID   int64
	frontendURL string
	log         *slog.Logger
	attempts    uint
	delay       time.Duration
}

func NewTelegramAnnouncer(sender Sender, channelID int64, frontendURL string, log *slog.Logger) *TelegramAnnouncer {
	return &TelegramAnnouncer{
		sender:      sender,
		channelID:   channelID,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		log:         log,
		attempts:    3,
		delay:       time.Second,
	}
}

// AnnounceArticle sends the article as a photo post when it has a cover and
// as a text message otherwise.
func (a *TelegramAnnouncer) AnnounceArticle(ctx context.Context, article *models.Article) error {
	text := a.caption(article)
	var msg tgbotapi.Chattable
	if article.CoverURL != "" {
		photo := tgbotapi.NewPhoto(a.channelID, tgbotapi.FileURL(article.CoverURL))
		photo.Caption = text
		photo.ParseMode = tgbotapi.ModeHTML
		msg = photo
	} else {
		message := tgbotapi.NewMessage(a.channelID, text)
		message.ParseMode = tgbotapi.ModeHTML
		msg = message
	}

	err := retry.Do(
		func() error {
			_, err := a.sender.Send(msg)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(a.attempts),
		retry.Delay(a.delay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			a.log.Warn("telegram announce retry", "article_id", article.ID, "attempt", n+1, "err", err)
		}),
	)
	if err != nil {
		return fmt.Errorf("send telegram announcement: %w", err)
	}
	a.log.Info("article announced", "article_id", article.ID, "channel_id", a.channelID)
	return nil
}

func (a *TelegramAnnouncer) caption(article *models.Article) string {
	var b strings.Builder
	b.WriteString("<b>")
	b.WriteString(html.EscapeString(article.Title))
	b.WriteString("</b>")
	if article.Summary != "" {
		b.WriteString("\n\n")
		b.WriteString(html.EscapeString(shorten(article.Summary, maxSummaryRunes)))
	}
	if a.frontendURL != "" {
		fmt.Fprintf(&b, "\n\n%s/articles/%d", a.frontendURL, article.ID)
	}
	return b.String()
}

// shorten keeps captions under Telegram's photo caption limit.
func shorten(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return strings.TrimSpace(string(runes[:max-1])) + "…"
}
