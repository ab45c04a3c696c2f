package announce

import (
	"context"
	"html"
	"net/http"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"
)

type TelegramConfig struct {
	Token    string
	ChatID   int64
	ThreadID int
	APIURL   string
}

// Telegram sends the announcement to a chat through the Bot API.
type Telegram struct {
	cfg TelegramConfig
	bot *tele.Bot
}

func NewTelegram(cfg TelegramConfig, client *http.Client) (*Telegram, error) {
	b, err := tele.NewBot(tele.Settings{
		Token:   cfg.Token,
		URL:     strings.TrimSpace(cfg.APIURL),
		Client:  client,
		Offline: true, // no getMe round trip; we only send
	})
	if err != nil {
		return nil, err
	}
	return &Telegram{cfg: cfg, bot: b}, nil
}

func (t *Telegram) Name() string { return "telegram" }

// Announce sends one HTML message. telebot has no context support, so ctx is
// only checked before the call.
func (t *Telegram) Announce(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return &NotifyError{Channel: t.Name(), Err: err}
	}
	_, err := t.bot.Send(tele.ChatID(t.cfg.ChatID), RenderHTML(msg), &tele.SendOptions{
		ParseMode:             tele.ModeHTML,
		ThreadID:              t.cfg.ThreadID,
		DisableWebPagePreview: true,
	})
	if err != nil {
		return &NotifyError{Channel: t.Name(), Err: err}
	}
	return nil
}

// RenderHTML renders a message for Telegram's HTML parse mode.
func RenderHTML(msg Message) string {
	var b strings.Builder
	if s := strings.TrimSpace(msg.Content); s != "" {
		b.WriteString(html.EscapeString(s))
		b.WriteString("\n")
	}
	for _, e := range msg.Embeds {
		b.WriteString("\n<b>")
		if e.URL != "" {
			b.WriteString(`<a href="` + html.EscapeString(e.URL) + `">` + html.EscapeString(e.Title) + `</a>`)
		} else {
			b.WriteString(html.EscapeString(e.Title))
		}
		b.WriteString("</b>\n")
		if e.Description != "" {
			b.WriteString(html.EscapeString(e.Description))
			b.WriteString("\n")
		}
		for i, f := range e.Fields {
			b.WriteString("\n")
			b.WriteString(strconv.Itoa(i + 1))
			b.WriteString(". ")
			b.WriteString(html.EscapeString(f.Name))
			b.WriteString(" <code>")
			b.WriteString(html.EscapeString(f.Value))
			b.WriteString("</code>")
		}
	}
	return strings.TrimSpace(b.String())
}
