package announce

import "reblograffle/internal/raffle"

// Template holds the fixed strings of an announcement.
type Template struct {
	Username    string
	Content     string
	Title       string
	URL         string
	Description string
}

type Message struct {
	Username string  `json:"username"`
	Content  string  `json:"content"`
	Embeds   []Embed `json:"embeds"`
}

type Embed struct {
	Title       string          `json:"title"`
	URL         string          `json:"url"`
	Description string          `json:"description"`
	Fields      []raffle.Winner `json:"fields"`
}

// NewMessage builds the single-embed announcement for winners.
func NewMessage(tpl Template, winners []raffle.Winner) Message {
	fields := append([]raffle.Winner{}, winners...)
	return Message{
		Username: tpl.Username,
		Content:  tpl.Content,
		Embeds: []Embed{{
			Title:       tpl.Title,
			URL:         tpl.URL,
			Description: tpl.Description,
			Fields:      fields,
		}},
	}
}

// Winners returns the fields of the first embed.
func (m Message) Winners() []raffle.Winner {
	if len(m.Embeds) == 0 {
		return nil
	}
	return m.Embeds[0].Fields
}
