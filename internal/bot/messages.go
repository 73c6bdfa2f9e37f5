package bot

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// MessageText gathers every piece of a message where a video link may hide:
// the text body, media captions, embedded text_link entity URLs, and the
// replied-to message. Link previews put the URL in an entity rather than the
// visible text, so entities must be scanned too.
func MessageText(msg *tgbotapi.Message) string {
	var parts []string

	appendText := func(m *tgbotapi.Message) {
		if m == nil {
			return
		}

		if m.Text != "" {
			parts = append(parts, m.Text)
		}

		if m.Caption != "" {
			parts = append(parts, m.Caption)
		}

		parts = append(parts, entityURLs(m.Entities)...)
		parts = append(parts, entityURLs(m.CaptionEntities)...)
	}

	appendText(msg)
	appendText(msg.ReplyToMessage)

	return strings.Join(parts, "\n")
}

func entityURLs(entities []tgbotapi.MessageEntity) []string {
	var urls []string

	for _, e := range entities {
		if e.Type == "text_link" && e.URL != "" {
			urls = append(urls, e.URL)
		}
	}

	return urls
}

// RequesterName renders the message sender for the page footer.
func RequesterName(msg *tgbotapi.Message) string {
	if msg.From == nil {
		return ""
	}

	if msg.From.UserName != "" {
		return "@" + msg.From.UserName
	}

	name := msg.From.FirstName
	if msg.From.LastName != "" {
		name += " " + msg.From.LastName
	}

	return name
}
