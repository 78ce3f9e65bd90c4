package telegram

import (
	"context"
	"strconv"

	"github.com/custodia-labs/pollbridge/internal/core/domain"
	"github.com/custodia-labs/pollbridge/internal/core/services"
)

// Dictionaries populate host selection UIs from the Bot API.
type Dictionaries struct {
	client *Client
	dict   *services.DictionaryService
}

// NewDictionaries creates the dictionary set for one client.
func NewDictionaries(client *Client, dict *services.DictionaryService) *Dictionaries {
	return &Dictionaries{client: client, dict: dict}
}

// Chats lists the chats the bot has seen in its pending updates. The
// Bot API has no chat-listing endpoint, so this is derived from
// getUpdates and deduplicated by chat id. Single page, no cursor.
func (d *Dictionaries) Chats(ctx context.Context, search string) (*domain.DictionaryPage, error) {
	fetch := func(ctx context.Context, _ string) ([]map[string]any, string, error) {
		updates, err := d.client.GetUpdates(ctx, 0, pollLimit)
		if err != nil {
			return nil, "", err
		}

		seen := make(map[string]bool)
		items := make([]map[string]any, 0, len(updates))
		for _, update := range updates {
			chat, ok := update.Message["chat"].(map[string]any)
			if !ok {
				continue
			}
			id := chatID(chat)
			if id == "" || seen[id] {
				continue
			}
			seen[id] = true
			items = append(items, map[string]any{
				"id":    id,
				"title": chatTitle(chat),
				"type":  chat["type"],
			})
		}
		return items, "", nil
	}

	return d.dict.List(ctx, fetch, func(item map[string]any) domain.DictionaryItem {
		title, _ := item["title"].(string)
		kind, _ := item["type"].(string)
		return domain.DictionaryItem{
			Label: title,
			Value: item["id"].(string),
			Note:  kind,
		}
	}, services.ListOptions{Search: search, SearchFields: []string{"title"}})
}

// chatID renders the numeric chat id as a string.
func chatID(chat map[string]any) string {
	switch id := chat["id"].(type) {
	case float64:
		return strconv.FormatInt(int64(id), 10)
	case string:
		return id
	default:
		return ""
	}
}

// chatTitle picks the best display name a chat offers: group title,
// then username, then first name.
func chatTitle(chat map[string]any) string {
	for _, key := range []string{"title", "username", "first_name"} {
		if s, ok := chat[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
