package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// ChannelRoute maps a chat to its summarization settings.
type ChannelRoute struct {
	// Style names the registered summary style for this chat.
	Style string `json:"style"`

	// DatabaseID optionally routes pages to a chat-specific database.
	DatabaseID string `json:"notion_database_id,omitempty"`

	// Model optionally overrides the primary summarizer model.
	Model string `json:"model,omitempty"`
}

// Routing is the channel configuration table. Chats not present here get an
// instruction message instead of a summary; blocked chats are ignored
// entirely.
type Routing struct {
	// Channels is keyed by chat ID in decimal string form, as JSON object
	// keys must be strings.
	Channels map[string]ChannelRoute `json:"channels"`

	Blocked []int64 `json:"blocked_channels"`
}

// LoadRouting reads the routing table from a JSON file. A missing file is an
// empty table, not an error: a fresh install has no channels configured yet.
func LoadRouting(path string) (*Routing, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Routing{Channels: map[string]ChannelRoute{}}, nil
		}

		return nil, fmt.Errorf("read channel config: %w", err)
	}

	var routing Routing
	if err := json.Unmarshal(data, &routing); err != nil {
		return nil, fmt.Errorf("parse channel config: %w", err)
	}

	if routing.Channels == nil {
		routing.Channels = map[string]ChannelRoute{}
	}

	return &routing, nil
}

// Lookup returns the route for a chat, if configured.
func (r *Routing) Lookup(chatID int64) (ChannelRoute, bool) {
	route, ok := r.Channels[strconv.FormatInt(chatID, 10)]
	return route, ok
}

// IsBlocked reports whether a chat is on the block list.
func (r *Routing) IsBlocked(chatID int64) bool {
	for _, id := range r.Blocked {
		if id == chatID {
			return true
		}
	}

	return false
}
