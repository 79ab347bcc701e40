package models

import (
	"fmt"
	"strings"
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// ChatMessage is one entry of the context sent to the completion endpoint.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// ValidateChat checks a conversation turn before it is sent anywhere.
func ValidateChat(msgs []ChatMessage) error {
	if len(msgs) == 0 {
		return fmt.Errorf("at least one message is required")
	}
	for i, m := range msgs {
		if !m.Role.Valid() {
			return fmt.Errorf("message %d: unknown role %q", i, m.Role)
		}
	}
	if strings.TrimSpace(msgs[len(msgs)-1].Content) == "" {
		return fmt.Errorf("last message is empty")
	}
	return nil
}

type Message struct {
	ID        string    `json:"id"`
	ConvID    string    `json:"conversation_id"`
	Role      Role      `json:"role"` // user, assistant, or system
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type Conversation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

const titleLimit = 40

// TitleFromMessage derives a conversation title from its first message.
func TitleFromMessage(message string) string {
	message = strings.TrimSpace(message)
	runes := []rune(message)
	cut := runes
	if len(cut) > titleLimit {
		cut = cut[:titleLimit]
	}
	title := capitalize(string(cut))
	if len(runes) > titleLimit {
		title += "..."
	}
	return title
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r := []rune(strings.ToLower(s))
	first := strings.ToUpper(string(r[0]))
	return first + string(r[1:])
}
