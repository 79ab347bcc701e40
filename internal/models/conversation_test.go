package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTitleFromMessage(t *testing.T) {
	assert.Equal(t, "Hello there", TitleFromMessage("  hello THERE "))

	long := strings.Repeat("a", 45)
	assert.Equal(t, "A"+strings.Repeat("a", 39)+"...", TitleFromMessage(long))

	exact := strings.Repeat("b", 40)
	assert.Equal(t, "B"+strings.Repeat("b", 39), TitleFromMessage(exact))
}

func TestValidateChat(t *testing.T) {
	assert.Error(t, ValidateChat(nil))
	assert.Error(t, ValidateChat([]ChatMessage{{Role: "robot", Content: "hi"}}))
	assert.Error(t, ValidateChat([]ChatMessage{{Role: RoleUser, Content: "  "}}))
	assert.NoError(t, ValidateChat([]ChatMessage{
		{Role: RoleSystem, Content: "be brief"},
		{Role: RoleUser, Content: "hi"},
	}))
}
