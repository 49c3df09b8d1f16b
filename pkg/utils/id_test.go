package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateID(t *testing.T) {
	a := GenerateID("sync-agent")
	b := GenerateID("sync-agent")

	assert.True(t, strings.HasPrefix(a, "sync-agent-"))
	assert.NotEqual(t, a, b)
}
