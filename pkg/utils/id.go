package utils

import (
	"fmt"

	"github.com/google/uuid"
)

// GenerateID returns a prefixed random identifier such as "sync-agent-3f2c...".
func GenerateID(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString())
}
