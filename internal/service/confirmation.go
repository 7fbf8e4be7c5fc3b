package service

import (
	"fmt"
	"strings"
	"time"

	"rentdesk/internal/models"

	"github.com/google/uuid"
)

// NewConfirmationCode builds the human-shareable code: channel prefix,
// creation instant, and a random suffix. The timestamp alone can collide
// when two admissions land in the same millisecond; the suffix plus the
// UNIQUE column constraint close that gap.
func NewConfirmationCode(channel string, now time.Time) string {
	prefix := models.CodePrefixUser
	if channel == models.ChannelGuest {
		prefix = models.CodePrefixGuest
	}
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return fmt.Sprintf("%s%d-%s", prefix, now.UnixMilli(), suffix)
}
