package types

import (
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"
)

const (
	UUID_PREFIX_PLAN        = "plan"
	UUID_PREFIX_USER        = "user"
	UUID_PREFIX_PERIOD      = "period"
	UUID_PREFIX_USAGE_EVENT = "usage"
)

// GenerateUUID returns a lowercase ULID. ULIDs sort lexicographically by
// creation time which keeps index pages hot for append-heavy tables.
func GenerateUUID() string {
	return strings.ToLower(ulid.Make().String())
}

// GenerateUUIDWithPrefix returns a ULID prefixed with the entity type
// ex plan_01h2xcejqtf2nbrexx3vqjhp41
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return fmt.Sprintf("%s_%s", prefix, GenerateUUID())
}
