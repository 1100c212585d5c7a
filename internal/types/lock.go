package types

import (
	"fmt"
	"sort"
	"strings"
)

// LockScope represents the scope of a database advisory lock
type LockScope string

const (
	// LockScopeBillingPeriod guards period rollover against concurrent
	// reconciler runs
	LockScopeBillingPeriod LockScope = "billing_period"
)

// GenerateLockKey builds a deterministic lock key from a scope and params.
// The key is a plain string; Postgres hashes it internally via hashtext().
func GenerateLockKey(scope LockScope, params map[string]interface{}) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(string(scope))
	for _, k := range keys {
		b.WriteString(fmt.Sprintf(":%s=%v", k, params[k]))
	}
	return b.String()
}
