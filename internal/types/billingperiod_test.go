package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNextBillingDate(t *testing.T) {
	tests := []struct {
		name     string
		start    time.Time
		months   int
		expected time.Time
	}{
		{
			name:     "mid month advances one month",
			start:    time.Date(2025, 3, 15, 10, 30, 0, 0, time.UTC),
			months:   1,
			expected: time.Date(2025, 4, 15, 10, 30, 0, 0, time.UTC),
		},
		{
			name:     "jan 31 clamps to feb 28",
			start:    time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC),
			months:   1,
			expected: time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "jan 31 clamps to feb 29 in leap year",
			start:    time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
			months:   1,
			expected: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "march 31 clamps to april 30",
			start:    time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC),
			months:   1,
			expected: time.Date(2025, 4, 30, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "december rolls into next year",
			start:    time.Date(2025, 12, 10, 0, 0, 0, 0, time.UTC),
			months:   1,
			expected: time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "multiple months",
			start:    time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
			months:   3,
			expected: time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "time of day preserved",
			start:    time.Date(2025, 5, 20, 23, 59, 59, 0, time.UTC),
			months:   1,
			expected: time.Date(2025, 6, 20, 23, 59, 59, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextBillingDate(tt.start, tt.months)
			assert.True(t, got.Equal(tt.expected), "got %s, want %s", got, tt.expected)
		})
	}
}
