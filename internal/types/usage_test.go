package types

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
)

func TestUsageEventFilterValidate(t *testing.T) {
	t.Run("default filter is valid", func(t *testing.T) {
		assert.NoError(t, NewUsageEventFilter().Validate())
	})

	t.Run("negative limit is rejected", func(t *testing.T) {
		f := NewUsageEventFilter()
		f.Limit = lo.ToPtr(-5)
		assert.Error(t, f.Validate())
	})

	t.Run("limit above max is rejected", func(t *testing.T) {
		f := NewUsageEventFilter()
		f.Limit = lo.ToPtr(FilterMaxLimit + 1)
		assert.Error(t, f.Validate())
	})

	t.Run("negative offset is rejected", func(t *testing.T) {
		f := NewUsageEventFilter()
		f.Offset = lo.ToPtr(-1)
		assert.Error(t, f.Validate())
	})

	t.Run("limit at max is accepted", func(t *testing.T) {
		f := NewUsageEventFilter()
		f.Limit = lo.ToPtr(FilterMaxLimit)
		assert.NoError(t, f.Validate())
	})

	t.Run("nil pagination falls back to defaults", func(t *testing.T) {
		f := &UsageEventFilter{}
		assert.NoError(t, f.Validate())
		assert.Equal(t, FilterDefaultLimit, f.GetLimit())
		assert.Equal(t, 0, f.GetOffset())
	})

	t.Run("end before start is rejected", func(t *testing.T) {
		f := NewUsageEventFilter()
		start := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
		end := start.Add(-time.Hour)
		f.StartTime = &start
		f.EndTime = &end
		assert.Error(t, f.Validate())
	})

	t.Run("invalid type is rejected", func(t *testing.T) {
		f := NewUsageEventFilter()
		f.Type = UsageType("fax")
		assert.Error(t, f.Validate())
	})
}
