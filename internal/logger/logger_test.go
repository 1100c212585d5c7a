package logger

import (
	"context"
	"testing"

	"github.com/dialhaven/dialhaven/internal/types"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithContextAttachesIdentityFields(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	log := &Logger{SugaredLogger: zap.New(core).Sugar()}

	ctx := types.SetRequestID(context.Background(), "req_1")
	ctx = types.SetTenantID(ctx, types.DefaultTenantID)
	ctx = types.SetUserID(ctx, "user_1")

	log.WithContext(ctx).Infow("request handled", "status", 200)

	entries := logs.All()
	assert.Len(t, entries, 1)

	fields := entries[0].ContextMap()
	assert.Equal(t, "req_1", fields["request_id"])
	assert.Equal(t, types.DefaultTenantID, fields["tenant_id"])
	assert.Equal(t, "user_1", fields["user_id"])
	assert.Equal(t, int64(200), fields["status"])
}
