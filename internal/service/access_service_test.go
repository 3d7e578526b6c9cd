package service

import (
	"context"
	"testing"
	"time"

	"viralizaai-be/internal/entity"
	"viralizaai-be/pkg/entitlement"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasAccess_AdminBypass(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	admin := entity.Principal{UserId: uuid.New(), Role: entity.UserRoleAdmin}

	has, err := h.access.HasAccess(ctx, admin, "Consultor IA")
	require.NoError(t, err)
	assert.True(t, has)

	grants, err := h.access.ListAccess(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, grants, len(h.matrix.Catalog()))
	for _, g := range grants {
		assert.Equal(t, entity.AccessTypeAdmin, g.AccessType)
		assert.True(t, g.HasAccess)
	}
	assert.Empty(t, h.grantsOf(t, admin.UserId))
}

func TestHasAccess_NoGrant(t *testing.T) {
	h := newHarness(t)

	has, err := h.access.HasAccess(context.Background(), user(uuid.New()), "Gerador de QR Code")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestHasAccess_LazyExpiry(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	payer := uuid.New()

	rec := h.create(t, payer, entity.PaymentKindPlan, "Plano Mensal", "97.00")
	_, err := h.processor.Confirm(ctx, rec.Id, "tx")
	require.NoError(t, err)

	h.clock.Advance(30 * day)
	has, err := h.access.HasAccess(ctx, user(payer), "Gerador de Hashtags")
	require.NoError(t, err)
	assert.True(t, has, "valid through the expiry instant")

	h.clock.Advance(time.Second)
	has, err = h.access.HasAccess(ctx, user(payer), "Gerador de Hashtags")
	require.NoError(t, err)
	assert.False(t, has)

	listed, err := h.access.ListAccess(ctx, user(payer))
	require.NoError(t, err)
	assert.Empty(t, listed)

	// The row itself is untouched until the purge runs.
	for _, g := range h.grantsOf(t, payer) {
		assert.True(t, g.HasAccess)
	}
}

func TestPurgeExpired(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	planBuyer, toolBuyer := uuid.New(), uuid.New()

	plan := h.create(t, planBuyer, entity.PaymentKindPlan, "Plano Mensal", "97.00")
	_, err := h.processor.Confirm(ctx, plan.Id, "tx-plan")
	require.NoError(t, err)
	tool := h.create(t, toolBuyer, entity.PaymentKindTool, "Gerador de QR Code", "47.00")
	_, err = h.processor.Confirm(ctx, tool.Id, "tx-tool")
	require.NoError(t, err)

	n, err := h.access.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	h.clock.Advance(31 * day)
	n, err = h.access.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(len(h.matrix.Tools(entitlement.TierMonthly))), n)

	for _, g := range h.grantsOf(t, planBuyer) {
		assert.False(t, g.HasAccess)
	}

	// Individual purchases never expire.
	has, err := h.access.HasAccess(ctx, user(toolBuyer), "Gerador de QR Code")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestRunPurger_StopsOnCancel(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		h.access.RunPurger(ctx, 5*time.Millisecond)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("purger did not stop")
	}
}
