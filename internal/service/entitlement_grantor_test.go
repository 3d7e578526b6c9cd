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

const day = 24 * time.Hour

func TestConfirm_PlanExpiry(t *testing.T) {
	tests := []struct {
		plan string
		tier entitlement.Tier
		want time.Duration
	}{
		{"Plano Mensal", entitlement.TierMonthly, 30 * day},
		{"Plano Trimestral", entitlement.TierQuarterly, 90 * day},
		{"Plano Semestral", entitlement.TierSemiannual, 180 * day},
		{"Plano Anual", entitlement.TierAnnual, 365 * day},
		{"Plano Desconhecido", entitlement.TierMonthly, 30 * day},
	}
	for _, tt := range tests {
		t.Run(tt.plan, func(t *testing.T) {
			h := newHarness(t)
			payer := uuid.New()
			rec := h.create(t, payer, entity.PaymentKindPlan, tt.plan, "97.00")

			confirmed, err := h.processor.Confirm(context.Background(), rec.Id, "tx")
			require.NoError(t, err)

			want := baseTime.Add(tt.want)
			require.NotNil(t, confirmed.ValidUntil)
			assert.Equal(t, want, *confirmed.ValidUntil)

			grants := h.grantsOf(t, payer)
			assert.Len(t, grants, len(h.matrix.Tools(tt.tier)))
			for _, g := range grants {
				assert.Equal(t, entity.AccessTypePlan, g.AccessType)
				require.NotNil(t, g.ExpiresAt)
				assert.Equal(t, want, *g.ExpiresAt)
			}
		})
	}
}

func TestConfirm_HigherTiersUnlockSuperset(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	monthly, annual := uuid.New(), uuid.New()

	for payer, plan := range map[uuid.UUID]string{monthly: "Plano Mensal", annual: "Plano Anual"} {
		rec := h.create(t, payer, entity.PaymentKindPlan, plan, "97.00")
		_, err := h.processor.Confirm(ctx, rec.Id, "tx")
		require.NoError(t, err)
	}

	for _, tool := range h.matrix.Tools(entitlement.TierMonthly) {
		has, err := h.access.HasAccess(ctx, user(annual), tool.Name)
		require.NoError(t, err)
		assert.True(t, has, tool.Name)
	}

	has, err := h.access.HasAccess(ctx, user(monthly), "Consultor IA")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestGrant_RequiresCompletedPayment(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	rec := h.create(t, uuid.New(), entity.PaymentKindTool, "Gerador de QR Code", "47.00")

	_, err := h.grantor.Grant(ctx, h.factory.NewUnitOfWork(ctx), rec)
	assert.Error(t, err)
	assert.Empty(t, h.grantsOf(t, rec.PayerId))
}

func TestConfirm_PlanOverwritesIndividualGrant(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	payer := uuid.New()

	tool := h.create(t, payer, entity.PaymentKindTool, "Gerador de Conteúdo", "37.00")
	_, err := h.processor.Confirm(ctx, tool.Id, "tx-tool")
	require.NoError(t, err)

	h.clock.Advance(time.Hour)
	plan := h.create(t, payer, entity.PaymentKindPlan, "Plano Mensal", "97.00")
	_, err = h.processor.Confirm(ctx, plan.Id, "tx-plan")
	require.NoError(t, err)

	var found *entity.ToolAccess
	for _, g := range h.grantsOf(t, payer) {
		if g.ToolId == entitlement.ToolID("Gerador de Conteúdo") {
			found = g
		}
	}
	require.NotNil(t, found)
	assert.Equal(t, entity.AccessTypePlan, found.AccessType)
	assert.Equal(t, plan.Id, *found.SourcePaymentId)
	require.NotNil(t, found.ExpiresAt)
}

func TestExpiryCalculator_ResolveTier(t *testing.T) {
	h := newHarness(t)

	assert.Equal(t, entitlement.TierAnnual, h.expiry.ResolveTier("plano anual"))
	assert.Equal(t, entitlement.TierQuarterly, h.expiry.ResolveTier("Quarterly"))
	// Substring matches are not accepted.
	assert.Equal(t, entitlement.TierMonthly, h.expiry.ResolveTier("Plano Anual Promocional"))
	assert.Equal(t, 365*day, h.expiry.DurationFor(entitlement.TierAnnual))
	assert.Equal(t, 30*day, h.expiry.DurationFor(entitlement.TierUnknown))
}
