package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"viralizaai-be/internal/entity"
	"viralizaai-be/internal/pkg/logger"
	"viralizaai-be/internal/repository/memory"
	"viralizaai-be/internal/repository/unitofwork"
	"viralizaai-be/pkg/entitlement"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingEvents struct {
	mu        sync.Mutex
	completed []*entity.PaymentRecord
	grants    [][]*entity.ToolAccess
	failed    []*entity.PaymentRecord
}

func (r *recordingEvents) PaymentCompleted(ctx context.Context, record *entity.PaymentRecord, grants []*entity.ToolAccess) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed = append(r.completed, record.Clone())
	r.grants = append(r.grants, grants)
}

func (r *recordingEvents) PaymentFailed(ctx context.Context, record *entity.PaymentRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failed = append(r.failed, record.Clone())
}

func (r *recordingEvents) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.completed), len(r.failed)
}

type harness struct {
	factory   unitofwork.RepositoryFactory
	clock     *testClock
	matrix    *entitlement.Matrix
	cache     *memory.PaymentStatusCache
	events    *recordingEvents
	registry  IPaymentRegistry
	expiry    IExpiryCalculator
	grantor   IEntitlementGrantor
	processor IConfirmationProcessor
	access    IAccessService
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	log := logger.NewNop()
	h := &harness{
		factory: memory.NewRepositoryFactory(memory.NewStore()),
		clock:   &testClock{now: baseTime},
		matrix:  entitlement.DefaultMatrix(),
		cache:   memory.NewPaymentStatusCache(time.Minute),
		events:  &recordingEvents{},
	}
	clock := Clock(h.clock.Now)
	h.registry = NewPaymentRegistry(h.factory, clock)
	h.expiry = NewExpiryCalculator(log)
	h.grantor = NewEntitlementGrantor(h.matrix, h.expiry, clock, log)
	h.processor = NewConfirmationProcessor(h.factory, h.registry, h.grantor, h.expiry, h.events, h.cache, clock, log)
	h.access = NewAccessService(h.factory, h.matrix, clock, log)
	return h
}

func (h *harness) create(t *testing.T, payer uuid.UUID, kind entity.PaymentKind, item, amount string) *entity.PaymentRecord {
	t.Helper()
	rec, err := h.registry.Create(context.Background(), CreatePaymentParams{
		PayerId:  payer,
		Kind:     kind,
		ItemName: item,
		Amount:   decimal.RequireFromString(amount),
		Method:   entity.PaymentMethodInstantPayment,
	})
	require.NoError(t, err)
	return rec
}

func (h *harness) grantsOf(t *testing.T, principal uuid.UUID) []*entity.ToolAccess {
	t.Helper()
	ctx := context.Background()
	grants, err := h.factory.NewUnitOfWork(ctx).ToolAccessRepository().FindAllByPrincipal(ctx, principal)
	require.NoError(t, err)
	return grants
}

func user(id uuid.UUID) entity.Principal {
	return entity.Principal{UserId: id, Role: entity.UserRoleUser}
}
