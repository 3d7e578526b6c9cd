package integration

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"viralizaai-be/internal/entity"
	"viralizaai-be/internal/model"
	"viralizaai-be/internal/pkg/logger"
	"viralizaai-be/internal/repository/memory"
	"viralizaai-be/internal/repository/unitofwork"
	"viralizaai-be/internal/service"
	"viralizaai-be/pkg/database"
	"viralizaai-be/pkg/entitlement"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openDB(t *testing.T) *gorm.DB {
	t.Helper()
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn, false)
	if err != nil {
		t.Fatalf("Failed to connect to DB: %v", err)
	}
	require.NoError(t, gormDB.AutoMigrate(&model.Payment{}, &model.ToolAccess{}))
	return gormDB
}

func TestGormConnection(t *testing.T) {
	gormDB := openDB(t)

	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	uow := uowFactory.NewUnitOfWork(context.Background())
	assert.NotNil(t, uow.PaymentRepository())
	assert.NotNil(t, uow.ToolAccessRepository())

	sqlDB, _ := gormDB.DB()
	assert.NoError(t, sqlDB.Ping())
}

func TestPostgresConfirmationFlow(t *testing.T) {
	gormDB := openDB(t)
	ctx := context.Background()
	nop := logger.NewNop()

	uowFactory := unitofwork.NewRepositoryFactory(gormDB)
	matrix := entitlement.DefaultMatrix()
	registry := service.NewPaymentRegistry(uowFactory, nil)
	expiry := service.NewExpiryCalculator(nop)
	grantor := service.NewEntitlementGrantor(matrix, expiry, nil, nop)
	processor := service.NewConfirmationProcessor(uowFactory, registry, grantor, expiry, nil, memory.NewPaymentStatusCache(time.Minute), nil, nop)
	access := service.NewAccessService(uowFactory, matrix, nil, nop)

	payer := uuid.New()
	t.Cleanup(func() {
		gormDB.Where("payer_id = ?", payer).Delete(&model.Payment{})
		gormDB.Where("principal_id = ?", payer).Delete(&model.ToolAccess{})
	})

	rec, err := registry.Create(ctx, service.CreatePaymentParams{
		PayerId:  payer,
		Kind:     entity.PaymentKindPlan,
		ItemName: "Plano Trimestral",
		Amount:   decimal.RequireFromString("247.00"),
		Method:   entity.PaymentMethodInstantPayment,
		PixTxId:  uuid.NewString()[:25],
	})
	require.NoError(t, err)

	// Row locks serialize the callers; only one completes the payment.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := processor.Confirm(ctx, rec.Id, fmt.Sprintf("tx-%d", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	stored, err := registry.Get(ctx, rec.Id)
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusCompleted, stored.Status)
	assert.True(t, stored.Amount.Equal(decimal.RequireFromString("247.00")))

	var rows int64
	gormDB.Model(&model.ToolAccess{}).Where("principal_id = ?", payer).Count(&rows)
	assert.Equal(t, int64(len(matrix.Tools(entitlement.TierQuarterly))), rows)

	has, err := access.HasAccess(ctx, entity.Principal{UserId: payer, Role: entity.UserRoleUser}, "Agendador de Posts")
	require.NoError(t, err)
	assert.True(t, has)

	_, err = processor.Fail(ctx, rec.Id, "late")
	assert.ErrorIs(t, err, entity.ErrInvalidTransition)
}
