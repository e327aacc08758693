package cron

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/redago/redago-server/internal/model"
	"github.com/redago/redago-server/internal/repository"
	"github.com/redago/redago-server/internal/service"
	"github.com/redago/redago-server/internal/testutil"
)

type cronFixture struct {
	svc         *Service
	db          *gorm.DB
	paymentRepo *repository.PaymentRepository
	lapsedUser  *model.User
	autoUser    *model.User
}

func setupCron(t *testing.T) *cronFixture {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	subscriptionRepo := repository.NewSubscriptionRepository(db)
	userRepo := repository.NewUserRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	subscriptionService := service.NewSubscriptionService(subscriptionRepo, userRepo, nil, nil)
	paymentService := service.NewPaymentService(paymentRepo, subscriptionRepo, subscriptionService)

	svc := NewService(subscriptionService, paymentService, userRepo, nil, nil, 3, 3)

	now := time.Now()
	lapsedUser := testutil.TestUser(t, db)
	testutil.TestSubscription(t, db, lapsedUser.ID,
		testutil.WithWindow(now.AddDate(0, 0, -40), now.AddDate(0, 0, -1)))

	autoUser := testutil.TestUser(t, db)
	testutil.TestSubscription(t, db, autoUser.ID,
		testutil.WithWindow(now.AddDate(0, 0, -40), now.AddDate(0, 0, -1)),
		testutil.WithAutoRenew(true))

	return &cronFixture{
		svc:         svc,
		db:          db,
		paymentRepo: paymentRepo,
		lapsedUser:  lapsedUser,
		autoUser:    autoUser,
	}
}

func (f *cronFixture) countExpired(t *testing.T) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(&model.Subscription{}).
		Where("status = ?", model.SubscriptionExpired).Count(&n).Error)
	return n
}

func TestService_RunSweep(t *testing.T) {
	f := setupCron(t)

	f.svc.RunSweep()
	assert.Equal(t, int64(1), f.countExpired(t))

	// rerun finds nothing new
	f.svc.RunSweep()
	assert.Equal(t, int64(1), f.countExpired(t))
}

func TestService_RunSweep_RecordsAutoRenewalPayment(t *testing.T) {
	f := setupCron(t)

	f.svc.RunSweep()

	payments, err := f.paymentRepo.ListByUser(f.autoUser.ID)
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, model.MethodAutoRenew, payments[0].Method)

	// the plain lapsed subscriber pays nothing
	payments, err = f.paymentRepo.ListByUser(f.lapsedUser.ID)
	require.NoError(t, err)
	assert.Empty(t, payments)
}

func TestService_StartStop(t *testing.T) {
	f := setupCron(t)

	f.svc.Start()
	f.svc.Stop()
}
