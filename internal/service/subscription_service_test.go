package service

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/redago/redago-server/internal/model"
	"github.com/redago/redago-server/internal/plan"
	"github.com/redago/redago-server/internal/repository"
	"github.com/redago/redago-server/internal/testutil"
)

func setupSubscriptionService(t *testing.T) (*SubscriptionService, *gorm.DB) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	subscriptionRepo := repository.NewSubscriptionRepository(db)
	userRepo := repository.NewUserRepository(db)
	return NewSubscriptionService(subscriptionRepo, userRepo, nil, nil), db
}

func TestSubscriptionService_Create(t *testing.T) {
	svc, db := setupSubscriptionService(t)
	user := testutil.TestUser(t, db)

	sub, err := svc.Create(user.ID, plan.VIP, model.MethodPix, false)
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionActive, sub.Status)
	assert.Equal(t, 50.00, sub.Price)

	// 30-day window from today
	wantEnd := sub.StartDate.AddDate(0, 0, 30)
	assert.True(t, sub.EndDate.Equal(wantEnd))

	var owner model.User
	require.NoError(t, db.First(&owner, user.ID).Error)
	require.NotNil(t, owner.SubscriptionID)
	assert.Equal(t, sub.ID, *owner.SubscriptionID)
}

type capturingMailer struct {
	sent chan string
}

func (m *capturingMailer) SendWelcome(to, name, planType string) error {
	m.sent <- to
	return nil
}

func TestSubscriptionService_Create_SendsWelcomeEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.CleanupTestDB(t, db) })

	mailer := &capturingMailer{sent: make(chan string, 1)}
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	userRepo := repository.NewUserRepository(db)
	svc := NewSubscriptionService(subscriptionRepo, userRepo, nil, mailer)

	user := testutil.TestUser(t, db)
	_, err := svc.Create(user.ID, plan.Master, model.MethodBoleto, false)
	require.NoError(t, err)

	select {
	case to := <-mailer.sent:
		assert.Equal(t, user.Email, to)
	case <-time.After(2 * time.Second):
		t.Fatal("welcome email was not sent")
	}
}

func TestSubscriptionService_Create_InvalidPlan(t *testing.T) {
	svc, db := setupSubscriptionService(t)
	user := testutil.TestUser(t, db)

	_, err := svc.Create(user.ID, "platinum", model.MethodPix, false)
	assert.ErrorIs(t, err, plan.ErrInvalidPlanType)
}

func TestSubscriptionService_Create_ForceCancelsPrevious(t *testing.T) {
	svc, db := setupSubscriptionService(t)
	user := testutil.TestUser(t, db)

	first, err := svc.Create(user.ID, plan.VIP, model.MethodPix, false)
	require.NoError(t, err)
	second, err := svc.Create(user.ID, plan.Master, model.MethodPix, false)
	require.NoError(t, err)

	var old model.Subscription
	require.NoError(t, db.First(&old, first.ID).Error)
	assert.Equal(t, model.SubscriptionCancelled, old.Status)

	active, err := svc.GetActive(user.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, active.ID)
	assert.Equal(t, plan.Master, active.PlanType)
}

func TestSubscriptionService_PriceSnapshotImmutable(t *testing.T) {
	svc, db := setupSubscriptionService(t)
	user := testutil.TestUser(t, db)

	sub, err := svc.Create(user.ID, plan.Master, model.MethodPix, false)
	require.NoError(t, err)

	// the row keeps its own price; it is never re-derived from the catalog
	renewed, err := svc.Renew(user.ID, sub.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 40.00, renewed.Price)
}

func TestSubscriptionService_Renew_AnchorsToPriorEndDate(t *testing.T) {
	svc, db := setupSubscriptionService(t)
	user := testutil.TestUser(t, db)

	end := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	sub := testutil.TestSubscription(t, db, user.ID,
		testutil.WithWindow(end.AddDate(0, 0, -30), end))

	renewed, err := svc.Renew(user.ID, sub.ID, 1)
	require.NoError(t, err)

	want := time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)
	assert.True(t, renewed.EndDate.Equal(want), "end_date = %v, want %v", renewed.EndDate, want)
}

func TestSubscriptionService_Renew_NotOwner(t *testing.T) {
	svc, db := setupSubscriptionService(t)
	user := testutil.TestUser(t, db)
	other := testutil.TestUser(t, db)
	sub := testutil.TestSubscription(t, db, user.ID)

	_, err := svc.Renew(other.ID, sub.ID, 1)
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestSubscriptionService_CancelRoundTrip(t *testing.T) {
	svc, db := setupSubscriptionService(t)
	user := testutil.TestUser(t, db)

	sub, err := svc.Create(user.ID, plan.Master, model.MethodPix, false)
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(user.ID, sub.ID))

	_, err = svc.GetActive(user.ID)
	assert.ErrorIs(t, err, ErrNoActiveSubscription)

	var owner model.User
	require.NoError(t, db.First(&owner, user.ID).Error)
	assert.Nil(t, owner.SubscriptionID)
}

func TestSubscriptionService_Cancel_NotActive(t *testing.T) {
	svc, db := setupSubscriptionService(t)
	user := testutil.TestUser(t, db)
	sub := testutil.TestSubscription(t, db, user.ID, testutil.WithStatus(model.SubscriptionExpired))

	err := svc.Cancel(user.ID, sub.ID)
	assert.ErrorIs(t, err, ErrNoActiveSubscription)
}

func TestSubscriptionService_SuspendReactivateRoundTrip(t *testing.T) {
	svc, db := setupSubscriptionService(t)
	user := testutil.TestUser(t, db)

	sub, err := svc.Create(user.ID, plan.VIP, model.MethodPix, false)
	require.NoError(t, err)

	suspended, err := svc.Suspend(sub.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionInactive, suspended.Status)

	// suspension keeps the back-reference (administrative, reversible)
	var owner model.User
	require.NoError(t, db.First(&owner, user.ID).Error)
	require.NotNil(t, owner.SubscriptionID)
	assert.Equal(t, sub.ID, *owner.SubscriptionID)

	// but the suspended row is not active for entitlement purposes
	_, err = svc.GetActive(user.ID)
	assert.ErrorIs(t, err, ErrNoActiveSubscription)

	reactivated, err := svc.Reactivate(sub.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionActive, reactivated.Status)

	active, err := svc.GetActive(user.ID)
	require.NoError(t, err)
	assert.Equal(t, sub.ID, active.ID)
}

func TestSubscriptionService_Suspend_NotActive(t *testing.T) {
	svc, db := setupSubscriptionService(t)
	user := testutil.TestUser(t, db)
	sub := testutil.TestSubscription(t, db, user.ID, testutil.WithStatus(model.SubscriptionCancelled))

	_, err := svc.Suspend(sub.ID)
	assert.ErrorIs(t, err, ErrNoActiveSubscription)
}

func TestSubscriptionService_Reactivate_NotSuspended(t *testing.T) {
	svc, db := setupSubscriptionService(t)
	user := testutil.TestUser(t, db)
	sub := testutil.TestSubscription(t, db, user.ID)

	_, err := svc.Reactivate(sub.ID)
	assert.ErrorIs(t, err, ErrNotSuspended)
}

func TestSubscriptionService_Reactivate_NotFound(t *testing.T) {
	svc, _ := setupSubscriptionService(t)

	_, err := svc.Reactivate(9999)
	assert.ErrorIs(t, err, ErrSubscriptionNotFound)
}

func TestSubscriptionService_ProcessExpired(t *testing.T) {
	svc, db := setupSubscriptionService(t)
	now := time.Now()

	lapsedUser := testutil.TestUser(t, db)
	lapsed := testutil.TestSubscription(t, db, lapsedUser.ID,
		testutil.WithWindow(now.AddDate(0, 0, -40), now.AddDate(0, 0, -1)))

	autoUser := testutil.TestUser(t, db)
	auto := testutil.TestSubscription(t, db, autoUser.ID,
		testutil.WithWindow(now.AddDate(0, 0, -40), now.AddDate(0, 0, -1)),
		testutil.WithAutoRenew(true))

	result, err := svc.ProcessExpired()
	require.NoError(t, err)
	require.Len(t, result.Expired, 1)
	require.Len(t, result.Renewed, 1)
	assert.Equal(t, lapsed.ID, result.Expired[0].ID)
	assert.Equal(t, auto.ID, result.Renewed[0].ID)

	// second run with no new lapses changes nothing
	again, err := svc.ProcessExpired()
	require.NoError(t, err)
	assert.Empty(t, again.Expired)
	assert.Empty(t, again.Renewed)
}

func TestSubscriptionService_ExclusiveActiveInvariant(t *testing.T) {
	svc, db := setupSubscriptionService(t)
	user := testutil.TestUser(t, db)

	// churn through the lifecycle; at every observation point at most one
	// active-and-valid row exists for the user
	assertInvariant := func() {
		t.Helper()
		var count int64
		err := db.Model(&model.Subscription{}).
			Where("user_id = ? AND status = ? AND end_date > ?", user.ID, model.SubscriptionActive, time.Now()).
			Count(&count).Error
		require.NoError(t, err)
		assert.LessOrEqual(t, count, int64(1))
	}

	sub, err := svc.Create(user.ID, plan.Master, model.MethodPix, false)
	require.NoError(t, err)
	assertInvariant()

	_, err = svc.Create(user.ID, plan.VIP, model.MethodCreditCard, false)
	require.NoError(t, err)
	assertInvariant()

	_, err = svc.Renew(user.ID, sub.ID, 1)
	require.NoError(t, err)
	assertInvariant()

	_, err = svc.ProcessExpired()
	require.NoError(t, err)
	assertInvariant()
}

func TestSubscriptionService_GetExpiring(t *testing.T) {
	svc, db := setupSubscriptionService(t)
	now := time.Now()

	soonUser := testutil.TestUser(t, db)
	soon := testutil.TestSubscription(t, db, soonUser.ID,
		testutil.WithWindow(now.AddDate(0, 0, -28), now.AddDate(0, 0, 2)))

	farUser := testutil.TestUser(t, db)
	testutil.TestSubscription(t, db, farUser.ID)

	subs, err := svc.GetExpiring(3)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, soon.ID, subs[0].ID)
}

func TestSubscriptionService_GetStatistics_Cached(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	subscriptionRepo := repository.NewSubscriptionRepository(db)
	userRepo := repository.NewUserRepository(db)
	svc := NewSubscriptionService(subscriptionRepo, userRepo, rdb, nil)

	user := testutil.TestUser(t, db)
	testutil.TestSubscription(t, db, user.ID, testutil.WithPlan("vip", 50.00))

	stats, err := svc.GetStatistics()
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.ByStatus[model.SubscriptionActive])
	assert.Equal(t, int64(1), stats.ActiveByPlan["vip"])
	assert.Equal(t, 50.00, stats.ActiveRevenue)
	assert.True(t, mr.Exists(statsCacheKey))

	// cached copy is served until a lifecycle write invalidates it
	other := testutil.TestUser(t, db)
	testutil.TestSubscription(t, db, other.ID, testutil.WithPlan("master", 40.00))

	stats, err = svc.GetStatistics()
	require.NoError(t, err)
	assert.Equal(t, 50.00, stats.ActiveRevenue)

	_, err = svc.Create(other.ID, plan.Master, model.MethodPix, false)
	require.NoError(t, err)
	assert.False(t, mr.Exists(statsCacheKey))

	stats, err = svc.GetStatistics()
	require.NoError(t, err)
	assert.Equal(t, 90.00, stats.ActiveRevenue)
}
