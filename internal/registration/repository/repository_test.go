package repository

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tair/membership-platform/internal/registration/domain"
)

func setupRepo(t *testing.T) *GormRegistrationRepository {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	repo := NewGormRegistrationRepository(db)
	require.NoError(t, repo.AutoMigrate())
	return repo
}

func newGuestRegistration(n int) *domain.Registration {
	return &domain.Registration{
		PublicID:   fmt.Sprintf("REG-cap-%d", n),
		EventID:    1,
		GuestName:  fmt.Sprintf("Guest %d", n),
		GuestEmail: fmt.Sprintf("guest%d@example.com", n),
		GuestPhone: "+85212345678",
		Currency:   "HKD",
		Status:     domain.StatusPending,
	}
}

func TestCreateEnforcesCapacity(t *testing.T) {
	repo := setupRepo(t)

	require.NoError(t, repo.Create(newGuestRegistration(1), 2))
	require.NoError(t, repo.Create(newGuestRegistration(2), 2))

	err := repo.Create(newGuestRegistration(3), 2)
	var capErr domain.ErrCapacityExhausted
	require.ErrorAs(t, err, &capErr)
	require.Equal(t, uint(1), capErr.EventID)

	count, err := repo.CountActiveByEvent(1)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)
}

func TestCreateUnlimitedCapacity(t *testing.T) {
	repo := setupRepo(t)

	for n := 1; n <= 5; n++ {
		require.NoError(t, repo.Create(newGuestRegistration(n), 0))
	}
	count, err := repo.CountActiveByEvent(1)
	require.NoError(t, err)
	require.Equal(t, int64(5), count)
}

func TestCancelledReleasesSlot(t *testing.T) {
	repo := setupRepo(t)

	first := newGuestRegistration(1)
	require.NoError(t, repo.Create(first, 1))

	err := repo.Create(newGuestRegistration(2), 1)
	var capErr domain.ErrCapacityExhausted
	require.ErrorAs(t, err, &capErr)

	// Cancelling the holder frees the slot for the next attempt
	require.NoError(t, repo.UpdateStatus(first.ID, domain.StatusCancelled))
	require.NoError(t, repo.Create(newGuestRegistration(3), 1))

	count, err := repo.CountActiveByEvent(1)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestFindActiveByEventAndUser(t *testing.T) {
	repo := setupRepo(t)

	userID := uint(7)
	reg := &domain.Registration{
		PublicID: "REG-member",
		EventID:  1,
		UserID:   &userID,
		Currency: "HKD",
		Status:   domain.StatusPaid,
	}
	require.NoError(t, repo.Create(reg, 0))

	found, err := repo.FindActiveByEventAndUser(1, userID)
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, reg.ID, found.ID)

	// Cancelled registrations are invisible to the duplicate check
	require.NoError(t, repo.UpdateStatus(reg.ID, domain.StatusCancelled))
	found, err = repo.FindActiveByEventAndUser(1, userID)
	require.NoError(t, err)
	require.Nil(t, found)

	// Unknown user is a clean miss, not an error
	found, err = repo.FindActiveByEventAndUser(1, 999)
	require.NoError(t, err)
	require.Nil(t, found)
}
