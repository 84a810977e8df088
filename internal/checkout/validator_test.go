package checkout

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	catalogdomain "github.com/tair/membership-platform/internal/catalog/domain"
	catalogrepository "github.com/tair/membership-platform/internal/catalog/repository"
	ledgerdomain "github.com/tair/membership-platform/internal/ledger/domain"
	membershipdomain "github.com/tair/membership-platform/internal/membership/domain"
	membershiprepository "github.com/tair/membership-platform/internal/membership/repository"
	registrationdomain "github.com/tair/membership-platform/internal/registration/domain"
	registrationrepository "github.com/tair/membership-platform/internal/registration/repository"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Per-test in-memory database to avoid cross-test interference
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&catalogdomain.Event{},
		&catalogdomain.MembershipLevel{},
		&registrationdomain.Registration{},
		&membershipdomain.Membership{},
		&ledgerdomain.Order{},
		&ledgerdomain.Payment{},
	))
	return db
}

func newTestValidator(db *gorm.DB) *Validator {
	return NewValidator(
		catalogrepository.NewGormEventRepository(db),
		catalogrepository.NewGormLevelRepository(db),
		membershiprepository.NewGormMembershipRepository(db),
		registrationrepository.NewGormRegistrationRepository(db),
		"HKD",
	)
}

func seedEvent(t *testing.T, db *gorm.DB, base, discount int64, capacity int) *catalogdomain.Event {
	t.Helper()
	event := &catalogdomain.Event{
		Title:               "Annual Gala",
		StartsAt:            time.Now().Add(48 * time.Hour),
		EndsAt:              time.Now().Add(52 * time.Hour),
		BasePriceCents:      base,
		MemberDiscountCents: discount,
		Capacity:            capacity,
		Status:              catalogdomain.EventStatusPublished,
	}
	require.NoError(t, db.Create(event).Error)
	return event
}

func seedGoldLevel(t *testing.T, db *gorm.DB) *catalogdomain.MembershipLevel {
	t.Helper()
	level := &catalogdomain.MembershipLevel{
		Name:           "Gold",
		PriceCents:     50000,
		DurationMonths: 12,
		IsActive:       true,
	}
	require.NoError(t, db.Create(level).Error)
	return level
}

func seedActiveMembership(t *testing.T, db *gorm.DB, userID, levelID uint) *membershipdomain.Membership {
	t.Helper()
	now := time.Now()
	expires := now.AddDate(1, 0, 0)
	membership := &membershipdomain.Membership{
		PublicID:  fmt.Sprintf("MEM-test-%d-%d", userID, levelID),
		UserID:    userID,
		LevelID:   levelID,
		Currency:  "HKD",
		Status:    membershipdomain.StatusActive,
		StartsAt:  &now,
		ExpiresAt: &expires,
	}
	require.NoError(t, db.Create(membership).Error)
	return membership
}

func TestValidateEventNotFound(t *testing.T) {
	v := newTestValidator(setupDB(t))

	_, err := v.Validate(ValidateInput{
		OfferingKind: OfferingEvent,
		OfferingID:   999,
		Actor:        MemberActor(1, "Alice", "alice@example.com"),
	})
	require.Error(t, err)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestValidateClosedEvent(t *testing.T) {
	db := setupDB(t)
	v := newTestValidator(db)

	event := seedEvent(t, db, 10000, 0, 0)
	require.NoError(t, db.Model(event).Update("status", catalogdomain.EventStatusCancelled).Error)

	_, err := v.Validate(ValidateInput{
		OfferingKind: OfferingEvent,
		OfferingID:   event.ID,
		Actor:        MemberActor(1, "Alice", "alice@example.com"),
	})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestValidateIncompleteGuestInfo(t *testing.T) {
	db := setupDB(t)
	v := newTestValidator(db)
	event := seedEvent(t, db, 10000, 0, 0)

	// Missing phone
	_, err := v.Validate(ValidateInput{
		OfferingKind: OfferingEvent,
		OfferingID:   event.ID,
		Actor:        GuestActor("Bob", "bob@example.com", ""),
	})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)

	// Complete info passes
	quote, err := v.Validate(ValidateInput{
		OfferingKind: OfferingEvent,
		OfferingID:   event.ID,
		Actor:        GuestActor("Bob", "bob@example.com", "+85212345678"),
	})
	require.NoError(t, err)
	require.Equal(t, int64(10000), quote.PriceCents)
}

func TestValidateDuplicateRegistration(t *testing.T) {
	db := setupDB(t)
	v := newTestValidator(db)
	event := seedEvent(t, db, 10000, 0, 0)

	userID := uint(7)
	require.NoError(t, db.Create(&registrationdomain.Registration{
		PublicID: "REG-existing",
		EventID:  event.ID,
		UserID:   &userID,
		Currency: "HKD",
		Status:   registrationdomain.StatusPaid,
	}).Error)

	_, err := v.Validate(ValidateInput{
		OfferingKind: OfferingEvent,
		OfferingID:   event.ID,
		Actor:        MemberActor(userID, "Carol", "carol@example.com"),
	})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestValidateStalePendingSuperseded(t *testing.T) {
	db := setupDB(t)
	v := newTestValidator(db)
	event := seedEvent(t, db, 10000, 0, 1)

	// A pending leftover from an aborted attempt must not lock the member
	// out, and must not double-count against the single capacity slot.
	userID := uint(7)
	stale := &registrationdomain.Registration{
		PublicID: "REG-stale",
		EventID:  event.ID,
		UserID:   &userID,
		Currency: "HKD",
		Status:   registrationdomain.StatusPending,
	}
	require.NoError(t, db.Create(stale).Error)

	quote, err := v.Validate(ValidateInput{
		OfferingKind: OfferingEvent,
		OfferingID:   event.ID,
		Actor:        MemberActor(userID, "Carol", "carol@example.com"),
	})
	require.NoError(t, err)
	require.Equal(t, stale.ID, quote.StaleRegistrationID)
}

func TestValidateCapacityExhausted(t *testing.T) {
	db := setupDB(t)
	v := newTestValidator(db)
	event := seedEvent(t, db, 0, 0, 1)

	otherID := uint(3)
	require.NoError(t, db.Create(&registrationdomain.Registration{
		PublicID: "REG-other",
		EventID:  event.ID,
		UserID:   &otherID,
		Currency: "HKD",
		Status:   registrationdomain.StatusPaid,
	}).Error)

	_, err := v.Validate(ValidateInput{
		OfferingKind: OfferingEvent,
		OfferingID:   event.ID,
		Actor:        GuestActor("Dan", "dan@example.com", "+85287654321"),
	})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestValidateMemberDiscountPricing(t *testing.T) {
	db := setupDB(t)
	v := newTestValidator(db)

	level := seedGoldLevel(t, db)

	event := seedEvent(t, db, 10000, 2000, 0)
	seedActiveMembership(t, db, 7, level.ID)

	// Member with active membership gets the discount
	quote, err := v.Validate(ValidateInput{
		OfferingKind: OfferingEvent,
		OfferingID:   event.ID,
		Actor:        MemberActor(7, "Carol", "carol@example.com"),
		LevelRef:     level.ID,
	})
	require.NoError(t, err)
	require.Equal(t, int64(10000), quote.BaseCents)
	require.Equal(t, int64(2000), quote.DiscountCents)
	require.Equal(t, int64(8000), quote.PriceCents)

	// Guest pays base price
	quote, err = v.Validate(ValidateInput{
		OfferingKind: OfferingEvent,
		OfferingID:   event.ID,
		Actor:        GuestActor("Bob", "bob@example.com", "+85212345678"),
	})
	require.NoError(t, err)
	require.Equal(t, int64(10000), quote.PriceCents)
}

func TestValidateDeclaredLevelMismatch(t *testing.T) {
	db := setupDB(t)
	v := newTestValidator(db)

	gold := &catalogdomain.MembershipLevel{Name: "Gold", PriceCents: 50000, DurationMonths: 12, IsActive: true}
	silver := &catalogdomain.MembershipLevel{Name: "Silver", PriceCents: 20000, DurationMonths: 12, IsActive: true}
	require.NoError(t, db.Create(gold).Error)
	require.NoError(t, db.Create(silver).Error)

	event := seedEvent(t, db, 10000, 2000, 0)
	seedActiveMembership(t, db, 7, silver.ID)

	// Claiming Gold while holding Silver is rejected
	_, err := v.Validate(ValidateInput{
		OfferingKind: OfferingEvent,
		OfferingID:   event.ID,
		Actor:        MemberActor(7, "Carol", "carol@example.com"),
		LevelRef:     gold.ID,
	})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)

	// No membership at all with a declared level is rejected too
	_, err = v.Validate(ValidateInput{
		OfferingKind: OfferingEvent,
		OfferingID:   event.ID,
		Actor:        MemberActor(8, "Dave", "dave@example.com"),
		LevelRef:     gold.ID,
	})
	require.ErrorAs(t, err, &validationErr)
}

func TestValidatePriceFlooredAtZero(t *testing.T) {
	db := setupDB(t)
	v := newTestValidator(db)

	level := seedGoldLevel(t, db)

	// Discount exceeds base price
	event := seedEvent(t, db, 1000, 5000, 0)
	seedActiveMembership(t, db, 7, level.ID)

	quote, err := v.Validate(ValidateInput{
		OfferingKind: OfferingEvent,
		OfferingID:   event.ID,
		Actor:        MemberActor(7, "Carol", "carol@example.com"),
	})
	require.NoError(t, err)
	require.Equal(t, int64(0), quote.PriceCents)
	require.True(t, quote.IsFree())
}

func TestValidateMembershipPurchase(t *testing.T) {
	db := setupDB(t)
	v := newTestValidator(db)

	level := seedGoldLevel(t, db)

	// Guests cannot purchase memberships
	_, err := v.Validate(ValidateInput{
		OfferingKind: OfferingMembership,
		OfferingID:   level.ID,
		Actor:        GuestActor("Bob", "bob@example.com", "+85212345678"),
	})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)

	// First purchase
	quote, err := v.Validate(ValidateInput{
		OfferingKind: OfferingMembership,
		OfferingID:   level.ID,
		Actor:        MemberActor(7, "Carol", "carol@example.com"),
	})
	require.NoError(t, err)
	require.Equal(t, int64(50000), quote.PriceCents)
	require.Equal(t, ledgerdomain.OrderTypeMembershipPurchase, quote.OrderType)

	// Holding an active membership blocks another purchase
	seedActiveMembership(t, db, 7, level.ID)
	_, err = v.Validate(ValidateInput{
		OfferingKind: OfferingMembership,
		OfferingID:   level.ID,
		Actor:        MemberActor(7, "Carol", "carol@example.com"),
	})
	require.ErrorAs(t, err, &validationErr)
}

func TestValidateMembershipRenewal(t *testing.T) {
	db := setupDB(t)
	v := newTestValidator(db)

	level := seedGoldLevel(t, db)

	// An expired prior membership makes the next purchase a renewal
	require.NoError(t, db.Create(&membershipdomain.Membership{
		PublicID: "MEM-expired",
		UserID:   7,
		LevelID:  level.ID,
		Currency: "HKD",
		Status:   membershipdomain.StatusExpired,
	}).Error)

	quote, err := v.Validate(ValidateInput{
		OfferingKind: OfferingMembership,
		OfferingID:   level.ID,
		Actor:        MemberActor(7, "Carol", "carol@example.com"),
	})
	require.NoError(t, err)
	require.Equal(t, ledgerdomain.OrderTypeMembershipRenewal, quote.OrderType)
}
