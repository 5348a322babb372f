package relational

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "graphd_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, NewMigrator(db).Migrate(context.Background()))
	return db
}

func addPerson(t *testing.T, dao *PersonDAO, id, name string, createdAt time.Time) {
	t.Helper()
	require.NoError(t, dao.Create(context.Background(), Person{
		ID: id, FullName: name, City: "São Paulo", State: "SP", CreatedAt: createdAt,
	}))
}

func TestMigrate_Idempotent(t *testing.T) {
	db := openTestDB(t)

	m := NewMigrator(db)
	require.NoError(t, m.Migrate(context.Background()))

	version, err := m.CurrentVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, version)
}

func TestPersonDAO_RecentExcluding(t *testing.T) {
	db := openTestDB(t)
	dao := NewPersonDAO(db)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	addPerson(t, dao, "p1", "Ana", base)
	addPerson(t, dao, "p2", "Bruno", base.Add(time.Hour))
	addPerson(t, dao, "p3", "Carla", base.Add(2*time.Hour))

	people, err := dao.RecentExcluding(context.Background(), []string{"p2"}, 10)
	require.NoError(t, err)
	require.Len(t, people, 2)
	// Newest first, excluded id absent.
	assert.Equal(t, "p3", people[0].ID)
	assert.Equal(t, "p1", people[1].ID)
}

func TestAffiliationDAO_CounterpartsByStatus(t *testing.T) {
	db := openTestDB(t)
	people := NewPersonDAO(db)
	dao := NewAffiliationDAO(db)
	ctx := context.Background()

	now := time.Now().UTC()
	for _, id := range []string{"p1", "p2", "p3", "p4"} {
		addPerson(t, people, id, id, now)
	}

	require.NoError(t, dao.Create(ctx, Affiliation{ID: uuid.NewString(), FromID: "p1", ToID: "p2", Status: AffiliationAccepted}))
	require.NoError(t, dao.Create(ctx, Affiliation{ID: uuid.NewString(), FromID: "p3", ToID: "p1", Status: AffiliationAccepted}))
	require.NoError(t, dao.Create(ctx, Affiliation{ID: uuid.NewString(), FromID: "p1", ToID: "p4", Status: AffiliationPending}))

	connected, err := dao.ConnectedIDs(ctx, "p1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"p2", "p3"}, connected)

	pending, err := dao.PendingIDs(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"p4"}, pending)
}

func TestAvailabilityDAO_ActiveWindowsByDay(t *testing.T) {
	db := openTestDB(t)
	people := NewPersonDAO(db)
	dao := NewAvailabilityDAO(db)
	ctx := context.Background()

	addPerson(t, people, "p1", "Ana", time.Now().UTC())

	monday := int(time.Monday)
	require.NoError(t, dao.Create(ctx, AvailabilityWindow{
		ID: "w1", PersonID: "p1", WorkplaceID: "wp1",
		DayOfWeek: monday, Start: "09:00", End: "12:00", SlotDurationMin: 30,
	}))
	require.NoError(t, dao.Create(ctx, AvailabilityWindow{
		ID: "w2", PersonID: "p1", WorkplaceID: "wp1",
		DayOfWeek: int(time.Tuesday), Start: "14:00", End: "18:00", SlotDurationMin: 30,
	}))
	require.NoError(t, dao.Create(ctx, AvailabilityWindow{
		ID: "w3", PersonID: "p1", WorkplaceID: "wp1",
		DayOfWeek: monday, Start: "13:00", End: "15:00", SlotDurationMin: 30,
	}))
	require.NoError(t, dao.Deactivate(ctx, "w3"))

	windows, err := dao.ActiveWindows(ctx, []string{"p1"}, monday)
	require.NoError(t, err)
	require.Len(t, windows, 1)
	assert.Equal(t, "w1", windows[0].ID)
	assert.Equal(t, "09:00", windows[0].Start)
}

func TestBookingDAO_BookedTimesSkipsCancelledAndOtherDays(t *testing.T) {
	db := openTestDB(t)
	people := NewPersonDAO(db)
	dao := NewBookingDAO(db)
	ctx := context.Background()

	addPerson(t, people, "p1", "Ana", time.Now().UTC())

	day := time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC)
	slot := day.Add(9 * time.Hour)
	require.NoError(t, dao.Create(ctx, Booking{ID: "b1", PersonID: "p1", ScheduledAt: slot, Status: BookingConfirmed}))
	require.NoError(t, dao.Create(ctx, Booking{ID: "b2", PersonID: "p1", ScheduledAt: slot.Add(30 * time.Minute), Status: BookingPending}))
	require.NoError(t, dao.Create(ctx, Booking{ID: "b3", PersonID: "p1", ScheduledAt: slot.Add(time.Hour), Status: BookingCancelled}))
	require.NoError(t, dao.Create(ctx, Booking{ID: "b4", PersonID: "p1", ScheduledAt: slot.Add(24 * time.Hour), Status: BookingConfirmed}))

	booked, err := dao.BookedTimes(ctx, []string{"p1"}, day)
	require.NoError(t, err)
	require.Len(t, booked["p1"], 2)
	assert.True(t, booked["p1"][0].Equal(slot) || booked["p1"][1].Equal(slot))
}

func TestSyncSource_ExposesSourceOfTruth(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	people := NewPersonDAO(db)
	affiliations := NewAffiliationDAO(db)
	specialties := NewSpecialtyDAO(db)

	addPerson(t, people, "p1", "Ana", time.Now().UTC())
	addPerson(t, people, "p2", "Bruno", time.Now().UTC())
	require.NoError(t, affiliations.Create(ctx, Affiliation{ID: "a1", FromID: "p1", ToID: "p2", Status: AffiliationAccepted}))
	require.NoError(t, specialties.Create(ctx, "sp1", "Cardiology"))
	require.NoError(t, specialties.Assign(ctx, "p1", "sp1", true))

	src := NewSyncSource(db)

	persons, err := src.People(ctx)
	require.NoError(t, err)
	assert.Len(t, persons, 2)

	accepted, err := src.AcceptedAffiliations(ctx)
	require.NoError(t, err)
	require.Len(t, accepted, 1)
	assert.Equal(t, "p1", accepted[0].FromID)

	links, err := src.PersonSpecialties(ctx)
	require.NoError(t, err)
	require.Len(t, links, 1)
	assert.Equal(t, "Cardiology", links[0].SpecialtyName)
	assert.True(t, links[0].IsPrimary)
}
