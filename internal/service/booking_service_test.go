package service_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/campus-ticketing/internal/model"
	"github.com/iliyamo/campus-ticketing/internal/queue"
	"github.com/iliyamo/campus-ticketing/internal/service"
	"github.com/iliyamo/campus-ticketing/internal/testutil"
	"github.com/iliyamo/campus-ticketing/internal/utils"
)

type fixture struct {
	store     *testutil.Store
	published *testutil.Recorder
	accounts  *service.AccountService
	booking   *service.BookingService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := testutil.NewStore()
	rec := &testutil.Recorder{}
	tokens, err := utils.NewTokenService("test-secret", time.Hour)
	require.NoError(t, err)

	return &fixture{
		store:     store,
		published: rec,
		accounts:  service.NewAccountService(store.Clubs(), store.Students(), tokens, 4, nil),
		booking: service.NewBookingService(store.Clubs(), store.Students(), store.Events(), store.Tickets(), rec, nil).
			WithClock(func() time.Time { return time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC) }),
	}
}

func (f *fixture) club(t *testing.T, name string) string {
	t.Helper()
	sess, err := f.accounts.RegisterClub(context.Background(), service.ClubRegistration{
		ClubName: name, Email: name + "@clubs.uni.edu", Password: "pw",
	})
	require.NoError(t, err)
	return sess.ClubID
}

func (f *fixture) student(t *testing.T, name string) string {
	t.Helper()
	sess, err := f.accounts.RegisterStudent(context.Background(), service.StudentRegistration{
		Name: name, RbtNumber: "RBT-" + name, Email: name + "@uni.edu", Password: "pw",
	})
	require.NoError(t, err)
	return sess.StudentID
}

func (f *fixture) event(t *testing.T, clubID string, capacity int) *model.Event {
	t.Helper()
	ev, err := f.booking.CreateEvent(context.Background(), clubID, eventInput("Chess Night", capacity))
	require.NoError(t, err)
	return ev
}

func eventInput(name string, capacity int) service.EventInput {
	return service.EventInput{
		Name: name, Description: "weekly", Date: "2026-05-20", Time: "18:30", Venue: "Hall B", Capacity: capacity,
	}
}

func TestCreateEvent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	clubID := f.club(t, "chess")

	ev, err := f.booking.CreateEvent(ctx, clubID, eventInput("Chess Night", 30))
	require.NoError(t, err)
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, clubID, ev.ClubID)
	assert.Equal(t, "chess", ev.ClubName)

	got, err := f.booking.GetEvent(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, *ev, *got)

	_, err = f.booking.CreateEvent(ctx, "no-such-club", eventInput("X", 1))
	assert.ErrorIs(t, err, service.ErrClubNotFound)

	_, err = f.booking.CreateEvent(ctx, clubID, eventInput("X", 0))
	assert.ErrorIs(t, err, service.ErrInvalidCapacity)
}

func TestUpdateEventRequiresOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.club(t, "chess")
	other := f.club(t, "drama")
	ev := f.event(t, owner, 10)

	_, err := f.booking.UpdateEvent(ctx, ev.ID, other, eventInput("Hijacked", 99))
	assert.ErrorIs(t, err, service.ErrForbidden)

	got, err := f.booking.GetEvent(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, "Chess Night", got.Name)
	assert.Equal(t, 10, got.Capacity)

	updated, err := f.booking.UpdateEvent(ctx, ev.ID, owner, eventInput("Chess Finals", 12))
	require.NoError(t, err)
	assert.Equal(t, "Chess Finals", updated.Name)
	assert.Equal(t, owner, updated.ClubID)

	_, err = f.booking.UpdateEvent(ctx, "missing", owner, eventInput("X", 1))
	assert.ErrorIs(t, err, service.ErrEventNotFound)
}

func TestUpdateEventCannotDropBelowBooked(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.club(t, "chess")
	ev := f.event(t, owner, 5)
	for _, name := range []string{"ann", "bob", "cat"} {
		_, err := f.booking.BookTicket(ctx, f.student(t, name), ev.ID)
		require.NoError(t, err)
	}

	_, err := f.booking.UpdateEvent(ctx, ev.ID, owner, eventInput("Chess Night", 2))
	assert.ErrorIs(t, err, service.ErrCapacityBelowBooked)

	_, err = f.booking.UpdateEvent(ctx, ev.ID, owner, eventInput("Chess Night", 3))
	assert.NoError(t, err)
}

func TestDeleteEventLeavesTickets(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.club(t, "chess")
	other := f.club(t, "drama")
	ev := f.event(t, owner, 5)
	ann := f.student(t, "ann")
	_, err := f.booking.BookTicket(ctx, ann, ev.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, f.booking.DeleteEvent(ctx, ev.ID, other), service.ErrForbidden)
	require.NoError(t, f.booking.DeleteEvent(ctx, ev.ID, owner))

	_, err = f.booking.GetEvent(ctx, ev.ID)
	assert.ErrorIs(t, err, service.ErrEventNotFound)
	assert.ErrorIs(t, f.booking.DeleteEvent(ctx, ev.ID, owner), service.ErrEventNotFound)

	mine, err := f.booking.ListMyTickets(ctx, ann)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestListClubEvents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	chess := f.club(t, "chess")
	drama := f.club(t, "drama")
	f.event(t, chess, 1)
	f.event(t, drama, 1)
	f.event(t, chess, 2)

	all, err := f.booking.ListEvents(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mine, err := f.booking.ListClubEvents(ctx, chess)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	for _, ev := range mine {
		assert.Equal(t, chess, ev.ClubID)
	}
}

func TestBookTicketFillsToCapacity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ev := f.event(t, f.club(t, "chess"), 2)

	first, err := f.booking.BookTicket(ctx, f.student(t, "s1"), ev.ID)
	require.NoError(t, err)
	assert.Equal(t, "Chess Night", first.EventName)
	assert.Equal(t, "s1", first.StudentName)
	assert.Equal(t, "s1@uni.edu", first.Email)
	assert.Equal(t, time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC), first.BookingTime)

	_, err = f.booking.BookTicket(ctx, f.student(t, "s2"), ev.ID)
	require.NoError(t, err)

	_, err = f.booking.BookTicket(ctx, f.student(t, "s3"), ev.ID)
	assert.ErrorIs(t, err, service.ErrCapacityExceeded)
	assert.Equal(t, 2, f.store.TicketCount(ev.ID))
}

func TestBookTicketRejectsDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ev := f.event(t, f.club(t, "chess"), 10)
	ann := f.student(t, "ann")

	_, err := f.booking.BookTicket(ctx, ann, ev.ID)
	require.NoError(t, err)
	_, err = f.booking.BookTicket(ctx, ann, ev.ID)
	assert.ErrorIs(t, err, service.ErrAlreadyBooked)
	assert.Equal(t, 1, f.store.TicketCount(ev.ID))
}

func TestBookTicketUnknownParties(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ev := f.event(t, f.club(t, "chess"), 10)

	_, err := f.booking.BookTicket(ctx, "ghost", ev.ID)
	assert.ErrorIs(t, err, service.ErrStudentNotFound)

	_, err = f.booking.BookTicket(ctx, f.student(t, "ann"), "no-such-event")
	assert.ErrorIs(t, err, service.ErrInvalidEvent)
}

func TestConcurrentBookingNeverOversells(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const capacity, contenders = 5, 40
	ev := f.event(t, f.club(t, "chess"), capacity)

	ids := make([]string, contenders)
	for i := range ids {
		ids[i] = f.student(t, fmt.Sprintf("s%02d", i))
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		booked  int
		refused int
	)
	for _, id := range ids {
		wg.Add(1)
		go func(studentID string) {
			defer wg.Done()
			_, err := f.booking.BookTicket(ctx, studentID, ev.ID)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				booked++
			case errors.Is(err, service.ErrCapacityExceeded):
				refused++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(id)
	}
	wg.Wait()

	assert.Equal(t, capacity, booked)
	assert.Equal(t, contenders-capacity, refused)
	assert.Equal(t, capacity, f.store.TicketCount(ev.ID))
}

func TestConcurrentDuplicateBookingYieldsOneTicket(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ev := f.event(t, f.club(t, "chess"), 100)
	ann := f.student(t, "ann")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.booking.BookTicket(ctx, ann, ev.ID)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, f.store.TicketCount(ev.ID))
}

func TestCancelTicketRequiresOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ev := f.event(t, f.club(t, "chess"), 10)
	a := f.student(t, "a")
	b := f.student(t, "b")

	ticket, err := f.booking.BookTicket(ctx, a, ev.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, f.booking.CancelTicket(ctx, b, ticket.ID), service.ErrForbidden)
	assert.Equal(t, 1, f.store.TicketCount(ev.ID))

	require.NoError(t, f.booking.CancelTicket(ctx, a, ticket.ID))
	assert.Equal(t, 0, f.store.TicketCount(ev.ID))
	assert.ErrorIs(t, f.booking.CancelTicket(ctx, a, ticket.ID), service.ErrTicketNotFound)

	// a cancelled seat can be booked again
	_, err = f.booking.BookTicket(ctx, a, ev.ID)
	assert.NoError(t, err)
}

func TestListMyTicketsAndAttendees(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	club := f.club(t, "chess")
	e1 := f.event(t, club, 10)
	e2 := f.event(t, club, 10)
	ann := f.student(t, "ann")
	bob := f.student(t, "bob")

	for _, b := range []struct{ student, event string }{{ann, e1.ID}, {ann, e2.ID}, {bob, e1.ID}} {
		_, err := f.booking.BookTicket(ctx, b.student, b.event)
		require.NoError(t, err)
	}

	mine, err := f.booking.ListMyTickets(ctx, ann)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	attendees, err := f.booking.ListAttendees(ctx, e1.ID)
	require.NoError(t, err)
	require.Len(t, attendees, 2)
	assert.Equal(t, "ann", attendees[0].StudentName)
	assert.Equal(t, "bob", attendees[1].StudentName)

	_, err = f.booking.ListAttendees(ctx, "missing")
	assert.ErrorIs(t, err, service.ErrEventNotFound)

	_, err = f.booking.ListMyTickets(ctx, "ghost")
	assert.ErrorIs(t, err, service.ErrStudentNotFound)
}

func TestTicketEventsArePublished(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ev := f.event(t, f.club(t, "chess"), 10)
	ann := f.student(t, "ann")

	ticket, err := f.booking.BookTicket(ctx, ann, ev.ID)
	require.NoError(t, err)
	require.NoError(t, f.booking.CancelTicket(ctx, ann, ticket.ID))
	f.booking.Wait()

	events := f.published.Events()
	require.Len(t, events, 2)
	types := []string{events[0].Type, events[1].Type}
	assert.ElementsMatch(t, []string{queue.TypeTicketBooked, queue.TypeTicketCancelled}, types)
	for _, e := range events {
		assert.Equal(t, ticket.ID, e.TicketID)
		assert.Equal(t, ann, e.StudentID)
	}
}

func TestPublishFailureDoesNotFailBooking(t *testing.T) {
	f := newFixture(t)
	f.published.Err = errors.New("broker down")
	ev := f.event(t, f.club(t, "chess"), 10)

	_, err := f.booking.BookTicket(context.Background(), f.student(t, "ann"), ev.ID)
	f.booking.Wait()
	assert.NoError(t, err)
	assert.Equal(t, 1, f.store.TicketCount(ev.ID))
}

func TestExportAttendees(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ev := f.event(t, f.club(t, "chess"), 10)
	ticket, err := f.booking.BookTicket(ctx, f.student(t, "ann"), ev.ID)
	require.NoError(t, err)

	export, err := f.booking.ExportAttendees(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, "event-Chess_Night-tickets.csv", export.Filename())

	var buf bytes.Buffer
	require.NoError(t, export.WriteCSV(&buf))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Ticket ID", "Event ID", "Event Name", "Student Name", "Email", "Booking Time"}, rows[0])
	assert.Equal(t, []string{ticket.ID, ev.ID, "Chess Night", "ann", "ann@uni.edu", "2026-05-01T10:00:00Z"}, rows[1])

	_, err = f.booking.ExportAttendees(ctx, "missing")
	assert.ErrorIs(t, err, service.ErrEventNotFound)
}
