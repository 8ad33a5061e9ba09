package repository_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/campus-ticketing/internal/repository"
)

func TestEventRepo_UpdateCapacityGuard(t *testing.T) {
	db := setupTestWithTruncate(t)
	events := repository.NewEventRepo(db)
	tickets := repository.NewTicketRepo(db)
	ctx := context.Background()

	ev := createTestEvent(t, db, createTestClub(t, db, "Chess"), 3)
	require.NoError(t, tickets.Book(ctx, newTicket(ev, "ann@uni.edu")))
	require.NoError(t, tickets.Book(ctx, newTicket(ev, "bob@uni.edu")))

	lower := *ev
	lower.Capacity = 1
	assert.ErrorIs(t, events.Update(ctx, &lower), repository.ErrCapacityBelowBooked)

	got, err := events.GetByID(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Capacity, "rejected update must not be written")

	exact := *ev
	exact.Capacity = 2
	exact.Venue = "Main Hall"
	require.NoError(t, events.Update(ctx, &exact))

	got, err = events.GetByID(ctx, ev.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Capacity)
	assert.Equal(t, "Main Hall", got.Venue)
	assert.Equal(t, ev.ClubID, got.ClubID)

	missing := *ev
	missing.ID = "no-such-event"
	assert.ErrorIs(t, events.Update(ctx, &missing), repository.ErrNotFound)
}

func TestEventRepo_ListAndDelete(t *testing.T) {
	db := setupTestWithTruncate(t)
	events := repository.NewEventRepo(db)
	tickets := repository.NewTicketRepo(db)
	ctx := context.Background()

	chess := createTestClub(t, db, "Chess")
	goClub := createTestClub(t, db, "Go")
	first := createTestEvent(t, db, chess, 5)
	createTestEvent(t, db, chess, 5)
	createTestEvent(t, db, goClub, 5)

	all, err := events.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	mine, err := events.ListByClub(ctx, chess.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	require.NoError(t, tickets.Book(ctx, newTicket(first, "ann@uni.edu")))
	require.NoError(t, events.Delete(ctx, first.ID))
	assert.ErrorIs(t, events.Delete(ctx, first.ID), repository.ErrNotFound)
	assertTicketCount(t, db, first.ID, 1)
}
