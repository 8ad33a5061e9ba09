package service

import (
	"context"

	"github.com/iliyamo/campus-ticketing/internal/model"
	"github.com/iliyamo/campus-ticketing/internal/queue"
	"github.com/iliyamo/campus-ticketing/internal/utils"
)

// The store interfaces below are satisfied by the MySQL repositories and
// by testutil's in-memory store.  Lookups report a missing row with
// repository.ErrNotFound.

type ClubStore interface {
	Create(ctx context.Context, c *model.Club) error
	GetByID(ctx context.Context, id string) (*model.Club, error)
	GetByEmail(ctx context.Context, email string) (*model.Club, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

type StudentStore interface {
	Create(ctx context.Context, s *model.Student) error
	GetByID(ctx context.Context, id string) (*model.Student, error)
	GetByEmail(ctx context.Context, email string) (*model.Student, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByRbtNumber(ctx context.Context, rbt string) (bool, error)
}

type EventStore interface {
	Create(ctx context.Context, e *model.Event) error
	GetByID(ctx context.Context, id string) (*model.Event, error)
	List(ctx context.Context) ([]model.Event, error)
	ListByClub(ctx context.Context, clubID string) ([]model.Event, error)
	// Update fails with repository.ErrCapacityBelowBooked when e.Capacity
	// is below the live ticket count.
	Update(ctx context.Context, e *model.Event) error
	Delete(ctx context.Context, id string) error
}

type TicketStore interface {
	// Book inserts t atomically with respect to the event's capacity and
	// the (event, email) uniqueness rule.  It fails with
	// repository.ErrNotFound, ErrAlreadyBooked or ErrEventFull.
	Book(ctx context.Context, t *model.Ticket) error
	GetByID(ctx context.Context, id string) (*model.Ticket, error)
	ListByEmail(ctx context.Context, email string) ([]model.Ticket, error)
	ListByEvent(ctx context.Context, eventID string) ([]model.Ticket, error)
	Delete(ctx context.Context, id string) error
}

// EventPublisher receives ticket lifecycle events.  QueuePublisher is the
// production implementation.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.TicketEvent) error
}

// TokenIssuer signs access tokens for freshly authenticated accounts.
type TokenIssuer interface {
	Issue(p model.Principal, display utils.DisplayClaims) (utils.AccessToken, error)
}
