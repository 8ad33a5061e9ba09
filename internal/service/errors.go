package service

import "errors"

// Domain errors returned by AccountService and BookingService.  Handlers
// map each to an HTTP status; anything else is an internal error.
var (
	ErrClubNotFound        = errors.New("club not found")
	ErrStudentNotFound     = errors.New("student not found")
	ErrEventNotFound       = errors.New("event not found")
	ErrInvalidEvent        = errors.New("invalid event id")
	ErrTicketNotFound      = errors.New("ticket not found")
	ErrForbidden           = errors.New("forbidden")
	ErrAlreadyBooked       = errors.New("student already holds a ticket for this event")
	ErrCapacityExceeded    = errors.New("event is fully booked")
	ErrCapacityBelowBooked = errors.New("capacity is below the number of booked tickets")
	ErrInvalidCapacity     = errors.New("capacity must be at least 1")
	ErrEmailTaken          = errors.New("email already registered")
	ErrRbtTaken            = errors.New("rbt number already registered")
	ErrInvalidCredentials  = errors.New("invalid credentials")
)
