package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/iliyamo/campus-ticketing/internal/model"
)

var attendeeHeader = []string{"Ticket ID", "Event ID", "Event Name", "Student Name", "Email", "Booking Time"}

// AttendeeExport is the attendee list of one event, ready to be
// rendered.
type AttendeeExport struct {
	Event   model.Event
	Tickets []model.Ticket
}

// ExportAttendees loads the event and its tickets for download.
func (s *BookingService) ExportAttendees(ctx context.Context, eventID string) (*AttendeeExport, error) {
	ev, err := s.GetEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	tickets, err := s.tickets.ListByEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list attendees: %w", err)
	}
	return &AttendeeExport{Event: *ev, Tickets: tickets}, nil
}

// Filename is "event-<name>-tickets.csv" with spaces in the event name
// replaced by underscores.
func (x *AttendeeExport) Filename() string {
	return "event-" + strings.ReplaceAll(x.Event.Name, " ", "_") + "-tickets.csv"
}

// WriteCSV renders a header row and one row per ticket.
func (x *AttendeeExport) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(attendeeHeader); err != nil {
		return err
	}
	for _, t := range x.Tickets {
		row := []string{t.ID, t.EventID, t.EventName, t.StudentName, t.Email, t.BookingTime.UTC().Format(time.RFC3339)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
