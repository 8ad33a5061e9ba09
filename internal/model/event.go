package model

// Event represents a row in the `events` table.  An event belongs to
// the club that created it; ClubID never changes after creation.
// ClubName is copied from the club at creation time.
//
// Fields:
//  ID          – UUID primary key.
//  Name        – event title.
//  Description – free text shown to students.
//  Date        – calendar day, YYYY-MM-DD.
//  Time        – start time, HH:mm.
//  Venue       – where the event takes place.
//  Capacity    – maximum number of live tickets (at least 1).
//  ClubID      – owning club.
//  ClubName    – owning club's name at creation.
type Event struct {
	ID          string `json:"id"`          // events.id
	Name        string `json:"name"`        // events.name
	Description string `json:"description"` // events.description
	Date        string `json:"date"`        // events.event_date
	Time        string `json:"time"`        // events.event_time
	Venue       string `json:"venue"`       // events.venue
	Capacity    int    `json:"capacity"`    // events.capacity
	ClubID      string `json:"clubId"`      // events.club_id
	ClubName    string `json:"clubName"`    // events.club_name
}
