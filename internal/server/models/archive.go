package models

import "time"

// ArchivedEvent is an event moved out of the live table by the sweeper.
type ArchivedEvent struct {
	Event      *Event
	ArchivedAt time.Time
}
