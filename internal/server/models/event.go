// Package models defines the server-side calendar records persisted by
// eventsync.
package models

// RecurrenceType names the rule used to generate a series.
type RecurrenceType string

const (
	RecurrenceNone     RecurrenceType = "none"
	RecurrenceDaily    RecurrenceType = "daily"
	RecurrenceWeekdays RecurrenceType = "weekdays"
	RecurrenceWeekends RecurrenceType = "weekends"
	RecurrenceWeekly   RecurrenceType = "weekly"
	RecurrenceMonthly  RecurrenceType = "monthly"
	RecurrenceYearly   RecurrenceType = "yearly"
)

// Repeats reports whether the type generates more than one date.
// The empty value is treated as none.
func (t RecurrenceType) Repeats() bool {
	return t != "" && t != RecurrenceNone
}

// Valid reports whether t is one of the known recurrence types (or empty).
func (t RecurrenceType) Valid() bool {
	switch t {
	case "", RecurrenceNone, RecurrenceDaily, RecurrenceWeekdays, RecurrenceWeekends,
		RecurrenceWeekly, RecurrenceMonthly, RecurrenceYearly:
		return true
	}
	return false
}

// AttendanceStatus is a participant's answer for one event.
type AttendanceStatus string

const (
	AttendancePending  AttendanceStatus = "pending"
	AttendanceJoined   AttendanceStatus = "joined"
	AttendanceDeclined AttendanceStatus = "declined"
)

func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendancePending, AttendanceJoined, AttendanceDeclined:
		return true
	}
	return false
}

// Event is one stored calendar document. A logical event visible to several
// departments is stored as one Event per department (siblings sharing
// RelatedGroupID); a recurring event is stored as one Event per occurrence
// (sharing RecurrenceGroupID).
type Event struct {
	ID            string   `json:"id"`
	DepartmentID  string   `json:"departmentId"`
	DepartmentIDs []string `json:"departmentIds,omitempty"`

	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	Participants string `json:"participants,omitempty"`
	ReferenceURL string `json:"referenceUrl,omitempty"`

	// StartDate and EndDate use common.DateLayout (YYYY-MM-DD).
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	StartTime string `json:"startTime,omitempty"`
	EndTime   string `json:"endTime,omitempty"`
	IsAllDay  bool   `json:"isAllDay,omitempty"`

	Color       string `json:"color,omitempty"`
	TextColor   string `json:"textColor,omitempty"`
	BorderColor string `json:"borderColor,omitempty"`

	AuthorID   string `json:"authorId,omitempty"`
	AuthorName string `json:"authorName,omitempty"`
	CreatedAt  string `json:"createdAt,omitempty"`
	UpdatedAt  string `json:"updatedAt,omitempty"`

	// Version is bumped on every save. It is informational only: saves are
	// last-write-wins.
	Version int64 `json:"version,omitempty"`

	Attendance map[string]AttendanceStatus `json:"attendance,omitempty"`

	RecurrenceGroupID string         `json:"recurrenceGroupId,omitempty"`
	RecurrenceIndex   int            `json:"recurrenceIndex,omitempty"`
	RecurrenceType    RecurrenceType `json:"recurrenceType,omitempty"`
	RelatedGroupID    string         `json:"relatedGroupId,omitempty"`

	Tags      []string `json:"tags,omitempty"`
	EventType string   `json:"eventType,omitempty"`

	// IsArchived marks a record loaded from the archive partition. It is
	// consumed by Save and never persisted.
	IsArchived bool `json:"isArchived,omitempty"`
}

// Clone returns a deep copy so fan-out code can mutate per-document fields
// without aliasing slices or maps between siblings.
func (e *Event) Clone() *Event {
	c := *e
	if e.DepartmentIDs != nil {
		c.DepartmentIDs = append([]string(nil), e.DepartmentIDs...)
	}
	if e.Tags != nil {
		c.Tags = append([]string(nil), e.Tags...)
	}
	if e.Attendance != nil {
		c.Attendance = make(map[string]AttendanceStatus, len(e.Attendance))
		for k, v := range e.Attendance {
			c.Attendance[k] = v
		}
	}
	return &c
}

// TargetDepartments returns DepartmentIDs, or DepartmentID alone when the
// list is empty.
func (e *Event) TargetDepartments() []string {
	if len(e.DepartmentIDs) > 0 {
		return e.DepartmentIDs
	}
	return []string{e.DepartmentID}
}
