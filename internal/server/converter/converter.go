// Package converter maps events to and from their stored document form.
//
// Stored documents use the localized field names of the existing academy
// data set, so records written by older clients stay readable and records
// written here stay readable by them. The document id is not part of the
// body; it is the storage key.
package converter

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dmitrijs2005/eventsync/internal/server/models"
)

const (
	defaultTextColor = "#ffffff"
	defaultVersion   = 1
)

// Document keys used in queries by the repositories.
const (
	KeyDepartmentID      = "부서ID"
	KeyRelatedGroupID    = "연결그룹ID"
	KeyRecurrenceGroupID = "반복그룹ID"
	KeyAttendance        = "참가현황"
	KeyEndDate           = "종료일"
)

type document struct {
	Title         string   `json:"제목"`
	Description   string   `json:"상세내용,omitempty"`
	Participants  string   `json:"참가자,omitempty"`
	ReferenceURL  string   `json:"참고URL,omitempty"`
	DepartmentID  string   `json:"부서ID,omitempty"`
	DepartmentIDs []string `json:"부서ID목록,omitempty"`
	StartDate     string   `json:"시작일"`
	EndDate       string   `json:"종료일"`
	StartTime     string   `json:"시작시간,omitempty"`
	EndTime       string   `json:"종료시간,omitempty"`
	IsAllDay      *bool    `json:"하루종일,omitempty"`
	Color         string   `json:"색상,omitempty"`
	TextColor     string   `json:"글자색,omitempty"`
	BorderColor   string   `json:"테두리색,omitempty"`
	AuthorID      string   `json:"작성자ID,omitempty"`
	AuthorName    string   `json:"작성자명,omitempty"`
	CreatedAt     string   `json:"생성일시,omitempty"`
	UpdatedAt     string   `json:"수정일시,omitempty"`
	Version       int64    `json:"버전,omitempty"`

	Attendance map[string]models.AttendanceStatus `json:"참가현황,omitempty"`

	RecurrenceGroupID string                `json:"반복그룹ID,omitempty"`
	RecurrenceIndex   int                   `json:"반복순서,omitempty"`
	RecurrenceType    models.RecurrenceType `json:"반복유형,omitempty"`
	RelatedGroupID    string                `json:"연결그룹ID,omitempty"`

	Tags      []string `json:"해시태그,omitempty"`
	EventType string   `json:"일정유형,omitempty"`
}

// ToDocument encodes e for storage. Empty optional fields are omitted,
// the transient archive marker is never written, and the modification
// timestamp is stamped with now.
func ToDocument(e *models.Event, now time.Time) ([]byte, error) {
	allDay := e.IsAllDay
	d := document{
		Title:             e.Title,
		Description:       e.Description,
		Participants:      e.Participants,
		ReferenceURL:      e.ReferenceURL,
		DepartmentID:      e.DepartmentID,
		DepartmentIDs:     e.DepartmentIDs,
		StartDate:         e.StartDate,
		EndDate:           e.EndDate,
		StartTime:         e.StartTime,
		EndTime:           e.EndTime,
		IsAllDay:          &allDay,
		Color:             e.Color,
		TextColor:         e.TextColor,
		BorderColor:       e.BorderColor,
		AuthorID:          e.AuthorID,
		AuthorName:        e.AuthorName,
		CreatedAt:         e.CreatedAt,
		UpdatedAt:         now.UTC().Format(time.RFC3339),
		Version:           e.Version,
		Attendance:        e.Attendance,
		RecurrenceGroupID: e.RecurrenceGroupID,
		RecurrenceIndex:   e.RecurrenceIndex,
		RecurrenceType:    e.RecurrenceType,
		RelatedGroupID:    e.RelatedGroupID,
		Tags:              e.Tags,
		EventType:         e.EventType,
	}
	if d.RecurrenceType == models.RecurrenceNone {
		d.RecurrenceType = ""
	}

	b, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encode event %s: %w", e.ID, err)
	}
	return b, nil
}

// FromDocument decodes a stored document and applies the read-side defaults
// older records rely on.
func FromDocument(id string, raw []byte) (*models.Event, error) {
	var d document
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("decode event %s: %w", id, err)
	}

	e := &models.Event{
		ID:                id,
		DepartmentID:      d.DepartmentID,
		DepartmentIDs:     d.DepartmentIDs,
		Title:             d.Title,
		Description:       d.Description,
		Participants:      d.Participants,
		ReferenceURL:      d.ReferenceURL,
		StartDate:         d.StartDate,
		EndDate:           d.EndDate,
		StartTime:         d.StartTime,
		EndTime:           d.EndTime,
		Color:             d.Color,
		TextColor:         d.TextColor,
		BorderColor:       d.BorderColor,
		AuthorID:          d.AuthorID,
		AuthorName:        d.AuthorName,
		CreatedAt:         d.CreatedAt,
		UpdatedAt:         d.UpdatedAt,
		Version:           d.Version,
		Attendance:        d.Attendance,
		RecurrenceGroupID: d.RecurrenceGroupID,
		RecurrenceIndex:   d.RecurrenceIndex,
		RecurrenceType:    d.RecurrenceType,
		RelatedGroupID:    d.RelatedGroupID,
		Tags:              d.Tags,
		EventType:         d.EventType,
	}

	if d.IsAllDay != nil {
		e.IsAllDay = *d.IsAllDay
	} else {
		e.IsAllDay = d.StartTime == "" && d.EndTime == ""
	}
	if e.TextColor == "" {
		e.TextColor = defaultTextColor
	}
	if e.BorderColor == "" {
		e.BorderColor = e.Color
	}
	if e.Version == 0 {
		e.Version = defaultVersion
	}
	if len(e.DepartmentIDs) == 0 {
		if e.DepartmentID != "" {
			e.DepartmentIDs = []string{e.DepartmentID}
		} else {
			e.DepartmentIDs = []string{}
		}
	}
	return e, nil
}
