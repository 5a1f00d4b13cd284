// Package icsexport renders stored events as an iCalendar feed.
package icsexport

import (
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/dmitrijs2005/eventsync/internal/common"
	"github.com/dmitrijs2005/eventsync/internal/server/models"
)

const (
	productID  = "-//eventsync//calendar export//KO"
	timeLayout = "15:04"
)

// Render returns the iCalendar text for events. Dates and times are read in
// loc. Events without times are exported as all-day entries; malformed
// dates fail the whole export.
func Render(name string, events []*models.Event, loc *time.Location, now time.Time) (string, error) {
	if loc == nil {
		loc = time.UTC
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(productID)
	if name != "" {
		cal.SetXWRCalName(name)
	}
	cal.SetXWRTimezone(loc.String())

	for _, e := range events {
		if err := addEvent(cal, e, loc, now); err != nil {
			return "", err
		}
	}
	return cal.Serialize(), nil
}

func addEvent(cal *ics.Calendar, e *models.Event, loc *time.Location, now time.Time) error {
	start, err := time.ParseInLocation(common.DateLayout, e.StartDate, loc)
	if err != nil {
		return fmt.Errorf("event %s: start date %q: %w", e.ID, e.StartDate, err)
	}
	end := start
	if e.EndDate != "" {
		end, err = time.ParseInLocation(common.DateLayout, e.EndDate, loc)
		if err != nil {
			return fmt.Errorf("event %s: end date %q: %w", e.ID, e.EndDate, err)
		}
	}

	ve := cal.AddEvent(e.ID)
	ve.SetDtStampTime(now)
	ve.SetSummary(e.Title)
	if e.Description != "" {
		ve.SetDescription(e.Description)
	}
	if e.ReferenceURL != "" {
		ve.SetURL(e.ReferenceURL)
	}
	if len(e.Tags) > 0 {
		ve.AddProperty(ics.ComponentPropertyCategories, strings.Join(e.Tags, ","))
	}
	if e.RecurrenceGroupID != "" && e.RecurrenceGroupID != e.ID {
		ve.AddProperty(ics.ComponentProperty("RELATED-TO"), e.RecurrenceGroupID)
	}

	if e.IsAllDay || e.StartTime == "" {
		ve.SetAllDayStartAt(start)
		// DTEND is exclusive for all-day entries.
		ve.SetAllDayEndAt(end.AddDate(0, 0, 1))
		return nil
	}

	startAt, err := atTime(start, e.StartTime)
	if err != nil {
		return fmt.Errorf("event %s: %w", e.ID, err)
	}
	endAt := startAt
	if e.EndTime != "" {
		if endAt, err = atTime(end, e.EndTime); err != nil {
			return fmt.Errorf("event %s: %w", e.ID, err)
		}
	}
	ve.SetStartAt(startAt)
	ve.SetEndAt(endAt)
	return nil
}

func atTime(day time.Time, hhmm string) (time.Time, error) {
	t, err := time.Parse(timeLayout, hhmm)
	if err != nil {
		return time.Time{}, fmt.Errorf("time %q: %w", hhmm, err)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), t.Hour(), t.Minute(), 0, 0, day.Location()), nil
}
