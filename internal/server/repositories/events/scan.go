package events

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/eventsync/internal/common"
	"github.com/dmitrijs2005/eventsync/internal/server/converter"
	"github.com/dmitrijs2005/eventsync/internal/server/models"
)

// now is a test seam for the document modification stamp.
var now = time.Now

// row is the column projection written next to the document.
type row struct {
	id                string
	departmentID      string
	relatedGroupID    string
	recurrenceGroupID string
	recurrenceIndex   int
	startDate         string
	endDate           string
	doc               string
}

func toRow(e *models.Event) (row, error) {
	doc, err := converter.ToDocument(e, now())
	if err != nil {
		return row{}, err
	}
	return row{
		id:                e.ID,
		departmentID:      e.DepartmentID,
		relatedGroupID:    e.RelatedGroupID,
		recurrenceGroupID: e.RecurrenceGroupID,
		recurrenceIndex:   e.RecurrenceIndex,
		startDate:         e.StartDate,
		endDate:           e.EndDate,
		doc:               string(doc),
	}, nil
}

func scanOne(r *sql.Row) (*models.Event, error) {
	var id string
	var doc []byte
	if err := r.Scan(&id, &doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return converter.FromDocument(id, doc)
}

func scanAll(rows *sql.Rows) ([]*models.Event, error) {
	defer rows.Close()

	var result []*models.Event
	for rows.Next() {
		var id string
		var doc []byte
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, err
		}
		e, err := converter.FromDocument(id, doc)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
