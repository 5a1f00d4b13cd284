package recurrence

import (
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/eventsync/internal/common"
	"github.com/dmitrijs2005/eventsync/internal/server/linkgroup"
	"github.com/dmitrijs2005/eventsync/internal/server/models"
)

// OccurrenceID is the logical id of occurrence i (0-based) of the series
// rooted at seriesID.
func OccurrenceID(seriesID string, i int) string {
	if i == 0 {
		return seriesID
	}
	return seriesID + "_r" + strconv.Itoa(i+1)
}

// Expand builds every document of a new series: count occurrences of base
// under rule rt, each fanned out to the target departments. The span between
// base.StartDate and base.EndDate is kept for every occurrence.
//
// Occurrences are linked across departments per date: with more than one
// target each occurrence gets its own relatedGroupId from newGroupID.
// The result has count * max(1, len(targets)) documents, ordered by
// occurrence then department.
func Expand(base *models.Event, rt models.RecurrenceType, count int, targets []string, newGroupID func() string) ([]*models.Event, error) {
	if len(targets) == 0 {
		targets = []string{base.DepartmentID}
	}

	start, err := time.Parse(common.DateLayout, base.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: start date %q", common.ErrorIncorrectInput, base.StartDate)
	}
	end, err := time.Parse(common.DateLayout, base.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: end date %q", common.ErrorIncorrectInput, base.EndDate)
	}
	spanDays := int(end.Sub(start).Hours() / 24)

	dates, err := Sequence(start, rt, count)
	if err != nil {
		return nil, err
	}

	multi := len(targets) > 1
	out := make([]*models.Event, 0, len(dates)*len(targets))

	for i, d := range dates {
		logicalID := OccurrenceID(base.ID, i)

		groupID := ""
		if multi {
			groupID = newGroupID()
		}

		for _, dept := range targets {
			occ := base.Clone()
			occ.ID = linkgroup.SiblingID(logicalID, base.DepartmentID, dept)
			occ.DepartmentID = dept
			occ.DepartmentIDs = append([]string(nil), targets...)
			occ.StartDate = d.Format(common.DateLayout)
			occ.EndDate = d.AddDate(0, 0, spanDays).Format(common.DateLayout)
			occ.RecurrenceType = rt
			occ.RecurrenceGroupID = base.ID
			occ.RecurrenceIndex = i + 1
			occ.RelatedGroupID = groupID
			occ.Version = base.Version + 1
			occ.IsArchived = false
			out = append(out, occ)
		}
	}
	return out, nil
}
