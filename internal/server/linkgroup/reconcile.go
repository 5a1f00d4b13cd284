package linkgroup

import (
	"slices"

	"github.com/dmitrijs2005/eventsync/internal/server/models"
)

// Plan is the set of writes that makes storage mirror a target department set.
type Plan struct {
	Upserts []*models.Event
	Deletes []string
}

// Reconcile computes the documents to upsert and delete for logical so that
// the stored siblings match targets exactly. existing are the documents
// currently stored under logical.RelatedGroupID (empty for a new group or a
// group that was not found). newGroupID is only called when a multi-department
// event has no group id yet.
//
// Ids of existing siblings are reused as stored, whatever scheme produced
// them; only departments without a sibling get a fresh SiblingID.
func Reconcile(logical *models.Event, targets []string, existing []*models.Event, newGroupID func() string) Plan {
	if len(targets) == 0 {
		targets = []string{logical.DepartmentID}
	}

	var plan Plan

	if len(existing) > 0 {
		byDept := make(map[string]string, len(existing))
		for _, s := range existing {
			byDept[s.DepartmentID] = s.ID
		}

		for _, dept := range targets {
			id, ok := byDept[dept]
			if !ok {
				id = SiblingID(logical.ID, logical.DepartmentID, dept)
			}
			plan.Upserts = append(plan.Upserts, sibling(logical, id, dept, targets, logical.RelatedGroupID))
		}

		for _, s := range existing {
			if !slices.Contains(targets, s.DepartmentID) {
				plan.Deletes = append(plan.Deletes, s.ID)
			}
		}
		return plan
	}

	groupID := logical.RelatedGroupID
	if len(targets) > 1 && groupID == "" {
		groupID = newGroupID()
	}

	planned := make([]string, 0, len(targets))
	for _, dept := range targets {
		id := SiblingID(logical.ID, logical.DepartmentID, dept)
		planned = append(planned, id)
		plan.Upserts = append(plan.Upserts, sibling(logical, id, dept, targets, groupID))
	}

	// The primary department was dropped from an already stored event: its
	// old document would otherwise be orphaned.
	if logical.CreatedAt != "" && !slices.Contains(planned, logical.ID) {
		plan.Deletes = append(plan.Deletes, logical.ID)
	}
	return plan
}

func sibling(logical *models.Event, id, dept string, targets []string, groupID string) *models.Event {
	s := logical.Clone()
	s.ID = id
	s.DepartmentID = dept
	s.DepartmentIDs = append([]string(nil), targets...)
	s.RelatedGroupID = groupID
	s.Version = logical.Version + 1
	s.IsArchived = false
	return s
}
