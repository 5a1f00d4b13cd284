// Package linkgroup keeps the per-department copies of a logical event in
// step with its target department set.
package linkgroup

import "strings"

// pathDelimiter cannot appear inside a storage key.
const pathDelimiter = "/"

// SanitizeDepartmentID returns deptID with every path delimiter replaced by
// an underscore, so it can be embedded in a composite document id.
func SanitizeDepartmentID(deptID string) string {
	return strings.ReplaceAll(deptID, pathDelimiter, "_")
}

// SiblingID is the document id of the copy of logicalID stored for deptID:
// the logical id itself for the primary department, otherwise
// logicalID + "_" + sanitized department.
func SiblingID(logicalID, primaryDeptID, deptID string) string {
	if deptID == primaryDeptID {
		return logicalID
	}
	return logicalID + "_" + SanitizeDepartmentID(deptID)
}
