// Package service holds the board's interaction rules: vote toggling,
// ownership gating, content queries and content mutations.
package service

// CanMutate reports whether actingUserID may edit or delete a resource owned
// by ownerID. A missing owner or an anonymous actor never matches.
//
// This is an advisory gate for the client; the backend store does not
// enforce it.
func CanMutate(ownerID *string, actingUserID string) bool {
	if ownerID == nil || actingUserID == "" {
		return false
	}
	return *ownerID == actingUserID
}
