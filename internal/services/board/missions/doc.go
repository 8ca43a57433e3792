// Package missions owns the mission listing and the caller's "my missions"
// view.
//
// Reads never fail: when the API is unreachable the store answers from a
// fixed synthetic dataset and from the locally cached joined missions, so a
// mission the caller joined offline is still shown afterwards.
package missions
