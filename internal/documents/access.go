// Package documents turns stored worksheet, course and e-book records into the
// caller-visible document shape and enforces who may see them.
package documents

import "errors"

// ErrNotFound is the single outward result for missing, private, unpublished
// and foreign documents.
var ErrNotFound = errors.New("not found")

// Viewer is the identity a request acts as. A zero Viewer is anonymous.
type Viewer struct {
	UserID string
}

// Anonymous reports whether no user is attached.
func (v Viewer) Anonymous() bool {
	return v.UserID == ""
}

// RequireOwner returns ErrNotFound unless viewer owns the document.
func RequireOwner(ownerID *string, viewer Viewer) error {
	if viewer.Anonymous() || ownerID == nil || *ownerID != viewer.UserID {
		return ErrNotFound
	}
	return nil
}

// RequirePublished returns ErrNotFound for unpublished documents.
func RequirePublished(published bool) error {
	if !published {
		return ErrNotFound
	}
	return nil
}
