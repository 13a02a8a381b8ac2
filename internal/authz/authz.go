// Package authz decides whether a caller may act on a receipt.
package authz

import "errors"

// ErrDenied is the single denial outcome. It covers both "the receipt does
// not exist" and "the receipt belongs to someone else" so a caller probing
// asset ids cannot learn which of the two happened.
var ErrDenied = errors.New("not found or forbidden")

// Authorize allows an action only when the resource's owner matches the
// authenticated caller. exists is false when the resource was not found;
// that case denies with the same outcome as an ownership mismatch.
func Authorize(callerID uint, resourceOwnerID uint, exists bool) error {
	if !exists || callerID != resourceOwnerID {
		return ErrDenied
	}
	return nil
}
