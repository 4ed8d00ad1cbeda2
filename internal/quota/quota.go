// Package quota decides whether a user may create another form. The decision
// is pure; the post-success usage increment lives in the store so it stays a
// single per-key SQL update.
package quota

import (
	"errors"

	"github.com/SmartForms-ai/google-forms-api/internal/model"
)

// ErrExceeded means the free quota is spent and no active subscription
// covers the user. Surfaced to callers as HTTP 402.
var ErrExceeded = errors.New("free usage limit reached")

// Check allows the action when the user is entitled through billing or still
// under the free quota.
func Check(u *model.UsageRecord, freeQuota int64) error {
	if u.Entitled() {
		return nil
	}
	if u.UsageCount < freeQuota {
		return nil
	}
	return ErrExceeded
}
