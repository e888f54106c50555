// Package plan evaluates what a user's subscription allows.
package plan

import (
	"fmt"

	"github.com/dtroode/cardkeeper-server/internal/model"
)

// FreeItemLimit is the maximum collection size on the free plan.
const FreeItemLimit = 20

// Evaluate returns the capabilities of user given the current size of their
// collection. It has no side effects; call it again before every mutation.
func Evaluate(user model.User, collectionSize int) model.Capabilities {
	if user.Administrator || user.Plan == model.PlanPremium {
		return model.Capabilities{CanAddItem: true, CanAddPhoto: true}
	}

	caps := model.Capabilities{
		CanAddItem:  collectionSize < FreeItemLimit,
		CanAddPhoto: false,
	}
	if !caps.CanAddItem {
		caps.Reason = fmt.Sprintf("free plan is limited to %d items, upgrade to premium to add more", FreeItemLimit)
	}

	return caps
}
