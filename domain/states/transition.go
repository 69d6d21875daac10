package states

import (
	"fmt"

	"github.com/pkg/errors"
)

var ErrorIllegalTransition = errors.New("illegal status transition")
var ErrorReopenCancelled = errors.New("cancelled order cannot be reopened")

// ITransitionPolicy decides whether an order may move from one status to another.
type ITransitionPolicy interface {
	Check(from, to OrderStatus) error
	Strict() bool
}

type transitionPolicyImpl struct {
	strict bool
}

// NewTransitionPolicy returns the strict table-driven policy when strict is
// set, otherwise a permissive one that accepts any known status except
// leaving cancelled.
func NewTransitionPolicy(strict bool) ITransitionPolicy {
	return transitionPolicyImpl{strict: strict}
}

func (policy transitionPolicyImpl) Strict() bool {
	return policy.strict
}

func (policy transitionPolicyImpl) Check(from, to OrderStatus) error {
	if from == OrderCancelledStatus && to != OrderCancelledStatus {
		return errors.Wrap(ErrorReopenCancelled, fmt.Sprintf("%s -> %s", from, to))
	}

	if !policy.strict {
		return nil
	}

	if !from.CanMoveTo(to) {
		return errors.Wrap(ErrorIllegalTransition, fmt.Sprintf("%s -> %s", from, to))
	}
	return nil
}
