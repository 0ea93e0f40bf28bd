package shop

import (
	"fmt"

	"adoptipet/internal/platform/apperr"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPlaced:  {OrderShipped, OrderCancelled},
	OrderShipped: {OrderDelivered},
}

func CanTransitionOrder(from, to OrderStatus) bool {
	for _, s := range orderTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func TransitionOrder(o Order, to OrderStatus) (Order, error) {
	if !CanTransitionOrder(o.Status, to) {
		return Order{}, apperr.New(apperr.KindConflict, fmt.Sprintf("order cannot go from %s to %s", o.Status, to))
	}
	o.Status = to
	return o, nil
}
