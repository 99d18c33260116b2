package repository

import (
	"fmt"
	"laundry_service/apperror"
	"laundry_service/constants"
	"slices"
)

func IsOrderStatus(status string) bool {
	return slices.Contains(constants.OrderStatuses, status)
}

func IsTerminalOrderStatus(status string) bool {
	return status == constants.ORDER_COMPLETED || status == constants.ORDER_CANCELLED
}

// ValidateTransition checks a move along the fulfillment path. Orders only move
// forward (skipping steps is allowed); cancellation is open to any non-terminal order.
func ValidateTransition(from, to string) error {
	if !IsOrderStatus(to) {
		return apperror.FieldError("status", fmt.Sprintf("%q is not a valid order status", to))
	}
	if from == to {
		return nil
	}
	if IsTerminalOrderStatus(from) {
		return apperror.NewState(fmt.Sprintf("order is already %s", from))
	}
	if to == constants.ORDER_CANCELLED {
		return nil
	}
	if slices.Index(constants.OrderStatusFlow, to) < slices.Index(constants.OrderStatusFlow, from) {
		return apperror.NewState(fmt.Sprintf("order cannot move from %s back to %s", from, to))
	}
	return nil
}
