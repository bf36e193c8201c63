package model

import "fmt"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderPaid      OrderStatus = "paid"
	OrderShipped   OrderStatus = "shipped"
	OrderDelivered OrderStatus = "delivered"
)

// OrderStatuses lists every known status in lifecycle order.
var OrderStatuses = []OrderStatus{OrderPending, OrderPaid, OrderShipped, OrderDelivered}

// ParseOrderStatus converts s into a known OrderStatus.
func ParseOrderStatus(s string) (OrderStatus, error) {
	for _, st := range OrderStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown order status %q", s)
}

// CanTransitionTo reports whether an order may move from s to next.
// The status set is intentionally unconstrained: any known status may follow
// any other, including itself. This is not a state machine.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	_, err := ParseOrderStatus(string(next))
	return err == nil
}
