package model

// OrderStatus is an order's position in the fulfilment workflow.
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusAccepted  OrderStatus = "accepted"
	StatusCompleted OrderStatus = "completed"
	StatusRejected  OrderStatus = "rejected"
)

// validTransitions maps each status to the set of statuses it may move to.
// Completed and rejected are terminal and deliberately absent.
var validTransitions = map[OrderStatus]map[OrderStatus]bool{
	StatusPending: {
		StatusAccepted: true,
		StatusRejected: true,
	},
	StatusAccepted: {
		StatusCompleted: true,
		StatusRejected:  true,
	},
}

// ValidOrderTransition reports whether moving from one status to another is
// a defined edge of the workflow.
func ValidOrderTransition(from, to OrderStatus) bool {
	targets, ok := validTransitions[from]
	if !ok {
		return false
	}
	return targets[to]
}

// OrderTransitions returns the statuses reachable from the given one, in a
// stable order for menu rendering.
func OrderTransitions(from OrderStatus) []OrderStatus {
	var out []OrderStatus
	for _, to := range []OrderStatus{StatusAccepted, StatusCompleted, StatusRejected} {
		if ValidOrderTransition(from, to) {
			out = append(out, to)
		}
	}
	return out
}

// Terminal reports whether no further transitions exist.
func (s OrderStatus) Terminal() bool {
	return len(validTransitions[s]) == 0
}

// Known reports whether the status is one of the workflow's states.
func (s OrderStatus) Known() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusCompleted, StatusRejected:
		return true
	}
	return false
}
