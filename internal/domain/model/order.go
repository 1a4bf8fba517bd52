package model

import "time"

// OrderStatus describes fulfillment lifecycle.
type OrderStatus string

const (
	OrderStatusUploaded  OrderStatus = "uploaded"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusDelivered OrderStatus = "delivered"
	OrderStatusRejected  OrderStatus = "rejected"
)

// statusRank orders the forward path. Rejected sits outside the ordering.
var statusRank = map[OrderStatus]int{
	OrderStatusUploaded:  0,
	OrderStatusPaid:      1,
	OrderStatusReady:     2,
	OrderStatusDelivered: 3,
}

// AtLeast reports whether status has reached other on the forward path.
// A rejected order has left the path and is never "at least" anything.
func (s OrderStatus) AtLeast(other OrderStatus) bool {
	rank, ok := statusRank[s]
	if !ok {
		return false
	}
	otherRank, ok := statusRank[other]
	if !ok {
		return false
	}
	return rank >= otherRank
}

// Terminal reports whether no further transition is accepted.
func (s OrderStatus) Terminal() bool {
	return s == OrderStatusDelivered || s == OrderStatusRejected
}

// NormalizeStatus maps legacy stored vocabularies onto the canonical one.
// Unknown values fall back to uploaded.
func NormalizeStatus(raw string) OrderStatus {
	switch OrderStatus(raw) {
	case OrderStatusUploaded, OrderStatusPaid, OrderStatusReady, OrderStatusDelivered, OrderStatusRejected:
		return OrderStatus(raw)
	case "pending":
		return OrderStatusUploaded
	case "in_progress":
		return OrderStatusPaid
	default:
		return OrderStatusUploaded
	}
}

// PaymentStatus describes settlement state of an order.
type PaymentStatus string

const (
	PaymentStatusUnpaid   PaymentStatus = "unpaid"
	PaymentStatusApproved PaymentStatus = "approved"
)

// Payment records which provider settled the order.
type Payment struct {
	Provider   string
	ExternalID string
	Status     PaymentStatus
}

// FileRef points at an artifact held by blob storage.
type FileRef struct {
	Name string
	URL  string
	Size int64
}

// Empty reports whether the reference points at nothing.
func (f FileRef) Empty() bool {
	return f.Name == ""
}

// MaxFeedbackLength bounds free-text feedback.
const MaxFeedbackLength = 2000

// Order describes one tuning request from submission through delivery.
type Order struct {
	ID           string
	Owner        string
	Vehicle      map[string]string
	Options      []string
	Comments     string
	OriginalFile FileRef
	ResultFile   FileRef
	Status       OrderStatus
	Payment      Payment
	Rating       int
	Feedback     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Version      int64
}

// Touch refreshes UpdatedAt so it strictly increases even when the clock
// has not advanced past the previous write.
func (o *Order) Touch(now time.Time) {
	if !now.After(o.UpdatedAt) {
		now = o.UpdatedAt.Add(time.Microsecond)
	}
	o.UpdatedAt = now
}

// ClampRating forces a rating into the accepted range.
func ClampRating(rating int) int {
	if rating < 0 {
		return 0
	}
	if rating > 5 {
		return 5
	}
	return rating
}
