package models

// Order statuses.
const (
	OrderPending   = "pending"
	OrderConfirmed = "confirmed"
	OrderCancelled = "cancelled"
)

// Order is the unit of capacity consumption: one order plus its attached
// passengers is committed as a whole or not at all.
type Order struct {
	ID             string  `json:"id" bson:"id"`
	UserID         string  `json:"userId" bson:"userId"`
	TourID         string  `json:"tourId" bson:"tourId"`
	Date           string  `json:"date" bson:"date"`
	PaymentMethod  string  `json:"paymentMethod" bson:"paymentMethod"`
	ContactName    string  `json:"contactName,omitempty" bson:"contactName,omitempty"`
	ContactEmail   string  `json:"contactEmail,omitempty" bson:"contactEmail,omitempty"`
	ContactPhone   string  `json:"contactPhone,omitempty" bson:"contactPhone,omitempty"`
	TotalPrice     float64 `json:"totalPrice" bson:"totalPrice"`
	PaidAmount     float64 `json:"paidAmount" bson:"paidAmount"`
	Balance        float64 `json:"balance" bson:"balance"`
	Status         string  `json:"status" bson:"status"`
	Visible        bool    `json:"visible" bson:"visible"`
	CapacityBypass bool    `json:"capacityBypass,omitempty" bson:"capacityBypass,omitempty"`
	CreatedBy      string  `json:"createdBy" bson:"createdBy"`
	EditedBy       string  `json:"editedBy,omitempty" bson:"editedBy,omitempty"`
	CreatedAt      int64   `json:"createdAt" bson:"createdAt"`
	UpdatedAt      int64   `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}
