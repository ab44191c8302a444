package models

// Committed passenger statuses.
const (
	PassengerPending   = "pending"
	PassengerApproved  = "approved"
	PassengerActive    = "active"
	PassengerCancelled = "cancelled"
)

// PassengerInfo is the field set shared by draft and committed passengers.
type PassengerInfo struct {
	FirstName      string   `json:"firstName" bson:"firstName"`
	LastName       string   `json:"lastName" bson:"lastName"`
	Name           string   `json:"name" bson:"name"` // derived display name
	DateOfBirth    string   `json:"dateOfBirth,omitempty" bson:"dateOfBirth,omitempty"`
	Age            int      `json:"age,omitempty" bson:"age,omitempty"`
	Gender         string   `json:"gender,omitempty" bson:"gender,omitempty"`
	PassportNumber string   `json:"passportNumber,omitempty" bson:"passportNumber,omitempty"`
	PassportExpiry string   `json:"passportExpiry,omitempty" bson:"passportExpiry,omitempty"`
	Nationality    string   `json:"nationality,omitempty" bson:"nationality,omitempty"`
	RoomType       string   `json:"roomType,omitempty" bson:"roomType,omitempty"`
	Hotel          string   `json:"hotel,omitempty" bson:"hotel,omitempty"`
	Services       []string `json:"services,omitempty" bson:"services,omitempty"`
	Price          float64  `json:"price" bson:"price"` // derived: base + services
	Email          string   `json:"email,omitempty" bson:"email,omitempty"`
	Phone          string   `json:"phone,omitempty" bson:"phone,omitempty"`
	EmergencyPhone string   `json:"emergencyPhone,omitempty" bson:"emergencyPhone,omitempty"`
	DocumentPath   string   `json:"documentPath,omitempty" bson:"documentPath,omitempty"`
}

// DraftPassenger lives only inside a draft manifest. It carries no order id
// by construction; drafts never count against tour capacity.
type DraftPassenger struct {
	ID       string `json:"id"`
	SerialNo int    `json:"serialNo"`
	PassengerInfo
}

// CommittedPassenger is a passenger permanently attached to a persisted order.
type CommittedPassenger struct {
	ID       string `json:"id" bson:"id"`
	OrderID  string `json:"orderId" bson:"orderId"`
	SerialNo int    `json:"serialNo" bson:"serialNo"`
	Status   string `json:"status" bson:"status"`
	PassengerInfo `bson:",inline"`
}
