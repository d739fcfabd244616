package models

// Roles assignable to a user account.
const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
	RoleDelivery = "delivery"
)

// User represents an authenticated customer, admin or delivery agent.
type User struct {
	BaseModel
	FirstName    string        `json:"first_name"`
	LastName     string        `json:"last_name"`
	Phone        string        `gorm:"uniqueIndex" json:"phone"`
	DisplayName  string        `json:"display_name"`
	PasswordHash string        `json:"-"`
	Role         string        `gorm:"default:customer" json:"role"`
	Addresses    []UserAddress `json:"addresses,omitempty"`
	Orders       []Order       `json:"orders,omitempty"`
}
