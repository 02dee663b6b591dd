package models

import "time"

type Role string

const (
	RoleCustomer          Role = "Customer"
	RoleRestaurantPartner Role = "RestaurantPartner"
	RoleDeliveryPartner   Role = "DeliveryPartner"
)

func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleRestaurantPartner || r == RoleDeliveryPartner
}

type Account struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	Role           Role      `json:"role"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone,omitempty"`
	RestaurantID   *int64    `json:"restaurant_id,omitempty"`
	VehicleType    string    `json:"vehicle_type,omitempty"`
	VehicleNumber  string    `json:"vehicle_number,omitempty"`
	TelegramChatID *int64    `json:"telegram_chat_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
