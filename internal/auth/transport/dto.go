package transport

import "time"

type ProfileResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone,omitempty"`
	Role      string    `json:"role"`
	Status    string    `json:"status"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type UpdatePushTokenRequest struct {
	// Empty token unregisters the device.
	Token string `json:"token" validate:"max=255"`
}

type ListUsersQuery struct {
	Role   string `form:"role"`
	Status string `form:"status" validate:"omitempty,oneof=active inactive"`
}

type UserSummary struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Status string `json:"status"`
}
