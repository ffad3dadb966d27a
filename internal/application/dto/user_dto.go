package dto

import "time"

// CreateUserRequest input to create a user (plain password, hashed in the use case).
type CreateUserRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"required,oneof=admin super warehouse exec"`
}

// UpdateUserRequest changes role and/or password.
type UpdateUserRequest struct {
	Role     *string `json:"role" validate:"omitempty,oneof=admin super warehouse exec"`
	Password *string `json:"password" validate:"omitempty,min=6"`
}

// UserResponse user output (no password).
type UserResponse struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LoginRequest username + password.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse token plus the user and the screens the role can open.
type LoginResponse struct {
	Token   string       `json:"token"`
	User    UserResponse `json:"user"`
	Screens []string     `json:"screens"`
}
