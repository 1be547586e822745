package model

import "time"

// User represents an application user.
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Address   string    `json:"address"`
	Image     string    `json:"image"` // name of the user's image asset in object storage
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateUserRequest carries a user creation payload. All fields are required.
type CreateUserRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
	Image   string `json:"image"`
}

// UpdateUserRequest carries a partial user update. A nil field means
// "keep the current value"; only supplied fields are written.
type UpdateUserRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Address *string `json:"address"`
	Image   *string `json:"image"`
}

// Empty reports whether the update carries no fields at all.
func (r *UpdateUserRequest) Empty() bool {
	return r.Name == nil && r.Email == nil && r.Address == nil && r.Image == nil
}
