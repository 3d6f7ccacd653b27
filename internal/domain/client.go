package domain

import "time"

// Client identifies a purchaser. Orders reference clients by id only.
type Client struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Users     []User    `json:"users,omitempty"`
}

// User is a login account belonging to a client.
type User struct {
	ID           int64     `json:"id"`
	ClientID     int64     `json:"client_id"`
	RoleID       int64     `json:"role_id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
