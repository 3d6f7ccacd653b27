package domain

// Role is a named permission group assigned to users.
type Role struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
}
