package domain

// User is an account that owns books, goals and sessions.
type User struct {
	Timestamps
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}
