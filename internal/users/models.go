package users

// User is an account holder. PasswordHash is never serialized.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
}

// NewUser carries the fields needed to create a user. The password must
// already be hashed by the caller; this package never sees password text.
type NewUser struct {
	Username     string
	Email        string
	PasswordHash string
}
