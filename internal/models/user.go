package models

// User is the authenticated identity as the server reports it.
type User struct {
	ID    uint   `json:"id"`
	Email string `json:"email"`
}

// UserCreateRequest is the body for POST /auth/register.
type UserCreateRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserLoginRequest is the body for POST /auth/login.
type UserLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is the session payload returned by login and register.
type AuthResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}
