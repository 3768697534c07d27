// api/models/auth_models.go
package models

// LoginRequest accepts a username or an email in the username field.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest carries the refresh token issued at login.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// LoginResponse is the payload of a successful login or refresh.
type LoginResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	User         any    `json:"user"`
}
