package dto

// LoginRequest carries login credentials.
type LoginRequest struct {
	Username string `json:"username" validate:"required,min=1,max=64"`
	Password string `json:"password" validate:"required,min=1"`
}

// LoginResponse returns the issued token and the actor it encodes.
type LoginResponse struct {
	Token    string `json:"token"`
	UserID   uint   `json:"user_id"`
	Role     string `json:"role"`
	ScopedID uint   `json:"scoped_id,omitempty"`
	Name     string `json:"name"`
}
