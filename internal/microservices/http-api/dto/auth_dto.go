package dto

// Data Transfer Objects for authentication requests and responses

// RegisterRequest: payload for user registration (JSON API and the register form)
type RegisterRequest struct {
	Login    string `json:"login" form:"login" validate:"required,min=3,max=50"`
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required,min=6"`
	Age      int    `json:"age" form:"age" validate:"gte=0"`
	Gender   string `json:"gender" form:"gender"`
}

// LoginRequest: payload for user login
type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

// RegisterResponse: response payload after successful registration
type RegisterResponse struct {
	ID    string `json:"id"`
	Login string `json:"login"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// AuthResponse: response payload after successful login
type AuthResponse struct {
	ID        string `json:"id"`
	Login     string `json:"login"`
	Role      string `json:"role"`
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"` // seconds
}
