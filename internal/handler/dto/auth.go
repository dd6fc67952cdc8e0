package dto

// ForgotPasswordRequest represents the forgot-password request body.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest represents the reset-password request body.
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

// MessageResponse is a simple message envelope.
type MessageResponse struct {
	Message string `json:"message"`
}
