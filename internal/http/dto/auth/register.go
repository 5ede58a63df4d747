package auth

// RegisterRequest represents the request body for POST /v1/auth/register
type RegisterRequest struct {
	// Username is required and unique.
	Username string `json:"username"`
	// Email is required and must be a valid email format.
	Email string `json:"email"`
	// Password is required.
	Password string `json:"password"`
}

// RegisterResponse represents the response for a successful registration.
type RegisterResponse struct {
	AccountID   string `json:"account_id"`
	AccessToken string `json:"access_token,omitempty"`
	TokenType   string `json:"token_type,omitempty"`
	ExpiresIn   int64  `json:"expires_in,omitempty"`
}

// RegisterResult is the internal result from the register service.
type RegisterResult struct {
	AccountID   string
	AccessToken string
	ExpiresIn   int64
}
