package auth

// LoginRequest represents the request body for POST /v1/auth/login.
// Login accepts either the username or the email.
type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// LoginResponse represents the response for a successful login.
type LoginResponse struct {
	AccountID   string `json:"account_id"`
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// LoginResult is the internal result from the login service.
type LoginResult struct {
	AccountID   string
	AccessToken string
	ExpiresIn   int64
}
