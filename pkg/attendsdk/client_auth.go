package attendsdk

import (
	"context"
	"net/http"
)

// Login sends POST /api/auth/login. A 2xx response is returned decoded, even
// when it is an MFA challenge or carries no token; deciding what it means is
// left to the caller. Non-2xx responses are returned as *APIError.
//
// Leave req.OTP empty for the first step. For the second step resend the same
// username and password with the one-time code in req.OTP.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	var authResp AuthResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/login", req, &authResp); err != nil {
		return nil, err
	}
	return &authResp, nil
}

// Register sends POST /api/auth/register. The service does not issue a token
// here; follow up with Login.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	var regResp RegisterResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/auth/register", req, &regResp); err != nil {
		return nil, err
	}
	return &regResp, nil
}
