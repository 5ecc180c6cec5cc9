package attendsdk

import (
	"context"
	"net/http"
)

// User operations - profile, password and 2FA enrollment for the signed-in user

// GetProfile returns the signed-in user's profile.
func (c *Client) GetProfile(ctx context.Context) (*UserDetail, error) {
	var profile ProfileResponse
	if err := c.doJSON(ctx, http.MethodGet, "/api/user/profile", nil, &profile); err != nil {
		return nil, err
	}
	if profile.User == nil {
		return &UserDetail{}, nil
	}
	return profile.User, nil
}

// UpdateProfile replaces the editable profile fields and returns the result.
func (c *Client) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*UserDetail, error) {
	var profile ProfileResponse
	if err := c.doJSON(ctx, http.MethodPut, "/api/user/profile", req, &profile); err != nil {
		return nil, err
	}
	if profile.User == nil {
		return &UserDetail{}, nil
	}
	return profile.User, nil
}

// ChangePassword changes the signed-in user's password.
func (c *Client) ChangePassword(ctx context.Context, req ChangePasswordRequest) (*MessageResponse, error) {
	var msg MessageResponse
	if err := c.doJSON(ctx, http.MethodPut, "/api/user/password", req, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// SetupTwoFactor starts TOTP enrollment. 2FA is not active until
// VerifyTwoFactor succeeds with a code from the returned secret.
func (c *Client) SetupTwoFactor(ctx context.Context) (*TwoFactorSetupResponse, error) {
	var setup TwoFactorSetupResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/user/2fa/setup", nil, &setup); err != nil {
		return nil, err
	}
	return &setup, nil
}

// VerifyTwoFactor completes TOTP enrollment.
func (c *Client) VerifyTwoFactor(ctx context.Context, code string) (*MessageResponse, error) {
	var msg MessageResponse
	req := TwoFactorVerifyRequest{Code: code}
	if err := c.doJSON(ctx, http.MethodPost, "/api/user/2fa/verify", req, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
