package gastosapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gastos-app/gastos-gateway/internal/domain"
	"github.com/gastos-app/gastos-gateway/internal/infra/resilience"
)

// Login exchanges credentials for a bearer token. Credential submissions are
// never retried.
func (c *Client) Login(ctx context.Context, req domain.LoginRequest) (*domain.LoginResponse, error) {
	ctx, span := tracer.Start(ctx, "GastosAPI.Login")
	defer span.End()

	var out *domain.LoginResponse

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.Once(ctx, func() error {
			body, status, err := c.doRequest(ctx, http.MethodPost, "/auth/login", "", req, nil)
			if err != nil {
				return err
			}
			if status == http.StatusUnauthorized || status == http.StatusForbidden {
				return &domain.ErrUnauthorized{Message: "invalid credentials"}
			}
			if status < 200 || status >= 300 {
				return fmt.Errorf("login returned status %d: %s", status, string(body))
			}

			var resp domain.LoginResponse
			if err := json.Unmarshal(body, &resp); err != nil {
				return fmt.Errorf("failed to decode login response: %w", err)
			}
			if resp.Token == "" {
				return &domain.ErrUnauthorized{Message: "backend issued no token"}
			}
			out = &resp
			return nil
		})
	})

	if err != nil {
		return nil, c.wrapUpstream("auth", err)
	}

	return out, nil
}

// Register creates a new account. A 409 from the backend means the email is
// already taken and must surface as its own error.
func (c *Client) Register(ctx context.Context, req domain.RegisterRequest) (*domain.RegisterResponse, error) {
	ctx, span := tracer.Start(ctx, "GastosAPI.Register")
	defer span.End()

	var out *domain.RegisterResponse

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.Once(ctx, func() error {
			body, status, err := c.doRequest(ctx, http.MethodPost, "/auth/register", "", req, nil)
			if err != nil {
				return err
			}
			if status == http.StatusConflict {
				return &domain.ErrDuplicateEmail{Email: req.Email}
			}
			if status < 200 || status >= 300 {
				return fmt.Errorf("register returned status %d: %s", status, string(body))
			}

			out = &domain.RegisterResponse{Message: "account created"}
			if len(body) > 0 {
				// Best effort; the confirmation body is optional.
				_ = json.Unmarshal(body, out)
				if out.Message == "" {
					out.Message = "account created"
				}
			}
			return nil
		})
	})

	if err != nil {
		return nil, c.wrapUpstream("auth", err)
	}

	return out, nil
}

// UpdateProfile changes the account email and optionally the password. The
// backend may rotate the token; when it does, the new one is passed through.
func (c *Client) UpdateProfile(ctx context.Context, token string, req domain.UpdateProfileRequest) (*domain.UpdateProfileResponse, error) {
	ctx, span := tracer.Start(ctx, "GastosAPI.UpdateProfile")
	defer span.End()

	var out *domain.UpdateProfileResponse

	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.Once(ctx, func() error {
			body, status, err := c.doRequest(ctx, http.MethodPut, "/auth/profile", token, req, nil)
			if err != nil {
				return err
			}
			if err := statusError(status, "profile", "", body); err != nil {
				return err
			}

			out = &domain.UpdateProfileResponse{Message: "profile updated"}
			if len(body) > 0 {
				_ = json.Unmarshal(body, out)
				if out.Message == "" {
					out.Message = "profile updated"
				}
			}
			return nil
		})
	})

	if err != nil {
		return nil, c.wrapUpstream("auth", err)
	}

	return out, nil
}
