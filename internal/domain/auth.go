package domain

// LoginRequest carries the credentials for POST /v1/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse returns the opaque bearer token issued by the backend.
type LoginResponse struct {
	Token string `json:"token"`
	Email string `json:"email,omitempty"`
}

// RegisterRequest carries the payload for POST /v1/auth/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterResponse confirms a successful registration.
type RegisterResponse struct {
	Message string `json:"message"`
}

// UpdateProfileRequest updates the account email and optionally the password.
type UpdateProfileRequest struct {
	Email    string `json:"email"`
	Password string `json:"password,omitempty"`
}

// UpdateProfileResponse may carry a rotated token when the backend issues one.
type UpdateProfileResponse struct {
	Message string `json:"message"`
	Token   string `json:"token,omitempty"`
}

// SessionInfo is what GET /v1/session reports about the current session.
// Email is a best-effort claim decode and may be empty for opaque tokens.
type SessionInfo struct {
	Authenticated bool   `json:"authenticated"`
	Email         string `json:"email,omitempty"`
}

// SuccessResponse is a generic confirmation body.
type SuccessResponse struct {
	Message string `json:"message"`
}

// HealthStatus reports gateway health plus the upstream dependency.
type HealthStatus struct {
	Status   string          `json:"status"`
	Services []ServiceHealth `json:"services"`
}

// ServiceHealth is one entry in the health report.
type ServiceHealth struct {
	Name        string `json:"name"`
	Status      string `json:"status"`
	LatencyMs   int64  `json:"latency_ms"`
	LastChecked string `json:"last_checked"`
}

// GatewayMetrics is the snapshot served by GET /v1/metrics/gateway.
type GatewayMetrics struct {
	TotalRequests int64   `json:"total_requests"`
	ErrorRate     float64 `json:"error_rate"`
	CacheHitRate  float64 `json:"cache_hit_rate"`
	Period        string  `json:"period"`
}
