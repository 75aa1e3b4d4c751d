package response

// AdminCheckResponse is the canonical status payload. Email is null when the
// identity has no email.
type AdminCheckResponse struct {
	IsPlatformAdmin bool    `json:"isPlatformAdmin"`
	Email           *string `json:"email"`
}

type PermissionsResponse struct {
	Email       *string  `json:"email"`
	Permissions []string `json:"permissions"`
	Role        string   `json:"role"`
}

type LoginResponse struct {
	Email string `json:"email"`
}

type CountResponse struct {
	Total int `json:"total"`
}

type PublicEnvResponse struct {
	BackendURL string `json:"backendURL"`
	AnonKey    string `json:"anonKey"`
}
