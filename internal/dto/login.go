package dto

type LoginRequest struct {
	// Identifier is the account email. Kept under a neutral name so the login
	// form does not promise which identity kinds are accepted.
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
	// Remember is always present in the payload; absence is not a default.
	Remember bool `json:"remember"`
}

type LoginResponse struct {
	Message     string `json:"message"`
	RedirectURL string `json:"redirectUrl"`
	Token       string `json:"token"`
}

type LogoutResponse struct {
	RedirectURL string `json:"redirectUrl"`
}
