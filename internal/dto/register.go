package dto

import "signupflow/internal/domain"

type RegisterRequest struct {
	FullName        string   `json:"fullName"`
	Email           string   `json:"email"`
	Password        string   `json:"password"`
	ConfirmPassword string   `json:"confirmPassword"`
	PhoneNumber     string   `json:"phoneNumber"`
	Country         string   `json:"country"`
	City            string   `json:"city,omitempty"`
	Gender          string   `json:"gender,omitempty"`
	DateOfBirth     string   `json:"dateOfBirth,omitempty"`
	Interests       []string `json:"interests"`
	ProfilePhoto    string   `json:"profilePhoto,omitempty"`
}

type RegisterResponse struct {
	Message     string         `json:"message"`
	RedirectURL string         `json:"redirectUrl"`
	Account     domain.Summary `json:"account"`
}

type CheckEmailResponse struct {
	Exists bool `json:"exists"`
}

type UploadResponse struct {
	URL string `json:"url"`
}
