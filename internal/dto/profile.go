package dto

import "signupflow/internal/domain"

// ProfileUpdateRequest carries the same fields as registration minus the
// password pair, which only participates when ChangePassword is set.
type ProfileUpdateRequest struct {
	FullName        string   `json:"fullName"`
	Email           string   `json:"email"`
	PhoneNumber     string   `json:"phoneNumber"`
	Country         string   `json:"country"`
	City            string   `json:"city,omitempty"`
	Gender          string   `json:"gender,omitempty"`
	DateOfBirth     string   `json:"dateOfBirth,omitempty"`
	Interests       []string `json:"interests"`
	ProfilePhoto    string   `json:"profilePhoto,omitempty"`
	ChangePassword  bool     `json:"changePassword"`
	Password        string   `json:"password,omitempty"`
	ConfirmPassword string   `json:"confirmPassword,omitempty"`
}

type ProfileUpdateResponse struct {
	Message string         `json:"message"`
	Account domain.Summary `json:"account"`
}
