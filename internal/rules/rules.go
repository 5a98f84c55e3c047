// Package rules holds the single validation rule table shared by the browser
// side step controller and the server side registration authority. Both run
// exactly the same code, so a value accepted on one side is accepted on the
// other.
package rules

import (
	"regexp"
	"strings"
	"time"
)

// Field identifiers. Server responses key field errors by these same names, so
// the client can place them without translation.
const (
	FieldFullName        = "fullName"
	FieldEmail           = "email"
	FieldPassword        = "password"
	FieldConfirmPassword = "confirmPassword"
	FieldPhoneNumber     = "phoneNumber"
	FieldCountry         = "country"
	FieldCity            = "city"
	FieldGender          = "gender"
	FieldDateOfBirth     = "dateOfBirth"
	FieldInterests       = "interests"
	FieldProfilePhoto    = "profilePhoto"
)

// Steps of the registration flow.
const (
	StepAccount  = 1
	StepContact  = 2
	StepPersonal = 3
	StepPhoto    = 4
	StepReview   = 5

	FirstStep = StepAccount
	LastStep  = StepReview
)

// Form is the normalized set of values the rule table evaluates. The client
// fills it from the Draft, the server from the incoming request.
type Form struct {
	FullName        string
	Email           string
	Password        string
	ConfirmPassword string
	PhoneNumber     string
	Country         string
	City            string
	Gender          string
	DateOfBirth     string
	Interests       []string
	ProfilePhoto    string

	// PasswordActive marks whether the password pair participates in
	// validation. Registration always sets it; a profile update sets it only
	// when the user asked to change the password.
	PasswordActive bool
}

// FieldErrors maps a field identifier to one message. At most one message per
// field: rules run in a fixed order and stop at the first failure.
type FieldErrors map[string]string

func (e FieldErrors) Has(field string) bool { return e[field] != "" }

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]{2,}$`)

const minPasswordLen = 8

var genders = map[string]bool{"male": true, "female": true, "other": true}

// stepFields lists, in display order, which fields each step owns and whether
// they are required there. Step 5 is the review step and owns nothing.
var stepFields = map[int][]struct {
	name     string
	required bool
}{
	StepAccount: {
		{FieldFullName, true},
		{FieldEmail, true},
		{FieldPassword, true},
		{FieldConfirmPassword, true},
	},
	StepContact: {
		{FieldPhoneNumber, true},
		{FieldCountry, true},
		{FieldCity, false},
	},
	StepPersonal: {
		{FieldGender, false},
		{FieldDateOfBirth, false},
	},
	StepPhoto:  {},
	StepReview: {},
}

var requiredMessages = map[string]string{
	FieldFullName:        "Full name is required",
	FieldEmail:           "Email is required",
	FieldPassword:        "Password is required",
	FieldConfirmPassword: "Please confirm your password",
	FieldPhoneNumber:     "Phone number is required",
	FieldCountry:         "Country is required",
}

// ValidateField evaluates the rules for one field in fixed order: required,
// then format, then cross-field. Returns the first failing message or "".
func ValidateField(f Form, field string, required bool) string {
	raw := fieldValue(f, field)
	trimmed := strings.TrimSpace(raw)

	if required && trimmed == "" {
		if msg, ok := requiredMessages[field]; ok {
			return msg
		}
		return "This field is required"
	}
	if trimmed == "" {
		return ""
	}

	switch field {
	case FieldEmail:
		if !emailRe.MatchString(trimmed) {
			return "Please enter a valid email address"
		}
	case FieldPhoneNumber:
		if err := validatePhone(raw); err != "" {
			return err
		}
	case FieldPassword:
		if f.PasswordActive && len(f.Password) < minPasswordLen {
			return "Password must be at least 8 characters"
		}
	case FieldConfirmPassword:
		// Cross-field equality only when both sides are non-empty.
		if f.Password != "" && f.ConfirmPassword != "" && f.Password != f.ConfirmPassword {
			return "Passwords do not match"
		}
	case FieldGender:
		if !genders[strings.ToLower(trimmed)] {
			return "Please select a valid gender"
		}
	case FieldDateOfBirth:
		if _, err := time.Parse("2006-01-02", trimmed); err != nil {
			return "Please enter a valid date (YYYY-MM-DD)"
		}
	}
	return ""
}

// ValidateStep runs every rule the given step declares, including checks not
// tied to a single field (interests, profile photo).
func ValidateStep(f Form, step int) FieldErrors {
	errs := FieldErrors{}
	for _, sf := range stepFields[step] {
		required := sf.required
		if !f.PasswordActive && (sf.name == FieldPassword || sf.name == FieldConfirmPassword) {
			required = false
		}
		if msg := ValidateField(f, sf.name, required); msg != "" {
			errs[sf.name] = msg
		}
	}

	switch step {
	case StepPersonal:
		if countNonEmpty(f.Interests) == 0 {
			errs[FieldInterests] = "Please select at least one interest"
		}
	case StepPhoto:
		if strings.TrimSpace(f.ProfilePhoto) == "" {
			errs[FieldProfilePhoto] = "Please upload a profile photo"
		}
	}
	return errs
}

// ValidateAll runs steps in ascending order and merges results. An earlier
// step's message for a field wins over a later one, which cannot happen in
// practice since steps own disjoint fields.
func ValidateAll(f Form) FieldErrors {
	merged := FieldErrors{}
	for step := FirstStep; step <= LastStep; step++ {
		for field, msg := range ValidateStep(f, step) {
			if _, seen := merged[field]; !seen {
				merged[field] = msg
			}
		}
	}
	return merged
}

// FirstInvalidStep returns the lowest step whose rules fail, or 0 when every
// step passes. submitFinal uses it to decide where to send the user back to.
func FirstInvalidStep(f Form) int {
	for step := FirstStep; step <= LastStep; step++ {
		if len(ValidateStep(f, step)) > 0 {
			return step
		}
	}
	return 0
}

func fieldValue(f Form, field string) string {
	switch field {
	case FieldFullName:
		return f.FullName
	case FieldEmail:
		return f.Email
	case FieldPassword:
		return f.Password
	case FieldConfirmPassword:
		return f.ConfirmPassword
	case FieldPhoneNumber:
		return f.PhoneNumber
	case FieldCountry:
		return f.Country
	case FieldCity:
		return f.City
	case FieldGender:
		return f.Gender
	case FieldDateOfBirth:
		return f.DateOfBirth
	case FieldProfilePhoto:
		return f.ProfilePhoto
	}
	return ""
}

func countNonEmpty(ss []string) int {
	n := 0
	for _, s := range ss {
		if strings.TrimSpace(s) != "" {
			n++
		}
	}
	return n
}
