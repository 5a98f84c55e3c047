// Package controller drives the five step registration wizard: step
// navigation, per-field feedback, the async email uniqueness probe, and the
// final submit. All validation goes through the shared rule table, so the
// wizard never disagrees with the server about what is acceptable.
package controller

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"signupflow/internal/client/draft"
	"signupflow/internal/dto"
	"signupflow/internal/rules"
)

// API is the slice of the HTTP client the controller needs.
type API interface {
	CheckEmail(ctx context.Context, email string) (bool, error)
	Register(ctx context.Context, req dto.RegisterRequest) (*Outcome, error)
}

// Outcome mirrors the api package's action result. Declared here so the
// controller does not import the transport client directly.
type Outcome struct {
	OK          bool
	Message     string
	RedirectURL string
	Errors      rules.FieldErrors
}

// DraftStore persists the wizard state between runs.
type DraftStore interface {
	Load() *draft.Draft
	Save(d *draft.Draft) error
	Clear() error
}

// StepError reports a failed step validation: which step the user was sent to
// and what is wrong there.
type StepError struct {
	Step   int
	Fields rules.FieldErrors
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %d has %d invalid field(s)", e.Step, len(e.Fields))
}

// Controller is safe for concurrent use; the email probe and the upload
// callbacks land on it from other goroutines.
type Controller struct {
	api   API
	store DraftStore

	mu           sync.Mutex
	draft        *draft.Draft
	fieldErrs    rules.FieldErrors
	emailTaken   bool
	checkedEmail string

	// onEmailResult fires when an email probe result is applied (stale
	// results are dropped silently). Guarded by mu; set via SetOnEmailResult.
	onEmailResult func(email string, taken bool)
}

// SetOnEmailResult installs (or, with nil, removes) the email probe callback.
// Safe to call while a probe is in flight.
func (c *Controller) SetOnEmailResult(fn func(email string, taken bool)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onEmailResult = fn
}

// New restores the wizard from the stored draft. Restoring lands on the exact
// step the draft recorded and triggers no validation or network side effects.
func New(api API, store DraftStore) *Controller {
	return &Controller{
		api:       api,
		store:     store,
		draft:     store.Load(),
		fieldErrs: rules.FieldErrors{},
	}
}

// Step returns the step the wizard currently shows.
func (c *Controller) Step() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft.CurrentStep
}

// Draft returns a copy of the current wizard state.
func (c *Controller) Draft() draft.Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := *c.draft
	d.Interests = append([]string(nil), c.draft.Interests...)
	return d
}

// FieldErrors returns the currently displayed messages.
func (c *Controller) FieldErrors() rules.FieldErrors {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := rules.FieldErrors{}
	for k, v := range c.fieldErrs {
		out[k] = v
	}
	return out
}

// SetField stores a field value and persists the draft. No validation here;
// that happens on blur, step change, or submit.
func (c *Controller) SetField(field, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setFieldLocked(field, value)
	c.persistLocked()
}

// SetInterests replaces the interest selection.
func (c *Controller) SetInterests(interests []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Interests = append([]string(nil), interests...)
	c.persistLocked()
}

// FieldBlur revalidates one field and updates its message in place.
func (c *Controller) FieldBlur(field string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	msg := rules.ValidateField(c.formLocked(), field, c.fieldRequired(field))
	if field == rules.FieldEmail && msg == "" && c.emailTaken {
		msg = "This email is already registered"
	}
	c.applyFieldMessageLocked(field, msg)
	return msg
}

// PhoneKeystroke sanitizes phone input as the user types and returns the
// value the input should display.
func (c *Controller) PhoneKeystroke(raw string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	clean := rules.SanitizePhone(raw)
	c.draft.PhoneNumber = clean
	c.persistLocked()
	return clean
}

// PasswordKeystroke records the password and returns the advisory strength
// label plus whether the confirmation currently matches.
func (c *Controller) PasswordKeystroke(password string) (label string, confirmMatches bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.Password = password
	c.persistLocked()
	return rules.StrengthLabel(rules.PasswordStrength(password)),
		c.draft.ConfirmPassword == "" || c.draft.ConfirmPassword == password
}

// ConfirmKeystroke records the confirmation and reports the live match state.
func (c *Controller) ConfirmKeystroke(confirm string) (matches bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.ConfirmPassword = confirm
	c.persistLocked()
	return confirm == "" || confirm == c.draft.Password
}

// CheckEmailAsync probes the server for email uniqueness in the background.
// The result is applied only if the email field still holds the same value;
// a result for an email the user has since edited is dropped.
func (c *Controller) CheckEmailAsync(ctx context.Context) {
	c.mu.Lock()
	email := normalizeEmail(c.draft.Email)
	c.mu.Unlock()
	if email == "" {
		return
	}
	go func() {
		taken, err := c.api.CheckEmail(ctx, email)
		c.resolveEmailCheck(email, taken, err)
	}()
}

func (c *Controller) resolveEmailCheck(email string, taken bool, err error) {
	if err != nil {
		// Network trouble never blocks the wizard; the server re-checks on
		// submit anyway.
		return
	}

	c.mu.Lock()
	if normalizeEmail(c.draft.Email) != email {
		c.mu.Unlock()
		return
	}
	c.emailTaken = taken
	c.checkedEmail = email
	if taken {
		c.fieldErrs[rules.FieldEmail] = "This email is already registered"
	} else if c.fieldErrs[rules.FieldEmail] == "This email is already registered" {
		delete(c.fieldErrs, rules.FieldEmail)
	}
	cb := c.onEmailResult
	c.mu.Unlock()

	if cb != nil {
		cb(email, taken)
	}
}

// AttachPhoto records the stored photo reference. Wire it to the upload
// handler's stored callback.
func (c *Controller) AttachPhoto(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.PhotoURL = url
	delete(c.fieldErrs, rules.FieldProfilePhoto)
	c.persistLocked()
}

// Next validates the current step in full and advances on success. A known
// taken email blocks leaving the account step even though the field itself
// is formally valid.
func (c *Controller) Next() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	step := c.draft.CurrentStep
	errs := rules.ValidateStep(c.formLocked(), step)
	if step == rules.StepAccount && !errs.Has(rules.FieldEmail) &&
		c.emailTaken && c.checkedEmail == normalizeEmail(c.draft.Email) {
		errs[rules.FieldEmail] = "This email is already registered"
	}
	if len(errs) > 0 {
		c.fieldErrs = errs
		return &StepError{Step: step, Fields: errs}
	}

	c.fieldErrs = rules.FieldErrors{}
	if step < rules.LastStep {
		c.draft.CurrentStep = step + 1
	}
	c.persistLocked()
	return nil
}

// Back moves one step toward the start. Never validates.
func (c *Controller) Back() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.draft.CurrentStep > rules.FirstStep {
		c.draft.CurrentStep--
		c.persistLocked()
	}
}

// SubmitFinal validates every step in ascending order, then submits. On any
// failure the wizard navigates to the lowest failing step; server-reported
// field errors are placed the same way local ones are. Success clears the
// stored draft.
func (c *Controller) SubmitFinal(ctx context.Context) (*Outcome, error) {
	c.mu.Lock()
	form := c.formLocked()
	if step := rules.FirstInvalidStep(form); step != 0 {
		errs := rules.ValidateAll(form)
		c.fieldErrs = errs
		c.draft.CurrentStep = step
		c.persistLocked()
		c.mu.Unlock()
		return nil, &StepError{Step: step, Fields: errs}
	}
	if c.emailTaken && c.checkedEmail == normalizeEmail(c.draft.Email) {
		errs := rules.FieldErrors{rules.FieldEmail: "This email is already registered"}
		c.fieldErrs = errs
		c.draft.CurrentStep = rules.StepAccount
		c.persistLocked()
		c.mu.Unlock()
		return nil, &StepError{Step: rules.StepAccount, Fields: errs}
	}
	req := c.registerRequestLocked()
	c.mu.Unlock()

	out, err := c.api.Register(ctx, req)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !out.OK {
		if len(out.Errors) > 0 {
			c.fieldErrs = out.Errors
			c.draft.CurrentStep = lowestStepOwning(out.Errors)
			c.persistLocked()
			return out, &StepError{Step: c.draft.CurrentStep, Fields: out.Errors}
		}
		return out, nil
	}

	_ = c.store.Clear()
	c.draft = draft.Fresh()
	c.fieldErrs = rules.FieldErrors{}
	c.emailTaken = false
	return out, nil
}

// Review returns the values shown on the confirmation step. Password material
// never appears here.
func (c *Controller) Review() draft.Draft {
	d := c.Draft()
	d.Password = ""
	d.ConfirmPassword = ""
	return d
}

func (c *Controller) setFieldLocked(field, value string) {
	switch field {
	case rules.FieldFullName:
		c.draft.FullName = value
	case rules.FieldEmail:
		if normalizeEmail(value) != c.checkedEmail {
			c.emailTaken = false
		}
		c.draft.Email = value
	case rules.FieldPassword:
		c.draft.Password = value
	case rules.FieldConfirmPassword:
		c.draft.ConfirmPassword = value
	case rules.FieldPhoneNumber:
		c.draft.PhoneNumber = rules.SanitizePhone(value)
	case rules.FieldCountry:
		c.draft.Country = value
	case rules.FieldCity:
		c.draft.City = value
	case rules.FieldGender:
		c.draft.Gender = value
	case rules.FieldDateOfBirth:
		c.draft.DateOfBirth = value
	case rules.FieldProfilePhoto:
		c.draft.PhotoURL = value
	}
}

func (c *Controller) applyFieldMessageLocked(field, msg string) {
	if msg == "" {
		delete(c.fieldErrs, field)
		return
	}
	c.fieldErrs[field] = msg
}

func (c *Controller) formLocked() rules.Form {
	return rules.Form{
		FullName:        c.draft.FullName,
		Email:           c.draft.Email,
		Password:        c.draft.Password,
		ConfirmPassword: c.draft.ConfirmPassword,
		PhoneNumber:     c.draft.PhoneNumber,
		Country:         c.draft.Country,
		City:            c.draft.City,
		Gender:          c.draft.Gender,
		DateOfBirth:     c.draft.DateOfBirth,
		Interests:       c.draft.Interests,
		ProfilePhoto:    c.draft.PhotoURL,
		PasswordActive:  true,
	}
}

func (c *Controller) registerRequestLocked() dto.RegisterRequest {
	return dto.RegisterRequest{
		FullName:        c.draft.FullName,
		Email:           c.draft.Email,
		Password:        c.draft.Password,
		ConfirmPassword: c.draft.ConfirmPassword,
		PhoneNumber:     c.draft.PhoneNumber,
		Country:         c.draft.Country,
		City:            c.draft.City,
		Gender:          c.draft.Gender,
		DateOfBirth:     c.draft.DateOfBirth,
		Interests:       append([]string(nil), c.draft.Interests...),
		ProfilePhoto:    c.draft.PhotoURL,
	}
}

func (c *Controller) persistLocked() {
	// A failed save loses resumability, nothing more; the wizard keeps its
	// in-memory state either way.
	_ = c.store.Save(c.draft)
}

func (c *Controller) fieldRequired(field string) bool {
	switch field {
	case rules.FieldFullName, rules.FieldEmail, rules.FieldPassword,
		rules.FieldConfirmPassword, rules.FieldPhoneNumber, rules.FieldCountry:
		return true
	}
	return false
}

// fieldSteps places server-reported field names onto wizard steps.
var fieldSteps = map[string]int{
	rules.FieldFullName:        rules.StepAccount,
	rules.FieldEmail:           rules.StepAccount,
	rules.FieldPassword:        rules.StepAccount,
	rules.FieldConfirmPassword: rules.StepAccount,
	rules.FieldPhoneNumber:     rules.StepContact,
	rules.FieldCountry:         rules.StepContact,
	rules.FieldCity:            rules.StepContact,
	rules.FieldGender:          rules.StepPersonal,
	rules.FieldDateOfBirth:     rules.StepPersonal,
	rules.FieldInterests:       rules.StepPersonal,
	rules.FieldProfilePhoto:    rules.StepPhoto,
}

func lowestStepOwning(errs rules.FieldErrors) int {
	lowest := rules.LastStep
	for field := range errs {
		if step, ok := fieldSteps[field]; ok && step < lowest {
			lowest = step
		}
	}
	return lowest
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
