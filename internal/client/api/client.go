// Package api is the HTTP client for the registration action endpoint. It
// mirrors the form encoding the server expects: every call is a POST with an
// action field, the matching anti-forgery nonce, and form values.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"signupflow/internal/dto"
	"signupflow/internal/rules"
)

// Bundle is what GET /bootstrap hands out: where to post, the per-family
// nonces, and the country list for the contact step.
type Bundle struct {
	AjaxURL   string            `json:"ajaxUrl"`
	Nonces    map[string]string `json:"nonces"`
	Countries []Country         `json:"countries"`
}

type Country struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	PhoneCode string `json:"phoneCode"`
}

// Outcome is the decoded result of a form action. Exactly one of the failure
// channels is populated on rejection: Errors for per-field problems, Message
// alone for everything else.
type Outcome struct {
	OK          bool
	Message     string
	RedirectURL string
	Token       string
	Errors      rules.FieldErrors
}

type Client struct {
	baseURL string
	bundle  Bundle
	http    *http.Client
	token   string
}

// New fetches the bootstrap bundle from baseURL and returns a ready client.
func New(ctx context.Context, baseURL string) (*Client, error) {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	if err := c.bootstrap(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) bootstrap(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/bootstrap", nil)
	if err != nil {
		return err
	}
	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	defer res.Body.Close()

	env, err := decodeEnvelope(res.Body)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	if !env.Success {
		return fmt.Errorf("bootstrap: server refused: %s", string(env.Data))
	}
	return json.Unmarshal(env.Data, &c.bundle)
}

// Countries returns the country list from the bootstrap bundle.
func (c *Client) Countries() []Country { return c.bundle.Countries }

// SetToken stores the session token used on authenticated actions.
func (c *Client) SetToken(token string) { c.token = token }

// CheckEmail asks whether an account with this email already exists.
func (c *Client) CheckEmail(ctx context.Context, email string) (bool, error) {
	env, _, err := c.post(ctx, "check_email", "forms", url.Values{"email": {email}})
	if err != nil {
		return false, err
	}
	if !env.Success {
		return false, fmt.Errorf("check_email: %s", envelopeMessage(env))
	}
	var data dto.CheckEmailResponse
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return false, err
	}
	return data.Exists, nil
}

// UploadPhoto streams the photo as multipart form data and returns the stored
// reference on success.
func (c *Client) UploadPhoto(ctx context.Context, filename, contentType string, body io.Reader) (string, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		err := func() error {
			if err := mw.WriteField("action", "upload_photo"); err != nil {
				return err
			}
			if err := mw.WriteField("nonce", c.bundle.Nonces["forms"]); err != nil {
				return err
			}
			hdr := textproto.MIMEHeader{}
			hdr.Set("Content-Disposition",
				fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
			if contentType != "" {
				hdr.Set("Content-Type", contentType)
			}
			part, err := mw.CreatePart(hdr)
			if err != nil {
				return err
			}
			if _, err := io.Copy(part, body); err != nil {
				return err
			}
			return mw.Close()
		}()
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.bundle.AjaxURL, pr)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	res, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer res.Body.Close()

	env, err := decodeEnvelope(res.Body)
	if err != nil {
		return "", err
	}
	if !env.Success {
		return "", fmt.Errorf("upload rejected: %s", envelopeMessage(env))
	}
	var data dto.UploadResponse
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return "", err
	}
	return data.URL, nil
}

// Register submits the complete registration form.
func (c *Client) Register(ctx context.Context, req dto.RegisterRequest) (*Outcome, error) {
	values := url.Values{
		"fullName":        {req.FullName},
		"email":           {req.Email},
		"password":        {req.Password},
		"confirmPassword": {req.ConfirmPassword},
		"phoneNumber":     {req.PhoneNumber},
		"country":         {req.Country},
		"city":            {req.City},
		"gender":          {req.Gender},
		"dateOfBirth":     {req.DateOfBirth},
		"profilePhoto":    {req.ProfilePhoto},
	}
	for _, in := range req.Interests {
		values.Add("interests[]", in)
	}
	return c.formAction(ctx, "register", "forms", values)
}

// Login exchanges credentials for a session token. The remember flag is
// always sent, "true" or "false", never omitted.
func (c *Client) Login(ctx context.Context, identifier, password string, remember bool) (*Outcome, error) {
	out, err := c.formAction(ctx, "login", "auth", url.Values{
		"identifier": {identifier},
		"password":   {password},
		"remember":   {strconv.FormatBool(remember)},
	})
	if err == nil && out.OK {
		c.token = out.Token
	}
	return out, err
}

// Logout ends the current session. Safe to call without one.
func (c *Client) Logout(ctx context.Context) (*Outcome, error) {
	out, err := c.formAction(ctx, "logout", "auth", url.Values{})
	if err == nil && out.OK {
		c.token = ""
	}
	return out, err
}

// UpdateProfile edits the authenticated account.
func (c *Client) UpdateProfile(ctx context.Context, req dto.ProfileUpdateRequest) (*Outcome, error) {
	values := url.Values{
		"fullName":       {req.FullName},
		"email":          {req.Email},
		"phoneNumber":    {req.PhoneNumber},
		"country":        {req.Country},
		"city":           {req.City},
		"gender":         {req.Gender},
		"dateOfBirth":    {req.DateOfBirth},
		"profilePhoto":   {req.ProfilePhoto},
		"changePassword": {strconv.FormatBool(req.ChangePassword)},
	}
	if req.ChangePassword {
		values.Set("password", req.Password)
		values.Set("confirmPassword", req.ConfirmPassword)
	}
	for _, in := range req.Interests {
		values.Add("interests[]", in)
	}
	return c.formAction(ctx, "update_profile", "forms", values)
}

func (c *Client) formAction(ctx context.Context, action, family string, values url.Values) (*Outcome, error) {
	env, _, err := c.post(ctx, action, family, values)
	if err != nil {
		return nil, err
	}

	if !env.Success {
		var data dto.ErrorData
		if err := json.Unmarshal(env.Data, &data); err != nil {
			return nil, err
		}
		return &Outcome{Message: data.Message, Errors: data.Errors}, nil
	}

	// All success payloads are a superset of these three fields.
	var data struct {
		Message     string `json:"message"`
		RedirectURL string `json:"redirectUrl"`
		Token       string `json:"token"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, err
	}
	return &Outcome{OK: true, Message: data.Message, RedirectURL: data.RedirectURL, Token: data.Token}, nil
}

func (c *Client) post(ctx context.Context, action, family string, values url.Values) (*dto.Envelope, int, error) {
	values.Set("action", action)
	values.Set("nonce", c.bundle.Nonces[family])

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.bundle.AjaxURL,
		strings.NewReader(values.Encode()))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", action, err)
	}
	defer res.Body.Close()

	env, err := decodeEnvelope(res.Body)
	if err != nil {
		return nil, res.StatusCode, fmt.Errorf("%s: %w", action, err)
	}
	return env, res.StatusCode, nil
}

func decodeEnvelope(r io.Reader) (*dto.Envelope, error) {
	var env dto.Envelope
	if err := json.NewDecoder(io.LimitReader(r, 1<<20)).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &env, nil
}

func envelopeMessage(env *dto.Envelope) string {
	var data dto.ErrorData
	if err := json.Unmarshal(env.Data, &data); err != nil || data.Message == "" {
		return string(env.Data)
	}
	return data.Message
}
