package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"signupflow/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envelope(t *testing.T, success bool, data any) []byte {
	t.Helper()
	payload, err := json.Marshal(data)
	require.NoError(t, err)
	body, err := json.Marshal(dto.Envelope{Success: success, Data: payload})
	require.NoError(t, err)
	return body
}

// newTestServer fakes the action endpoint: bootstrap plus a per-action
// response table. Requests are recorded so tests can inspect what was sent.
func newTestServer(t *testing.T, responses map[string][]byte) (*httptest.Server, *[]*http.Request) {
	t.Helper()
	var seen []*http.Request

	mux := http.NewServeMux()
	mux.HandleFunc("/bootstrap", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(envelope(t, true, Bundle{
			AjaxURL: "/ajax",
			Nonces:  map[string]string{"forms": "nonce-forms", "auth": "nonce-auth"},
			Countries: []Country{
				{Code: "DE", Name: "Germany", PhoneCode: "+49"},
			},
		}))
	})
	mux.HandleFunc("/ajax", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(8 << 20); !errors.Is(err, http.ErrNotMultipart) {
			require.NoError(t, err)
		}
		seen = append(seen, r)
		body, ok := responses[r.FormValue("action")]
		require.True(t, ok, "unexpected action %q", r.FormValue("action"))
		_, _ = w.Write(body)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &seen
}

func TestBootstrapLoadsBundle(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	c, err := New(context.Background(), srv.URL)
	require.NoError(t, err)
	require.Len(t, c.Countries(), 1)
	assert.Equal(t, "+49", c.Countries()[0].PhoneCode)
}

func TestCheckEmailSendsNonce(t *testing.T) {
	srv, seen := newTestServer(t, map[string][]byte{
		"check_email": envelope(t, true, dto.CheckEmailResponse{Exists: true}),
	})
	c, err := New(context.Background(), srv.URL)
	require.NoError(t, err)

	exists, err := c.CheckEmail(context.Background(), "jane@x.com")
	require.NoError(t, err)
	assert.True(t, exists)

	require.Len(t, *seen, 1)
	assert.Equal(t, "nonce-forms", (*seen)[0].FormValue("nonce"))
	assert.Equal(t, "jane@x.com", (*seen)[0].FormValue("email"))
}

func TestRegisterMapsFieldErrors(t *testing.T) {
	srv, _ := newTestServer(t, map[string][]byte{
		"register": envelope(t, false, dto.ErrorData{
			Message: "Please fix the highlighted fields",
			Errors:  map[string]string{"email": "This email is already registered"},
		}),
	})
	c, err := New(context.Background(), srv.URL)
	require.NoError(t, err)

	out, err := c.Register(context.Background(), dto.RegisterRequest{Email: "jane@x.com"})
	require.NoError(t, err)
	assert.False(t, out.OK)
	assert.Equal(t, "This email is already registered", out.Errors["email"])
}

func TestRegisterSendsInterestsRepeated(t *testing.T) {
	srv, seen := newTestServer(t, map[string][]byte{
		"register": envelope(t, true, dto.RegisterResponse{Message: "ok", RedirectURL: "/welcome"}),
	})
	c, err := New(context.Background(), srv.URL)
	require.NoError(t, err)

	out, err := c.Register(context.Background(), dto.RegisterRequest{
		Interests: []string{"tech", "music"},
	})
	require.NoError(t, err)
	assert.True(t, out.OK)
	assert.Equal(t, "/welcome", out.RedirectURL)

	require.Len(t, *seen, 1)
	assert.Equal(t, []string{"tech", "music"}, (*seen)[0].Form["interests[]"])
}

func TestLoginStoresTokenAndAlwaysSendsRemember(t *testing.T) {
	srv, seen := newTestServer(t, map[string][]byte{
		"login":          envelope(t, true, dto.LoginResponse{Token: "tok-123", RedirectURL: "/profile"}),
		"update_profile": envelope(t, true, dto.ProfileUpdateResponse{Message: "updated"}),
	})
	c, err := New(context.Background(), srv.URL)
	require.NoError(t, err)

	out, err := c.Login(context.Background(), "jane@x.com", "Abcdef12", false)
	require.NoError(t, err)
	require.True(t, out.OK)
	assert.Equal(t, "false", (*seen)[0].FormValue("remember"))

	_, err = c.UpdateProfile(context.Background(), dto.ProfileUpdateRequest{FullName: "Jane"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-123", (*seen)[1].Header.Get("Authorization"))
	assert.Equal(t, "nonce-auth", (*seen)[0].FormValue("nonce"))
}

func TestLogoutClearsToken(t *testing.T) {
	srv, seen := newTestServer(t, map[string][]byte{
		"login":  envelope(t, true, dto.LoginResponse{Token: "tok-123"}),
		"logout": envelope(t, true, dto.LogoutResponse{RedirectURL: "/login"}),
	})
	c, err := New(context.Background(), srv.URL)
	require.NoError(t, err)

	_, err = c.Login(context.Background(), "jane@x.com", "Abcdef12", true)
	require.NoError(t, err)

	out, err := c.Logout(context.Background())
	require.NoError(t, err)
	assert.True(t, out.OK)
	assert.Equal(t, "/login", out.RedirectURL)
	assert.Equal(t, "Bearer tok-123", (*seen)[1].Header.Get("Authorization"))
	assert.Empty(t, c.token)
}

func TestUploadPhotoMultipart(t *testing.T) {
	srv, seen := newTestServer(t, map[string][]byte{
		"upload_photo": envelope(t, true, dto.UploadResponse{URL: "http://cdn/p/abc.jpg"}),
	})
	c, err := New(context.Background(), srv.URL)
	require.NoError(t, err)

	url, err := c.UploadPhoto(context.Background(), "me.jpg", "image/jpeg",
		bytes.NewReader([]byte{0xFF, 0xD8, 0xFF, 0xE0}))
	require.NoError(t, err)
	assert.Equal(t, "http://cdn/p/abc.jpg", url)

	req := (*seen)[0]
	require.NotNil(t, req.MultipartForm)
	require.Len(t, req.MultipartForm.File["file"], 1)
	assert.Equal(t, "me.jpg", req.MultipartForm.File["file"][0].Filename)
}

func TestUploadPhotoRejection(t *testing.T) {
	srv, _ := newTestServer(t, map[string][]byte{
		"upload_photo": envelope(t, false, dto.ErrorData{Message: "photo exceeds the 5 MB limit"}),
	})
	c, err := New(context.Background(), srv.URL)
	require.NoError(t, err)

	_, err = c.UploadPhoto(context.Background(), "big.jpg", "image/jpeg", bytes.NewReader(nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "5 MB limit")
}
