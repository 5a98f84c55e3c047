package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"signupflow/internal/countries"
	"signupflow/internal/domain"
	"signupflow/internal/dto"
	"signupflow/internal/observability/metrics"
	"signupflow/internal/service"
	"signupflow/internal/uploads"

	"github.com/google/uuid"
)

const maxUploadMemory = 8 << 20

// Handler dispatches the single ajax action surface. Every response is the
// {success, data} envelope the client expects.
type Handler struct {
	Registrations service.RegistrationService
	Sessions      service.SessionService
	Photos        uploads.Store
	Nonces        *NonceIssuer

	AjaxPath          string
	LogoutRedirectURL string
}

// actionFamilies maps each action to the nonce family that guards it.
var actionFamilies = map[string]string{
	"check_email":    NonceFamilyForms,
	"upload_photo":   NonceFamilyForms,
	"register":       NonceFamilyForms,
	"update_profile": NonceFamilyForms,
	"login":          NonceFamilyAuth,
	"logout":         NonceFamilyAuth,
}

type bootstrapData struct {
	AjaxURL   string              `json:"ajaxUrl"`
	Nonces    map[string]string   `json:"nonces"`
	Countries []countries.Country `json:"countries"`
}

// Bootstrap hands the client everything it needs to talk to the ajax surface:
// the endpoint, one nonce per action family, and the country list.
func (h *Handler) Bootstrap(w http.ResponseWriter, r *http.Request) {
	writeEnvelope(w, http.StatusOK, true, bootstrapData{
		AjaxURL: h.AjaxPath,
		Nonces: map[string]string{
			NonceFamilyForms: h.Nonces.Issue(NonceFamilyForms),
			NonceFamilyAuth:  h.Nonces.Issue(NonceFamilyAuth),
		},
		Countries: countries.All,
	})
}

func (h *Handler) Ajax(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		writeError(w, http.StatusBadRequest, "Malformed request", nil)
		return
	}

	action := r.FormValue("action")
	family, known := actionFamilies[action]
	if !known {
		writeError(w, http.StatusBadRequest, "Unknown action", nil)
		return
	}
	if !h.Nonces.Check(family, r.FormValue("nonce")) {
		writeError(w, http.StatusForbidden, "Security check failed, please reload the page", nil)
		return
	}

	switch action {
	case "check_email":
		h.checkEmail(w, r)
	case "upload_photo":
		h.uploadPhoto(w, r)
	case "register":
		h.register(w, r)
	case "login":
		h.login(w, r)
	case "logout":
		h.logout(w, r)
	case "update_profile":
		h.updateProfile(w, r)
	}
}

func (h *Handler) checkEmail(w http.ResponseWriter, r *http.Request) {
	exists, err := h.Registrations.EmailExists(r.Context(), r.FormValue("email"))
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	writeEnvelope(w, http.StatusOK, true, dto.CheckEmailResponse{Exists: exists})
}

func (h *Handler) uploadPhoto(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")
	if err != nil {
		metrics.PhotoUploadsTotal.WithLabelValues("invalid").Inc()
		writeError(w, http.StatusBadRequest, "No file received", nil)
		return
	}
	defer file.Close()

	contentType, body, err := sniffContentType(file, header.Header.Get("Content-Type"))
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	key := uuid.New().String() + uploads.ExtensionFor(contentType)
	url, err := h.Photos.Save(r.Context(), key, contentType, body, header.Size)
	if err != nil {
		metrics.PhotoUploadsTotal.WithLabelValues("rejected").Inc()
		if errors.Is(err, uploads.ErrNotImage) || errors.Is(err, uploads.ErrTooLarge) {
			writeError(w, http.StatusOK, err.Error(), nil)
			return
		}
		h.serverError(w, r, err)
		return
	}
	metrics.PhotoUploadsTotal.WithLabelValues("ok").Inc()
	writeEnvelope(w, http.StatusOK, true, dto.UploadResponse{URL: url})
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	req := dto.RegisterRequest{
		FullName:        r.FormValue("fullName"),
		Email:           r.FormValue("email"),
		Password:        r.FormValue("password"),
		ConfirmPassword: r.FormValue("confirmPassword"),
		PhoneNumber:     r.FormValue("phoneNumber"),
		Country:         r.FormValue("country"),
		City:            r.FormValue("city"),
		Gender:          r.FormValue("gender"),
		DateOfBirth:     r.FormValue("dateOfBirth"),
		Interests:       formValues(r, "interests"),
		ProfilePhoto:    r.FormValue("profilePhoto"),
	}

	res, err := h.Registrations.Register(r.Context(), req)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
			writeError(w, http.StatusOK, "Please fix the highlighted fields", verr.Fields)
			return
		}
		metrics.RegistrationsTotal.WithLabelValues("error").Inc()
		h.serverError(w, r, err)
		return
	}
	metrics.RegistrationsTotal.WithLabelValues("ok").Inc()
	writeEnvelope(w, http.StatusOK, true, res)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	req := dto.LoginRequest{
		Identifier: r.FormValue("identifier"),
		Password:   r.FormValue("password"),
		Remember:   r.FormValue("remember") == "true" || r.FormValue("remember") == "1",
	}

	res, err := h.Sessions.Login(r.Context(), req, clientIP(r), r.UserAgent())
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginsTotal.WithLabelValues("denied").Inc()
			writeError(w, http.StatusUnauthorized, domain.ErrInvalidCredentials.Error(), nil)
			return
		}
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		h.serverError(w, r, err)
		return
	}
	metrics.LoginsTotal.WithLabelValues("ok").Inc()
	writeEnvelope(w, http.StatusOK, true, res)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Sessions.Logout(r.Context(), bearerToken(r)); err != nil {
		h.serverError(w, r, err)
		return
	}
	writeEnvelope(w, http.StatusOK, true, dto.LogoutResponse{RedirectURL: h.LogoutRedirectURL})
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	acc, err := h.Sessions.Verify(r.Context(), bearerToken(r))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Please log in to continue", nil)
		return
	}

	req := dto.ProfileUpdateRequest{
		FullName:        r.FormValue("fullName"),
		Email:           r.FormValue("email"),
		PhoneNumber:     r.FormValue("phoneNumber"),
		Country:         r.FormValue("country"),
		City:            r.FormValue("city"),
		Gender:          r.FormValue("gender"),
		DateOfBirth:     r.FormValue("dateOfBirth"),
		Interests:       formValues(r, "interests"),
		ProfilePhoto:    r.FormValue("profilePhoto"),
		ChangePassword:  r.FormValue("changePassword") == "true" || r.FormValue("changePassword") == "1",
		Password:        r.FormValue("password"),
		ConfirmPassword: r.FormValue("confirmPassword"),
	}

	res, err := h.Registrations.UpdateProfile(r.Context(), acc.ID, req)
	if err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			writeError(w, http.StatusOK, "Please fix the highlighted fields", verr.Fields)
			return
		}
		h.serverError(w, r, err)
		return
	}
	writeEnvelope(w, http.StatusOK, true, res)
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Default().Error("ajax action failed",
		"path", r.URL.Path,
		"action", r.FormValue("action"),
		"error", err,
	)
	writeError(w, http.StatusInternalServerError, "Something went wrong, please try again", nil)
}

// formValues reads a repeated field under both plain and bracketed names; HTML
// form serializers disagree on which to send.
func formValues(r *http.Request, name string) []string {
	if vs := r.Form[name]; len(vs) > 0 {
		return vs
	}
	return r.Form[name+"[]"]
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return token
	}
	return r.FormValue("token")
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i > 0 {
		host = host[:i]
	}
	return host
}

// sniffContentType trusts the declared type when present and otherwise sniffs
// the first bytes, handing back a reader that still starts at offset zero.
func sniffContentType(file io.Reader, declared string) (string, io.Reader, error) {
	if declared != "" && declared != "application/octet-stream" {
		return declared, file, nil
	}
	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", nil, err
	}
	head = head[:n]
	return http.DetectContentType(head), io.MultiReader(strings.NewReader(string(head)), file), nil
}

func writeEnvelope(w http.ResponseWriter, status int, success bool, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	payload, err := json.Marshal(data)
	if err != nil {
		payload = []byte("null")
	}
	_ = json.NewEncoder(w).Encode(dto.Envelope{Success: success, Data: payload})
}

func writeError(w http.ResponseWriter, status int, message string, fields map[string]string) {
	writeEnvelope(w, status, false, dto.ErrorData{Message: message, Errors: fields})
}
