package impl

import (
	"context"
	"errors"
	"strings"
	"time"

	"signupflow/internal/domain"
	"signupflow/internal/dto"
	"signupflow/internal/rules"
	"signupflow/internal/service"
	"signupflow/internal/store"

	"github.com/google/uuid"
)

type RegistrationConfig struct {
	// RedirectURL is where a freshly registered user is sent.
	RedirectURL string
}

type RegistrationServiceImpl struct {
	Store     dataStore
	Passwords service.PasswordService
	Config    RegistrationConfig
}

func NewRegistrationServiceImpl(st *store.Store, passwords service.PasswordService, cfg RegistrationConfig) *RegistrationServiceImpl {
	return &RegistrationServiceImpl{
		Store:     gormStoreAdapter{store: st},
		Passwords: passwords,
		Config:    cfg,
	}
}

func (s *RegistrationServiceImpl) Register(ctx context.Context, req dto.RegisterRequest) (*dto.RegisterResponse, error) {
	form := registerForm(req)
	if errs := rules.ValidateAll(form); len(errs) > 0 {
		return nil, &service.ValidationError{Fields: errs}
	}

	// Hash before opening the transaction; argon2 is deliberately slow and
	// the plaintext is not needed past this point.
	hash, salt, paramsJSON, algo, ver, err := s.Passwords.Hash(form.Password)
	if err != nil {
		return nil, err
	}

	var out *dto.RegisterResponse
	err = s.Store.WithTx(ctx, func(tx storeTx) error {
		// Pre-check is an optimization for a friendlier error; the unique
		// index inside this transaction is the actual guarantee.
		exists, err := tx.Accounts().EmailExists(ctx, form.Email)
		if err != nil {
			return err
		}
		if exists {
			return store.ErrDuplicateEmail
		}

		now := time.Now().UTC()
		acc := &domain.Account{
			ID:             uuid.New(),
			FullName:       form.FullName,
			Email:          form.Email,
			PasswordHash:   hash,
			PasswordSalt:   salt,
			PasswordParams: paramsJSON,
			PasswordAlgo:   algo,
			PasswordVer:    ver,
			PhoneNumber:    form.PhoneNumber,
			Country:        form.Country,
			City:           form.City,
			Gender:         form.Gender,
			DateOfBirth:    form.DateOfBirth,
			Interests:      form.Interests,
			ProfilePhoto:   form.ProfilePhoto,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := tx.Accounts().Create(ctx, acc); err != nil {
			return err
		}
		out = &dto.RegisterResponse{
			Message:     msgRegistered,
			RedirectURL: s.Config.RedirectURL,
			Account:     acc.Summarize(),
		}
		return nil
	})
	if errors.Is(err, store.ErrDuplicateEmail) {
		return nil, &service.ValidationError{Fields: rules.FieldErrors{rules.FieldEmail: msgEmailTaken}}
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *RegistrationServiceImpl) EmailExists(ctx context.Context, email string) (bool, error) {
	email = normalizeEmail(email)
	if email == "" {
		return false, nil
	}
	var exists bool
	err := s.Store.WithTx(ctx, func(tx storeTx) error {
		var err error
		exists, err = tx.Accounts().EmailExists(ctx, email)
		return err
	})
	return exists, err
}

func (s *RegistrationServiceImpl) UpdateProfile(ctx context.Context, accountID uuid.UUID, req dto.ProfileUpdateRequest) (*dto.ProfileUpdateResponse, error) {
	form := profileForm(req)
	if errs := rules.ValidateAll(form); len(errs) > 0 {
		return nil, &service.ValidationError{Fields: errs}
	}

	var hash, salt, paramsJSON []byte
	var algo string
	var ver int
	if req.ChangePassword {
		var err error
		hash, salt, paramsJSON, algo, ver, err = s.Passwords.Hash(form.Password)
		if err != nil {
			return nil, err
		}
	}

	var out *dto.ProfileUpdateResponse
	err := s.Store.WithTx(ctx, func(tx storeTx) error {
		acc, err := tx.Accounts().GetByID(ctx, accountID)
		if err != nil {
			return err
		}

		if !strings.EqualFold(acc.Email, form.Email) {
			exists, err := tx.Accounts().EmailExists(ctx, form.Email)
			if err != nil {
				return err
			}
			if exists {
				return store.ErrDuplicateEmail
			}
		}

		acc.FullName = form.FullName
		acc.Email = form.Email
		acc.PhoneNumber = form.PhoneNumber
		acc.Country = form.Country
		acc.City = form.City
		acc.Gender = form.Gender
		acc.DateOfBirth = form.DateOfBirth
		acc.Interests = form.Interests
		acc.ProfilePhoto = form.ProfilePhoto
		if req.ChangePassword {
			acc.PasswordHash = hash
			acc.PasswordSalt = salt
			acc.PasswordParams = paramsJSON
			acc.PasswordAlgo = algo
			acc.PasswordVer = ver
		}
		if err := tx.Accounts().Update(ctx, acc); err != nil {
			return err
		}
		out = &dto.ProfileUpdateResponse{Message: msgProfileUpdated, Account: acc.Summarize()}
		return nil
	})
	if errors.Is(err, store.ErrDuplicateEmail) {
		return nil, &service.ValidationError{Fields: rules.FieldErrors{rules.FieldEmail: msgEmailTaken}}
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// registerForm normalizes the incoming payload: names trimmed, email lowered,
// phone sanitized the same way the client sanitizes it.
func registerForm(req dto.RegisterRequest) rules.Form {
	return rules.Form{
		FullName:        strings.TrimSpace(req.FullName),
		Email:           normalizeEmail(req.Email),
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		PhoneNumber:     rules.SanitizePhone(req.PhoneNumber),
		Country:         strings.TrimSpace(req.Country),
		City:            strings.TrimSpace(req.City),
		Gender:          strings.ToLower(strings.TrimSpace(req.Gender)),
		DateOfBirth:     strings.TrimSpace(req.DateOfBirth),
		Interests:       trimAll(req.Interests),
		ProfilePhoto:    strings.TrimSpace(req.ProfilePhoto),
		PasswordActive:  true,
	}
}

func profileForm(req dto.ProfileUpdateRequest) rules.Form {
	return rules.Form{
		FullName:        strings.TrimSpace(req.FullName),
		Email:           normalizeEmail(req.Email),
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		PhoneNumber:     rules.SanitizePhone(req.PhoneNumber),
		Country:         strings.TrimSpace(req.Country),
		City:            strings.TrimSpace(req.City),
		Gender:          strings.ToLower(strings.TrimSpace(req.Gender)),
		DateOfBirth:     strings.TrimSpace(req.DateOfBirth),
		Interests:       trimAll(req.Interests),
		ProfilePhoto:    strings.TrimSpace(req.ProfilePhoto),
		PasswordActive:  req.ChangePassword,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func trimAll(ss []string) []string {
	out := make([]string, 0, len(ss))
	for _, s := range ss {
		if t := strings.TrimSpace(s); t != "" {
			out = append(out, t)
		}
	}
	return out
}
