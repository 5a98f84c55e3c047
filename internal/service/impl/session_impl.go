package impl

import (
	"context"
	"strings"
	"time"

	"signupflow/internal/domain"
	"signupflow/internal/dto"
	"signupflow/internal/service"
	"signupflow/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const maxUserAgentLen = 512

type SessionConfig struct {
	SigningKey []byte
	// SessionTTL is the default lifetime; RememberTTL applies when the login
	// request carries remember=true.
	SessionTTL  time.Duration
	RememberTTL time.Duration

	LoginRedirectURL  string
	LogoutRedirectURL string
}

type SessionServiceImpl struct {
	Store     dataStore
	Passwords service.PasswordService
	Config    SessionConfig
}

func NewSessionServiceImpl(st *store.Store, passwords service.PasswordService, cfg SessionConfig) *SessionServiceImpl {
	return &SessionServiceImpl{
		Store:     gormStoreAdapter{store: st},
		Passwords: passwords,
		Config:    cfg,
	}
}

func (s *SessionServiceImpl) Login(ctx context.Context, req dto.LoginRequest, ip, ua string) (*dto.LoginResponse, error) {
	identifier := normalizeEmail(req.Identifier)
	if identifier == "" || req.Password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	var resp *dto.LoginResponse
	err := s.Store.WithTx(ctx, func(tx storeTx) error {
		acc, err := tx.Accounts().GetByEmail(ctx, identifier)
		if err != nil {
			// Same error for an unknown email as for a bad password.
			return domain.ErrInvalidCredentials
		}

		rehashNeeded, ok := s.Passwords.Verify(req.Password, acc)
		if !ok {
			return domain.ErrInvalidCredentials
		}

		if rehashNeeded {
			hash, salt, paramsJSON, algo, ver, err := s.Passwords.Hash(req.Password)
			if err != nil {
				return err
			}
			acc.PasswordHash = hash
			acc.PasswordSalt = salt
			acc.PasswordParams = paramsJSON
			acc.PasswordAlgo = algo
			acc.PasswordVer = ver
			if err := tx.Accounts().Update(ctx, acc); err != nil {
				return err
			}
		}

		ttl := s.Config.SessionTTL
		if req.Remember {
			ttl = s.Config.RememberTTL
		}
		now := time.Now().UTC()
		sess := &domain.Session{
			ID:        uuid.New(),
			AccountID: acc.ID,
			ExpiresAt: now.Add(ttl),
			CreatedAt: now,
			IP:        ip,
			UserAgent: truncate(ua, maxUserAgentLen),
		}
		if err := tx.Sessions().Create(ctx, sess); err != nil {
			return err
		}

		token, err := s.signToken(sess)
		if err != nil {
			return err
		}
		resp = &dto.LoginResponse{
			Message:     msgLoginSucceeded,
			RedirectURL: s.Config.LoginRedirectURL,
			Token:       token,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *SessionServiceImpl) Logout(ctx context.Context, token string) error {
	sid, _, err := s.parseToken(token)
	if err != nil {
		// Nothing to destroy; logout stays idempotent.
		return nil
	}
	return s.Store.WithTx(ctx, func(tx storeTx) error {
		return tx.Sessions().Delete(ctx, sid)
	})
}

func (s *SessionServiceImpl) Verify(ctx context.Context, token string) (*domain.Account, error) {
	sid, accountID, err := s.parseToken(token)
	if err != nil {
		return nil, domain.ErrUnauthenticated
	}

	var acc *domain.Account
	err = s.Store.WithTx(ctx, func(tx storeTx) error {
		sess, err := tx.Sessions().GetByID(ctx, sid)
		if err != nil {
			return domain.ErrUnauthenticated
		}
		if sess.Expired(time.Now().UTC()) {
			_ = tx.Sessions().Delete(ctx, sid)
			return domain.ErrUnauthenticated
		}
		if sess.AccountID != accountID {
			return domain.ErrUnauthenticated
		}
		acc, err = tx.Accounts().GetByID(ctx, sess.AccountID)
		if err != nil {
			return domain.ErrUnauthenticated
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return acc, nil
}

// signToken wraps the session id in an HS256 JWT. The token only names the
// session; Verify always consults the stored row before trusting it.
func (s *SessionServiceImpl) signToken(sess *domain.Session) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        sess.ID.String(),
		Subject:   sess.AccountID.String(),
		ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		IssuedAt:  jwt.NewNumericDate(sess.CreatedAt),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.Config.SigningKey)
}

func (s *SessionServiceImpl) parseToken(token string) (sessionID, accountID uuid.UUID, err error) {
	var claims jwt.RegisteredClaims
	_, err = jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.Config.SigningKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	sessionID, err = uuid.Parse(claims.ID)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	accountID, err = uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return sessionID, accountID, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	// Walk runes so a multi-byte character is never split.
	var b strings.Builder
	b.Grow(max)
	count := 0
	for _, r := range s {
		if count >= max {
			break
		}
		b.WriteRune(r)
		count++
	}
	return b.String()
}
