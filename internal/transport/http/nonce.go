package http

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strconv"
	"strings"
	"time"
)

// Action families share one anti-forgery token each: the registration flow
// (register, upload, email check, profile update) and the auth flow
// (login, logout).
const (
	NonceFamilyForms = "forms"
	NonceFamilyAuth  = "auth"
)

// NonceIssuer mints and checks HMAC-based anti-forgery tokens. Tokens are
// stateless: the expiry rides inside and the MAC binds it to the family.
type NonceIssuer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewNonceIssuer(secret []byte, ttl time.Duration) *NonceIssuer {
	return &NonceIssuer{secret: secret, ttl: ttl, now: time.Now}
}

func (n *NonceIssuer) Issue(family string) string {
	exp := strconv.FormatInt(n.now().Add(n.ttl).Unix(), 10)
	return exp + "." + base64.RawURLEncoding.EncodeToString(n.mac(family, exp))
}

func (n *NonceIssuer) Check(family, token string) bool {
	exp, macPart, ok := strings.Cut(token, ".")
	if !ok {
		return false
	}
	expUnix, err := strconv.ParseInt(exp, 10, 64)
	if err != nil || n.now().Unix() > expUnix {
		return false
	}
	got, err := base64.RawURLEncoding.DecodeString(macPart)
	if err != nil {
		return false
	}
	return hmac.Equal(got, n.mac(family, exp))
}

func (n *NonceIssuer) mac(family, exp string) []byte {
	h := hmac.New(sha256.New, n.secret)
	h.Write([]byte(family + ":" + exp))
	return h.Sum(nil)
}
