package http

import (
	"testing"
	"time"
)

func TestNonceRoundTrip(t *testing.T) {
	n := NewNonceIssuer([]byte("secret"), time.Hour)
	token := n.Issue(NonceFamilyForms)
	if !n.Check(NonceFamilyForms, token) {
		t.Fatal("fresh token rejected")
	}
}

func TestNonceFamilyIsBound(t *testing.T) {
	n := NewNonceIssuer([]byte("secret"), time.Hour)
	token := n.Issue(NonceFamilyForms)
	if n.Check(NonceFamilyAuth, token) {
		t.Fatal("forms token accepted for auth family")
	}
}

func TestNonceExpiry(t *testing.T) {
	n := NewNonceIssuer([]byte("secret"), time.Hour)
	token := n.Issue(NonceFamilyForms)

	n.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if n.Check(NonceFamilyForms, token) {
		t.Fatal("expired token accepted")
	}
}

func TestNonceRejectsGarbage(t *testing.T) {
	n := NewNonceIssuer([]byte("secret"), time.Hour)
	for _, token := range []string{"", "nodot", "123.not-base64!!!", "abc.def"} {
		if n.Check(NonceFamilyForms, token) {
			t.Fatalf("garbage token accepted: %q", token)
		}
	}
}

func TestNonceSecretMatters(t *testing.T) {
	a := NewNonceIssuer([]byte("secret-a"), time.Hour)
	b := NewNonceIssuer([]byte("secret-b"), time.Hour)
	if b.Check(NonceFamilyForms, a.Issue(NonceFamilyForms)) {
		t.Fatal("token verified across secrets")
	}
}
