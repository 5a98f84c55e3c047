package service

import "signupflow/internal/domain"

type PasswordService interface {
	Hash(password string) (hash, salt, paramsJSON []byte, algo string, ver int, err error)

	// Verify compares in constant time. rehashNeeded signals that the stored
	// parameters lag the current policy and the hash should be upgraded on
	// next successful login.
	Verify(password string, acc *domain.Account) (rehashNeeded, ok bool)
}
