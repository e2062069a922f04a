package auth

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// HashElevationSecret hashes a plaintext issuance secret using bcrypt.
// Used by operators to produce the value for ZONEGRID_AUTH_SECRET_HASH.
func HashElevationSecret(secret string) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("auth: secret is empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// ElevationRequired reports whether token issuance needs the secondary
// secret.
func (s *Service) ElevationRequired() bool {
	return s.elevationHash != ""
}

// VerifyElevation checks the presented issuance secret against the
// configured bcrypt hash. A service without a hash accepts every caller.
func (s *Service) VerifyElevation(secret string) error {
	if s.elevationHash == "" {
		return nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.elevationHash), []byte(secret)); err != nil {
		return ErrElevationDenied
	}
	return nil
}
