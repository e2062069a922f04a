package auth

import "errors"

var (
	ErrInvalidToken    = errors.New("auth: invalid token")
	ErrForbidden       = errors.New("auth: forbidden")
	ErrInvalidRole     = errors.New("auth: invalid role")
	ErrInvalidZone     = errors.New("auth: invalid zone")
	ErrElevationDenied = errors.New("auth: elevation secret rejected")
)
