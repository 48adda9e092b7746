package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrBadRequest   = errors.New("bad request")
	ErrInvalidOTP   = errors.New("invalid OTP")
	ErrExpiredOTP   = errors.New("OTP expired")
	ErrNameRequired = errors.New("full name required for new users")
	ErrInvalidToken = errors.New("invalid token")
	ErrGateway      = errors.New("sms gateway failure")
)
