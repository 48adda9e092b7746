package domain

import "time"

// User is created lazily on first successful OTP verification and is
// immutable afterwards — there is no update path in this service.
type User struct {
	UserID    string    `json:"id" dynamodbav:"user_id"`
	Phone     string    `json:"phone" dynamodbav:"phone"`
	FullName  string    `json:"full_name" dynamodbav:"full_name"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated" dynamodbav:"updated_at"`
}

type SendOTPRequest struct {
	Phone string `json:"phone" validate:"required"`
}

type VerifyOTPRequest struct {
	Phone    string `json:"phone" validate:"required"`
	Code     string `json:"code" validate:"required"`
	FullName string `json:"full_name"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}
