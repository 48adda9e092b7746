package domain

// OTP is one issued verification code.
// PK: phone, SK: otp_id (ULID — sorts by creation time, so the row with
// the greatest otp_id is the only authoritative one for a phone).
// ExpiresAt is a Unix timestamp used as DynamoDB TTL; expired rows are
// never purged proactively, they just stop matching.
type OTP struct {
	Phone     string `json:"phone" dynamodbav:"phone"`
	OTPID     string `json:"id" dynamodbav:"otp_id"`
	Code      string `json:"code" dynamodbav:"code"`
	ExpiresAt int64  `json:"expires_at" dynamodbav:"expires_at"` // TTL (Unix seconds)
	CreatedAt string `json:"created_at" dynamodbav:"created_at"`
}
