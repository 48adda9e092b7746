package auth

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"github.com/go-otp-auth/internal/domain"
	"github.com/go-otp-auth/internal/infrastructure/sms"
	"github.com/go-otp-auth/internal/pkg/id"
)

// OTPStore persists issued one-time codes.
type OTPStore interface {
	Put(ctx context.Context, o *domain.OTP) error
	GetLatest(ctx context.Context, phone string) (*domain.OTP, error)
	DeleteAllForPhone(ctx context.Context, phone string) error
}

// UserStore persists user records keyed by phone.
type UserStore interface {
	Put(ctx context.Context, u *domain.User) error
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
}

// TokenSigner signs access/refresh tokens and verifies refresh tokens.
type TokenSigner interface {
	SignAccess(userID, phone string) (string, error)
	SignRefresh(userID string) (string, error)
	VerifyRefresh(token string) (string, error)
}

// VerifyResult is the outcome of a successful OTP verification.
type VerifyResult struct {
	Token        string
	RefreshToken string
	User         *domain.User
}

type Service interface {
	SendOTP(ctx context.Context, phone string) error
	VerifyOTP(ctx context.Context, req domain.VerifyOTPRequest) (*VerifyResult, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
}

type ServiceDeps struct {
	OTPRepo   OTPStore
	UserRepo  UserStore
	SMSSender sms.Sender
	Tokens    TokenSigner
	OTPTTL    time.Duration
}

type service struct {
	otpRepo   OTPStore
	userRepo  UserStore
	smsSender sms.Sender
	tokens    TokenSigner
	otpTTL    time.Duration
}

func NewService(deps ServiceDeps) Service {
	return &service{
		otpRepo:   deps.OTPRepo,
		userRepo:  deps.UserRepo,
		smsSender: deps.SMSSender,
		tokens:    deps.Tokens,
		otpTTL:    deps.OTPTTL,
	}
}

// SendOTP issues a fresh 6-digit code, persists it and delivers it by SMS.
// Prior rows for the phone are left in place — they are superseded by
// recency at verification time, never overwritten. A delivery failure
// fails the call even though the row was already persisted; the orphaned
// row harmlessly expires.
func (s *service) SendOTP(ctx context.Context, phone string) error {
	code, err := generateCode()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	otp := &domain.OTP{
		Phone:     phone,
		OTPID:     id.New(),
		Code:      code,
		ExpiresAt: now.Add(s.otpTTL).Unix(),
		CreatedAt: now.Format(time.RFC3339),
	}
	if err := s.otpRepo.Put(ctx, otp); err != nil {
		return fmt.Errorf("store otp: %w", err)
	}

	if err := s.smsSender.Send(ctx, phone, "Your OTP is: "+code); err != nil {
		if errors.Is(err, domain.ErrGateway) {
			return err
		}
		return fmt.Errorf("deliver otp: %v: %w", err, domain.ErrGateway)
	}
	return nil
}

// VerifyOTP checks the supplied code against the newest row for the
// phone, resolves (or lazily creates) the user and issues the token
// pair. The ordering is fixed: match, then expiry, then user resolution,
// then signing, then cleanup. Cleanup runs only after both tokens were
// signed, so a signing failure leaves the rows intact for a retry.
func (s *service) VerifyOTP(ctx context.Context, req domain.VerifyOTPRequest) (*VerifyResult, error) {
	otp, err := s.otpRepo.GetLatest(ctx, req.Phone)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidOTP
		}
		return nil, err
	}
	if otp.Code != req.Code {
		return nil, domain.ErrInvalidOTP
	}
	if otp.ExpiresAt < time.Now().Unix() {
		return nil, domain.ErrExpiredOTP
	}

	user, err := s.userRepo.GetByPhone(ctx, req.Phone)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		if req.FullName == "" {
			return nil, domain.ErrNameRequired
		}
		now := time.Now().UTC()
		user = &domain.User{
			UserID:    id.New(),
			Phone:     req.Phone,
			FullName:  req.FullName,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.userRepo.Put(ctx, user); err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
	}

	token, err := s.tokens.SignAccess(user.UserID, user.Phone)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}
	refreshToken, err := s.tokens.SignRefresh(user.UserID)
	if err != nil {
		return nil, fmt.Errorf("sign refresh token: %w", err)
	}

	if err := s.otpRepo.DeleteAllForPhone(ctx, req.Phone); err != nil {
		// Stale rows can never match again; the next verify just fails.
		slog.Warn("failed to delete consumed OTP rows", "phone", req.Phone, "err", err)
	}

	return &VerifyResult{Token: token, RefreshToken: refreshToken, User: user}, nil
}

// Refresh mints a new access token from a valid refresh token. The
// subject is trusted as-is — the user store is not consulted, so a
// token issued for a since-deleted user still refreshes.
func (s *service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	sub, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return "", fmt.Errorf("%v: %w", err, domain.ErrInvalidToken)
	}
	token, err := s.tokens.SignAccess(sub, "")
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return token, nil
}

// generateCode draws a uniform 6-digit code from [100000, 999999];
// the first digit is never zero.
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n.Int64()+100000), nil
}
