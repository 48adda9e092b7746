package auth

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/go-otp-auth/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockOTPStore struct{ mock.Mock }

func (m *mockOTPStore) Put(ctx context.Context, o *domain.OTP) error {
	return m.Called(ctx, o).Error(0)
}
func (m *mockOTPStore) GetLatest(ctx context.Context, phone string) (*domain.OTP, error) {
	args := m.Called(ctx, phone)
	if o, _ := args.Get(0).(*domain.OTP); o != nil {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockOTPStore) DeleteAllForPhone(ctx context.Context, phone string) error {
	return m.Called(ctx, phone).Error(0)
}

type mockUserStore struct{ mock.Mock }

func (m *mockUserStore) Put(ctx context.Context, u *domain.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockUserStore) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	args := m.Called(ctx, phone)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockSMSSender struct{ mock.Mock }

func (m *mockSMSSender) Send(ctx context.Context, to, text string) error {
	return m.Called(ctx, to, text).Error(0)
}

type mockTokenSigner struct{ mock.Mock }

func (m *mockTokenSigner) SignAccess(userID, phone string) (string, error) {
	args := m.Called(userID, phone)
	return args.String(0), args.Error(1)
}
func (m *mockTokenSigner) SignRefresh(userID string) (string, error) {
	args := m.Called(userID)
	return args.String(0), args.Error(1)
}
func (m *mockTokenSigner) VerifyRefresh(token string) (string, error) {
	args := m.Called(token)
	return args.String(0), args.Error(1)
}

// --- builder ---

func newService(os *mockOTPStore, us *mockUserStore, sms *mockSMSSender, tk *mockTokenSigner) Service {
	return NewService(ServiceDeps{
		OTPRepo:   os,
		UserRepo:  us,
		SMSSender: sms,
		Tokens:    tk,
		OTPTTL:    300 * time.Second,
	})
}

const phone = "9800000000"

func validOTP(code string) *domain.OTP {
	return &domain.OTP{
		Phone:     phone,
		OTPID:     "01HZX0000000000000000000A0",
		Code:      code,
		ExpiresAt: time.Now().Add(5 * time.Minute).Unix(),
	}
}

// --- SendOTP ---

func TestSendOTP_GeneratesSixDigitCodeInRange(t *testing.T) {
	os := &mockOTPStore{}
	sms := &mockSMSSender{}

	var stored *domain.OTP
	os.On("Put", mock.Anything, mock.AnythingOfType("*domain.OTP")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*domain.OTP) }).
		Return(nil)
	sms.On("Send", mock.Anything, phone, mock.Anything).Return(nil)

	svc := newService(os, nil, sms, nil)
	for i := 0; i < 50; i++ {
		require.NoError(t, svc.SendOTP(context.Background(), phone))
		require.Len(t, stored.Code, 6)
		n, err := strconv.Atoi(stored.Code)
		require.NoError(t, err, "code must be all digits")
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

func TestSendOTP_SetsExpiryFromTTL(t *testing.T) {
	os := &mockOTPStore{}
	sms := &mockSMSSender{}

	var stored *domain.OTP
	os.On("Put", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*domain.OTP) }).
		Return(nil)
	sms.On("Send", mock.Anything, phone, mock.Anything).Return(nil)

	svc := newService(os, nil, sms, nil)
	before := time.Now().Unix()
	require.NoError(t, svc.SendOTP(context.Background(), phone))
	after := time.Now().Unix()

	assert.GreaterOrEqual(t, stored.ExpiresAt, before+300)
	assert.LessOrEqual(t, stored.ExpiresAt, after+300)
	assert.NotEmpty(t, stored.OTPID)
}

func TestSendOTP_SMSCarriesTheCode(t *testing.T) {
	os := &mockOTPStore{}
	sms := &mockSMSSender{}

	var stored *domain.OTP
	var sentText string
	os.On("Put", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*domain.OTP) }).
		Return(nil)
	sms.On("Send", mock.Anything, phone, mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { sentText = args.String(2) }).
		Return(nil)

	svc := newService(os, nil, sms, nil)
	require.NoError(t, svc.SendOTP(context.Background(), phone))
	assert.Equal(t, "Your OTP is: "+stored.Code, sentText)
}

func TestSendOTP_GatewayFailureAfterPersist(t *testing.T) {
	os := &mockOTPStore{}
	sms := &mockSMSSender{}

	os.On("Put", mock.Anything, mock.Anything).Return(nil)
	sms.On("Send", mock.Anything, phone, mock.Anything).Return(domain.ErrGateway)

	svc := newService(os, nil, sms, nil)
	err := svc.SendOTP(context.Background(), phone)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrGateway))
	// The row was persisted before the delivery attempt — accepted inconsistency.
	os.AssertCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestSendOTP_StoreFailureSkipsDelivery(t *testing.T) {
	os := &mockOTPStore{}
	sms := &mockSMSSender{}

	os.On("Put", mock.Anything, mock.Anything).Return(errors.New("dynamo down"))

	svc := newService(os, nil, sms, nil)
	err := svc.SendOTP(context.Background(), phone)

	require.Error(t, err)
	sms.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
}

// --- VerifyOTP ---

func TestVerifyOTP_NoRowIsInvalid(t *testing.T) {
	os := &mockOTPStore{}
	os.On("GetLatest", mock.Anything, phone).Return(nil, domain.ErrNotFound)

	svc := newService(os, nil, nil, nil)
	_, err := svc.VerifyOTP(context.Background(), domain.VerifyOTPRequest{Phone: phone, Code: "123456"})

	assert.True(t, errors.Is(err, domain.ErrInvalidOTP))
}

func TestVerifyOTP_OnlyNewestRowCounts(t *testing.T) {
	// The store returns the newest row; an older row with code 111111
	// would have matched but is never consulted.
	os := &mockOTPStore{}
	os.On("GetLatest", mock.Anything, phone).Return(validOTP("482913"), nil)

	svc := newService(os, nil, nil, nil)
	_, err := svc.VerifyOTP(context.Background(), domain.VerifyOTPRequest{Phone: phone, Code: "111111"})

	assert.True(t, errors.Is(err, domain.ErrInvalidOTP))
}

func TestVerifyOTP_ExpiredAfterMatch(t *testing.T) {
	otp := validOTP("482913")
	otp.ExpiresAt = time.Now().Add(-time.Minute).Unix()
	os := &mockOTPStore{}
	os.On("GetLatest", mock.Anything, phone).Return(otp, nil)

	svc := newService(os, nil, nil, nil)
	_, err := svc.VerifyOTP(context.Background(), domain.VerifyOTPRequest{Phone: phone, Code: "482913"})

	// Matched but expired must be the distinct expiry error, never "invalid".
	assert.True(t, errors.Is(err, domain.ErrExpiredOTP))
	assert.False(t, errors.Is(err, domain.ErrInvalidOTP))
}

func TestVerifyOTP_MismatchBeatsExpiry(t *testing.T) {
	otp := validOTP("482913")
	otp.ExpiresAt = time.Now().Add(-time.Minute).Unix()
	os := &mockOTPStore{}
	os.On("GetLatest", mock.Anything, phone).Return(otp, nil)

	svc := newService(os, nil, nil, nil)
	_, err := svc.VerifyOTP(context.Background(), domain.VerifyOTPRequest{Phone: phone, Code: "999999"})

	assert.True(t, errors.Is(err, domain.ErrInvalidOTP))
}

func TestVerifyOTP_NewPhoneWithoutNameCreatesNoUser(t *testing.T) {
	os := &mockOTPStore{}
	us := &mockUserStore{}
	os.On("GetLatest", mock.Anything, phone).Return(validOTP("482913"), nil)
	us.On("GetByPhone", mock.Anything, phone).Return(nil, domain.ErrNotFound)

	svc := newService(os, us, nil, nil)
	_, err := svc.VerifyOTP(context.Background(), domain.VerifyOTPRequest{Phone: phone, Code: "482913"})

	assert.True(t, errors.Is(err, domain.ErrNameRequired))
	us.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
	os.AssertNotCalled(t, "DeleteAllForPhone", mock.Anything, mock.Anything)
}

func TestVerifyOTP_NewUserHappyPath(t *testing.T) {
	os := &mockOTPStore{}
	us := &mockUserStore{}
	tk := &mockTokenSigner{}

	os.On("GetLatest", mock.Anything, phone).Return(validOTP("482913"), nil)
	us.On("GetByPhone", mock.Anything, phone).Return(nil, domain.ErrNotFound)
	var created *domain.User
	us.On("Put", mock.Anything, mock.AnythingOfType("*domain.User")).
		Run(func(args mock.Arguments) { created = args.Get(1).(*domain.User) }).
		Return(nil)
	tk.On("SignAccess", mock.AnythingOfType("string"), phone).Return("access.jwt", nil)
	tk.On("SignRefresh", mock.AnythingOfType("string")).Return("refresh.jwt", nil)
	os.On("DeleteAllForPhone", mock.Anything, phone).Return(nil)

	svc := newService(os, us, nil, tk)
	res, err := svc.VerifyOTP(context.Background(), domain.VerifyOTPRequest{Phone: phone, Code: "482913", FullName: "A B"})

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, phone, created.Phone)
	assert.Equal(t, "A B", created.FullName)
	assert.NotEmpty(t, created.UserID)
	assert.Equal(t, "access.jwt", res.Token)
	assert.Equal(t, "refresh.jwt", res.RefreshToken)
	assert.Equal(t, created, res.User)
	os.AssertCalled(t, "DeleteAllForPhone", mock.Anything, phone)
}

func TestVerifyOTP_ExistingUserIsNotRecreated(t *testing.T) {
	os := &mockOTPStore{}
	us := &mockUserStore{}
	tk := &mockTokenSigner{}

	existing := &domain.User{UserID: "u1", Phone: phone, FullName: "A B"}
	os.On("GetLatest", mock.Anything, phone).Return(validOTP("482913"), nil)
	us.On("GetByPhone", mock.Anything, phone).Return(existing, nil)
	tk.On("SignAccess", "u1", phone).Return("access.jwt", nil)
	tk.On("SignRefresh", "u1").Return("refresh.jwt", nil)
	os.On("DeleteAllForPhone", mock.Anything, phone).Return(nil)

	svc := newService(os, us, nil, tk)
	res, err := svc.VerifyOTP(context.Background(), domain.VerifyOTPRequest{Phone: phone, Code: "482913"})

	require.NoError(t, err)
	assert.Equal(t, existing, res.User)
	us.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestVerifyOTP_SigningFailureLeavesRowsIntact(t *testing.T) {
	os := &mockOTPStore{}
	us := &mockUserStore{}
	tk := &mockTokenSigner{}

	os.On("GetLatest", mock.Anything, phone).Return(validOTP("482913"), nil)
	us.On("GetByPhone", mock.Anything, phone).Return(&domain.User{UserID: "u1", Phone: phone}, nil)
	tk.On("SignAccess", "u1", phone).Return("", errors.New("hmac broken"))

	svc := newService(os, us, nil, tk)
	_, err := svc.VerifyOTP(context.Background(), domain.VerifyOTPRequest{Phone: phone, Code: "482913"})

	require.Error(t, err)
	os.AssertNotCalled(t, "DeleteAllForPhone", mock.Anything, mock.Anything)
}

func TestVerifyOTP_CleanupFailureStillSucceeds(t *testing.T) {
	os := &mockOTPStore{}
	us := &mockUserStore{}
	tk := &mockTokenSigner{}

	os.On("GetLatest", mock.Anything, phone).Return(validOTP("482913"), nil)
	us.On("GetByPhone", mock.Anything, phone).Return(&domain.User{UserID: "u1", Phone: phone}, nil)
	tk.On("SignAccess", "u1", phone).Return("access.jwt", nil)
	tk.On("SignRefresh", "u1").Return("refresh.jwt", nil)
	os.On("DeleteAllForPhone", mock.Anything, phone).Return(errors.New("dynamo down"))

	svc := newService(os, us, nil, tk)
	res, err := svc.VerifyOTP(context.Background(), domain.VerifyOTPRequest{Phone: phone, Code: "482913"})

	require.NoError(t, err)
	assert.Equal(t, "access.jwt", res.Token)
}

// --- Refresh ---

func TestRefresh_InvalidToken(t *testing.T) {
	tk := &mockTokenSigner{}
	tk.On("VerifyRefresh", "bogus").Return("", errors.New("signature is invalid"))

	svc := newService(nil, nil, nil, tk)
	_, err := svc.Refresh(context.Background(), "bogus")

	assert.True(t, errors.Is(err, domain.ErrInvalidToken))
}

func TestRefresh_MintsAccessTokenForSameSubject(t *testing.T) {
	tk := &mockTokenSigner{}
	tk.On("VerifyRefresh", "refresh.jwt").Return("u1", nil)
	tk.On("SignAccess", "u1", "").Return("new-access.jwt", nil)

	svc := newService(nil, nil, nil, tk)
	token, err := svc.Refresh(context.Background(), "refresh.jwt")

	require.NoError(t, err)
	assert.Equal(t, "new-access.jwt", token)
	// The user store is never consulted — a deliberately preserved gap.
	tk.AssertCalled(t, "SignAccess", "u1", "")
}
