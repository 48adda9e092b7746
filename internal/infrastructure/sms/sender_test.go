package sms

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-otp-auth/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAakashSend_PostsFormFields(t *testing.T) {
	var gotMethod, gotContentType string
	var gotForm map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		require.NoError(t, r.ParseForm())
		gotForm = map[string]string{
			"auth_token": r.PostFormValue("auth_token"),
			"to":         r.PostFormValue("to"),
			"text":       r.PostFormValue("text"),
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewAakashClient(srv.URL, "tok123", srv.Client())
	err := c.Send(context.Background(), "9800000000", "Your OTP is: 482913")
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "application/x-www-form-urlencoded", gotContentType)
	assert.Equal(t, "tok123", gotForm["auth_token"])
	assert.Equal(t, "9800000000", gotForm["to"])
	assert.Equal(t, "Your OTP is: 482913", gotForm["text"])
}

func TestAakashSend_Non2xxIsGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid token", http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewAakashClient(srv.URL, "tok", srv.Client())
	err := c.Send(context.Background(), "9800000000", "hi")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrGateway))
}

func TestAakashSend_TimeoutIsGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewAakashClient(srv.URL, "tok", &http.Client{Timeout: 20 * time.Millisecond})
	err := c.Send(context.Background(), "9800000000", "hi")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrGateway))
}

func TestAakashSend_NetworkErrorIsGatewayError(t *testing.T) {
	// Closed server — connection refused.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewAakashClient(url, "tok", &http.Client{Timeout: time.Second})
	err := c.Send(context.Background(), "9800000000", "hi")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrGateway))
}
