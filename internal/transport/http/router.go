package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-otp-auth/internal/application/auth"
	"github.com/go-otp-auth/internal/config"
	"github.com/go-otp-auth/internal/infrastructure/dynamo"
	jwtinfra "github.com/go-otp-auth/internal/infrastructure/jwt"
	"github.com/go-otp-auth/internal/infrastructure/sms"
	"github.com/go-otp-auth/internal/transport/http/handler"
)

// Deps holds all infrastructure dependencies for the router.
type Deps struct {
	OTPRepo     *dynamo.OTPRepo
	UserRepo    *dynamo.UserRepo
	SMSSender   sms.Sender
	JWTProvider *jwtinfra.Provider
	OTPTTL      time.Duration
}

// NewRouter builds and returns the application router.
// CORS is applied uniformly to every route — any origin, the methods
// and headers the OTP endpoints need, nothing per-endpoint.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authSvc := auth.NewService(auth.ServiceDeps{
		OTPRepo:   deps.OTPRepo,
		UserRepo:  deps.UserRepo,
		SMSSender: deps.SMSSender,
		Tokens:    deps.JWTProvider,
		OTPTTL:    deps.OTPTTL,
	})

	authH := handler.NewAuthHandler(authSvc)
	healthH := handler.NewHealthHandler()

	r.Post("/send-otp", authH.SendOTP)
	r.Post("/verify-otp", authH.VerifyOTP)
	r.Post("/refresh-token", authH.RefreshToken)
	r.Get("/health-check/{action}", healthH.Ping)

	return r
}
