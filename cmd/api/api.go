package main

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"confms/docs" //this is required to generate swagger docs
	"confms/internal/access"
	"confms/internal/auth"
	"confms/internal/badge"
	"confms/internal/domain/storage"
	"confms/internal/mailer"
	"confms/internal/notifications"
	"confms/internal/ratelimiter"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

type application struct {
	config        config
	store         *storage.Container
	logger        *zap.SugaredLogger
	cld           *cloudinary.Cloudinary
	mailer        mailer.Client
	authenticator auth.Authenticator
	access        *access.Manager
	push          notifications.PushSender
	badges        *badge.Codec
	rateLimiter   *ratelimiter.FixedWindowRateLimiter
}

type config struct {
	addr        string
	db          dbConfig
	env         string
	apiURL      string
	mail        mailConfig
	frontendURL string
	auth        authConfig
	badgeSalt   string
	rateLimiter ratelimiterConfig
}

type authConfig struct {
	basic basicConfig
	token tokenConfig
}

type tokenConfig struct {
	refreshSecret   string
	secret          string
	accessTokenExp  time.Duration
	refreshTokenExp time.Duration
	iss             string
}

type basicConfig struct {
	user string
	pass string
}

type mailConfig struct {
	exp       time.Duration
	fromEmail string
	smtp      smtpConfig
}

type smtpConfig struct {
	host     string
	port     int
	username string
	password string
}

type dbConfig struct {
	addr           string
	maxOpenConns   int
	maxIdleTime    string
	migrationsPath string
}

type ratelimiterConfig struct {
	requestsPerTimeFrame int
	timeFrame            time.Duration
	enabled              bool
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(app.RateLimiterMiddleware)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.With(app.BasicAuthMiddleware()).Get("/health", app.healthCheckHandler)
		docsURL := fmt.Sprintf("%s/swagger/doc.json", app.config.addr)
		r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL(docsURL)))

		r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)

		// Public routes
		r.Route("/authentication", func(r chi.Router) {
			r.Post("/user", app.registerUserHandler)
			r.Post("/token", app.createTokenHandler)
			r.Post("/refresh", app.refreshTokenHandler)
			r.Post("/reset-password", app.requestResetPasswordHandler)
			r.Patch("/reset-password", app.resetPasswordHandler)
		})
		r.Put("/users/activate/{token}", app.activateUserHandler)

		r.Route("/users", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Get("/me", app.getCurrentUserHandler)
			r.Post("/me/refresh-permissions", app.refreshPermissionsHandler)
			r.Post("/logout", app.logoutHandler)
			r.Post("/profile-picture", app.uploadProfilePictureHandler)
			r.Put("/profile-picture", app.updateProfilePictureHandler)
			r.Post("/push-token", app.registerPushTokenHandler)
			r.Delete("/push-token", app.removePushTokenHandler)
		})

		r.Route("/navigation", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Get("/", app.getNavigationHandler)
		})

		r.Route("/assignments", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Get("/me", app.getMyAssignmentsHandler)
			r.Post("/switch", app.switchConferenceHandler)

			// Managing other users' grants is an admin surface.
			r.Group(func(r chi.Router) {
				r.Use(app.RequireRole(access.RoleAdmin))
				r.Put("/", app.upsertAssignmentHandler)
				r.Patch("/deactivate", app.deactivateAssignmentHandler)
				r.Delete("/{assignmentID}", app.deleteAssignmentHandler)
				r.Get("/conference/{conferenceID}", app.listConferenceAssignmentsHandler)
			})
		})

		r.Route("/conferences", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Get("/", app.listConferencesHandler)
			r.With(app.RequireRole(access.RoleAdmin)).Post("/", app.createConferenceHandler)

			r.Route("/{conferenceID}", func(r chi.Router) {
				r.Get("/", app.getConferenceHandler)

				// Conference administration is admin-only regardless of grants.
				r.Group(func(r chi.Router) {
					r.Use(app.RequireRole(access.RoleAdmin))
					r.Patch("/", app.updateConferenceHandler)
					r.Patch("/active", app.setConferenceActiveHandler)
					r.Delete("/", app.deleteConferenceHandler)
				})

				r.Route("/sessions", func(r chi.Router) {
					r.With(app.RequireConferencePermission("sessions.view")).Get("/", app.listSessionsHandler)
					r.Group(func(r chi.Router) {
						r.Use(app.RequireConferencePermission("sessions.manage"))
						r.Post("/", app.createSessionHandler)
						r.Patch("/{sessionID}", app.updateSessionHandler)
						r.Delete("/{sessionID}", app.deleteSessionHandler)
					})
				})

				r.Route("/attendees", func(r chi.Router) {
					r.Use(app.RequireRole(access.RoleAdmin, access.RoleStaff))
					r.Get("/", app.listAttendeesHandler)
					r.Post("/", app.registerAttendeeHandler)
					r.Get("/{userID}/history", app.attendeeHistoryHandler)
				})
			})
		})

		r.Route("/registrations", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Get("/me", app.myRegistrationsHandler)
		})

		r.Route("/checkin", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Post("/scan", app.scanBadgeHandler)
		})

		r.Route("/badges", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Get("/me", app.getMyBadgeHandler)
			r.With(app.RequireConferencePermission("badges.view")).Get("/{code}/qr.png", app.badgeQRHandler)
		})
	})
	return r
}

func (app *application) run(mux http.Handler) error {
	// Docs
	docs.SwaggerInfo.Version = version
	docs.SwaggerInfo.Host = app.config.apiURL
	docs.SwaggerInfo.BasePath = "/v1"

	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", app.config.addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}
