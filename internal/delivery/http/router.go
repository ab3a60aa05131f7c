package http

import (
	"log/slog"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"communityhub/internal/delivery/http/controllers"
	"communityhub/internal/delivery/http/middleware"
	"communityhub/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
func NewRouter(
	events *controllers.EventController,
	registrations *controllers.RegistrationController,
	verifier domain.TokenVerifier,
	logger *slog.Logger,
) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier, logger)

	// Events
	mux.HandleFunc("POST /events", auth(events.CreateEvent))
	mux.HandleFunc("GET /events", auth(events.ListEvents))
	mux.HandleFunc("GET /events/{eventID}", auth(events.GetEvent))
	mux.HandleFunc("POST /events/{eventID}/publish", auth(events.Publish))
	mux.HandleFunc("POST /events/{eventID}/live", auth(events.MarkLive))
	mux.HandleFunc("POST /events/{eventID}/complete", auth(events.Complete))
	mux.HandleFunc("POST /events/{eventID}/cancel", auth(events.CancelEvent))

	// Registration
	mux.HandleFunc("POST /events/{eventID}/registrations", auth(registrations.Register))
	mux.HandleFunc("DELETE /events/{eventID}/registrations", auth(registrations.Cancel))
	mux.HandleFunc("POST /events/{eventID}/checkin", auth(registrations.CheckIn))
	mux.HandleFunc("POST /events/{eventID}/feedback", auth(registrations.SubmitFeedback))
	mux.HandleFunc("GET /me/registrations", auth(events.MyRegistrations))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
