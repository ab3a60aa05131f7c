package controllers

import (
	"log/slog"
	"net/http"
	"regexp"

	"communityhub/internal/delivery/http/helpers"
	"communityhub/internal/delivery/http/middleware"
	"communityhub/internal/domain"
)

// uuidRegex matches a canonical UUID string (8-4-4-4-12 hex).
var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

type RegistrationController struct {
	Logger  *slog.Logger
	Service domain.RegistrationService
	Clock   domain.Clock
}

func NewRegistrationController(logger *slog.Logger, svc domain.RegistrationService, clock domain.Clock) *RegistrationController {
	return &RegistrationController{
		Logger:  logger,
		Service: svc,
		Clock:   clock,
	}
}

// eventIDAndPrincipal extracts and validates the path event ID and the
// authenticated principal, writing the error response itself on failure.
func eventIDAndPrincipal(w http.ResponseWriter, r *http.Request) (string, domain.Principal, bool) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return "", domain.Principal{}, false
	}
	if !uuidRegex.MatchString(eventID) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid eventID")
		return "", domain.Principal{}, false
	}
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return "", domain.Principal{}, false
	}
	return eventID, principal, true
}

// RegisterSuccessResponse is the success envelope for POST /events/{eventID}/registrations.
type RegisterSuccessResponse struct {
	Data  *domain.RegistrationResult `json:"data"`
	Error *helpers.APIError          `json:"error"`
}

// Register godoc
// @Summary Register the current principal for an event
// @Description Registers the authenticated principal. Returns outcome "registered" when a slot was free, "waitlisted" when the event was full and has a waitlist.
// @Tags registration
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 201 {object} controllers.RegisterSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 503 {object} helpers.APIResponse "error.code: store_unavailable"
// @Router /events/{eventID}/registrations [post]
func (c *RegistrationController) Register(w http.ResponseWriter, r *http.Request) {
	eventID, principal, ok := eventIDAndPrincipal(w, r)
	if !ok {
		return
	}
	result, err := c.Service.Register(r.Context(), principal, eventID, c.Clock.Now())
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, result)
}

// CancelSuccessResponse is the success envelope for DELETE /events/{eventID}/registrations.
type CancelSuccessResponse struct {
	Data  *domain.CancellationResult `json:"data"`
	Error *helpers.APIError          `json:"error"`
}

// Cancel godoc
// @Summary Cancel the current principal's registration or waitlist entry
// @Description Removes the principal from the attendee list or waitlist. When an attendee slot frees and the waitlist is non-empty, the earliest waitlisted principal is promoted and returned in promoted_principal_id.
// @Tags registration
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.CancelSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /events/{eventID}/registrations [delete]
func (c *RegistrationController) Cancel(w http.ResponseWriter, r *http.Request) {
	eventID, principal, ok := eventIDAndPrincipal(w, r)
	if !ok {
		return
	}
	result, err := c.Service.Cancel(r.Context(), principal, eventID, c.Clock.Now())
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// CheckInSuccessResponse is the success envelope for POST /events/{eventID}/checkin.
type CheckInSuccessResponse struct {
	Data  *domain.CheckInResult `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// CheckIn godoc
// @Summary Check the current principal in to an event
// @Description Marks the attendee as attended. Check-in opens 30 minutes before the scheduled start and closes at the scheduled end.
// @Tags registration
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.CheckInSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /events/{eventID}/checkin [post]
func (c *RegistrationController) CheckIn(w http.ResponseWriter, r *http.Request) {
	eventID, principal, ok := eventIDAndPrincipal(w, r)
	if !ok {
		return
	}
	result, err := c.Service.CheckIn(r.Context(), principal, eventID, c.Clock.Now())
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}

// FeedbackRequest is the body for POST /events/{eventID}/feedback.
// swagger:model FeedbackRequest
type FeedbackRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// Validate implements helpers.Validator.
func (req *FeedbackRequest) Validate() []string {
	var errs []string
	if req.Rating == 0 {
		errs = append(errs, "rating is required")
	}
	return errs
}

// SubmitFeedback godoc
// @Summary Submit feedback for an attended event
// @Description Upserts the attendee's rating (1-5) and optional comment. Only attendees that checked in may submit feedback.
// @Tags registration
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body controllers.FeedbackRequest true "Feedback"
// @Success 204 "Recorded"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /events/{eventID}/feedback [post]
func (c *RegistrationController) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	eventID, principal, ok := eventIDAndPrincipal(w, r)
	if !ok {
		return
	}
	var req FeedbackRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	if err := c.Service.SubmitFeedback(r.Context(), principal, eventID, req.Rating, req.Comment); err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
