package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"communityhub/internal/delivery/http/helpers"
	"communityhub/internal/delivery/http/middleware"
	"communityhub/internal/domain"
)

type EventController struct {
	Logger    *slog.Logger
	Lifecycle domain.EventLifecycleService
	Query     domain.EventQueryService
	Clock     domain.Clock
}

func NewEventController(logger *slog.Logger, lifecycle domain.EventLifecycleService, query domain.EventQueryService, clock domain.Clock) *EventController {
	return &EventController{
		Logger:    logger,
		Lifecycle: lifecycle,
		Query:     query,
		Clock:     clock,
	}
}

// CreateEventRequest is the body for POST /events.
// swagger:model CreateEventRequest
type CreateEventRequest struct {
	Title                string    `json:"title"`
	Track                string    `json:"track"`
	Capacity             *int      `json:"capacity"`
	RegistrationOpensAt  time.Time `json:"registration_opens_at"`
	RegistrationClosesAt time.Time `json:"registration_closes_at"`
	StartsAt             time.Time `json:"starts_at"`
	EndsAt               time.Time `json:"ends_at"`
	WaitlistEnabled      bool      `json:"waitlist_enabled"`
}

// Validate implements helpers.Validator.
func (req *CreateEventRequest) Validate() []string {
	var errs []string
	if req.Title == "" {
		errs = append(errs, "title is required")
	}
	if req.Track == "" {
		errs = append(errs, "track is required")
	}
	if req.StartsAt.IsZero() || req.EndsAt.IsZero() {
		errs = append(errs, "starts_at and ends_at are required")
	}
	return errs
}

// EventSuccessResponse is the success envelope for endpoints returning one event.
type EventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// CreateEvent godoc
// @Summary Create a draft event
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body controllers.CreateEventRequest true "Event"
// @Success 201 {object} controllers.EventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}

	ev := domain.NewEvent(
		req.Title,
		principal.ID,
		domain.Track(req.Track),
		req.Capacity,
		domain.Window{OpensAt: req.RegistrationOpensAt, ClosesAt: req.RegistrationClosesAt},
		domain.Schedule{StartsAt: req.StartsAt, EndsAt: req.EndsAt},
		req.WaitlistEnabled,
		c.Clock.Now(),
	)
	if err := c.Lifecycle.CreateEvent(r.Context(), principal, ev); err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, ev)
}

func (c *EventController) lifecycleTransition(w http.ResponseWriter, r *http.Request, apply func(principal domain.Principal, eventID string) (*domain.Event, error)) {
	eventID, principal, ok := eventIDAndPrincipal(w, r)
	if !ok {
		return
	}
	ev, err := apply(principal, eventID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ev)
}

// Publish godoc
// @Summary Publish a draft event, opening it for registration
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /events/{eventID}/publish [post]
func (c *EventController) Publish(w http.ResponseWriter, r *http.Request) {
	c.lifecycleTransition(w, r, func(p domain.Principal, id string) (*domain.Event, error) {
		return c.Lifecycle.Publish(r.Context(), p, id)
	})
}

// MarkLive godoc
// @Summary Mark a published event as live
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /events/{eventID}/live [post]
func (c *EventController) MarkLive(w http.ResponseWriter, r *http.Request) {
	c.lifecycleTransition(w, r, func(p domain.Principal, id string) (*domain.Event, error) {
		return c.Lifecycle.MarkLive(r.Context(), p, id)
	})
}

// Complete godoc
// @Summary Complete an event and compute final analytics
// @Description Attendees that never checked in become no-shows; attendance rate and average rating are computed.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /events/{eventID}/complete [post]
func (c *EventController) Complete(w http.ResponseWriter, r *http.Request) {
	c.lifecycleTransition(w, r, func(p domain.Principal, id string) (*domain.Event, error) {
		return c.Lifecycle.Complete(r.Context(), p, id, c.Clock.Now())
	})
}

// CancelEvent godoc
// @Summary Cancel an event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /events/{eventID}/cancel [post]
func (c *EventController) CancelEvent(w http.ResponseWriter, r *http.Request) {
	c.lifecycleTransition(w, r, func(p domain.Principal, id string) (*domain.Event, error) {
		return c.Lifecycle.CancelEvent(r.Context(), p, id)
	})
}

// EventListResponse is the data payload for paginated event listings.
// swagger:model EventListResponse
type EventListResponse struct {
	Events     []*domain.Event        `json:"events"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ListEvents godoc
// @Summary List upcoming events, optionally filtered by track
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param track query string false "Track filter (academy, coachlab, leadership, builder)"
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} helpers.APIResponse{data=controllers.EventListResponse}
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	p := helpers.ParsePagination(r)

	var page *domain.EventPage
	var err error
	if track := r.URL.Query().Get("track"); track != "" {
		page, err = c.Query.ListByTrack(r.Context(), principal, domain.Track(track), p)
	} else {
		page, err = c.Query.ListUpcoming(r.Context(), principal, c.Clock.Now(), p)
	}
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, EventListResponse{
		Events:     page.Events,
		Pagination: helpers.NewPaginationMeta(p.Page, p.PageSize, page.Total),
	})
}

// GetEvent godoc
// @Summary Get one event
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID, principal, ok := eventIDAndPrincipal(w, r)
	if !ok {
		return
	}
	ev, err := c.Query.GetEvent(r.Context(), principal, eventID)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ev)
}

// MyRegistrations godoc
// @Summary List the current principal's registrations
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse{data=[]domain.MyRegistration}
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /me/registrations [get]
func (c *EventController) MyRegistrations(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	regs, err := c.Query.ListMyRegistrations(r.Context(), principal)
	if err != nil {
		writeServiceError(w, r, c.Logger, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, regs)
}
