package http

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/humayunejaz/travel-planning-app/internal/domain"
	"github.com/humayunejaz/travel-planning-app/internal/service"
	"github.com/humayunejaz/travel-planning-app/internal/util"
)

type TripHandler struct {
	trips         *service.TripService
	collaboration *service.CollaborationService
	access        *service.AccessResolver
	log           *zap.SugaredLogger
}

type createTripRequest struct {
	domain.TripFields
	Collaborators []string `json:"collaborators"`
}

type updateTripRequest struct {
	domain.TripPatch
	Collaborators *[]string `json:"collaborators,omitempty"`
}

type collaboratorsRequest struct {
	Emails []string `json:"emails"`
}

type inviteRequest struct {
	Email string `json:"email"`
}

func RegisterTrips(e *echo.Echo, auth *service.AuthService, trips *service.TripService, collaboration *service.CollaborationService, log *zap.SugaredLogger) {
	handler := &TripHandler{
		trips:         trips,
		collaboration: collaboration,
		access:        service.NewAccessResolver(),
		log:           log,
	}

	protected := e.Group("/api/v1/trips", RequireAuth(auth))
	protected.GET("", handler.listTrips)
	protected.POST("", handler.createTrip)
	protected.POST("/sync", handler.syncPending)
	protected.GET("/:id", handler.getTrip)
	protected.PATCH("/:id", handler.updateTrip)
	protected.DELETE("/:id", handler.deleteTrip)
	protected.PUT("/:id/collaborators", handler.replaceCollaborators)
	protected.POST("/:id/invitations", handler.inviteCollaborator)
	protected.GET("/:id/invitations", handler.listInvitations)
}

func (h *TripHandler) listTrips(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	identity := user.Identity()
	trips, err := h.trips.GetVisibleTrips(c.Request().Context(), identity)
	if err != nil {
		return writeServiceError(c, h.log, err, "unable to load trips")
	}
	trips = h.access.FilterAccessible(trips, identity)
	return c.JSON(http.StatusOK, util.Envelope{
		"items": trips,
		"count": len(trips),
	})
}

func (h *TripHandler) createTrip(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	var req createTripRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	trip, err := h.trips.CreateTrip(c.Request().Context(), req.TripFields, req.Collaborators, user.ID)
	if err != nil {
		return writeServiceError(c, h.log, err, "unable to create trip")
	}
	return c.JSON(http.StatusCreated, util.Data("trip", trip))
}

func (h *TripHandler) getTrip(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	id, err := parseTripID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("id must be a valid UUID"))
	}
	trip, err := h.trips.GetTripForIdentity(c.Request().Context(), id, user.Identity())
	if err != nil {
		return writeServiceError(c, h.log, err, "unable to load trip")
	}
	return c.JSON(http.StatusOK, util.Data("trip", trip))
}

func (h *TripHandler) updateTrip(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	id, err := parseTripID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("id must be a valid UUID"))
	}
	var req updateTripRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	if req.TripPatch.IsEmpty() && req.Collaborators == nil {
		return c.JSON(http.StatusBadRequest, util.Error("no changes supplied"))
	}
	if _, err := h.editableTrip(c, id, user); err != nil {
		return writeServiceError(c, h.log, err, "unable to update trip")
	}
	trip, err := h.trips.UpdateTrip(c.Request().Context(), id, req.TripPatch, req.Collaborators)
	if err != nil {
		return writeServiceError(c, h.log, err, "unable to update trip")
	}
	return c.JSON(http.StatusOK, util.Data("trip", trip))
}

func (h *TripHandler) deleteTrip(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	id, err := parseTripID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("id must be a valid UUID"))
	}
	trip, err := h.trips.GetTripForIdentity(c.Request().Context(), id, user.Identity())
	if err != nil {
		return writeServiceError(c, h.log, err, "unable to delete trip")
	}
	if !h.access.IsOwner(trip, user.Identity()) {
		return c.JSON(http.StatusForbidden, util.Error("only the owner can delete a trip"))
	}
	if err := h.trips.DeleteTrip(c.Request().Context(), id); err != nil {
		return writeServiceError(c, h.log, err, "unable to delete trip")
	}
	return c.JSON(http.StatusOK, util.Envelope{
		"id":      id,
		"message": "Trip deleted",
	})
}

func (h *TripHandler) replaceCollaborators(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	id, err := parseTripID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("id must be a valid UUID"))
	}
	var req collaboratorsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	if _, err := h.editableTrip(c, id, user); err != nil {
		return writeServiceError(c, h.log, err, "unable to update collaborators")
	}
	if err := h.collaboration.AddOrReplaceCollaborators(c.Request().Context(), id, req.Emails); err != nil {
		return writeServiceError(c, h.log, err, "unable to update collaborators")
	}
	trip, err := h.trips.GetTripByID(c.Request().Context(), id)
	if err != nil || trip == nil {
		return c.JSON(http.StatusOK, SuccessResponse{Success: true})
	}
	return c.JSON(http.StatusOK, util.Data("trip", trip))
}

func (h *TripHandler) inviteCollaborator(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	id, err := parseTripID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("id must be a valid UUID"))
	}
	var req inviteRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid request body"))
	}
	trip, err := h.editableTrip(c, id, user)
	if err != nil {
		return writeServiceError(c, h.log, err, "unable to invite collaborator")
	}
	result, err := h.collaboration.InviteCollaborator(c.Request().Context(), trip, req.Email, user)
	if err != nil {
		return writeServiceError(c, h.log, err, "unable to invite collaborator")
	}
	body := util.Data("invitation", result)
	if !result.EmailSent {
		body = body.WithWarning("invitation saved but the email could not be sent; share the link instead")
	}
	return c.JSON(http.StatusCreated, body)
}

func (h *TripHandler) listInvitations(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok || user == nil {
		return c.JSON(http.StatusUnauthorized, util.Error("authentication required"))
	}
	id, err := parseTripID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("id must be a valid UUID"))
	}
	if _, err := h.trips.GetTripForIdentity(c.Request().Context(), id, user.Identity()); err != nil {
		return writeServiceError(c, h.log, err, "unable to load invitations")
	}
	invitations, err := h.collaboration.ListTripInvitations(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, h.log, err, "unable to load invitations")
	}
	return c.JSON(http.StatusOK, util.Envelope{
		"items": invitations,
		"count": len(invitations),
	})
}

func (h *TripHandler) syncPending(c echo.Context) error {
	report, err := h.trips.SyncPending(c.Request().Context())
	if err != nil {
		return writeServiceError(c, h.log, err, "unable to sync trips")
	}
	return c.JSON(http.StatusOK, util.Data("sync", report))
}

// editableTrip loads the trip and checks the caller may change it.
func (h *TripHandler) editableTrip(c echo.Context, id uuid.UUID, user *domain.User) (*domain.Trip, error) {
	trip, err := h.trips.GetTripForIdentity(c.Request().Context(), id, user.Identity())
	if err != nil {
		return nil, err
	}
	if !h.access.CanEdit(trip, user.Identity()) {
		return nil, service.ErrTripForbidden
	}
	return trip, nil
}

func parseTripID(c echo.Context) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimSpace(c.Param("id")))
}
