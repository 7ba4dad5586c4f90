package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/humayunejaz/travel-planning-app/internal/service"
	"github.com/humayunejaz/travel-planning-app/internal/util"
)

type InvitationHandler struct {
	trips         *service.TripService
	collaboration *service.CollaborationService
	log           *zap.SugaredLogger
}

// RegisterInvitations exposes token lookups for the registration page and
// the accept/decline actions for signed-in users.
func RegisterInvitations(e *echo.Echo, auth *service.AuthService, trips *service.TripService, collaboration *service.CollaborationService, log *zap.SugaredLogger) {
	handler := &InvitationHandler{
		trips:         trips,
		collaboration: collaboration,
		log:           log,
	}

	public := e.Group("/api/v1/invitations")
	public.GET("/:token", handler.getInvitation)

	protected := e.Group("/api/v1/invitations", RequireAuth(auth))
	protected.POST("/:token/accept", handler.accept)
	protected.POST("/:token/decline", handler.decline)
}

func (h *InvitationHandler) getInvitation(c echo.Context) error {
	ctx := c.Request().Context()
	invitation, err := h.collaboration.GetInvitationByToken(ctx, invitationToken(c))
	if err != nil {
		return writeServiceError(c, h.log, err, "unable to load invitation")
	}
	if invitation == nil {
		return writeServiceError(c, h.log, service.ErrInvitationNotFound, "")
	}

	body := util.Envelope{
		"invitation": util.Envelope{
			"trip_id":    invitation.TripID,
			"email":      invitation.Email,
			"invited_by": invitation.InvitedBy,
			"status":     invitation.Status,
			"expires_at": invitation.ExpiresAt,
		},
	}
	if trip, err := h.trips.GetTripByID(ctx, invitation.TripID); err == nil && trip != nil {
		body["trip_title"] = trip.Title
	}
	return c.JSON(http.StatusOK, body)
}

func (h *InvitationHandler) accept(c echo.Context) error {
	return h.respond(c, h.collaboration.AcceptInvitation, "accepted")
}

func (h *InvitationHandler) decline(c echo.Context) error {
	return h.respond(c, h.collaboration.DeclineInvitation, "declined")
}

func (h *InvitationHandler) respond(c echo.Context, action func(context.Context, string) (bool, error), status string) error {
	token := invitationToken(c)
	if token == "" {
		return c.JSON(http.StatusBadRequest, util.Error("token is required"))
	}
	ok, err := action(c.Request().Context(), token)
	if err != nil {
		return writeServiceError(c, h.log, err, "unable to update invitation")
	}
	if !ok {
		return writeServiceError(c, h.log, service.ErrInvitationNotFound, "")
	}
	return c.JSON(http.StatusOK, util.Envelope{
		"status":  status,
		"message": "Invitation " + status,
	})
}

func invitationToken(c echo.Context) string {
	return strings.TrimSpace(c.Param("token"))
}
