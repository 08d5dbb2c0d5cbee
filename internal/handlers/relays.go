package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"wrcheck/internal/relay"
	"wrcheck/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	errInvalidPin  = "invalid pin"
	errListRelays  = "failed to read relays"
	errSetRelay    = "failed to switch relay"
	errRelaysOff   = "relay control is disabled"
	errUnknownPin  = "pin is not a configured relay"
	errInvalidBody = "invalid body: "
)

// Request DTO for switching a relay.
type relayRequest struct {
	Level string `json:"level" binding:"required"` // on | off
}

// SetRelayRequest is an exported model for Swagger docs of the setRelay payload.
type SetRelayRequest struct {
	// Level to drive. Allowed: on, off
	Level string `json:"level" example:"on"`
}

// @Summary      List relays
// @Tags         relays
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "relays"
// @Failure      401  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/v1/relays [get]
// @Security     BearerAuth
func (h *Handler) listRelays(c *gin.Context) {
	states, err := h.services.Relay.States(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrRelaysDisabled) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": errRelaysOff})
			return
		}
		h.logAndJSONError(c, http.StatusInternalServerError, errListRelays, "relays_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"relays": states})
}

// @Summary      Switch a relay
// @Description  Drives the WR-LEN power relay wired to the BCM pin.
// @Tags         relays
// @Accept       json
// @Produce      json
// @Param        pin   path  int              true  "BCM pin number"
// @Param        body  body  SetRelayRequest  true  "Level payload"
// @Success      200   {object}  models.RelayState
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /api/v1/relays/{pin} [post]
// @Security     BearerAuth
func (h *Handler) setRelay(c *gin.Context) {
	pin, err := strconv.Atoi(c.Param("pin"))
	if err != nil || pin < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidPin})
		return
	}
	var req relayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBody + err.Error()})
		return
	}
	on, err := relay.ParseLevel(req.Level)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	st, err := h.services.Relay.Set(c.Request.Context(), pin, on)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, st)
	case errors.Is(err, service.ErrRelaysDisabled):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": errRelaysOff})
	case errors.Is(err, relay.ErrUnknownPin):
		c.JSON(http.StatusNotFound, gin.H{"error": errUnknownPin})
	default:
		h.logAndJSONError(c, http.StatusInternalServerError, errSetRelay, "relay_set_failed", err, "pin", pin, "on", on)
	}
}
