package handlers

import (
	"net/http"
	"strings"

	"naco/internal/domain"
	"naco/internal/domain/models"
	"naco/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

type actionRequest struct {
	Action string `json:"action"`
	// Role is optional; when sent it must match the token role.
	Role string `json:"role"`
}

// POST /api/bookings
func (a *API) CreateBooking(c *gin.Context) {
	var req models.BookingInput
	if !BindJSONOrError(c, &req) {
		return
	}
	req.ClientID = middleware.Identity(c).UserID

	b, err := a.Lifecycle.CreateBooking(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// GET /api/bookings
func (a *API) ListBookings(c *gin.Context) {
	out, err := a.Lifecycle.ListBookingsFor(c.Request.Context(), middleware.Identity(c).UserID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/bookings/:id
func (a *API) GetBooking(c *gin.Context) {
	b, err := a.Lifecycle.GetBookingFor(c.Request.Context(), c.Param("id"), middleware.Identity(c).UserID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// POST /api/bookings/:id/actions
func (a *API) BookingAction(c *gin.Context) {
	var req actionRequest
	if !BindJSONOrError(c, &req) {
		return
	}
	if strings.TrimSpace(req.Action) == "" {
		respondError(c, http.StatusBadRequest, "validation_error", "action: is required", gin.H{"field": "action"})
		return
	}
	who := middleware.Identity(c)
	if req.Role != "" && !strings.EqualFold(req.Role, string(who.Role)) {
		RespondDomainError(c, domain.UnauthorizedError{ActorID: who.UserID, Msg: "role does not match token"})
		return
	}

	b, err := a.Lifecycle.Transition(c.Request.Context(), c.Param("id"), who.UserID, who.Role, req.Action)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// POST /api/bookings/:id/review
func (a *API) CreateReview(c *gin.Context) {
	var req models.ReviewInput
	if !BindJSONOrError(c, &req) {
		return
	}
	req.BookingID = c.Param("id")
	req.ReviewerID = middleware.Identity(c).UserID

	rv, err := a.Lifecycle.CreateReview(c.Request.Context(), req)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rv)
}

// GET /api/bookings/:id/receipt returns the receipt PDF (inline).
func (a *API) BookingReceipt(c *gin.Context) {
	pdfBytes, filename, err := a.Receipts.Receipt(c.Request.Context(), c.Param("id"), middleware.Identity(c).UserID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
