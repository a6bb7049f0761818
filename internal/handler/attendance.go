package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/arrajeevchandar/messhall/internal/attendance"
	"github.com/arrajeevchandar/messhall/internal/auth"
	"github.com/arrajeevchandar/messhall/internal/mealclock"
)

type submitRequest struct {
	Date   string `json:"date"`
	Status string `json:"status" binding:"required"`
	Count  int    `json:"count"`
}

// SubmitMeal returns the POST handler for one meal's attendance.
func (h *Handler) SubmitMeal(meal mealclock.Meal) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := auth.ClaimsFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "missing identity"})
			return
		}
		var req submitRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			return
		}

		res, err := h.submissions.Submit(c.Request.Context(), claims.Email, meal, req.Date, req.Status, req.Count)
		if err != nil {
			var rej *mealclock.Rejection
			switch {
			case errors.As(err, &rej):
				c.JSON(http.StatusForbidden, gin.H{"success": false, "message": rej.Reason})
			case errors.Is(err, attendance.ErrDuplicate):
				c.JSON(http.StatusConflict, gin.H{"success": false, "message": "already submitted for this date"})
			case errors.Is(err, attendance.ErrInvalidStatus),
				errors.Is(err, attendance.ErrInvalidGuestCount),
				errors.Is(err, attendance.ErrInvalidDate):
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "could not save, try again"})
			}
			return
		}

		status := http.StatusOK
		message := "attendance updated"
		if res.Created {
			status = http.StatusCreated
			message = "attendance recorded"
		}
		c.JSON(status, gin.H{"success": true, "message": message, "date": res.Date})
	}
}

// GetOwnMeal returns the GET handler for the caller's own record. A missing
// record answers the "no response" sentinel, not a 404.
func (h *Handler) GetOwnMeal(meal mealclock.Meal) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := auth.ClaimsFrom(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "missing identity"})
			return
		}
		rec, err := h.submissions.Lookup(c.Request.Context(), claims.Email, meal, c.Query("date"))
		if err != nil {
			if errors.Is(err, attendance.ErrInvalidDate) {
				c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "lookup failed, try again"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":     true,
			"date":        rec.Date,
			"status":      rec.Status,
			"guest_count": rec.GuestCount,
		})
	}
}
