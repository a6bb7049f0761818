package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arrajeevchandar/messhall/internal/attendance"
	"github.com/arrajeevchandar/messhall/internal/auth"
	"github.com/arrajeevchandar/messhall/internal/mealclock"
	"github.com/arrajeevchandar/messhall/internal/roster"
)

// MealReport returns the GET handler for one meal's aggregate report. Before
// the visibility hour the response says so explicitly, with the server's
// current time, so front ends can tell "too early" apart from "nobody".
func (h *Handler) MealReport(meal mealclock.Meal) gin.HandlerFunc {
	return func(c *gin.Context) {
		date := c.Query("date")
		if date == "" {
			date = h.clock.Now().Format(mealclock.DateLayout)
		} else if _, err := time.Parse(mealclock.DateLayout, date); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "date must be YYYY-MM-DD"})
			return
		}
		report, err := h.reports.BuildReport(c.Request.Context(), meal, date)
		if err != nil {
			if errors.Is(err, attendance.ErrReportNotVisible) {
				c.JSON(http.StatusForbidden, gin.H{
					"success":           false,
					"message":           "report is not yet available",
					"currentServerTime": h.clock.Now().Format("15:04:05"),
				})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "report failed, try again"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "date": date, "report": report})
	}
}

// ListMembers returns the full roster, active and inactive.
func (h *Handler) ListMembers(c *gin.Context) {
	members, err := h.members.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "could not load members"})
		return
	}
	if members == nil {
		members = []roster.Member{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "members": members})
}

type createMemberRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	PhotoURL string `json:"photo_url"`
	Role     string `json:"role"`
}

// CreateMember adds a roster entry without credentials; the member sets a
// password later through the OTP flow.
func (h *Handler) CreateMember(c *gin.Context) {
	var req createMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	role := roster.RoleMember
	if req.Role == roster.RoleAdmin {
		role = roster.RoleAdmin
	}
	m, err := h.members.Create(c.Request.Context(), roster.Member{
		Name:     req.Name,
		Email:    strings.ToLower(req.Email),
		PhotoURL: req.PhotoURL,
		Role:     role,
	})
	if err != nil {
		if errors.Is(err, roster.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "email already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "could not create member"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "member": m})
}

type setActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// SetMemberActive toggles a member's Active status.
func (h *Handler) SetMemberActive(c *gin.Context) {
	var req setActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	if err := h.members.SetActive(c.Request.Context(), c.Param("id"), *req.Active); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "member not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Passkey lets an authenticated admin read today's shared passkey, for
// handing out at the counter.
func (h *Handler) Passkey(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"passkey": auth.DailyPasskey(h.cfg.AdminPasskeySecret, h.clock.Now()),
		"date":    h.clock.Now().Format(mealclock.DateLayout),
	})
}
