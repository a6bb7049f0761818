package handler

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/arrajeevchandar/messhall/internal/auth"
	"github.com/arrajeevchandar/messhall/internal/mailer"
	"github.com/arrajeevchandar/messhall/internal/queue"
	"github.com/arrajeevchandar/messhall/internal/roster"
)

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// Register creates a new member with an Active membership.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "registration failed"})
		return
	}
	m, err := h.members.Create(c.Request.Context(), roster.Member{
		Name:         req.Name,
		Email:        strings.ToLower(req.Email),
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, roster.ErrEmailTaken) {
			c.JSON(http.StatusConflict, gin.H{"success": false, "message": "email already registered"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "registration failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "member": m})
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates with email and password and issues a bearer token.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	m, err := h.members.GetByEmail(c.Request.Context(), strings.ToLower(req.Email))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "login failed, try again"})
		return
	}
	if m == nil || !m.Active || !auth.CheckPassword(req.Password, m.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid email or password"})
		return
	}
	h.issueToken(c, m.Email, m.Role)
}

type otpRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// RequestOTP issues a one-time login code and queues it for email delivery.
// The response is the same whether or not the email is registered.
func (h *Handler) RequestOTP(c *gin.Context) {
	var req otpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	email := strings.ToLower(req.Email)

	m, err := h.members.GetByEmail(c.Request.Context(), email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "could not send code, try again"})
		return
	}
	if m != nil && m.Active {
		code, err := h.otp.Issue(c.Request.Context(), email)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "could not send code, try again"})
			return
		}
		job := queue.EmailJob{To: email, Subject: mailer.OTPSubject, Body: mailer.OTPBody(code)}
		if err := h.emails.Publish(c.Request.Context(), job); err != nil {
			log.Printf("otp email publish failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "could not send code, try again"})
			return
		}
	}
	c.JSON(http.StatusAccepted, gin.H{"success": true, "message": "if the email is registered, a code is on its way"})
}

type otpVerifyRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required"`
}

// VerifyOTP exchanges a valid one-time code for a bearer token.
func (h *Handler) VerifyOTP(c *gin.Context) {
	var req otpVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	email := strings.ToLower(req.Email)

	if err := h.otp.Verify(c.Request.Context(), email, req.Code); err != nil {
		if errors.Is(err, auth.ErrOTPInvalid) {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid or expired code"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "verification failed, try again"})
		return
	}
	m, err := h.members.GetByEmail(c.Request.Context(), email)
	if err != nil || m == nil || !m.Active {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid or expired code"})
		return
	}
	h.issueToken(c, m.Email, m.Role)
}

type passkeyRequest struct {
	Passkey string `json:"passkey" binding:"required"`
}

// PasskeyLogin authenticates an administrator with the shared daily passkey.
func (h *Handler) PasskeyLogin(c *gin.Context) {
	var req passkeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	if !auth.VerifyPasskey(h.cfg.AdminPasskeySecret, req.Passkey, h.clock.Now()) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "message": "invalid passkey"})
		return
	}
	h.issueToken(c, "admin@messhall", roster.RoleAdmin)
}

func (h *Handler) issueToken(c *gin.Context, email, role string) {
	token, exp, err := auth.Issue(email, role, h.cfg.JWTIssuer, h.cfg.JWTSigningKey, h.cfg.AccessTTL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "token issue failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"access_token": token,
		"expires_at":   exp.Unix(),
		"role":         role,
	})
}
