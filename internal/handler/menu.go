package handler

import (
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/arrajeevchandar/messhall/internal/cloudinary"
	"github.com/arrajeevchandar/messhall/internal/menu"
)

// ListMenu returns the whole week's menu.
func (h *Handler) ListMenu(c *gin.Context) {
	menus, err := h.menus.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "could not load menu"})
		return
	}
	if menus == nil {
		menus = []menu.DayMenu{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "menu": menus})
}

// GetMenuDay returns one weekday's menu. A bad day name is the caller's
// mistake; a store failure is not, and says nothing about why.
func (h *Handler) GetMenuDay(c *gin.Context) {
	day, err := menu.NormalizeDay(c.Param("day"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	m, err := h.menus.Get(c.Request.Context(), day)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "could not load menu"})
		return
	}
	if m == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "no menu for that day"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "menu": m})
}

type putMenuRequest struct {
	Breakfast     []menu.ImageItem `json:"breakfast"`
	Snacks        []menu.ImageItem `json:"snacks"`
	Lunch         []string         `json:"lunch"`
	Dinner        []string         `json:"dinner"`
	SpecialLunch  []string         `json:"special_lunch"`
	SpecialDinner []string         `json:"special_dinner"`
}

// PutMenuDay creates or replaces one weekday's menu.
func (h *Handler) PutMenuDay(c *gin.Context) {
	day, err := menu.NormalizeDay(c.Param("day"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	var req putMenuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	err = h.menus.Put(c.Request.Context(), menu.DayMenu{
		Day:           day,
		Breakfast:     req.Breakfast,
		Snacks:        req.Snacks,
		Lunch:         req.Lunch,
		Dinner:        req.Dinner,
		SpecialLunch:  req.SpecialLunch,
		SpecialDinner: req.SpecialDinner,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "could not save menu"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// UploadMenuImage uploads a menu-item image and returns its public URL.
// Accepts multipart form data with a "file" field, or a JSON body with a
// base64 data URL.
func (h *Handler) UploadMenuImage(c *gin.Context) {
	if h.cloud == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "image storage not configured"})
		return
	}

	var result *cloudinary.UploadResult
	var err error

	switch {
	case strings.Contains(c.ContentType(), "multipart/form-data"):
		file, header, ferr := c.Request.FormFile("file")
		if ferr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "file field required"})
			return
		}
		defer file.Close()
		data, ferr := io.ReadAll(file)
		if ferr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "read file failed"})
			return
		}
		result, err = h.cloud.UploadBytes(data, header.Filename)

	default:
		var body struct {
			Data string `json:"data" binding:"required"`
		}
		if berr := c.ShouldBindJSON(&body); berr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "provide {\"data\": \"<base64 data URL>\"}"})
			return
		}
		result, err = h.cloud.UploadBase64(body.Data)
	}

	if err != nil {
		log.Printf("cloudinary upload failed: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "image upload failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"url":     result.SecureURL,
		"width":   result.Width,
		"height":  result.Height,
		"bytes":   result.Bytes,
	})
}
