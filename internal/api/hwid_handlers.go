package api

import (
	"net/http"

	"storefront/internal/auth"

	"github.com/gin-gonic/gin"
)

type registerHwidRequest struct {
	Hwid string `json:"hwid" binding:"required"`
}

// registerHwid handles hardware id registration
func (h *Handler) registerHwid(c *gin.Context) {
	var req registerHwidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	user := auth.Principal(c)
	updated, err := h.licenseService.RegisterHwid(c.Request.Context(), user.ID, req.Hwid)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

type activateHwidRequest struct {
	ProductID int64  `json:"product_id" binding:"required"`
	Hwid      string `json:"hwid" binding:"required"`
}

// activateHwid handles license activation for a purchased product
func (h *Handler) activateHwid(c *gin.Context) {
	var req activateHwidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	user := auth.Principal(c)
	log, err := h.licenseService.ActivateHwid(c.Request.Context(), user.ID, req.ProductID, req.Hwid)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, log)
}

type validateHwidRequest struct {
	ProductID int64  `json:"product_id" binding:"required"`
	Hwid      string `json:"hwid" binding:"required"`
}

// validateHwid reports whether the caller's (hwid, product) pair is
// authorized
func (h *Handler) validateHwid(c *gin.Context) {
	var req validateHwidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return
	}

	user := auth.Principal(c)
	valid, err := h.licenseService.ValidateHwid(c.Request.Context(), user.ID, req.ProductID, req.Hwid)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"valid": valid})
}

// listHwidLogs returns the caller's activation history
func (h *Handler) listHwidLogs(c *gin.Context) {
	user := auth.Principal(c)
	logs, err := h.licenseService.ActivationHistory(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}
