package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/andresuchdata/bizdash-go/internal/domain"
	"github.com/andresuchdata/bizdash-go/internal/service"
	"github.com/andresuchdata/bizdash-go/internal/sheets"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// DashboardService is the part of service.DashboardService the handlers use.
type DashboardService interface {
	GetReport(ctx context.Context, date string) (*domain.DashboardReport, error)
	Refresh(ctx context.Context, date string) (*domain.DashboardReport, error)
	Verify(ctx context.Context) (*sheets.SpreadsheetInfo, error)
}

type DashboardHandler struct {
	service       DashboardService
	spreadsheetID string
}

func NewDashboardHandler(service DashboardService, spreadsheetID string) *DashboardHandler {
	return &DashboardHandler{service: service, spreadsheetID: spreadsheetID}
}

func (h *DashboardHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": timestamp()})
}

func (h *DashboardHandler) Test(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message":   "Backend funcionando correctamente",
		"timestamp": timestamp(),
	})
}

// GetDashboardData serves /api/dashboard-data and /api/sheets/data.
func (h *DashboardHandler) GetDashboardData(c *gin.Context) {
	report, err := h.service.GetReport(c.Request.Context(), c.Query("date"))
	if err != nil {
		h.reportError(c, err, "Error al obtener los datos del dashboard")
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetAll wraps the report in the {success, data, timestamp} envelope.
func (h *DashboardHandler) GetAll(c *gin.Context) {
	report, err := h.service.GetReport(c.Request.Context(), c.Query("date"))
	if err != nil {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("dashboard: request failed")
		c.JSON(statusFor(err), gin.H{
			"success":   false,
			"message":   "Error al procesar la solicitud en el servidor.",
			"error":     err.Error(),
			"timestamp": timestamp(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"data":      report,
		"timestamp": timestamp(),
	})
}

func (h *DashboardHandler) Refresh(c *gin.Context) {
	report, err := h.service.Refresh(c.Request.Context(), c.Query("date"))
	if err != nil {
		h.reportError(c, err, "Error al recalcular los datos del dashboard")
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *DashboardHandler) DebugSheets(c *gin.Context) {
	info, err := h.service.Verify(c.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("dashboard: spreadsheet verification failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"success":   false,
			"error":     err.Error(),
			"timestamp": timestamp(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"message":         "Conexión exitosa con Google Sheets",
		"spreadsheetId":   h.spreadsheetID,
		"title":           info.Title,
		"availableSheets": info.Sheets,
		"timestamp":       timestamp(),
	})
}

func (h *DashboardHandler) NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"success":   false,
		"error":     "Endpoint not found",
		"timestamp": timestamp(),
	})
}

func (h *DashboardHandler) reportError(c *gin.Context, err error, message string) {
	log.Error().Err(err).Str("path", c.FullPath()).Msg("dashboard: request failed")
	c.JSON(statusFor(err), gin.H{
		"error":   err.Error(),
		"message": message,
	})
}

func statusFor(err error) int {
	if errors.Is(err, service.ErrInvalidReferenceDate) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}
