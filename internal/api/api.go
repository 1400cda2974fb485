// Package api exposes the dashboard store over HTTP with gin.
package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/celerix-dev/mobidash/internal/convert"
	"github.com/celerix-dev/mobidash/internal/dashboard"
	"github.com/celerix-dev/mobidash/internal/events"
	"github.com/celerix-dev/mobidash/internal/importer"
	"github.com/celerix-dev/mobidash/internal/logging"
	"github.com/celerix-dev/mobidash/internal/render"
	"github.com/celerix-dev/mobidash/pkg/schema"
	"github.com/celerix-dev/mobidash/pkg/sdk"
	"github.com/celerix-dev/mobidash/pkg/validate"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// multipartOverhead is the room left for multipart headers and boundaries on
// top of the upload size limit.
const multipartOverhead = 64 << 10

type Handler struct {
	Store    sdk.Dashboard
	Importer *importer.Importer

	// Hub feeds GET /api/events. Nil disables the event stream.
	Hub *events.Hub

	// MaxUploadSize bounds request bodies. Zero means validate.MaxFileSize.
	MaxUploadSize int64

	// Origins lists the allowed CORS and websocket origins.
	Origins []string

	// Now dates charts derived from tables.
	Now func() time.Time
}

// NewRouter builds the gin engine serving h under /api.
func NewRouter(h *Handler) *gin.Engine {
	if h.Importer == nil {
		h.Importer = importer.New(h.Store)
	}
	if h.MaxUploadSize <= 0 {
		h.MaxUploadSize = validate.MaxFileSize
	}
	if h.Now == nil {
		h.Now = time.Now
	}
	if len(h.Origins) == 0 {
		h.Origins = []string{"*"}
	}

	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), AccessLog(), CORS(h.Origins))

	r.GET("/healthz", h.Health)

	apiGroup := r.Group("/api")
	apiGroup.Use(LimitBody(h.MaxUploadSize + multipartOverhead))
	{
		apiGroup.GET("/chart-types", h.ChartTypes)

		apiGroup.GET("/charts", h.ListCharts)
		apiGroup.POST("/charts", h.CreateChart)
		apiGroup.POST("/charts/import", h.ImportChart)
		apiGroup.POST("/charts/validate", h.ValidateChart)
		apiGroup.GET("/charts/:id", h.GetChart)
		apiGroup.PUT("/charts/:id", h.UpdateChart)
		apiGroup.DELETE("/charts/:id", h.DeleteChart)
		apiGroup.GET("/charts/:id/image", h.ChartImage)

		apiGroup.GET("/tables", h.ListTables)
		apiGroup.POST("/tables", h.CreateTable)
		apiGroup.POST("/tables/import", h.ImportTable)
		apiGroup.GET("/tables/:id", h.GetTable)
		apiGroup.PUT("/tables/:id", h.UpdateTable)
		apiGroup.DELETE("/tables/:id", h.DeleteTable)
		apiGroup.GET("/tables/:id/json", h.ExportTableJSON)
		apiGroup.GET("/tables/:id/xlsx", h.ExportTableXLSX)
		apiGroup.POST("/tables/:id/chart", h.TableToChart)

		apiGroup.DELETE("/data", h.ClearAllData)

		apiGroup.GET("/preferences", h.GetPreferences)
		apiGroup.PUT("/preferences", h.SetPreferences)
		apiGroup.POST("/preferences/toggle", h.TogglePreferences)

		if h.Hub != nil {
			apiGroup.GET("/events", gin.WrapH(events.NewWSHandler(h.Hub, h.Origins)))
		}
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "API route not found"})
	})

	return r
}

// Health reports liveness along with the collection sizes.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"charts": len(h.Store.GetAllCharts()),
		"tables": len(h.Store.GetAllTables()),
	})
}

// ChartTypes lists the accepted chart kinds.
func (h *Handler) ChartTypes(c *gin.Context) {
	c.JSON(http.StatusOK, schema.ChartTypes)
}

// ClearAllData removes every chart and table.
func (h *Handler) ClearAllData(c *gin.Context) {
	if err := h.Store.ClearAllData(); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) GetPreferences(c *gin.Context) {
	c.JSON(http.StatusOK, h.Store.Preferences())
}

type themeRequest struct {
	Theme string `json:"theme" binding:"required"`
}

func (h *Handler) SetPreferences(c *gin.Context) {
	var input themeRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		h.fail(c, parseError(err))
		return
	}
	prefs, err := h.Store.SetTheme(input.Theme)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}

func (h *Handler) TogglePreferences(c *gin.Context) {
	prefs, err := h.Store.ToggleTheme()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, prefs)
}

// fail maps err to a status code and writes the {success:false, error, kind} body.
func (h *Handler) fail(c *gin.Context, err error) {
	_ = c.Error(err)

	var (
		verr    *validate.Error
		tooBig  *http.MaxBytesError
		status  = http.StatusInternalServerError
		message = err.Error()
		kind    validate.Kind
	)
	switch {
	case errors.As(err, &tooBig):
		status, kind = http.StatusRequestEntityTooLarge, validate.KindRange
		message = fmt.Sprintf("request too large. Maximum size: %.2fMB", float64(tooBig.Limit)/(1<<20))
	case errors.As(err, &verr):
		status, kind = http.StatusBadRequest, verr.Kind
	case errors.Is(err, dashboard.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, dashboard.ErrInvalidTheme),
		errors.Is(err, render.ErrUnknownFormat),
		errors.Is(err, convert.ErrNoColumns),
		errors.Is(err, convert.ErrNoRows),
		errors.Is(err, convert.ErrEmptySheet),
		errors.Is(err, errBadUpload):
		status = http.StatusBadRequest
	case errors.Is(err, render.ErrNoData):
		status = http.StatusUnprocessableEntity
	default:
		logger := logging.FromContext(c.Request.Context())
		logger.Error().Err(err).Msg("request failed")
	}

	body := gin.H{"success": false, "error": message}
	if kind != "" {
		body["kind"] = kind
	}
	c.AbortWithStatusJSON(status, body)
}

// parseError wraps a body decoding or binding failure as a validation error.
func parseError(err error) error {
	var (
		tooBig  *http.MaxBytesError
		missing validator.ValidationErrors
	)
	switch {
	case errors.As(err, &tooBig):
		return err
	case errors.As(err, &missing) && len(missing) > 0:
		fe := missing[0]
		return &validate.Error{
			Kind:    validate.KindShape,
			Message: fmt.Sprintf("field '%s' is %s", strings.ToLower(fe.Field()), fe.Tag()),
		}
	}
	return &validate.Error{Kind: validate.KindParse, Message: "invalid JSON: " + err.Error()}
}
