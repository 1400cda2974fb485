package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/celerix-dev/mobidash/internal/dashboard"
	"github.com/celerix-dev/mobidash/internal/render"
	"github.com/celerix-dev/mobidash/pkg/schema"
	"github.com/celerix-dev/mobidash/pkg/validate"
	"github.com/gin-gonic/gin"
)

var errBadUpload = errors.New("a file must be uploaded in the \"file\" form field")

// bindRaw decodes the request body into plain JSON values so the validators see
// exactly what the client sent.
func bindRaw(c *gin.Context) (any, error) {
	body, err := c.GetRawData()
	if err != nil {
		return nil, parseError(err)
	}
	var v any
	if err := json.Unmarshal(body, &v); err != nil {
		return nil, parseError(err)
	}
	return v, nil
}

func (h *Handler) ListCharts(c *gin.Context) {
	c.JSON(http.StatusOK, h.Store.GetAllCharts())
}

func (h *Handler) GetChart(c *gin.Context) {
	chart, err := h.Store.GetChartByID(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, chart)
}

// CreateChart validates the body as a chart definition and saves it.
func (h *Handler) CreateChart(c *gin.Context) {
	raw, err := bindRaw(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	def, err := validate.ValidateChartJSON(raw)
	if err != nil {
		h.fail(c, err)
		return
	}
	chart, err := h.Store.SaveChart(def)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "id": chart.ID, "chart": chart})
}

// ValidateChart checks a candidate chart without saving it. It always answers
// 200; the verdict is in the body.
func (h *Handler) ValidateChart(c *gin.Context) {
	var (
		def schema.ChartDefinition
		err error
	)
	raw, err := bindRaw(c)
	if err == nil {
		def, err = validate.ValidateChartJSON(raw)
	}

	res := validate.NewResult(def, err)
	body := gin.H{"valid": res.Valid}
	if res.Valid {
		body["data"] = res.Data
	} else {
		body["error"] = res.Error
		var verr *validate.Error
		if errors.As(err, &verr) {
			body["kind"] = verr.Kind
		}
	}
	c.JSON(http.StatusOK, body)
}

// ImportChart accepts a multipart upload in the "file" field.
func (h *Handler) ImportChart(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			h.fail(c, errBadUpload)
			return
		}
		h.fail(c, err)
		return
	}

	var content []byte
	// Oversized files are rejected on their declared size without reading them.
	if header.Size <= validate.MaxFileSize {
		f, err := header.Open()
		if err != nil {
			h.fail(c, err)
			return
		}
		content, err = io.ReadAll(io.LimitReader(f, validate.MaxFileSize+1))
		f.Close()
		if err != nil {
			h.fail(c, err)
			return
		}
	}

	chart, err := h.Importer.ImportChartFile(c.Request.Context(), header.Filename, header.Size, string(content))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "id": chart.ID, "chart": chart})
}

// UpdateChart applies a partial update. Absent or null fields are kept.
func (h *Handler) UpdateChart(c *gin.Context) {
	var patch dashboard.ChartPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		h.fail(c, parseError(err))
		return
	}
	chart, err := h.Store.UpdateChart(c.Param("id"), patch)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "chart": chart})
}

func (h *Handler) DeleteChart(c *gin.Context) {
	if err := h.Store.DeleteChart(c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ChartImage draws a stored chart. Query: format=png|svg, width, height.
func (h *Handler) ChartImage(c *gin.Context) {
	format, err := render.ParseFormat(c.Query("format"))
	if err != nil {
		h.fail(c, err)
		return
	}
	chart, err := h.Store.GetChartByID(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}

	width, _ := strconv.Atoi(c.Query("width"))
	height, _ := strconv.Atoi(c.Query("height"))

	var buf bytes.Buffer
	if err := render.Render(&buf, chart.ChartDefinition, format, width, height); err != nil {
		h.fail(c, err)
		return
	}
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}
