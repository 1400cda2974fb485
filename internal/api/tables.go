package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/celerix-dev/mobidash/internal/convert"
	"github.com/celerix-dev/mobidash/internal/dashboard"
	"github.com/celerix-dev/mobidash/pkg/schema"
	"github.com/celerix-dev/mobidash/pkg/validate"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *Handler) ListTables(c *gin.Context) {
	c.JSON(http.StatusOK, h.Store.GetAllTables())
}

func (h *Handler) GetTable(c *gin.Context) {
	table, err := h.Store.GetTableByID(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

// CreateTable accepts either {title, headers, rows} or the exported
// {type, title, data: {headers, rows}} shape.
func (h *Handler) CreateTable(c *gin.Context) {
	raw, err := bindRaw(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	def, err := validate.ValidateTableJSON(raw)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.saveTable(c, def)
}

func (h *Handler) saveTable(c *gin.Context, def schema.TableDefinition) {
	table, err := h.Store.SaveTable(def)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "id": table.ID, "table": table})
}

// ImportTable accepts a .xlsx or .json upload in the "file" field. The optional
// "sheet" field picks a worksheet; the first one is used otherwise.
func (h *Handler) ImportTable(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			h.fail(c, errBadUpload)
			return
		}
		h.fail(c, err)
		return
	}
	f, err := header.Open()
	if err != nil {
		h.fail(c, err)
		return
	}
	defer f.Close()

	table, err := h.Importer.ImportTable(c.Request.Context(), header.Filename, header.Size, f, c.PostForm("sheet"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "id": table.ID, "table": table})
}

// UpdateTable applies a partial update. Absent or null fields are kept.
func (h *Handler) UpdateTable(c *gin.Context) {
	var patch dashboard.TablePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		h.fail(c, parseError(err))
		return
	}
	table, err := h.Store.UpdateTable(c.Param("id"), patch)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "table": table})
}

func (h *Handler) DeleteTable(c *gin.Context) {
	if err := h.Store.DeleteTable(c.Param("id")); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ExportTableJSON downloads a table as an indented JSON document.
func (h *Handler) ExportTableJSON(c *gin.Context) {
	table, err := h.Store.GetTableByID(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	b, err := convert.TableToJSON(table.TableDefinition)
	if err != nil {
		h.fail(c, err)
		return
	}
	attachment(c, table.Title, ".json")
	c.Data(http.StatusOK, "application/json", b)
}

// ExportTableXLSX downloads a table as a single-sheet workbook.
func (h *Handler) ExportTableXLSX(c *gin.Context) {
	table, err := h.Store.GetTableByID(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	var buf bytes.Buffer
	if err := convert.TableToXLSX(table.TableDefinition, &buf); err != nil {
		h.fail(c, err)
		return
	}
	attachment(c, table.Title, ".xlsx")
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// TableToChart derives a bar chart from a stored table. With ?save=true the
// chart is also stored.
func (h *Handler) TableToChart(c *gin.Context) {
	table, err := h.Store.GetTableByID(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	def, err := convert.TableToChart(table.TableDefinition, h.Now())
	if err != nil {
		h.fail(c, err)
		return
	}

	if save, _ := strconv.ParseBool(c.Query("save")); !save {
		c.JSON(http.StatusOK, gin.H{"success": true, "chart": def})
		return
	}
	chart, err := h.Store.SaveChart(def)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "id": chart.ID, "chart": chart})
}

func attachment(c *gin.Context, title, ext string) {
	name := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`/\:*?"<>|`, r) || r < 0x20 {
			return '_'
		}
		return r
	}, strings.TrimSpace(title))
	if name == "" {
		name = "table"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name+ext))
}
