package ui

import (
	"bytes"
	"fmt"
	"net/http"

	"gokeyword/adapters/excel"
	"gokeyword/app"
	"gokeyword/internal"
	"gokeyword/internal/errors"

	"github.com/gin-gonic/gin"
)

type KeywordHandler struct {
	service  *app.KeywordService
	basename string
	logger   *internal.Logger
}

func NewKeywordHandler(service *app.KeywordService, basename string, logger *internal.Logger) *KeywordHandler {
	if basename == "" {
		basename = "combined_keywords"
	}
	return &KeywordHandler{service: service, basename: basename, logger: logger}
}

// generateResponse is the JSON form of a generation run
type generateResponse struct {
	RunID          string     `json:"run_id"`
	Columns        []string   `json:"columns"`
	Rows           [][]string `json:"rows"`
	RowCount       int        `json:"row_count"`
	MatchedRows    int        `json:"matched_rows"`
	ReferenceCount int        `json:"reference_count"`
	Warnings       []string   `json:"warnings"`
	RuntimeMs      int64      `json:"runtime_ms"`
}

func (h *KeywordHandler) HandleGenerate() gin.HandlerFunc {
	return func(c *gin.Context) {
		result, ok := h.run(c)
		if !ok {
			return
		}

		warnings := result.Warnings
		if warnings == nil {
			warnings = []string{}
		}
		c.JSON(http.StatusOK, generateResponse{
			RunID:          result.RunID.String(),
			Columns:        result.Table.Columns,
			Rows:           result.Table.Rows,
			RowCount:       result.Table.Len(),
			MatchedRows:    result.MatchedRows,
			ReferenceCount: result.ReferenceCount,
			Warnings:       warnings,
			RuntimeMs:      result.RuntimeMs,
		})
	}
}

// HandleExport generates and returns the table as a file download. The file
// is rendered fully before anything is written so a failed export leaves no
// partial body behind.
func (h *KeywordHandler) HandleExport() gin.HandlerFunc {
	return func(c *gin.Context) {
		format, err := excel.ParseFormat(c.DefaultQuery("format", string(excel.FormatCSV)))
		if err != nil {
			respondError(c, errors.InvalidInput(err.Error()))
			return
		}

		result, ok := h.run(c)
		if !ok {
			return
		}

		var buf bytes.Buffer
		if err := excel.Export(&buf, format, result.Table); err != nil {
			h.logger.Error("run %s: %s export failed: %v", result.RunID, format, err)
			respondError(c, errors.ExportFailed(string(format), err))
			return
		}

		filename := format.Filename(h.basename)
		h.logger.Info("run %s: exported %d rows as %s", result.RunID, result.Table.Len(), filename)
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
		c.Header("X-Run-ID", result.RunID.String())
		c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
	}
}

func (h *KeywordHandler) run(c *gin.Context) (*app.GenerateResult, bool) {
	req, err := bindGenerateRequest(c)
	if err != nil {
		h.logger.Debug("rejected generate request: %v", err)
		respondError(c, err)
		return nil, false
	}

	result, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return result, true
}
