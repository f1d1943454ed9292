package ui

import (
	"net/http"

	"gokeyword/adapters/excel"
	"gokeyword/app"
	"gokeyword/domain/region"
	"gokeyword/internal"
	"gokeyword/internal/errors"

	"github.com/gin-gonic/gin"
)

// DataHandler serves the reference table and workbook inspection endpoints
type DataHandler struct {
	service *app.KeywordService
	logger  *internal.Logger
}

func NewDataHandler(service *app.KeywordService, logger *internal.Logger) *DataHandler {
	return &DataHandler{service: service, logger: logger}
}

func (h *DataHandler) HandleListRegions() gin.HandlerFunc {
	return func(c *gin.Context) {
		records, err := h.service.ListReference(c.Request.Context())
		if err != nil {
			h.logger.Warn("failed to list reference records: %v", err)
			respondError(c, err)
			return
		}
		if records == nil {
			records = []region.Record{}
		}

		c.JSON(http.StatusOK, gin.H{
			"regions": records,
			"count":   len(records),
		})
	}
}

// HandleImportRegions replaces the reference table with one sheet of an
// uploaded workbook. The sheet defaults to the first one in the file.
func (h *DataHandler) HandleImportRegions() gin.HandlerFunc {
	return func(c *gin.Context) {
		wb, err := readUpload(c)
		if err != nil {
			respondError(c, err)
			return
		}

		sheetName := c.PostForm("sheet")
		if sheetName == "" {
			names := wb.SheetNames()
			if len(names) == 0 {
				respondError(c, errors.InvalidInput("workbook has no sheets"))
				return
			}
			sheetName = names[0]
		}

		sheet, err := wb.Sheet(sheetName)
		if err != nil {
			respondError(c, errors.Wrap(err, "reference import failed"))
			return
		}

		records, err := excel.ReferenceRecords(sheet)
		if err != nil {
			respondError(c, errors.Wrap(err, "reference import failed"))
			return
		}

		if err := h.service.ImportReference(c.Request.Context(), records); err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"sheet":    sheetName,
			"imported": len(records),
		})
	}
}

func (h *DataHandler) HandleInspectWorkbook() gin.HandlerFunc {
	return func(c *gin.Context) {
		wb, err := readUpload(c)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"workbook": wb.Name(),
			"sheets":   wb.Summaries(),
		})
	}
}
