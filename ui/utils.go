package ui

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"

	"gokeyword/adapters/excel"
	"gokeyword/app"
	"gokeyword/domain/keyword"
	"gokeyword/internal/errors"

	"github.com/gin-gonic/gin"
)

// generatePayload is the JSON body of the generate and export endpoints
type generatePayload struct {
	Regions    []interface{}          `json:"regions"`
	Selections []excel.SheetSelection `json:"selections"`
	Groups     []groupPayload         `json:"groups"`
}

// groupPayload accepts either newline separated text or a value list.
// prepend_space defaults to true when omitted.
type groupPayload struct {
	ID           string        `json:"id"`
	Text         string        `json:"text"`
	Values       []interface{} `json:"values"`
	PrependSpace *bool         `json:"prepend_space"`
}

func (g groupPayload) toGroup() keyword.KeywordGroup {
	space := true
	if g.PrependSpace != nil {
		space = *g.PrependSpace
	}
	if g.Values != nil {
		return keyword.NewGroup(g.ID, stringsFromAny(g.Values), space)
	}
	return keyword.ParseGroup(g.ID, g.Text, space)
}

func toGroups(payloads []groupPayload) []keyword.KeywordGroup {
	groups := make([]keyword.KeywordGroup, 0, len(payloads))
	for _, p := range payloads {
		groups = append(groups, p.toGroup())
	}
	return groups
}

// stringsFromAny converts loosely typed JSON values to cell text
func stringsFromAny(values []interface{}) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, excel.CellString(v))
	}
	return out
}

// bindGenerateRequest reads a generation request from either a JSON body or
// a multipart form carrying a workbook plus "selection" and "groups" JSON
// fields.
func bindGenerateRequest(c *gin.Context) (app.GenerateRequest, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		return bindMultipartRequest(c)
	}

	var payload generatePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		return app.GenerateRequest{}, bindingError(err, "invalid request body")
	}
	if len(payload.Selections) > 0 {
		return app.GenerateRequest{}, errors.InvalidInput("sheet selections require a multipart upload with a workbook file")
	}
	return app.GenerateRequest{
		Regions: stringsFromAny(payload.Regions),
		Groups:  toGroups(payload.Groups),
	}, nil
}

func bindMultipartRequest(c *gin.Context) (app.GenerateRequest, error) {
	wb, err := readUpload(c)
	if err != nil {
		return app.GenerateRequest{}, err
	}

	var selections []excel.SheetSelection
	if err := decodeFormJSON(c, "selection", &selections); err != nil {
		return app.GenerateRequest{}, err
	}
	if len(selections) == 0 {
		return app.GenerateRequest{}, errors.InvalidInput("at least one sheet selection is required")
	}

	var groups []groupPayload
	if err := decodeFormJSON(c, "groups", &groups); err != nil {
		return app.GenerateRequest{}, err
	}

	regions, err := excel.CollectRegions(wb, selections)
	if err != nil {
		return app.GenerateRequest{}, errors.Wrap(err, "invalid sheet selection")
	}
	return app.GenerateRequest{Regions: regions, Groups: toGroups(groups)}, nil
}

func decodeFormJSON(c *gin.Context, field string, dst interface{}) error {
	raw := c.PostForm(field)
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return errors.InvalidInput(fmt.Sprintf("field %q is not valid JSON: %v", field, err))
	}
	return nil
}

// readUpload parses the multipart "file" field as a workbook
func readUpload(c *gin.Context) (*excel.Workbook, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return nil, bindingError(err, "workbook upload missing")
	}
	f, err := header.Open()
	if err != nil {
		return nil, errors.InvalidInput(fmt.Sprintf("failed to open upload: %v", err))
	}
	defer f.Close()

	wb, err := excel.ReadWorkbook(f, header.Filename)
	if err != nil {
		return nil, errors.InvalidInput(fmt.Sprintf("failed to read workbook %s: %v", header.Filename, err))
	}
	return wb, nil
}

// bindingError reports a body that hit the upload cap as PAYLOAD_TOO_LARGE
// and anything else as INVALID_INPUT
func bindingError(err error, message string) error {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return errors.PayloadTooLarge(tooLarge.Limit)
	}
	return errors.InvalidInput(fmt.Sprintf("%s: %v", message, err))
}

// respondError writes err as JSON with the status its code maps to
func respondError(c *gin.Context, err error) {
	c.JSON(errors.HTTPStatus(err), gin.H{
		"error": err.Error(),
		"code":  errors.GetCode(err),
	})
}
