package ui

import (
	_ "embed"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

//go:embed help.md
var helpMarkdown []byte

const helpPage = `<!DOCTYPE html>
<html lang="ko">
<head><meta charset="utf-8"><title>지역 키워드 조합기 도움말</title></head>
<body>
%s
</body>
</html>
`

// HelpHandler serves the usage guide rendered once at startup
type HelpHandler struct {
	page []byte
}

func NewHelpHandler() (*HelpHandler, error) {
	body := RenderMarkdown(helpMarkdown)
	if len(body) == 0 {
		return nil, fmt.Errorf("help page rendered empty")
	}
	return &HelpHandler{page: []byte(fmt.Sprintf(helpPage, body))}, nil
}

// RenderMarkdown converts markdown to HTML with fenced code and tables enabled
func RenderMarkdown(md []byte) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	r := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	return markdown.ToHTML(md, p, r)
}

func (h *HelpHandler) HandleHelp() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", h.page)
	}
}
