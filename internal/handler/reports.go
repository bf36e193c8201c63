package handler

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"storefront/internal/service"

	"github.com/gin-gonic/gin"
)

type ReportsHandler struct{ svc service.ReportService }

func NewReportsHandler(svc service.ReportService) *ReportsHandler {
	return &ReportsHandler{svc: svc}
}

func (h *ReportsHandler) Products(c *gin.Context) {
	h.render(c, "products", h.svc.ProductsPDF)
}

func (h *ReportsHandler) Orders(c *gin.Context) {
	h.render(c, "orders", h.svc.OrdersPDF)
}

// render buffers the document so a failure can still produce a JSON error.
func (h *ReportsHandler) render(c *gin.Context, name string, fn func(context.Context, io.Writer) error) {
	var buf bytes.Buffer
	if err := fn(c.Request.Context(), &buf); err != nil {
		respondError(c, err)
		return
	}
	filename := fmt.Sprintf("%s_report_%s.pdf", name, time.Now().UTC().Format("20060102_150405"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
