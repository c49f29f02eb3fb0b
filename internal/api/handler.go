// Package api exposes the enrichment pipeline over HTTP.
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/shpitdev/vc-enricher/internal/enrich"
	"github.com/shpitdev/vc-enricher/pkg/profile"
)

const maxRequestBytes = 1 << 20

// EnrichRequest is the body of POST /enrich.
type EnrichRequest struct {
	Website string           `json:"website"`
	Company *profile.Company `json:"company,omitempty"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

type Handler struct {
	enricher enrich.Enricher
	log      *zap.Logger
}

func NewHandler(enricher enrich.Enricher, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{enricher: enricher, log: log}
}

// Enrich handles POST /enrich.
func (h *Handler) Enrich(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestBytes)

	var req EnrichRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Kind: string(enrich.KindValidation)})
		return
	}

	p, err := h.enricher.Enrich(c.Request.Context(), enrich.Request{
		Website: req.Website,
		Company: req.Company,
	})
	if err != nil {
		status := http.StatusInternalServerError
		resp := ErrorResponse{Error: enrich.UserMessage(err)}
		var e *enrich.Error
		if errors.As(err, &e) {
			resp.Kind = string(e.Kind)
			if e.Kind.BadInput() {
				status = http.StatusBadRequest
			}
		}
		_ = c.Error(err)
		c.JSON(status, resp)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Health handles GET /healthz.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
