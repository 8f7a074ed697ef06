package scrape

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"animehub/pkg/fault"
)

type Handler struct {
	Orch *Orchestrator
}

func NewHandler(orch *Orchestrator) *Handler {
	return &Handler{Orch: orch}
}

// RegisterRoutes mounts the write endpoints. The caller is expected to wrap
// the group in auth middleware; scraping hits third-party sites.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/scrape", h.scrape)            // POST /scrape
	rg.POST("/series/:id/enrich", h.enrich) // POST /series/:id/enrich
}

type scrapeRequest struct {
	URL string `json:"url" binding:"required"`
}

func (h *Handler) scrape(c *gin.Context) {
	var req scrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	summary, err := h.Orch.Scrape(c.Request.Context(), req.URL)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handler) enrich(c *gin.Context) {
	stats, err := h.Orch.Enrich(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

func statusFor(err error) int {
	kind, ok := fault.KindOf(err)
	if !ok {
		return http.StatusInternalServerError
	}
	switch kind {
	case fault.InvalidInput:
		return http.StatusBadRequest
	case fault.NotFound:
		return http.StatusNotFound
	case fault.TransportFailure, fault.EnrichmentFailure:
		return http.StatusBadGateway
	case fault.ParseFailure:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
