package series

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"animehub/pkg/models"
)

// EpisodeLister is the slice of the episodes repo the read API needs.
type EpisodeLister interface {
	ListBySeries(ctx context.Context, seriesID string) ([]models.Episode, error)
}

type Handler struct {
	Repo     *Repo
	Episodes EpisodeLister
}

func NewHandler(repo *Repo, episodes EpisodeLister) *Handler {
	return &Handler{Repo: repo, Episodes: episodes}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.list)                        // GET /series
	rg.GET("/:slug", h.getBySlug)             // GET /series/:slug
	rg.GET("/:slug/episodes", h.listEpisodes) // GET /series/:slug/episodes
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.Repo.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total": len(items),
		"items": items,
	})
}

func (h *Handler) getBySlug(c *gin.Context) {
	s, err := h.Repo.FindBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if s == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handler) listEpisodes(c *gin.Context) {
	s, err := h.Repo.FindBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if s == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	eps, err := h.Episodes.ListBySeries(c.Request.Context(), s.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"series":   s.Slug,
		"total":    len(eps),
		"episodes": eps,
	})
}
