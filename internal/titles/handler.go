package titles

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	Repo      *Repo
	Refresher *Refresher
}

func NewHandler(repo *Repo, refresher *Refresher) *Handler {
	return &Handler{Repo: repo, Refresher: refresher}
}

// RegisterRoutes mounts the corpus endpoints. Refresh belongs behind auth;
// it hits AniDB's rate-limited dump host.
func (h *Handler) RegisterRoutes(public, protected *gin.RouterGroup) {
	public.GET("/titles/status", h.status)
	protected.POST("/titles/refresh", h.refresh)
}

func (h *Handler) status(c *gin.Context) {
	ctx := c.Request.Context()

	count, err := h.Repo.Count(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "status failed"})
		return
	}
	fetched, ok, err := h.Repo.LastFetched(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "status failed"})
		return
	}

	resp := gin.H{"titles": count, "imported": ok}
	if ok {
		resp["last_fetched"] = fetched.UTC()
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) refresh(c *gin.Context) {
	n, err := h.Refresher.Refresh(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"titles": n})
}
