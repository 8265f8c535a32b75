package tag

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"bloghub/pkg/models"
	"bloghub/pkg/utils"
)

type Handler struct {
	Repo *Repo
}

func NewHandler(repo *Repo) *Handler {
	return &Handler{Repo: repo}
}

func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/tag", h.list)
	rg.POST("/tag", h.create)
	rg.PATCH("/tag", h.update)
	rg.DELETE("/tag", h.delete)
	rg.GET("/tag/unique-name", h.uniqueName)
}

// Public tag routes: gin cannot register a static sibling next to
// :id, so the name search lives on the collection path itself.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/tag", h.searchByName)
	rg.GET("/tag/:id", h.getByID)
}

type searchResult struct {
	Tags    []models.Tag `json:"tags"`
	MaxPage int          `json:"max_page"`
}

func (h *Handler) list(c *gin.Context) {
	q := ListQuery{
		Page: utils.ParseInt(c.Query("p"), 1),
		Name: c.Query("qn"),
	}

	tags, maxPage, err := h.Repo.List(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	c.JSON(http.StatusOK, searchResult{Tags: tags, MaxPage: maxPage})
}

type createReq struct {
	Name string `json:"name"`
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
		return
	}

	tag, err := h.Repo.Create(c.Request.Context(), req.Name)
	if err != nil {
		h.writeError(c, err, "create failed")
		return
	}
	c.JSON(http.StatusOK, tag)
}

type updateReq struct {
	ID   *uint   `json:"id"`
	Name *string `json:"name"`
}

func (h *Handler) update(c *gin.Context) {
	var req updateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if req.ID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id required"})
		return
	}

	tag, err := h.Repo.Update(c.Request.Context(), *req.ID, req.Name)
	if err != nil {
		h.writeError(c, err, "update failed")
		return
	}
	c.JSON(http.StatusOK, tag)
}

type deleteReq struct {
	ID *uint `json:"id"`
}

func (h *Handler) delete(c *gin.Context) {
	var req deleteReq
	if err := c.ShouldBindJSON(&req); err != nil || req.ID == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id required"})
		return
	}

	if err := h.Repo.Delete(c.Request.Context(), *req.ID); err != nil {
		h.writeError(c, err, "delete failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": true})
}

func (h *Handler) uniqueName(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query required"})
		return
	}

	free, err := h.Repo.UniqueName(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "probe failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": free})
}

func (h *Handler) searchByName(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query required"})
		return
	}

	tags, err := h.Repo.SearchByName(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}
	c.JSON(http.StatusOK, tags)
}

func (h *Handler) getByID(c *gin.Context) {
	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	tag, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if tag == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "tag not found"})
		return
	}
	c.JSON(http.StatusOK, tag)
}

func (h *Handler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "tag not found"})
	case errors.Is(err, gorm.ErrDuplicatedKey):
		c.JSON(http.StatusConflict, gin.H{"error": "name already exists"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}
