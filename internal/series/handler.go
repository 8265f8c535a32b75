package series

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
	rg.GET("/series", h.adminList)
	rg.POST("/series", h.create)
	rg.PATCH("/series", h.update)
	rg.DELETE("/series", h.delete)
	rg.GET("/series/unique-name", h.uniqueName)
	rg.GET("/series/search-by-name", h.searchByName)
}

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/series", h.publicList)
	rg.GET("/series-ids", h.ids)
	rg.GET("/series/:id", h.getByID)
	rg.GET("/series/:id/get-posts", h.getPosts)
	rg.GET("/series/:id/get-tags", h.getTags)
}

type searchResult struct {
	Series  []models.Series `json:"series"`
	MaxPage int             `json:"max_page"`
}

func (h *Handler) adminList(c *gin.Context) {
	h.list(c, false)
}

func (h *Handler) publicList(c *gin.Context) {
	h.list(c, true)
}

func (h *Handler) list(c *gin.Context, public bool) {
	tagIDs, err := utils.ParseIDList(c.QueryArray("qt"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tag id"})
		return
	}

	q := ListQuery{
		Page:   utils.ParseInt(c.Query("p"), 1),
		Name:   c.Query("qn"),
		TagIDs: tagIDs,
		Public: public,
	}

	series, maxPage, err := h.Repo.List(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	c.JSON(http.StatusOK, searchResult{Series: series, MaxPage: maxPage})
}

type createReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
	Hidden      bool   `json:"hidden"`
	Posts       []uint `json:"posts"`
	Tags        []uint `json:"tags"`
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

	series, err := h.Repo.Create(c.Request.Context(), CreateParams{
		Name:        req.Name,
		Description: req.Description,
		Thumbnail:   req.Thumbnail,
		Hidden:      req.Hidden,
		PostIDs:     req.Posts,
		TagIDs:      req.Tags,
	})
	if err != nil {
		h.writeError(c, err, "create failed")
		return
	}

	c.JSON(http.StatusOK, series)
}

type updateReq struct {
	ID          *uint   `json:"id"`
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Thumbnail   *string `json:"thumbnail"`
	Hidden      *bool   `json:"hidden"`
	Posts       []uint  `json:"posts"`
	Tags        []uint  `json:"tags"`
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

	series, err := h.Repo.Update(c.Request.Context(), UpdateParams{
		ID:          *req.ID,
		Name:        req.Name,
		Description: req.Description,
		Thumbnail:   req.Thumbnail,
		Hidden:      req.Hidden,
		PostIDs:     req.Posts,
		TagIDs:      req.Tags,
	})
	if err != nil {
		h.writeError(c, err, "update failed")
		return
	}

	c.JSON(http.StatusOK, series)
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

	series, err := h.Repo.SearchByName(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}
	c.JSON(http.StatusOK, series)
}

func (h *Handler) ids(c *gin.Context) {
	ids, err := h.Repo.IDs(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, ids)
}

func (h *Handler) getByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	series, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if series == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "series not found"})
		return
	}
	c.JSON(http.StatusOK, series)
}

func (h *Handler) getPosts(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	ids, err := h.Repo.PostIDs(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err, "get failed")
		return
	}
	if ids == nil {
		ids = []uint{}
	}
	c.JSON(http.StatusOK, ids)
}

func (h *Handler) getTags(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	ids, err := h.Repo.TagIDs(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err, "get failed")
		return
	}
	if ids == nil {
		ids = []uint{}
	}
	c.JSON(http.StatusOK, ids)
}

func (h *Handler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "series not found"})
	case errors.Is(err, ErrTagNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "tag not found"})
	case errors.Is(err, gorm.ErrDuplicatedKey):
		c.JSON(http.StatusConflict, gin.H{"error": "name already exists"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": fallback})
	}
}

func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := utils.ParseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
