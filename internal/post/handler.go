package post

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
	rg.GET("/post", h.adminList)
	rg.POST("/post", h.create)
	rg.PATCH("/post", h.update)
	rg.DELETE("/post", h.delete)
	rg.GET("/post/unique-title", h.uniqueTitle)
	rg.GET("/post/search-by-title", h.searchByTitle)
}

func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/post", h.publicList)
	rg.GET("/post-ids", h.ids)
	rg.GET("/post/:id", h.getByID)
	rg.GET("/post/:id/get-tags", h.getTags)
	rg.GET("/post/:id/get-series", h.getSeries)
}

type searchResult struct {
	Posts   []models.Post `json:"posts"`
	MaxPage int           `json:"max_page"`
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
		Title:  c.Query("qn"),
		TagIDs: tagIDs,
		Public: public,
	}

	posts, maxPage, err := h.Repo.List(c.Request.Context(), q)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}

	c.JSON(http.StatusOK, searchResult{Posts: posts, MaxPage: maxPage})
}

type createReq struct {
	Title       string `json:"title"`
	Content     string `json:"content"`
	Description string `json:"description"`
	Thumbnail   string `json:"thumbnail"`
	Hidden      bool   `json:"hidden"`
	SeriesID    *uint  `json:"series_id"`
	Tags        []uint `json:"tags"`
}

func (h *Handler) create(c *gin.Context) {
	var req createReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title required"})
		return
	}

	post, err := h.Repo.Create(c.Request.Context(), CreateParams{
		Title:       req.Title,
		Content:     req.Content,
		Description: req.Description,
		Thumbnail:   req.Thumbnail,
		Hidden:      req.Hidden,
		SeriesID:    req.SeriesID,
		TagIDs:      req.Tags,
	})
	if err != nil {
		h.writeError(c, err, "create failed")
		return
	}

	c.JSON(http.StatusOK, post)
}

type updateReq struct {
	ID          *uint   `json:"id"`
	Title       *string `json:"title"`
	Content     *string `json:"content"`
	Description *string `json:"description"`
	Thumbnail   *string `json:"thumbnail"`
	Hidden      *bool   `json:"hidden"`
	SeriesID    *uint   `json:"series_id"`
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

	post, err := h.Repo.Update(c.Request.Context(), UpdateParams{
		ID:          *req.ID,
		Title:       req.Title,
		Content:     req.Content,
		Description: req.Description,
		Thumbnail:   req.Thumbnail,
		Hidden:      req.Hidden,
		SeriesID:    req.SeriesID,
		TagIDs:      req.Tags,
	})
	if err != nil {
		h.writeError(c, err, "update failed")
		return
	}

	c.JSON(http.StatusOK, post)
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

func (h *Handler) uniqueTitle(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query required"})
		return
	}

	free, err := h.Repo.UniqueTitle(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "probe failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": free})
}

func (h *Handler) searchByTitle(c *gin.Context) {
	query := c.Query("query")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query required"})
		return
	}

	posts, err := h.Repo.SearchByTitle(c.Request.Context(), query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}
	c.JSON(http.StatusOK, posts)
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

	post, err := h.Repo.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if post == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		return
	}
	c.JSON(http.StatusOK, post)
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

func (h *Handler) getSeries(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	seriesID, err := h.Repo.SeriesID(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err, "get failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": seriesID})
}

func (h *Handler) writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
	case errors.Is(err, ErrTagNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "tag not found"})
	case errors.Is(err, ErrSeriesNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "series not found"})
	case errors.Is(err, gorm.ErrDuplicatedKey):
		c.JSON(http.StatusConflict, gin.H{"error": "title already exists"})
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
