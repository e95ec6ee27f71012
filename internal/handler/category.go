package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/justmeandopensource/cashio-api/internal/models"
	"github.com/justmeandopensource/cashio-api/internal/store"
	"github.com/justmeandopensource/cashio-api/internal/util"
)

// CategoryHandler serves the user-scoped category tree.
type CategoryHandler struct {
	Store *store.Store
}

func NewCategoryHandler(s *store.Store) *CategoryHandler {
	return &CategoryHandler{Store: s}
}

type categoryReq struct {
	Name             string `json:"name" binding:"required,max=100"`
	Type             string `json:"type" binding:"required"`
	IsGroup          bool   `json:"is_group"`
	ParentCategoryID *uint  `json:"parent_category_id"`
}

func (h *CategoryHandler) Create(c *gin.Context) {
	user := currentUser(c)
	var req categoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
		return
	}
	category, err := h.Store.CreateCategory(user.ID, store.CategoryInput{
		Name:             req.Name,
		Type:             models.CategoryType(req.Type),
		IsGroup:          req.IsGroup,
		ParentCategoryID: req.ParentCategoryID,
	})
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"category": category})
}

func (h *CategoryHandler) List(c *gin.Context) {
	user := currentUser(c)
	categoryType := models.CategoryType(c.Query("type"))
	ignoreGroup := c.Query("ignore_group") == "true"
	categories, err := h.Store.ListCategories(user.ID, categoryType, ignoreGroup)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"categories": categories})
}
