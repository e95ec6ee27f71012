package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/justmeandopensource/cashio-api/internal/store"
	"github.com/justmeandopensource/cashio-api/internal/util"
)

// TagHandler serves the user's tag vocabulary. Tags are created
// implicitly through transactions, so only listing is exposed.
type TagHandler struct {
	Store *store.Store
}

func NewTagHandler(s *store.Store) *TagHandler {
	return &TagHandler{Store: s}
}

func (h *TagHandler) List(c *gin.Context) {
	user := currentUser(c)
	tags, err := h.Store.ListTags(user.ID)
	if err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{"tags": tags})
}
