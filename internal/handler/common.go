package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/justmeandopensource/cashio-api/internal/models"
	"github.com/justmeandopensource/cashio-api/internal/store"
	"github.com/justmeandopensource/cashio-api/internal/util"
)

// currentUser returns the authenticated user placed in the context by
// the auth middleware.
func currentUser(c *gin.Context) *models.User {
	v, ok := c.Get("currentUser")
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}

// pathID parses a numeric path parameter, writing the error response
// itself on failure.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// fail translates an engine error into the uniform error envelope.
func fail(c *gin.Context, err error) {
	switch store.KindOf(err) {
	case store.KindNotFound:
		util.Error(c, http.StatusNotFound, util.CodeNotFound, err.Error())
	case store.KindValidation:
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
	case store.KindInvalidOperation:
		util.Error(c, http.StatusBadRequest, util.CodeInvalidOperation, err.Error())
	case store.KindInsufficientBalance:
		util.Error(c, http.StatusBadRequest, util.CodeInsufficientBalance, err.Error())
	case store.KindInsufficientUnits:
		util.Error(c, http.StatusBadRequest, util.CodeInsufficientUnits, err.Error())
	case store.KindInsufficientQuantity:
		util.Error(c, http.StatusBadRequest, util.CodeInsufficientQuantity, err.Error())
	case store.KindConsistency:
		util.Error(c, http.StatusInternalServerError, util.CodeConsistency, err.Error())
	default:
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "internal error")
	}
}
