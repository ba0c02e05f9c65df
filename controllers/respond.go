package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hanyam/TaskManagement-sub002/apperrors"
	"github.com/hanyam/TaskManagement-sub002/dto"
	"github.com/hanyam/TaskManagement-sub002/middleware"
)

func ok(c *gin.Context, data any, message string) {
	c.JSON(http.StatusOK, dto.SuccessResponse(data, message))
}

func fail(c *gin.Context, errs []apperrors.Error) {
	c.JSON(apperrors.HTTPStatus(errs), dto.ErrorResponse(errs, middleware.TraceID(c)))
}

func failBinding(c *gin.Context, err error) {
	fail(c, []apperrors.Error{apperrors.Validation(err.Error(), "")})
}

// pathID parses a uuid path parameter. A malformed id reports as a
// validation failure naming the parameter.
func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		fail(c, []apperrors.Error{apperrors.Validation("Invalid "+name, name)})
		return uuid.Nil, false
	}
	return id, true
}

// paging reads page/pageSize query parameters. Absent parameters take
// the defaults; present but malformed ones become zero so the query
// layer's range validation reports them.
func paging(c *gin.Context) (int, int) {
	page := 1
	pageSize := 20
	if raw := c.Query("page"); raw != "" {
		page, _ = strconv.Atoi(raw)
	}
	if raw := c.Query("pageSize"); raw != "" {
		pageSize, _ = strconv.Atoi(raw)
	}
	return page, pageSize
}
