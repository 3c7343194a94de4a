package controller

import (
	"net/http"
	"strconv"

	"github.com/bekzodm/levelcheck/internal/apperr"
	"github.com/bekzodm/levelcheck/internal/dto"
	"github.com/gin-gonic/gin"
)

// RespondError maps the engine's error taxonomy onto HTTP statuses. Storage
// errors come back 503 so callers know a blind retry is safe, since every engine
// write is idempotent or conditional.
func RespondError(ctx *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case apperr.IsConflict(err):
		status = http.StatusConflict
	case apperr.IsNotFound(err):
		status = http.StatusNotFound
	case apperr.IsValidation(err):
		status = http.StatusUnprocessableEntity
	case apperr.IsStorage(err):
		status = http.StatusServiceUnavailable
	}
	ctx.JSON(status, dto.ErrorResponse{Message: err.Error()})
}

// ParseUintParam reads a numeric path parameter, reporting ok=false after
// having written the 400 response.
func ParseUintParam(ctx *gin.Context, name string) (uint, bool) {
	raw := ctx.Param(name)
	val, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid " + name + " format"})
		return 0, false
	}
	return uint(val), true
}
