package user

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/bekzodm/levelcheck/internal/controller"
	"github.com/bekzodm/levelcheck/internal/dto"
	"github.com/bekzodm/levelcheck/internal/service"
)

type UserController struct {
	users service.UserService
}

func NewUserController(users service.UserService) *UserController {
	return &UserController{users: users}
}

// Register godoc
// @Summary Register or refresh a chat user
// @Description Upserts by Telegram id; repeat registrations refresh the display fields and keep the same user id.
// @Tags Users
// @Accept json
// @Produce json
// @Param body body dto.RegisterUserRequest true "Chat identity"
// @Success 200 {object} dto.ProfileDTO
// @Failure 400 {object} dto.ErrorResponse
// @Router /users [post]
func (c *UserController) Register(ctx *gin.Context) {
	var req dto.RegisterUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	profile, err := c.users.Register(req)
	if err != nil {
		log.Error().Err(err).Int64("tgID", req.TgID).Msg("Register failed")
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, profile)
}

// SavePhone godoc
// @Summary Save the user's phone number
// @Tags Users
// @Accept json
// @Produce json
// @Param tg_id path int true "Telegram ID"
// @Param body body dto.SavePhoneRequest true "Shared contact"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /users/{tg_id}/phone [put]
func (c *UserController) SavePhone(ctx *gin.Context) {
	tgID, err := strconv.ParseInt(ctx.Param("tg_id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid tg_id format"})
		return
	}
	var req dto.SavePhoneRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	if err := c.users.SavePhone(tgID, req); err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// GetProfile godoc
// @Summary Get a user profile with points totals
// @Tags Users
// @Produce json
// @Param user_id path int true "User ID"
// @Success 200 {object} dto.ProfileDTO
// @Failure 404 {object} dto.ErrorResponse
// @Router /users/{user_id} [get]
func (c *UserController) GetProfile(ctx *gin.Context) {
	userID, ok := controller.ParseUintParam(ctx, "user_id")
	if !ok {
		return
	}
	profile, err := c.users.Profile(userID)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, profile)
}
