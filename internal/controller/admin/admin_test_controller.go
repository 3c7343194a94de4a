package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/bekzodm/levelcheck/internal/controller"
	"github.com/bekzodm/levelcheck/internal/dto"
	"github.com/bekzodm/levelcheck/internal/service"
)

type AdminTestController struct {
	adminTests service.AdminTestService
}

func NewAdminTestController(adminTests service.AdminTestService) *AdminTestController {
	return &AdminTestController{adminTests: adminTests}
}

// CreateTest godoc
// @Summary (Admin) Create a test with questions and options
// @Tags Admin - Tests
// @Accept json
// @Produce json
// @Param body body dto.TestCreateDTO true "Test content"
// @Success 201 {object} dto.TestDetailDTO
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Test code already exists"
// @Failure 422 {object} dto.ErrorResponse "A question has no correct option"
// @Router /admin/tests [post]
func (c *AdminTestController) CreateTest(ctx *gin.Context) {
	var req dto.TestCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	detail, err := c.adminTests.CreateTest(req)
	if err != nil {
		log.Warn().Err(err).Str("code", req.Code).Msg("CreateTest failed")
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, detail)
}

// SetTestActive godoc
// @Summary (Admin) Activate or deactivate a test
// @Tags Admin - Tests
// @Accept json
// @Produce json
// @Param test_id path int true "Test ID"
// @Param body body dto.SetActiveDTO true "Activation flag"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/tests/{test_id}/active [patch]
func (c *AdminTestController) SetTestActive(ctx *gin.Context) {
	testID, ok := controller.ParseUintParam(ctx, "test_id")
	if !ok {
		return
	}
	var req dto.SetActiveDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}
	if err := c.adminTests.SetTestActive(testID, *req.IsActive); err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
