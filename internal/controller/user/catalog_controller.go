package user

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/bekzodm/levelcheck/internal/controller"
	"github.com/bekzodm/levelcheck/internal/service"
)

type CatalogController struct {
	catalog service.CatalogService
}

func NewCatalogController(catalog service.CatalogService) *CatalogController {
	return &CatalogController{catalog: catalog}
}

// ListTests godoc
// @Summary List active tests
// @Description Active tests with question counts, optionally filtered by level group (BEGINNER, ELEMENTARY, PRE-INTERMEDIATE, INTERMEDIATE, UPPER-INTERMEDIATE, ADVANCED, IELTS, CEFR).
// @Tags Catalog
// @Produce json
// @Param group query string false "Level group filter"
// @Success 200 {array} dto.TestSummaryDTO
// @Failure 503 {object} dto.ErrorResponse
// @Router /tests [get]
func (c *CatalogController) ListTests(ctx *gin.Context) {
	tests, err := c.catalog.ListActiveTests(ctx.Query("group"))
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, tests)
}

// GetTest godoc
// @Summary Get a test with its questions and options
// @Tags Catalog
// @Produce json
// @Param test_id path int true "Test ID"
// @Success 200 {object} dto.TestDetailDTO
// @Failure 404 {object} dto.ErrorResponse
// @Router /tests/{test_id} [get]
func (c *CatalogController) GetTest(ctx *gin.Context) {
	testID, ok := controller.ParseUintParam(ctx, "test_id")
	if !ok {
		return
	}
	detail, err := c.catalog.GetTestDetails(testID)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, detail)
}

func parseUintQuery(raw string) (uint, error) {
	val, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(val), nil
}
