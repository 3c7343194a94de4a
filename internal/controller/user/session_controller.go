package user

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/bekzodm/levelcheck/internal/controller"
	"github.com/bekzodm/levelcheck/internal/dto"
	"github.com/bekzodm/levelcheck/internal/service"
)

// SessionController is the HTTP face of the assessment session engine: the
// chat transport drives a test one question at a time through it.
type SessionController struct {
	sessions service.SessionService
}

func NewSessionController(sessions service.SessionService) *SessionController {
	return &SessionController{sessions: sessions}
}

// StartAttempt godoc
// @Summary Start a test attempt, or resume the open one
// @Description Creates a started attempt for the user, or returns the existing open attempt with its next pending question.
// @Tags Sessions
// @Accept json
// @Produce json
// @Param test_id path int true "Test ID"
// @Param body body dto.StartAttemptRequest true "User starting the test"
// @Success 200 {object} dto.SessionStateDTO
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "Test not found or inactive"
// @Router /tests/{test_id}/attempts [post]
func (c *SessionController) StartAttempt(ctx *gin.Context) {
	testID, ok := controller.ParseUintParam(ctx, "test_id")
	if !ok {
		return
	}
	var req dto.StartAttemptRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	state, err := c.sessions.StartOrResume(req.UserID, testID)
	if err != nil {
		log.Warn().Err(err).Uint("testID", testID).Uint("userID", req.UserID).Msg("StartAttempt failed")
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, state)
}

// SubmitAnswer godoc
// @Summary Record an answer and get the next question or the final result
// @Description Idempotent: resubmitting the same answer, or changing the choice for an already-answered question, converges to one recorded answer.
// @Tags Sessions
// @Accept json
// @Produce json
// @Param attempt_id path int true "Attempt ID"
// @Param body body dto.SubmitAnswerRequest true "Chosen option"
// @Success 200 {object} dto.SessionStateDTO
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "Attempt not found or already completed"
// @Failure 422 {object} dto.ErrorResponse "Option does not belong to the question"
// @Router /attempts/{attempt_id}/answers [post]
func (c *SessionController) SubmitAnswer(ctx *gin.Context) {
	attemptID, ok := controller.ParseUintParam(ctx, "attempt_id")
	if !ok {
		return
	}
	var req dto.SubmitAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	state, err := c.sessions.SubmitAnswer(attemptID, req)
	if err != nil {
		log.Warn().Err(err).Uint("attemptID", attemptID).Uint("questionID", req.QuestionID).Msg("SubmitAnswer failed")
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, state)
}

// NextQuestion godoc
// @Summary Get the next unanswered question of an attempt
// @Description Deterministic: repeated calls return the same question until an answer is recorded.
// @Tags Sessions
// @Produce json
// @Param attempt_id path int true "Attempt ID"
// @Success 200 {object} dto.SessionStateDTO
// @Failure 404 {object} dto.ErrorResponse
// @Router /attempts/{attempt_id}/next [get]
func (c *SessionController) NextQuestion(ctx *gin.Context) {
	attemptID, ok := controller.ParseUintParam(ctx, "attempt_id")
	if !ok {
		return
	}
	state, err := c.sessions.NextQuestion(attemptID)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, state)
}

// GetAttemptSummary godoc
// @Summary Get the summary of an attempt
// @Tags Sessions
// @Produce json
// @Param attempt_id path int true "Attempt ID"
// @Success 200 {object} dto.AttemptSummaryDTO
// @Failure 404 {object} dto.ErrorResponse
// @Router /attempts/{attempt_id} [get]
func (c *SessionController) GetAttemptSummary(ctx *gin.Context) {
	attemptID, ok := controller.ParseUintParam(ctx, "attempt_id")
	if !ok {
		return
	}
	summary, err := c.sessions.AttemptSummary(attemptID)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, summary)
}

// GetAttemptReport godoc
// @Summary Get the per-question detail table of an attempt
// @Description The data handed to the report renderer: each answered question with the chosen and correct options.
// @Tags Sessions
// @Produce json
// @Param attempt_id path int true "Attempt ID"
// @Success 200 {object} dto.AttemptReportDTO
// @Failure 404 {object} dto.ErrorResponse
// @Router /attempts/{attempt_id}/report [get]
func (c *SessionController) GetAttemptReport(ctx *gin.Context) {
	attemptID, ok := controller.ParseUintParam(ctx, "attempt_id")
	if !ok {
		return
	}
	report, err := c.sessions.AttemptReport(attemptID)
	if err != nil {
		controller.RespondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, report)
}

// GetUserAttempts godoc
// @Summary List a user's attempts for a test
// @Tags Sessions
// @Produce json
// @Param test_id path int true "Test ID"
// @Param user_id query int true "User ID"
// @Success 200 {array} dto.AttemptDTO
// @Failure 400 {object} dto.ErrorResponse
// @Router /tests/{test_id}/my-attempts [get]
func (c *SessionController) GetUserAttempts(ctx *gin.Context) {
	testID, ok := controller.ParseUintParam(ctx, "test_id")
	if !ok {
		return
	}
	userIDRaw := ctx.Query("user_id")
	userID, err := parseUintQuery(userIDRaw)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid user_id query parameter"})
		return
	}

	attempts, svcErr := c.sessions.UserAttempts(userID, testID)
	if svcErr != nil {
		controller.RespondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, attempts)
}
