package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/bekzodm/levelcheck/internal/apperr"
	"github.com/bekzodm/levelcheck/internal/dto"
	"github.com/bekzodm/levelcheck/internal/event"
	"github.com/bekzodm/levelcheck/internal/model"
	"github.com/bekzodm/levelcheck/internal/repository"
)

// SessionService is the inbound boundary the chat orchestrator calls. It
// composes the engine: ledger, recorder, sequencer, scoring, points. Points
// and events are best effort; their failure never hides a computed score.
type SessionService interface {
	StartOrResume(userID, testID uint) (*dto.SessionStateDTO, error)
	SubmitAnswer(attemptID uint, req dto.SubmitAnswerRequest) (*dto.SessionStateDTO, error)
	NextQuestion(attemptID uint) (*dto.SessionStateDTO, error)
	AttemptSummary(attemptID uint) (*dto.AttemptSummaryDTO, error)
	AttemptReport(attemptID uint) (*dto.AttemptReportDTO, error)
	UserAttempts(userID, testID uint) ([]dto.AttemptDTO, error)
}

type sessionService struct {
	testRepo     repository.TestRepository
	questionRepo repository.QuestionRepository
	attemptRepo  repository.AttemptRepository
	answerRepo   repository.AnswerRepository
	userRepo     repository.UserRepository

	attempts  AttemptService
	answers   AnswerService
	sequencer SequencerService
	scoring   ScoringService
	points    PointsService
	events    event.Publisher
}

func NewSessionService(
	testRepo repository.TestRepository,
	questionRepo repository.QuestionRepository,
	attemptRepo repository.AttemptRepository,
	answerRepo repository.AnswerRepository,
	userRepo repository.UserRepository,
	attempts AttemptService,
	answers AnswerService,
	sequencer SequencerService,
	scoring ScoringService,
	points PointsService,
	events event.Publisher,
) SessionService {
	return &sessionService{
		testRepo:     testRepo,
		questionRepo: questionRepo,
		attemptRepo:  attemptRepo,
		answerRepo:   answerRepo,
		userRepo:     userRepo,
		attempts:     attempts,
		answers:      answers,
		sequencer:    sequencer,
		scoring:      scoring,
		points:       points,
		events:       events,
	}
}

func (s *sessionService) StartOrResume(userID, testID uint) (*dto.SessionStateDTO, error) {
	test, err := s.testRepo.FindByID(testID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFoundf("test %d not found", testID)
	}
	if err != nil {
		return nil, apperr.Storage(err, "load test %d", testID)
	}
	if !test.IsActive {
		return nil, apperr.NotFoundf("test %d is not active", testID)
	}

	resumed := true
	attempt, err := s.attempts.FindActive(userID, testID)
	if err != nil {
		return nil, err
	}
	if attempt == nil {
		resumed = false
		attempt, err = s.attempts.Start(userID, testID)
		if apperr.IsConflict(err) {
			// A parallel start won; resume the attempt it created.
			attempt, err = s.attempts.FindActive(userID, testID)
			resumed = true
		}
		if err != nil {
			return nil, err
		}
		if attempt == nil {
			// Conflict but no live attempt either: it completed in between.
			return nil, apperr.Conflictf("attempt for user %d test %d just completed, start again", userID, testID)
		}
	}

	return s.stateFor(attempt, resumed)
}

func (s *sessionService) SubmitAnswer(attemptID uint, req dto.SubmitAnswerRequest) (*dto.SessionStateDTO, error) {
	if _, err := s.answers.Record(attemptID, req.QuestionID, req.OptionID); err != nil {
		return nil, err
	}
	attempt, err := s.attemptRepo.FindByID(attemptID)
	if err != nil {
		return nil, apperr.Storage(err, "reload attempt %d", attemptID)
	}
	return s.stateFor(attempt, false)
}

func (s *sessionService) NextQuestion(attemptID uint) (*dto.SessionStateDTO, error) {
	attempt, err := s.attemptRepo.FindByID(attemptID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFoundf("attempt %d not found", attemptID)
	}
	if err != nil {
		return nil, apperr.Storage(err, "load attempt %d", attemptID)
	}
	return s.stateFor(attempt, false)
}

// stateFor asks the sequencer for the next question. None left means the
// attempt is due for finalization: score, complete, award, notify.
func (s *sessionService) stateFor(attempt *model.Attempt, resumed bool) (*dto.SessionStateDTO, error) {
	if attempt.Status == model.AttemptStatusCompleted {
		return s.finalState(attempt, resumed)
	}

	question, err := s.sequencer.Next(attempt.TestID, attempt.ID)
	if err != nil {
		return nil, err
	}
	if question == nil {
		return s.finalize(attempt, resumed)
	}

	state := &dto.SessionStateDTO{Resumed: resumed}
	copier.Copy(&state.Attempt, attempt)
	var questionDTO dto.QuestionDTO
	copier.Copy(&questionDTO, question)
	state.Question = &questionDTO
	return state, nil
}

func (s *sessionService) finalize(attempt *model.Attempt, resumed bool) (*dto.SessionStateDTO, error) {
	result, err := s.scoring.Finish(attempt.ID)
	if err != nil {
		return nil, err
	}
	completed, err := s.attempts.Complete(attempt.ID, result)
	if err != nil {
		return nil, err
	}

	state := &dto.SessionStateDTO{Resumed: resumed, Finished: true}
	copier.Copy(&state.Attempt, completed)
	state.Result = &dto.ScoreResultDTO{
		TotalQuestions: result.TotalQuestions,
		TotalScore:     result.TotalScore,
		CorrectCount:   result.CorrectCount,
		WrongCount:     result.WrongCount,
		Percent:        result.Percent,
		Level:          result.Level,
	}

	awarded := 0
	award, err := s.points.Award(completed.UserID, completed.TestID, completed.ID)
	if err != nil {
		// Points are an enhancement; the score still goes out.
		log.Warn().Err(err).Uint("attemptID", completed.ID).Msg("Points award failed, reporting score without it")
	} else {
		awarded = award.Awarded
		state.Points = &dto.AwardDTO{
			Awarded:       award.Awarded,
			MonthlyTotal:  award.MonthlyTotal,
			LifetimeTotal: award.LifetimeTotal,
		}
	}

	evt := event.AttemptCompletedEvent{
		AttemptID:    completed.ID,
		UserID:       completed.UserID,
		TestID:       completed.TestID,
		Percent:      result.Percent,
		Level:        result.Level,
		CorrectCount: result.CorrectCount,
		WrongCount:   result.WrongCount,
		PointsAward:  awarded,
	}
	if completed.FinishedAt != nil {
		evt.FinishedAt = completed.FinishedAt.Unix()
	}
	s.events.AttemptCompleted(context.Background(), evt)

	return state, nil
}

// finalState rebuilds the terminal view of an already-completed attempt. The
// score fields come from the attempt row as written at completion; the counts
// come from the stored answers, so a redelivered message renders the same
// payload as the original completion. Nothing is re-scored or re-awarded.
func (s *sessionService) finalState(attempt *model.Attempt, resumed bool) (*dto.SessionStateDTO, error) {
	state := &dto.SessionStateDTO{Resumed: resumed, Finished: true}
	copier.Copy(&state.Attempt, attempt)
	if attempt.Percent == nil {
		return state, nil
	}

	totalQuestions, err := s.testRepo.CountQuestions(attempt.TestID)
	if err != nil {
		return nil, apperr.Storage(err, "count questions of test %d", attempt.TestID)
	}
	answers, err := s.answerRepo.FindByAttemptID(attempt.ID)
	if err != nil {
		return nil, apperr.Storage(err, "load answers of attempt %d", attempt.ID)
	}

	result := &dto.ScoreResultDTO{
		TotalQuestions: int(totalQuestions),
		Percent:        *attempt.Percent,
	}
	for _, answer := range answers {
		if answer.IsCorrect {
			result.CorrectCount++
		}
	}
	result.WrongCount = result.TotalQuestions - result.CorrectCount
	if result.WrongCount < 0 {
		result.WrongCount = 0
	}
	if attempt.Score != nil {
		result.TotalScore = *attempt.Score
	}
	if attempt.LevelGuess != nil {
		result.Level = *attempt.LevelGuess
	}
	state.Result = result
	return state, nil
}

func (s *sessionService) AttemptSummary(attemptID uint) (*dto.AttemptSummaryDTO, error) {
	attempt, err := s.attemptRepo.FindByIDWithTest(attemptID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFoundf("attempt %d not found", attemptID)
	}
	if err != nil {
		return nil, apperr.Storage(err, "load attempt %d", attemptID)
	}

	var summary dto.AttemptSummaryDTO
	copier.Copy(&summary.AttemptDTO, attempt)
	summary.TestName = attempt.Test.Name
	summary.TestCode = attempt.Test.Code

	user, err := s.userRepo.FindByID(attempt.UserID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Storage(err, "load user %d", attempt.UserID)
	}
	if user != nil {
		summary.UserFullName = user.FullName
		summary.Username = user.Username
		summary.Phone = user.Phone
	}
	return &summary, nil
}

func (s *sessionService) AttemptReport(attemptID uint) (*dto.AttemptReportDTO, error) {
	summary, err := s.AttemptSummary(attemptID)
	if err != nil {
		return nil, err
	}

	answers, err := s.answerRepo.FindByAttemptIDWithDetails(attemptID)
	if err != nil {
		return nil, apperr.Storage(err, "load answers of attempt %d", attemptID)
	}
	correctOptions, err := s.questionRepo.FindCorrectOptionsByTestID(summary.TestID)
	if err != nil {
		return nil, apperr.Storage(err, "load correct options of test %d", summary.TestID)
	}
	correctByQuestion := make(map[uint][]string)
	for _, option := range correctOptions {
		correctByQuestion[option.QuestionID] = append(correctByQuestion[option.QuestionID], option.Text)
	}

	rows := make([]dto.AttemptReportRowDTO, 0, len(answers))
	for _, answer := range answers {
		rows = append(rows, dto.AttemptReportRowDTO{
			QuestionID:     answer.QuestionID,
			QuestionText:   answer.Question.Text,
			SortOrder:      answer.Question.SortOrder,
			ChosenAnswer:   answer.Option.Text,
			CorrectAnswers: strings.Join(correctByQuestion[answer.QuestionID], ", "),
			IsCorrect:      answer.IsCorrect,
			AwardedScore:   answer.AwardedScore,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].SortOrder != rows[j].SortOrder {
			return rows[i].SortOrder < rows[j].SortOrder
		}
		return rows[i].QuestionID < rows[j].QuestionID
	})

	return &dto.AttemptReportDTO{Summary: *summary, Rows: rows}, nil
}

func (s *sessionService) UserAttempts(userID, testID uint) ([]dto.AttemptDTO, error) {
	attempts, err := s.attemptRepo.FindAllByUserAndTest(userID, testID)
	if err != nil {
		return nil, apperr.Storage(err, "list attempts for user %d test %d", userID, testID)
	}
	out := make([]dto.AttemptDTO, len(attempts))
	for i := range attempts {
		copier.Copy(&out[i], &attempts[i])
	}
	return out, nil
}
