package handler

import (
	"context"
	"net/http"

	"github.com/ArishaRashid/WhoYap/internal/models"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Quiz generates questions and scores answers.
type Quiz interface {
	NextRound(ctx context.Context, sessionID int64) (*models.Round, error)
	SubmitAnswer(ctx context.Context, sessionID int64, in models.SubmitAnswerInput) (*models.AnswerResult, error)
	Scoreboard(ctx context.Context, sessionID int64) ([]*models.PlayerScore, error)
}

type QuizHandler interface {
	NextRound(c *gin.Context)
	SubmitAnswer(c *gin.Context)
	Scoreboard(c *gin.Context)
}

type quizHandler struct {
	quiz   Quiz
	logger *zap.Logger
}

func NewQuizHandler(quiz Quiz, logger *zap.Logger) QuizHandler {
	return &quizHandler{quiz: quiz, logger: logger}
}

// NextRound handles GET /api/v1/sessions/:id/question
func (h *quizHandler) NextRound(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	round, err := h.quiz.NextRound(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"round": round})
}

// SubmitAnswer handles POST /api/v1/sessions/:id/answers
func (h *quizHandler) SubmitAnswer(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var input models.SubmitAnswerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := h.quiz.SubmitAnswer(c.Request.Context(), id, input)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"result": result})
}

// Scoreboard handles GET /api/v1/sessions/:id/scoreboard
func (h *quizHandler) Scoreboard(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	scores, err := h.quiz.Scoreboard(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"scoreboard": scores})
}
