package controllers

import (
	"errors"
	"net/http"

	"pitchhub/internal/live"
	"pitchhub/models"
	"pitchhub/services"

	"github.com/gin-gonic/gin"
)

// errorStatus maps service errors to HTTP statuses. Busy sessions are a
// conflict, ended sessions are gone, everything unexpected is a 500.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrTurnInProgress):
		return http.StatusConflict
	case errors.Is(err, services.ErrSessionEnded):
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

type StartSimulationRequest struct {
	ScenarioType    string                `json:"scenarioType" binding:"required"`
	DifficultyLevel string                `json:"difficultyLevel" binding:"omitempty,oneof=easy medium hard"`
	TraineeID       string                `json:"traineeId" binding:"required"`
	CustomPersona   *models.PersonaConfig `json:"customPersona"`
}

func StartSimulation(c *gin.Context) {
	var req StartSimulationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	result, err := services.GetSimulationService().StartSimulation(c.Request.Context(), services.StartRequest{
		ScenarioType:    req.ScenarioType,
		DifficultyLevel: req.DifficultyLevel,
		TraineeID:       req.TraineeID,
		CustomPersona:   req.CustomPersona,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

type SendMessageRequest struct {
	Message string `json:"message" binding:"required"`
}

func SendSimulationMessage(c *gin.Context) {
	sessionID := c.Param("id")

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	limiter := live.NewRateLimiter()
	if !limiter.AllowMessage(sessionID, live.DefaultRateLimitConfig()) {
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many messages, slow down"})
		return
	}

	result, err := services.GetSimulationService().ProcessMessage(c.Request.Context(), sessionID, req.Message)
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}

type EndSimulationRequest struct {
	EndReason string `json:"endReason" binding:"omitempty,oneof=completed abandoned timeout"`
}

func EndSimulation(c *gin.Context) {
	sessionID := c.Param("id")

	var req EndSimulationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if req.EndReason == "" {
		req.EndReason = "completed"
	}

	result, err := services.GetSimulationService().EndSimulation(c.Request.Context(), sessionID, req.EndReason)
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}

	live.NewRateLimiter().Reset(sessionID)
	c.JSON(http.StatusOK, result)
}

func AnalyzeSimulation(c *gin.Context) {
	sessionID := c.Param("id")

	report, err := services.AnalyzeSimulation(c.Request.Context(), services.GetSimulationService().Gateway(), sessionID)
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}

func GetSimulation(c *gin.Context) {
	sessionID := c.Param("id")

	session, err := services.GetSimulationService().GetSession(c.Request.Context(), sessionID)
	if err != nil {
		c.JSON(errorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, session)
}
