package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Response is the envelope of every JSON API response
type Response struct {
	Status     string      `json:"status"`
	Message    string      `json:"message,omitempty"`
	Tournament interface{} `json:"tournament,omitempty"`
	Data       interface{} `json:"data,omitempty"`
}

func SendSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Status: StatusSuccess,
		Data:   data,
	})
}

// SendSuccessWithTournament attaches the tournament header to a payload
func SendSuccessWithTournament(c *gin.Context, tournament interface{}, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Status:     StatusSuccess,
		Tournament: tournament,
		Data:       data,
	})
}

func SendError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Status:  StatusError,
		Message: message,
	})
}

func SendUnavailable(c *gin.Context, message string) {
	SendError(c, http.StatusServiceUnavailable, message)
}
