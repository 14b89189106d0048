package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"resumeKit/internal/errcode"
)

func Error(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

// ErrorWithCode 附带业务错误码，便于前端区分同一 HTTP 状态下的不同原因。
func ErrorWithCode(c *gin.Context, status, code int, msg string) {
	c.JSON(status, gin.H{"error": msg, "code": code})
}

func AbortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
}

func BadRequest(c *gin.Context, msg string) { Error(c, http.StatusBadRequest, msg) }
func NotFound(c *gin.Context, msg string)   { Error(c, http.StatusNotFound, msg) }
func Conflict(c *gin.Context, msg string)   { Error(c, http.StatusConflict, msg) }
func Internal(c *gin.Context, msg string)   { ErrorWithCode(c, http.StatusInternalServerError, errcode.SystemError, msg) }

func Unprocessable(c *gin.Context, msg string) {
	ErrorWithCode(c, http.StatusUnprocessableEntity, errcode.InvalidRequest, msg)
}
