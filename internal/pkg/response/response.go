// Package response is the single JSON envelope every handler writes:
// {success, data} on the happy path, {success, error{code, message}}
// otherwise. Error codes are stable machine-readable strings
// (VALIDATION_ERROR, QUOTA_EXCEEDED, ...); messages are for humans.
package response

import "github.com/gin-gonic/gin"

func Success(c *gin.Context, statusCode int, data any) {
	c.JSON(statusCode, gin.H{
		"success": true,
		"data":    data,
	})
}

func Error(c *gin.Context, statusCode int, code string, message string) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// ErrorWithDetails carries structured context alongside the code, e.g. the
// current/limit pair on a quota denial.
func ErrorWithDetails(c *gin.Context, statusCode int, code string, message string, details any) {
	c.JSON(statusCode, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}
