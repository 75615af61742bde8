package utils

import "github.com/gin-gonic/gin"

func Success(c *gin.Context, data gin.H) {
	c.JSON(200, gin.H{
		"success": true,
		"data":    data,
	})
}

// SuccessList renders a list payload with an optional explanatory message.
func SuccessList(c *gin.Context, data []gin.H, message string) {
	body := gin.H{
		"success": true,
		"data":    data,
	}
	if message != "" {
		body["message"] = message
	}
	c.JSON(200, body)
}

func Error(c *gin.Context, code int, msg string) {
	c.JSON(code, gin.H{
		"success": false,
		"error":   msg,
	})
}
