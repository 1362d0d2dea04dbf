package response

import "github.com/gin-gonic/gin"

func Success(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, data)
}

func Error(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, gin.H{"detail": message})
}

// FieldErrors renders per-field validation messages the way the write
// endpoints promise them: {"field": ["message"]}.
func FieldErrors(c *gin.Context, statusCode int, fields map[string]string) {
	body := make(map[string][]string, len(fields))
	for field, msg := range fields {
		body[field] = []string{msg}
	}
	c.JSON(statusCode, body)
}
