package response

import (
	"net/http"

	cErr "edulift/internal/pkg/error"

	"github.com/gin-gonic/gin"
)

type Response struct {
	RequestID   string `json:"requestID"`
	Code        int    `json:"code"`
	Data        any    `json:"data"`
	Message     string `json:"message"`
	Description string `json:"description"`
}

func Create(c *gin.Context, data any) {
	c.Status(http.StatusCreated)
	c.Set("data", data)
	c.Set("message", "Create Success")
	c.Abort()
}
func Success(c *gin.Context, data any) {
	c.Set("data", data)
	c.Set("message", "Request Success")
	c.Abort()
}

// NoContent 直接寫出 204，Response middleware 看到已寫出就不再包裝
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
	c.Writer.WriteHeaderNow()
	c.Abort()
}

// Text 純文字回應（health check），不走 JSON 包裝
func Text(c *gin.Context, httpCode int, body string) {
	c.String(httpCode, body)
	c.Abort()
}

func AbortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
func Fail(c *gin.Context, RequestID string, httpCode int, errorCode int, msg string, desc string) {
	c.JSON(httpCode, Response{
		RequestID:   RequestID,
		Code:        errorCode,
		Data:        nil,
		Message:     msg,
		Description: desc,
	})
	c.Abort()
}

func FailByErr(c *gin.Context, RequestID string, err error) {
	v := cErr.From(err)
	Fail(c, RequestID, v.HttpCode(), v.ErrorCode(), v.Error(), v.ErrorDesc())
}
