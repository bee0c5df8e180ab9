package router

import (
	"edulift/internal/handler"
	"edulift/internal/middleware"

	"github.com/gin-gonic/gin"
)

type UserRouter struct {
	userHandler *handler.UserHandler
	rateLimit   *middleware.RateLimit
}

func NewUserRouter(
	userHandler *handler.UserHandler,
	rateLimit *middleware.RateLimit,
) *UserRouter {
	return &UserRouter{
		userHandler: userHandler,
		rateLimit:   rateLimit,
	}
}

func (ur *UserRouter) RegisterRoutes(r *gin.Engine) {
	users := r.Group("/api/users")
	{
		// 靜態路徑需在 /:id 之前註冊
		users.GET("/health", ur.userHandler.Health)
		users.GET("/lookup", ur.userHandler.Lookup)
		users.GET("/stats", ur.userHandler.Stats)

		users.GET("", ur.userHandler.List)
		users.GET("/:id", ur.userHandler.Get)

		// 寫入類 API 才限流
		write := users.Group("", ur.rateLimit.Guard())
		write.POST("", ur.userHandler.Create)
		write.PUT("/:id", ur.userHandler.Update)
		write.DELETE("/:id", ur.userHandler.Delete)
	}
}
