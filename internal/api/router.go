package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter wires the route table. imagePath is served statically so
// uploaded recipe photos resolve from the URLs the image store hands out.
func NewRouter(h *Handler, log *zap.Logger, allowedOrigins []string, imagePath string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	r.Static("/images", imagePath)

	v1 := r.Group("/api/v1")
	{
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/register", h.Register)
			authGroup.POST("/login", h.Login)
			authGroup.POST("/logout", authRequired(h.jwt), h.Logout)
			authGroup.GET("/me", authRequired(h.jwt), h.Me)
		}

		v1.GET("/sections", h.ListSections)
		v1.GET("/sections/:name", h.GetSection)
		v1.POST("/sections/:name/more", h.AdvanceSection)

		v1.GET("/search", h.Search)

		v1.GET("/recipes", h.ListRecipes)
		v1.GET("/recipes/:id", h.GetRecipe)
		v1.POST("/recipes", authRequired(h.jwt), h.CreateRecipe)
		v1.GET("/external/:source/:id", h.ExternalRecipeDetail)
		v1.POST("/clip", authRequired(h.jwt), h.ClipRecipe)

		plans := v1.Group("/plans", authRequired(h.jwt))
		{
			plans.POST("", h.CreatePlan)
			plans.GET("", h.ListPlans)
			plans.PUT("/:id/date", h.ReschedulePlan)
			plans.DELETE("/:id", h.DeletePlan)
		}

		v1.POST("/images", authRequired(h.jwt), h.UploadImage)
		v1.POST("/assistant/chat", authRequired(h.jwt), h.AssistantChat)
	}

	return r
}
