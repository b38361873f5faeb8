package routes

import (
	handlers "tutorhub/internal/handlers/shared"
	"tutorhub/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupRatingRoutes sets up routes for match ratings
func SetupRatingRoutes(r *gin.RouterGroup, ratingHandler *handlers.RatingHandler, jwtSecret string) {
	ratings := r.Group("/ratings")
	ratings.Use(middleware.AuthRequired(jwtSecret))
	{
		// Rating CRUD
		ratings.POST("", middleware.RoleRequired("parent", "tutor"), ratingHandler.CreateRating)
		ratings.GET("/:id", ratingHandler.GetRating)
		ratings.PUT("/:id", ratingHandler.UpdateRating)
		ratings.DELETE("/:id", ratingHandler.DeleteRating)

		// Match ratings
		ratings.GET("/match/:match_id", ratingHandler.GetMatchRatings)

		// Ratings received by a user
		ratings.GET("/user/:user_id/:user_type", ratingHandler.GetUserRatings)
		ratings.GET("/user/:user_id/:user_type/stats", ratingHandler.GetUserRatingStats)
	}
}
