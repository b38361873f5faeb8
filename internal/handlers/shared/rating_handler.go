package handlers

import (
	"errors"
	"net/http"

	"tutorhub/internal/models"
	"tutorhub/internal/services"
	"tutorhub/internal/utils"
	"tutorhub/internal/validators"
	"tutorhub/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RatingHandler struct {
	ratingService services.RatingService
	logger        *logger.Logger
}

func NewRatingHandler(ratingService services.RatingService, log *logger.Logger) *RatingHandler {
	return &RatingHandler{
		ratingService: ratingService,
		logger:        log,
	}
}

// CreateRating records the caller's rating of the other party of a match
func (h *RatingHandler) CreateRating(c *gin.Context) {
	var request validators.RatingCreateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	author, ok := authorFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	rating, err := h.ratingService.CreateRating(c.Request.Context(), author, &request)
	if err != nil {
		h.respondError(c, err, "Failed to create rating")
		return
	}

	utils.CreatedResponse(c, "Rating created successfully", rating)
}

// GetRating retrieves a single rating
func (h *RatingHandler) GetRating(c *gin.Context) {
	ratingID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	rating, err := h.ratingService.GetRating(c.Request.Context(), ratingID)
	if err != nil {
		h.respondError(c, err, "Failed to get rating")
		return
	}

	utils.SuccessResponse(c, "Rating retrieved successfully", rating)
}

// UpdateRating applies a partial update to the caller's own rating
func (h *RatingHandler) UpdateRating(c *gin.Context) {
	ratingID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	var request validators.RatingUpdateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.BadRequestResponse(c, "Invalid request: "+err.Error())
		return
	}

	author, ok := authorFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	rating, err := h.ratingService.UpdateRating(c.Request.Context(), author, ratingID, &request)
	if err != nil {
		h.respondError(c, err, "Failed to update rating")
		return
	}

	utils.SuccessResponse(c, "Rating updated successfully", rating)
}

// DeleteRating removes a rating
func (h *RatingHandler) DeleteRating(c *gin.Context) {
	ratingID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}

	author, ok := authorFromContext(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return
	}

	if err := h.ratingService.DeleteRating(c.Request.Context(), author, ratingID); err != nil {
		h.respondError(c, err, "Failed to delete rating")
		return
	}

	utils.SuccessResponse(c, "Rating deleted successfully", nil)
}

// GetMatchRatings lists the ratings left on a match
func (h *RatingHandler) GetMatchRatings(c *gin.Context) {
	matchID, ok := objectIDParam(c, "match_id")
	if !ok {
		return
	}

	ratings, err := h.ratingService.GetMatchRatings(c.Request.Context(), matchID)
	if err != nil {
		h.respondError(c, err, "Failed to get match ratings")
		return
	}

	utils.SuccessResponseWithMeta(c, "Match ratings retrieved successfully", ratings, &utils.Meta{Count: len(ratings)})
}

// GetUserRatings pages through the ratings a user has received
func (h *RatingHandler) GetUserRatings(c *gin.Context) {
	userID, ok := objectIDParam(c, "user_id")
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	ratings, pagination, err := h.ratingService.GetUserRatings(c.Request.Context(), userID, c.Param("user_type"), params)
	if err != nil {
		h.respondError(c, err, "Failed to get user ratings")
		return
	}

	utils.SuccessResponseWithMeta(c, "User ratings retrieved successfully", ratings, &utils.Meta{
		Pagination: pagination,
		Count:      len(ratings),
	})
}

// GetUserRatingStats returns averages and common tags for a user
func (h *RatingHandler) GetUserRatingStats(c *gin.Context) {
	userID, ok := objectIDParam(c, "user_id")
	if !ok {
		return
	}

	stats, err := h.ratingService.GetUserRatingStats(c.Request.Context(), userID, c.Param("user_type"))
	if err != nil {
		h.respondError(c, err, "Failed to get rating stats")
		return
	}

	utils.SuccessResponse(c, "Rating stats retrieved successfully", stats)
}

func (h *RatingHandler) respondError(c *gin.Context, err error, message string) {
	var validationErrs validators.ValidationErrors

	switch {
	case errors.As(err, &validationErrs):
		utils.ValidationErrorResponse(c, validationDetails(validationErrs))
	case errors.Is(err, services.ErrInvalidInput):
		utils.BadRequestResponse(c, err.Error())
	case errors.Is(err, services.ErrNotFound):
		utils.NotFoundResponse(c, err.Error())
	case errors.Is(err, services.ErrConflict):
		utils.ConflictResponse(c, err.Error())
	case errors.Is(err, services.ErrForbidden):
		utils.ForbiddenResponse(c, err.Error())
	case errors.Is(err, services.ErrDependencyWrite):
		h.logger.WithContext(c.Request.Context()).WithError(err).Error(message)
		utils.ErrorResponse(c, http.StatusInternalServerError, "DEPENDENCY_WRITE_FAILED", message+": "+err.Error())
	default:
		h.logger.WithContext(c.Request.Context()).WithError(err).Error(message)
		utils.InternalServerErrorResponse(c)
	}
}

// authorFromContext reads the identity set by the auth middleware.
func authorFromContext(c *gin.Context) (services.Author, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		return services.Author{}, false
	}
	userObjectID, ok := userID.(primitive.ObjectID)
	if !ok {
		return services.Author{}, false
	}

	userType := c.GetString("user_type")
	return services.Author{UserID: userObjectID, Role: models.UserType(userType)}, true
}

func objectIDParam(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, errs := validators.ValidateObjectID(name, c.Param(name))
	if len(errs) > 0 {
		utils.ValidationErrorResponse(c, validationDetails(errs))
		return primitive.NilObjectID, false
	}
	return id, true
}

func validationDetails(errs validators.ValidationErrors) map[string]string {
	details := make(map[string]string, len(errs))
	for _, e := range errs {
		details[e.Field] = e.Message
	}
	return details
}
