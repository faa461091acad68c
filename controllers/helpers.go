package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"school-management-api/config"
	"school-management-api/services"
)

/* ==========================
   Helpers
   ========================== */

func getDB() *gorm.DB { return config.DB }

func getCurrentUserID(c *gin.Context) (int, bool) {
	if v, ok := c.Get("userID"); ok {
		switch t := v.(type) {
		case int:
			return t, true
		case int64:
			return int(t), true
		case float64:
			return int(t), true
		case uint:
			return int(t), true
		}
	}
	return 0, false
}

func getCurrentRoleID(c *gin.Context) (int, bool) {
	if v, ok := c.Get("roleID"); ok {
		switch t := v.(type) {
		case int:
			return t, true
		case int64:
			return int(t), true
		case float64:
			return int(t), true
		case uint:
			return int(t), true
		}
	}
	return 0, false
}

// Service accessors. The structs are cheap wrappers over the shared *gorm.DB,
// so building them per request keeps the handlers free of global state.
func membershipService() *services.MembershipService {
	return services.NewMembershipService(getDB())
}

func authzService() *services.AuthzService {
	return services.NewAuthzService(getDB(), membershipService())
}

func notificationService() *services.NotificationService {
	return services.NewNotificationService(getDB())
}

func postService() *services.PostService {
	return services.NewPostService(getDB(), membershipService(), authzService(), notificationService())
}

func gradeService() *services.GradeService {
	return services.NewGradeService(getDB(), notificationService())
}

// respondError translates service errors into the API's response envelope.
func respondError(c *gin.Context, err error) {
	var stateErr *services.StateError
	var valErr *services.ValidationError

	switch {
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Resource not found"})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
	case errors.As(err, &stateErr):
		c.JSON(http.StatusConflict, gin.H{"error": stateErr.Error(), "current_status": stateErr.Current})
	case errors.As(err, &valErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": valErr.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
