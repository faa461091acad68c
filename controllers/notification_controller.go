package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"school-management-api/models"
	"school-management-api/services"
)

/* ==========================
   Notification endpoints
   ========================== */

// GetNotifications lists the logged-in user's notifications, newest first.
// Supports ?page= and ?size= pagination; page numbering starts at 0.
func GetNotifications(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "0"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	notifications, err := notificationService().List(userID, page, size)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"page":          page,
		"total":         len(notifications),
	})
}

// CreateNotification fans a notification out to an explicit recipient list.
// Teachers, department heads and admins only.
func CreateNotification(c *gin.Context) {
	if _, ok := getCurrentUserID(c); !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req models.NotificationCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := notificationService().NotifyUserIDs(req.Recipients, services.NotificationInput{
		Type:       req.Type,
		Title:      req.Title,
		Message:    req.Message,
		EntityType: req.EntityType,
		EntityID:   req.EntityID,
		URL:        req.URL,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Notifications created",
		"created": created,
	})
}

// GetUnreadCount returns the total unread count plus a per-category split
// for the badge rendering.
func GetUnreadCount(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	total, err := notificationService().UnreadCount(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	byCategory, err := notificationService().UnreadCountsByCategory(userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"unread_count": total,
		"by_category":  byCategory,
	})
}

// MarkNotificationRead marks one notification read. Repeating the call is a
// no-op; the read timestamp is set only on the first transition.
func MarkNotificationRead(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	notificationID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid notification ID"})
		return
	}

	if err := notificationService().MarkRead(notificationID, userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// MarkAllNotificationsRead marks every unread notification of the user read.
func MarkAllNotificationsRead(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := notificationService().MarkAllRead(userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "All notifications marked as read"})
}

// MarkNotificationTypeRead clears the unread state for one notification type,
// e.g. when the user opens the grades tab.
func MarkNotificationTypeRead(c *gin.Context) {
	userID, ok := getCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	notifType := c.Param("type")
	if !models.ValidNotificationType(notifType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown notification type"})
		return
	}

	if err := notificationService().MarkTypeRead(userID, notifType); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notifications marked as read"})
}
