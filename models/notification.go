package models

import "time"

// Notification types. Each type maps to one sidebar section via Category.
const (
	NotificationGradePublished = "GRADE_PUBLISHED"
	NotificationUrgentPost     = "URGENT_POST"
	NotificationScheduleChange = "SCHEDULE_CHANGE"
)

// Display categories used for badge counts.
const (
	NotificationCategoryGrades   = "Grades"
	NotificationCategoryFeed     = "Feed"
	NotificationCategorySchedule = "Schedule"
)

type Notification struct {
	NotificationID    int        `gorm:"primaryKey;column:notification_id" json:"notification_id"`
	UserID            int        `gorm:"column:user_id;index:idx_user_read" json:"user_id"`
	Type              string     `gorm:"column:type;type:enum('GRADE_PUBLISHED','URGENT_POST','SCHEDULE_CHANGE')" json:"type"`
	Title             string     `gorm:"column:title" json:"title"`
	Message           string     `gorm:"column:message;type:text" json:"message"`
	RelatedEntityType *string    `gorm:"column:related_entity_type" json:"related_entity_type,omitempty"`
	RelatedEntityID   *int       `gorm:"column:related_entity_id" json:"related_entity_id,omitempty"`
	RelatedEntityURL  *string    `gorm:"column:related_entity_url" json:"related_entity_url,omitempty"`
	IsRead            bool       `gorm:"column:is_read;index:idx_user_read" json:"is_read"`
	CreateAt          time.Time  `gorm:"column:create_at" json:"create_at"`
	ReadAt            *time.Time `gorm:"column:read_at" json:"read_at,omitempty"`
}

func (Notification) TableName() string {
	return "notifications"
}

// NotificationCreateRequest for fanning a notification out to an explicit
// recipient list.
type NotificationCreateRequest struct {
	Recipients []int  `json:"recipients" binding:"required,min=1"`
	Type       string `json:"type" binding:"required,oneof=GRADE_PUBLISHED URGENT_POST SCHEDULE_CHANGE"`
	Title      string `json:"title" binding:"required"`
	Message    string `json:"message" binding:"required"`
	EntityType string `json:"related_entity_type"`
	EntityID   int    `json:"related_entity_id"`
	URL        string `json:"related_entity_url"`
}

// NotificationCategory maps a notification type to its display category.
// Unknown types fall back to the Feed section.
func NotificationCategory(notifType string) string {
	switch notifType {
	case NotificationGradePublished:
		return NotificationCategoryGrades
	case NotificationScheduleChange:
		return NotificationCategorySchedule
	default:
		return NotificationCategoryFeed
	}
}

// ValidNotificationType reports whether t is one of the known type names.
func ValidNotificationType(t string) bool {
	switch t {
	case NotificationGradePublished, NotificationUrgentPost, NotificationScheduleChange:
		return true
	}
	return false
}
