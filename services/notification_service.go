package services

import (
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"school-management-api/config"
	"school-management-api/models"
)

// Recipients are written in slices of this size so a department-wide fan-out
// never turns into one giant insert.
const fanOutBatchSize = 100

// NotificationService creates notifications and tracks their read state.
type NotificationService struct {
	db *gorm.DB
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{db: db}
}

// NotificationInput carries the content shared by every row of one fan-out.
type NotificationInput struct {
	Type       string
	Title      string
	Message    string
	EntityType string
	EntityID   int
	URL        string
}

// Notify creates a single notification row.
func (s *NotificationService) Notify(userID int, in NotificationInput) error {
	n := buildNotification(userID, in, time.Now())
	return s.db.Create(&n).Error
}

// NotifyUsers creates one notification per recipient in bounded batches.
// A failed batch is logged and skipped; the remaining batches still run, and
// no error is ever returned to the caller. Returns the number of rows written.
func (s *NotificationService) NotifyUsers(recipients []Recipient, in NotificationInput) int {
	if len(recipients) == 0 {
		return 0
	}

	runID := uuid.NewString()
	now := time.Now()
	created := 0

	for _, batch := range batchRecipients(recipients, fanOutBatchSize) {
		rows := make([]models.Notification, 0, len(batch))
		for _, r := range batch {
			rows = append(rows, buildNotification(r.UserID, in, now))
		}
		if err := s.db.Create(&rows).Error; err != nil {
			log.Printf("notification fan-out %s: batch of %d failed: %v", runID, len(rows), err)
			continue
		}
		created += len(rows)
	}

	log.Printf("notification fan-out %s: created %d/%d notifications (type=%s entity=%s/%d)",
		runID, created, len(recipients), in.Type, in.EntityType, in.EntityID)
	return created
}

// NotifyUserIDs fans a notification out to an explicit recipient list, the
// entry point behind the producer endpoint. The type must be one of the
// known notification types and at least one recipient is required.
func (s *NotificationService) NotifyUserIDs(userIDs []int, in NotificationInput) (int, error) {
	if !models.ValidNotificationType(in.Type) {
		return 0, validationf("unknown notification type %q", in.Type)
	}
	if len(userIDs) == 0 {
		return 0, validationf("at least one recipient is required")
	}

	recipients := make([]Recipient, 0, len(userIDs))
	for _, id := range userIDs {
		recipients = append(recipients, Recipient{UserID: id})
	}
	return s.NotifyUsers(recipients, in), nil
}

// EmailCopies sends a best-effort email copy of a notification to every
// recipient with an address. Failures are logged, never returned.
func (s *NotificationService) EmailCopies(recipients []Recipient, subject, message string) {
	for _, r := range recipients {
		if r.Email == "" {
			continue
		}
		if err := config.SendMail([]string{r.Email}, subject, config.FormalEmailHTML(subject, message)); err != nil {
			log.Printf("notification email send failed (subject=%q to=%s): %v", subject, r.Email, err)
		}
	}
}

func buildNotification(userID int, in NotificationInput, now time.Time) models.Notification {
	n := models.Notification{
		UserID:   userID,
		Type:     in.Type,
		Title:    in.Title,
		Message:  in.Message,
		IsRead:   false,
		CreateAt: now,
	}
	if in.EntityType != "" {
		entityType := in.EntityType
		entityID := in.EntityID
		n.RelatedEntityType = &entityType
		n.RelatedEntityID = &entityID
	}
	if in.URL != "" {
		url := in.URL
		n.RelatedEntityURL = &url
	}
	return n
}

// batchRecipients splits recipients into slices of at most size entries.
func batchRecipients(recipients []Recipient, size int) [][]Recipient {
	if size <= 0 {
		size = fanOutBatchSize
	}
	var batches [][]Recipient
	for start := 0; start < len(recipients); start += size {
		end := start + size
		if end > len(recipients) {
			end = len(recipients)
		}
		batches = append(batches, recipients[start:end])
	}
	return batches
}

// List returns one page of a user's notifications, newest first.
func (s *NotificationService) List(userID, page, size int) ([]models.Notification, error) {
	if size <= 0 || size > 100 {
		size = 20
	}
	if page < 0 {
		page = 0
	}

	var items []models.Notification
	err := s.db.Where("user_id = ?", userID).
		Order("create_at DESC, notification_id DESC").
		Limit(size).Offset(page * size).
		Find(&items).Error
	return items, err
}

// UnreadCount returns the total number of unread notifications for a user.
func (s *NotificationService) UnreadCount(userID int) (int64, error) {
	var n int64
	err := s.db.Raw(`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND is_read = 0`, userID).Scan(&n).Error
	return n, err
}

// UnreadCountsByCategory returns unread counts keyed by display category
// (Grades/Feed/Schedule) for sidebar badges.
func (s *NotificationService) UnreadCountsByCategory(userID int) (map[string]int64, error) {
	var rows []struct {
		Type  string `gorm:"column:type"`
		Total int64  `gorm:"column:total"`
	}
	err := s.db.Raw(`SELECT type, COUNT(*) AS total FROM notifications WHERE user_id = ? AND is_read = 0 GROUP BY type`, userID).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[models.NotificationCategory(row.Type)] += row.Total
	}
	return counts, nil
}

// MarkRead marks one notification read. Marking an already-read notification
// is a no-op: read_at keeps its original value.
func (s *NotificationService) MarkRead(notificationID, userID int) error {
	return s.db.Exec(`UPDATE notifications SET is_read = 1, read_at = NOW() WHERE notification_id = ? AND user_id = ? AND is_read = 0`,
		notificationID, userID).Error
}

// MarkAllRead marks every unread notification of a user read.
func (s *NotificationService) MarkAllRead(userID int) error {
	return s.db.Exec(`UPDATE notifications SET is_read = 1, read_at = NOW() WHERE user_id = ? AND is_read = 0`,
		userID).Error
}

// MarkTypeRead marks all unread notifications of one type read, used when a
// user opens the matching feed section.
func (s *NotificationService) MarkTypeRead(userID int, notifType string) error {
	if !models.ValidNotificationType(notifType) {
		return validationf("unknown notification type %q", notifType)
	}
	return s.db.Exec(`UPDATE notifications SET is_read = 1, read_at = NOW() WHERE user_id = ? AND type = ? AND is_read = 0`,
		userID, notifType).Error
}
