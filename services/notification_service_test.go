package services

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"school-management-api/models"
)

func TestBatchRecipientsSplitsAtBoundary(t *testing.T) {
	makeRecipients := func(n int) []Recipient {
		out := make([]Recipient, n)
		for i := range out {
			out[i] = Recipient{UserID: i + 1}
		}
		return out
	}

	cases := []struct {
		name      string
		count     int
		size      int
		wantSizes []int
	}{
		{"empty", 0, 100, nil},
		{"below limit", 7, 100, []int{7}},
		{"exact limit", 100, 100, []int{100}},
		{"one over", 101, 100, []int{100, 1}},
		{"two and a half", 250, 100, []int{100, 100, 50}},
		{"zero size falls back", 5, 0, []int{5}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			batches := batchRecipients(makeRecipients(tc.count), tc.size)
			if len(batches) != len(tc.wantSizes) {
				t.Fatalf("got %d batches, want %d", len(batches), len(tc.wantSizes))
			}
			total := 0
			for i, b := range batches {
				if len(b) != tc.wantSizes[i] {
					t.Fatalf("batch %d has %d entries, want %d", i, len(b), tc.wantSizes[i])
				}
				total += len(b)
			}
			if total != tc.count {
				t.Fatalf("batches cover %d recipients, want %d", total, tc.count)
			}
		})
	}
}

func TestBuildNotificationOmitsEmptyEntityAndURL(t *testing.T) {
	now := time.Now()

	plain := buildNotification(7, NotificationInput{Type: models.NotificationUrgentPost, Title: "t", Message: "m"}, now)
	if plain.RelatedEntityType != nil || plain.RelatedEntityID != nil || plain.RelatedEntityURL != nil {
		t.Fatalf("expected no related entity fields, got %+v", plain)
	}
	if plain.IsRead {
		t.Fatal("new notification must start unread")
	}
	if plain.ReadAt != nil {
		t.Fatal("new notification must have no read timestamp")
	}

	full := buildNotification(7, NotificationInput{
		Type:       models.NotificationGradePublished,
		Title:      "t",
		Message:    "m",
		EntityType: "Grade",
		EntityID:   42,
		URL:        "/grades",
	}, now)
	if full.RelatedEntityType == nil || *full.RelatedEntityType != "Grade" {
		t.Fatalf("unexpected entity type: %v", full.RelatedEntityType)
	}
	if full.RelatedEntityID == nil || *full.RelatedEntityID != 42 {
		t.Fatalf("unexpected entity id: %v", full.RelatedEntityID)
	}
	if full.RelatedEntityURL == nil || *full.RelatedEntityURL != "/grades" {
		t.Fatalf("unexpected url: %v", full.RelatedEntityURL)
	}
}

func TestNotifyUsersBatchesAndSkipsFailedBatch(t *testing.T) {
	recipients := make([]Recipient, 250)
	for i := range recipients {
		recipients[i] = Recipient{UserID: i + 1}
	}

	insertPattern := regexp.MustCompile("INSERT INTO `notifications`")
	steps := []*queryStep{
		{kind: kindExec, pattern: insertPattern, result: scriptedResult{lastInsertID: 1, rowsAffected: 100}},
		{kind: kindExec, pattern: insertPattern, err: errors.New("deadlock")},
		{kind: kindExec, pattern: insertPattern, result: scriptedResult{lastInsertID: 201, rowsAffected: 50}},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewNotificationService(db)
	created := svc.NotifyUsers(recipients, NotificationInput{
		Type:    models.NotificationUrgentPost,
		Title:   "New Post",
		Message: "exam moved",
	})

	if created != 150 {
		t.Fatalf("expected 150 created after one failed batch, got %d", created)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestNotifyUsersNoRecipientsTouchesNothing(t *testing.T) {
	db, state, cleanup := newScriptedGormDB(t, nil)
	defer cleanup()

	svc := NewNotificationService(db)
	if created := svc.NotifyUsers(nil, NotificationInput{Type: models.NotificationUrgentPost}); created != 0 {
		t.Fatalf("expected 0 created, got %d", created)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("unexpected statements: %v", err)
	}
}

func TestNotifyUserIDsValidatesBeforeWriting(t *testing.T) {
	db, state, cleanup := newScriptedGormDB(t, nil)
	defer cleanup()

	svc := NewNotificationService(db)

	var valErr *ValidationError
	_, err := svc.NotifyUserIDs([]int{1}, NotificationInput{Type: "NOT_A_TYPE", Title: "t"})
	if !errors.As(err, &valErr) {
		t.Fatalf("expected validation error for unknown type, got %v", err)
	}

	_, err = svc.NotifyUserIDs(nil, NotificationInput{Type: models.NotificationScheduleChange, Title: "t"})
	if !errors.As(err, &valErr) {
		t.Fatalf("expected validation error for empty recipients, got %v", err)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("unexpected statements: %v", err)
	}
}

func TestNotifyUserIDsWritesOneRowPerRecipient(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("INSERT INTO `notifications`"),
			result:  scriptedResult{lastInsertID: 1, rowsAffected: 3},
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewNotificationService(db)
	created, err := svc.NotifyUserIDs([]int{4, 5, 6}, NotificationInput{
		Type:    models.NotificationScheduleChange,
		Title:   "Room change",
		Message: "Lecture moved to B204",
	})
	if err != nil {
		t.Fatalf("NotifyUserIDs returned error: %v", err)
	}
	if created != 3 {
		t.Fatalf("expected 3 created, got %d", created)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListFirstPageStartsAtNewest(t *testing.T) {
	steps := []*queryStep{
		// Page 0 must carry no offset so the newest rows are returned.
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("(?s)SELECT \\* FROM `notifications` WHERE user_id = \\?.*ORDER BY create_at DESC, notification_id DESC LIMIT 20$"),
			args:    []driver.Value{int64(9)},
			columns: []string{"notification_id"},
			rows:    [][]driver.Value{{int64(41)}},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("(?s)SELECT \\* FROM `notifications` WHERE user_id = \\?.*ORDER BY create_at DESC, notification_id DESC LIMIT 20 OFFSET 20$"),
			args:    []driver.Value{int64(9)},
			columns: []string{"notification_id"},
			rows:    [][]driver.Value{},
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewNotificationService(db)

	first, err := svc.List(9, 0, 20)
	if err != nil {
		t.Fatalf("List page 0 returned error: %v", err)
	}
	if len(first) != 1 || first[0].NotificationID != 41 {
		t.Fatalf("unexpected first page: %+v", first)
	}

	if _, err := svc.List(9, 1, 20); err != nil {
		t.Fatalf("List page 1 returned error: %v", err)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMarkReadOnlyTouchesUnreadRows(t *testing.T) {
	pattern := regexp.MustCompile(`UPDATE notifications SET is_read = 1, read_at = NOW\(\) WHERE notification_id = \? AND user_id = \? AND is_read = 0`)
	steps := []*queryStep{
		{kind: kindExec, pattern: pattern, args: []driver.Value{int64(5), int64(9)}, result: scriptedResult{rowsAffected: 1}},
		{kind: kindExec, pattern: pattern, args: []driver.Value{int64(5), int64(9)}, result: scriptedResult{rowsAffected: 0}},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewNotificationService(db)
	if err := svc.MarkRead(5, 9); err != nil {
		t.Fatalf("first mark read failed: %v", err)
	}
	// Second call matches no rows and must still succeed.
	if err := svc.MarkRead(5, 9); err != nil {
		t.Fatalf("repeated mark read failed: %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUnreadCountsByCategoryFoldsTypes(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile(`SELECT type, COUNT\(\*\) AS total FROM notifications WHERE user_id = \? AND is_read = 0 GROUP BY type`),
			args:    []driver.Value{int64(3)},
			columns: []string{"type", "total"},
			rows: [][]driver.Value{
				{models.NotificationGradePublished, int64(2)},
				{models.NotificationUrgentPost, int64(1)},
				{models.NotificationScheduleChange, int64(4)},
			},
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	svc := NewNotificationService(db)
	counts, err := svc.UnreadCountsByCategory(3)
	if err != nil {
		t.Fatalf("UnreadCountsByCategory returned error: %v", err)
	}

	want := map[string]int64{
		models.NotificationCategoryGrades:   2,
		models.NotificationCategoryFeed:     1,
		models.NotificationCategorySchedule: 4,
	}
	if fmt.Sprint(counts) != fmt.Sprint(want) {
		t.Fatalf("got %v, want %v", counts, want)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestMarkTypeReadRejectsUnknownType(t *testing.T) {
	db, state, cleanup := newScriptedGormDB(t, nil)
	defer cleanup()

	svc := NewNotificationService(db)
	err := svc.MarkTypeRead(1, "SOMETHING_ELSE")
	var valErr *ValidationError
	if !errors.As(err, &valErr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("unexpected statements: %v", err)
	}
}
