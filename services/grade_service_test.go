package services

import (
	"testing"

	"school-management-api/models"
)

func TestGradeNotificationCarriesGradeReference(t *testing.T) {
	in := gradeNotification("Grade Published", "Algorithms", 15.5, 77)

	if in.Type != models.NotificationGradePublished {
		t.Fatalf("unexpected type: %s", in.Type)
	}
	if in.Message != "New grade published for Algorithms: 15.50/20" {
		t.Fatalf("unexpected message: %q", in.Message)
	}
	if in.EntityType != "Grade" || in.EntityID != 77 {
		t.Fatalf("expected Grade/77 entity reference, got %s/%d", in.EntityType, in.EntityID)
	}
	if in.URL != "/grades" {
		t.Fatalf("unexpected url: %q", in.URL)
	}
}
