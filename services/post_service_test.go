package services

import (
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"school-management-api/models"
)

func TestTargetFromRequest(t *testing.T) {
	cases := []struct {
		name       string
		visibility string
		deptID     *int
		classID    *int
		groupID    *int
		want       models.Target
		wantErr    bool
	}{
		{
			name:       "department target",
			visibility: models.VisibilityDepartment,
			deptID:     intPtr(2),
			want:       models.Target{Type: models.VisibilityDepartment, ID: 2},
		},
		{
			name:       "class target",
			visibility: models.VisibilityClass,
			classID:    intPtr(8),
			want:       models.Target{Type: models.VisibilityClass, ID: 8},
		},
		{
			name:       "group target",
			visibility: models.VisibilityGroup,
			groupID:    intPtr(15),
			want:       models.Target{Type: models.VisibilityGroup, ID: 15},
		},
		{
			name:       "no target",
			visibility: models.VisibilityGroup,
			wantErr:    true,
		},
		{
			name:       "two targets",
			visibility: models.VisibilityClass,
			classID:    intPtr(8),
			groupID:    intPtr(15),
			wantErr:    true,
		},
		{
			name:       "target level does not match visibility",
			visibility: models.VisibilityDepartment,
			groupID:    intPtr(15),
			wantErr:    true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := TargetFromRequest(tc.visibility, tc.deptID, tc.classID, tc.groupID)
			if tc.wantErr {
				var valErr *ValidationError
				if !errors.As(err, &valErr) {
					t.Fatalf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestDedupePostsKeepsFirstOccurrence(t *testing.T) {
	posts := []models.Post{
		{PostID: 4, Title: "exam schedule"},
		{PostID: 2, Title: "lab groups"},
		{PostID: 4, Title: "exam schedule"},
		{PostID: 1, Title: "welcome"},
		{PostID: 2, Title: "lab groups"},
	}

	got := DedupePosts(posts)
	wantIDs := []int{4, 2, 1}
	if len(got) != len(wantIDs) {
		t.Fatalf("got %d posts, want %d", len(got), len(wantIDs))
	}
	for i, id := range wantIDs {
		if got[i].PostID != id {
			t.Fatalf("position %d: got post %d, want %d", i, got[i].PostID, id)
		}
	}
}

func TestVisiblePostsForStudentWithoutGroupNeverMatchesGroupPosts(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT \\* FROM `students` WHERE user_id = \\?"),
			args:    []driver.Value{int64(31)},
			columns: []string{"student_id", "user_id", "student_no", "department_id", "class_id", "group_id", "status"},
			rows:    [][]driver.Value{{int64(12), int64(31), "CS-0012", int64(5), int64(8), nil, "active"}},
		},
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("(?s)SELECT \\* FROM `posts` WHERE status = \\?.*target_group_id = \\?.*ORDER BY published_at DESC, post_id DESC"),
			args:    []driver.Value{models.PostStatusApproved, int64(5), int64(8), int64(-1)},
			columns: []string{"post_id"},
			rows:    [][]driver.Value{},
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	members := NewMembershipService(db)
	svc := NewPostService(db, members, NewAuthzService(db, members), NewNotificationService(db))

	posts, err := svc.VisiblePostsForStudent(31)
	if err != nil {
		t.Fatalf("VisiblePostsForStudent returned error: %v", err)
	}
	if len(posts) != 0 {
		t.Fatalf("expected no posts, got %d", len(posts))
	}

	// The group placeholder must be -1 for students outside any group; that
	// assertion lives in the scripted args above.
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestArchiveClearsPublishedAt(t *testing.T) {
	postPattern := regexp.MustCompile("SELECT \\* FROM `posts` WHERE post_id = \\?")
	authorPattern := regexp.MustCompile("SELECT \\* FROM `users`")
	postColumns := []string{"post_id", "author_id", "status", "published_at"}
	published := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: postPattern,
			args:    []driver.Value{int64(7)},
			columns: postColumns,
			rows:    [][]driver.Value{{int64(7), int64(3), models.PostStatusApproved, published}},
		},
		{
			kind:    kindQuery,
			pattern: authorPattern,
			columns: []string{"user_id"},
			rows:    [][]driver.Value{{int64(3)}},
		},
		{
			kind:    kindExec,
			pattern: regexp.MustCompile("UPDATE `posts` SET `published_at`=\\?,`status`=\\?,`update_at`=\\? WHERE post_id = \\?"),
			result:  scriptedResult{rowsAffected: 1},
		},
		{
			kind:    kindQuery,
			pattern: postPattern,
			args:    []driver.Value{int64(7)},
			columns: postColumns,
			rows:    [][]driver.Value{{int64(7), int64(3), models.PostStatusArchived, nil}},
		},
		{
			kind:    kindQuery,
			pattern: authorPattern,
			columns: []string{"user_id"},
			rows:    [][]driver.Value{{int64(3)}},
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	members := NewMembershipService(db)
	svc := NewPostService(db, members, NewAuthzService(db, members), NewNotificationService(db))

	archived, err := svc.Archive(7, 3)
	if err != nil {
		t.Fatalf("Archive returned error: %v", err)
	}
	if archived.Status != models.PostStatusArchived {
		t.Fatalf("expected ARCHIVED status, got %s", archived.Status)
	}
	if archived.PublishedAt != nil {
		t.Fatalf("archived post must carry no publication timestamp, got %v", archived.PublishedAt)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestVisiblePostsForStudentRequiresStudentProfile(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT \\* FROM `students` WHERE user_id = \\?"),
			args:    []driver.Value{int64(77)},
			columns: []string{"student_id"},
			rows:    [][]driver.Value{},
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	members := NewMembershipService(db)
	svc := NewPostService(db, members, NewAuthzService(db, members), NewNotificationService(db))

	_, err := svc.VisiblePostsForStudent(77)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
