package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"school-management-api/models"
	"school-management-api/utils"
)

// PostService owns the post lifecycle: creation with the one-shot
// auto-approval check, the approval state machine, the visibility queries,
// and the notification fan-out triggered on publication.
type PostService struct {
	db       *gorm.DB
	members  *MembershipService
	authz    *AuthzService
	notifier *NotificationService
}

func NewPostService(db *gorm.DB, members *MembershipService, authz *AuthzService, notifier *NotificationService) *PostService {
	return &PostService{db: db, members: members, authz: authz, notifier: notifier}
}

// TargetFromRequest builds the tagged target from the three optional id
// fields of a request. Exactly one id must be set and it must match the
// declared visibility; composite targets are not supported.
func TargetFromRequest(visibility string, deptID, classID, groupID *int) (models.Target, error) {
	var targets []models.Target
	if deptID != nil {
		targets = append(targets, models.Target{Type: models.VisibilityDepartment, ID: *deptID})
	}
	if classID != nil {
		targets = append(targets, models.Target{Type: models.VisibilityClass, ID: *classID})
	}
	if groupID != nil {
		targets = append(targets, models.Target{Type: models.VisibilityGroup, ID: *groupID})
	}

	if len(targets) == 0 {
		return models.Target{}, validationf("exactly one of target_department_id, target_class_id, target_group_id is required")
	}
	if len(targets) > 1 {
		return models.Target{}, validationf("a post cannot carry more than one target")
	}
	if targets[0].Type != visibility {
		return models.Target{}, validationf("target does not match visibility %s", visibility)
	}
	return targets[0], nil
}

// Create validates targeting, evaluates auto-approval once, and persists the
// post. Auto-approved posts are published immediately and fan out in the
// background.
func (s *PostService) Create(authorID int, req models.PostCreateRequest) (*models.Post, error) {
	target, err := TargetFromRequest(req.Visibility, req.TargetDeptID, req.TargetClassID, req.TargetGroupID)
	if err != nil {
		return nil, err
	}
	if err := s.members.TargetExists(target); err != nil {
		return nil, err
	}

	category := req.Category
	if category == "" {
		category = models.CategoryGeneral
	}

	now := time.Now()
	post := models.Post{
		Title:      utils.SanitizeInput(req.Title),
		Content:    utils.SanitizeInput(req.Content),
		AuthorID:   authorID,
		Visibility: req.Visibility,
		Urgent:     req.Urgent,
		Category:   category,
		Status:     models.PostStatusPendingApproval,
		CreateAt:   now,
		UpdateAt:   now,
	}
	post.SetTarget(target)

	if req.Draft {
		post.Status = models.PostStatusDraft
	} else {
		// Evaluated once, at creation. Resubmissions of the same post go
		// through the regular approval queue.
		auto, err := s.authz.CanAutoApprove(authorID, target)
		if err != nil {
			return nil, err
		}
		if auto {
			post.Status = models.PostStatusApproved
			post.ApprovedBy = &authorID
			publishedAt := now
			post.PublishedAt = &publishedAt
		}
	}

	if err := s.db.Create(&post).Error; err != nil {
		return nil, err
	}

	if post.Status == models.PostStatusApproved {
		s.dispatchFanOut(post)
	}
	return &post, nil
}

// SubmitForApproval moves an author's DRAFT or REJECTED post into the
// approval queue.
func (s *PostService) SubmitForApproval(postID, actorID int) (*models.Post, error) {
	post, err := s.byID(postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != actorID {
		return nil, ErrForbidden
	}
	if !post.IsEditable() {
		return nil, invalidState("submit", post.Status)
	}

	updates := map[string]interface{}{
		"status":    models.PostStatusPendingApproval,
		"update_at": time.Now(),
	}
	if err := s.db.Model(&models.Post{}).Where("post_id = ?", postID).Updates(updates).Error; err != nil {
		return nil, err
	}
	return s.byID(postID)
}

// Approve publishes a pending post. The transition is guarded by a status
// precondition so a concurrent reject on the same post cannot be silently
// overwritten: whichever transition lands second sees zero affected rows.
func (s *PostService) Approve(postID, approverID int) (*models.Post, error) {
	post, err := s.byID(postID)
	if err != nil {
		return nil, err
	}
	if err := s.requireApprovalAuthority(approverID, post); err != nil {
		return nil, err
	}

	now := time.Now()
	res := s.db.Model(&models.Post{}).
		Where("post_id = ? AND status = ?", postID, models.PostStatusPendingApproval).
		Updates(map[string]interface{}{
			"status":           models.PostStatusApproved,
			"approved_by":      approverID,
			"published_at":     now,
			"rejection_reason": nil,
			"update_at":        now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		current, err := s.byID(postID)
		if err != nil {
			return nil, err
		}
		return nil, invalidState("approve", current.Status)
	}

	approved, err := s.byID(postID)
	if err != nil {
		return nil, err
	}
	s.dispatchFanOut(*approved)
	return approved, nil
}

// Reject sends a pending post back to its author with a reason. published_at
// is left untouched; the same status guard as Approve applies.
func (s *PostService) Reject(postID int, reason string, rejecterID int) (*models.Post, error) {
	post, err := s.byID(postID)
	if err != nil {
		return nil, err
	}
	if err := s.requireApprovalAuthority(rejecterID, post); err != nil {
		return nil, err
	}

	res := s.db.Model(&models.Post{}).
		Where("post_id = ? AND status = ?", postID, models.PostStatusPendingApproval).
		Updates(map[string]interface{}{
			"status":           models.PostStatusRejected,
			"rejection_reason": utils.SanitizeInput(reason),
			"update_at":        time.Now(),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		current, err := s.byID(postID)
		if err != nil {
			return nil, err
		}
		return nil, invalidState("reject", current.Status)
	}
	return s.byID(postID)
}

// Update applies author edits while the post is still DRAFT or REJECTED.
// The status is not changed; resubmission is a separate call.
func (s *PostService) Update(postID int, req models.PostUpdateRequest, actorID int) (*models.Post, error) {
	post, err := s.byID(postID)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != actorID {
		return nil, ErrForbidden
	}
	if !post.IsEditable() {
		return nil, invalidState("update", post.Status)
	}

	if req.Title != nil {
		post.Title = utils.SanitizeInput(*req.Title)
	}
	if req.Content != nil {
		post.Content = utils.SanitizeInput(*req.Content)
	}
	if req.Urgent != nil {
		post.Urgent = *req.Urgent
	}
	if req.Category != nil {
		post.Category = *req.Category
	}

	// Retargeting re-validates the one-target rule against the (possibly
	// updated) visibility.
	if req.Visibility != nil || req.TargetDeptID != nil || req.TargetClassID != nil || req.TargetGroupID != nil {
		visibility := post.Visibility
		if req.Visibility != nil {
			visibility = *req.Visibility
		}
		target, err := TargetFromRequest(visibility, req.TargetDeptID, req.TargetClassID, req.TargetGroupID)
		if err != nil {
			return nil, err
		}
		if err := s.members.TargetExists(target); err != nil {
			return nil, err
		}
		post.Visibility = visibility
		post.SetTarget(target)
	}

	post.UpdateAt = time.Now()
	if err := s.db.Save(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// Archive hides a published post from students without deleting it. The
// publication timestamp is cleared; only APPROVED posts carry one.
func (s *PostService) Archive(postID, actorID int) (*models.Post, error) {
	post, err := s.byID(postID)
	if err != nil {
		return nil, err
	}
	if err := s.requireAuthorOrAdmin(actorID, post); err != nil {
		return nil, err
	}
	if post.Status != models.PostStatusApproved {
		return nil, invalidState("archive", post.Status)
	}

	if err := s.db.Model(&models.Post{}).Where("post_id = ?", postID).Updates(map[string]interface{}{
		"status":       models.PostStatusArchived,
		"published_at": nil,
		"update_at":    time.Now(),
	}).Error; err != nil {
		return nil, err
	}
	return s.byID(postID)
}

// Delete removes a post. Allowed for the author and admins, in any status.
func (s *PostService) Delete(postID, actorID int) error {
	post, err := s.byID(postID)
	if err != nil {
		return err
	}
	if err := s.requireAuthorOrAdmin(actorID, post); err != nil {
		return err
	}
	return s.db.Delete(&models.Post{}, "post_id = ?", postID).Error
}

// ByID returns one post with author and approver loaded.
func (s *PostService) ByID(postID int) (*models.Post, error) {
	return s.byID(postID)
}

func (s *PostService) byID(postID int) (*models.Post, error) {
	var post models.Post
	if err := s.db.Preload("Author").Preload("Approver").
		Where("post_id = ?", postID).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (s *PostService) requireApprovalAuthority(actorID int, post *models.Post) error {
	deptID, err := s.members.DepartmentOfTarget(post.Target())
	if err != nil {
		return err
	}
	ok, err := s.authz.CanApprove(actorID, deptID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrForbidden
	}
	return nil
}

func (s *PostService) requireAuthorOrAdmin(actorID int, post *models.Post) error {
	if post.AuthorID == actorID {
		return nil
	}
	roleID, err := s.authz.RoleOf(actorID)
	if err != nil {
		return err
	}
	if roleID != models.RoleAdmin {
		return ErrForbidden
	}
	return nil
}

/* ==========================
   Visibility queries
   ========================== */

// VisiblePostsForStudent returns the approved posts addressed at the
// student's department, class, or group, newest publication first.
func (s *PostService) VisiblePostsForStudent(userID int) ([]models.Post, error) {
	membership, err := s.members.StudentMembershipOf(userID)
	if err != nil {
		return nil, err
	}

	// A student outside any group must never match GROUP-scoped posts; -1
	// cannot collide with a real group id.
	groupID := -1
	if membership.GroupID != nil {
		groupID = *membership.GroupID
	}

	var posts []models.Post
	err = s.db.Preload("Author").
		Where("status = ?", models.PostStatusApproved).
		Where(`(visibility = 'DEPARTMENT' AND target_department_id = ?)
			OR (visibility = 'CLASS' AND target_class_id = ?)
			OR (visibility = 'GROUP' AND target_group_id = ?)`,
			membership.DepartmentID, membership.ClassID, groupID).
		Order("published_at DESC, post_id DESC").
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return DedupePosts(posts), nil
}

// DedupePosts drops repeated post ids while keeping the first occurrence.
// The one-target rule should make duplicates impossible; filter anyway.
func DedupePosts(posts []models.Post) []models.Post {
	seen := make(map[int]bool, len(posts))
	out := posts[:0]
	for _, p := range posts {
		if seen[p.PostID] {
			continue
		}
		seen[p.PostID] = true
		out = append(out, p)
	}
	return out
}

// PendingPostsForDepartment is the approver queue: pending posts targeted at
// the department directly, at one of its classes, or at a group of one of its
// classes.
func (s *PostService) PendingPostsForDepartment(departmentID int) ([]models.Post, error) {
	var posts []models.Post
	err := s.db.Preload("Author").
		Where("status = ?", models.PostStatusPendingApproval).
		Where(`target_department_id = ?
			OR target_class_id IN (SELECT class_id FROM classes WHERE department_id = ? AND delete_at IS NULL)
			OR target_group_id IN (
				SELECT g.group_id FROM `+"`groups`"+` g
				JOIN classes c ON c.class_id = g.class_id
				WHERE c.department_id = ? AND g.delete_at IS NULL AND c.delete_at IS NULL)`,
			departmentID, departmentID, departmentID).
		Order("create_at DESC, post_id DESC").
		Find(&posts).Error
	return posts, err
}

// DepartmentPosts is the head-of-department view: every approved post that
// resolves into the department, whether targeted at it directly, at one of
// its classes, or at a group of one of its classes.
func (s *PostService) DepartmentPosts(departmentID int) ([]models.Post, error) {
	var posts []models.Post
	err := s.db.Preload("Author").Preload("Approver").
		Where("status = ?", models.PostStatusApproved).
		Where(`target_department_id = ?
			OR target_class_id IN (SELECT class_id FROM classes WHERE department_id = ? AND delete_at IS NULL)
			OR target_group_id IN (
				SELECT g.group_id FROM `+"`groups`"+` g
				JOIN classes c ON c.class_id = g.class_id
				WHERE c.department_id = ? AND g.delete_at IS NULL AND c.delete_at IS NULL)`,
			departmentID, departmentID, departmentID).
		Order("published_at DESC, post_id DESC").
		Find(&posts).Error
	return posts, err
}

// PostsByAuthor returns every post of one author, newest first.
func (s *PostService) PostsByAuthor(authorID int) ([]models.Post, error) {
	var posts []models.Post
	err := s.db.Preload("Approver").
		Where("author_id = ?", authorID).
		Order("create_at DESC, post_id DESC").
		Find(&posts).Error
	return posts, err
}

/* ==========================
   Compose-UI targets
   ========================== */

// PostTargets lists the places the actor may address a post to, flagging
// which of them would require approval. Heads of department additionally get
// every class and group of their department.
func (s *PostService) PostTargets(actorID int) ([]models.PostTargetOption, error) {
	teacher, err := s.members.TeacherByUser(actorID)
	if err != nil {
		return nil, err
	}

	headedDept, err := s.authz.HeadedDepartment(actorID)
	if err != nil {
		return nil, err
	}

	assignments, err := s.members.TeacherAssignments(actorID)
	if err != nil {
		return nil, err
	}

	var options []models.PostTargetOption
	addedGroups := make(map[int]bool)
	addedClasses := make(map[int]bool)

	// Groups the teacher directly teaches always publish without review. An
	// assignment with no group covers every group of its class.
	for _, a := range assignments {
		if a.Group != nil {
			if !addedGroups[a.Group.GroupID] {
				options = append(options, models.PostTargetOption{
					Type:          models.VisibilityGroup,
					ID:            a.Group.GroupID,
					Name:          fmt.Sprintf("%s (%s)", a.Group.Name, a.Class.Name),
					NeedsApproval: false,
				})
				addedGroups[a.Group.GroupID] = true
			}
			continue
		}
		groups, err := s.members.GroupsByClass(a.ClassID)
		if err != nil {
			return nil, err
		}
		for _, g := range groups {
			if !addedGroups[g.GroupID] {
				options = append(options, models.PostTargetOption{
					Type:          models.VisibilityGroup,
					ID:            g.GroupID,
					Name:          fmt.Sprintf("%s (%s)", g.Name, a.Class.Name),
					NeedsApproval: false,
				})
				addedGroups[g.GroupID] = true
			}
		}
	}

	// Classes where the teacher teaches at least one group.
	for _, a := range assignments {
		if addedClasses[a.ClassID] {
			continue
		}
		needsApproval := headedDept == 0 || a.Class.DepartmentID != headedDept
		options = append(options, models.PostTargetOption{
			Type:          models.VisibilityClass,
			ID:            a.ClassID,
			Name:          fmt.Sprintf("%s (entire class)", a.Class.Name),
			NeedsApproval: needsApproval,
		})
		addedClasses[a.ClassID] = true
	}

	// Heads reach the rest of their department without review.
	if headedDept != 0 {
		classes, err := s.members.ClassesByDepartment(headedDept)
		if err != nil {
			return nil, err
		}
		for _, class := range classes {
			if !addedClasses[class.ClassID] {
				options = append(options, models.PostTargetOption{
					Type:          models.VisibilityClass,
					ID:            class.ClassID,
					Name:          fmt.Sprintf("%s (entire class)", class.Name),
					NeedsApproval: false,
				})
				addedClasses[class.ClassID] = true
			}
			groups, err := s.members.GroupsByClass(class.ClassID)
			if err != nil {
				return nil, err
			}
			for _, g := range groups {
				if !addedGroups[g.GroupID] {
					options = append(options, models.PostTargetOption{
						Type:          models.VisibilityGroup,
						ID:            g.GroupID,
						Name:          fmt.Sprintf("%s (%s)", g.Name, class.Name),
						NeedsApproval: false,
					})
					addedGroups[g.GroupID] = true
				}
			}
		}
	}

	// The teacher's own department, gated unless they head it.
	dept, err := s.members.DepartmentByID(teacher.DepartmentID)
	if err != nil {
		return nil, err
	}
	options = append(options, models.PostTargetOption{
		Type:          models.VisibilityDepartment,
		ID:            dept.DepartmentID,
		Name:          fmt.Sprintf("%s (whole department)", dept.Name),
		NeedsApproval: headedDept != dept.DepartmentID,
	})

	return options, nil
}

/* ==========================
   Notification fan-out
   ========================== */

// dispatchFanOut runs the notification fan-out for a freshly published post
// in the background. Publication already committed; nothing that happens here
// may fail the approval, so the goroutine only logs.
func (s *PostService) dispatchFanOut(post models.Post) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("post %d fan-out panicked: %v", post.PostID, r)
			}
		}()
		s.fanOut(post)
	}()
}

func (s *PostService) fanOut(post models.Post) {
	recipients, err := s.recipientsFor(post)
	if err != nil {
		log.Printf("post %d fan-out: recipient resolution failed: %v", post.PostID, err)
		return
	}
	if len(recipients) == 0 {
		log.Printf("post %d fan-out: no recipients for target %v", post.PostID, post.Target())
		return
	}

	in := NotificationInput{
		Type:       models.NotificationUrgentPost,
		Title:      "New Post",
		Message:    post.Title,
		EntityType: "Post",
		EntityID:   post.PostID,
		URL:        "/feed",
	}
	s.notifier.NotifyUsers(recipients, in)

	if post.Urgent {
		s.notifier.EmailCopies(recipients, "New Post: "+post.Title, post.Content)
	}
}

// recipientsFor resolves the recipient set with the first matching rule:
// group beats class beats department, never a union across levels.
func (s *PostService) recipientsFor(post models.Post) ([]Recipient, error) {
	target := post.Target()
	switch target.Type {
	case models.VisibilityGroup:
		return s.members.StudentsByGroup(target.ID)
	case models.VisibilityClass:
		return s.members.StudentsByClass(target.ID)
	case models.VisibilityDepartment:
		return s.members.StudentsByDepartment(target.ID)
	}
	return nil, validationf("post %d has no target", post.PostID)
}
