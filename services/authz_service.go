package services

import (
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"

	"school-management-api/models"
)

var (
	headCacheMu sync.RWMutex
	headCache   *headCacheEntry
	headTTL     = 5 * time.Minute
)

type headCacheEntry struct {
	byUser    map[int]int // head user id -> department id
	fetchedAt time.Time
}

// ClearHeadCache invalidates the in-memory department-head cache.
func ClearHeadCache() {
	headCacheMu.Lock()
	defer headCacheMu.Unlock()
	headCache = nil
}

// AuthzService is the single place that answers authority questions for the
// publishing workflow. Both the create-time auto-approval check and the
// explicit approve/reject transitions go through it.
type AuthzService struct {
	db      *gorm.DB
	members *MembershipService
}

func NewAuthzService(db *gorm.DB, members *MembershipService) *AuthzService {
	return &AuthzService{db: db, members: members}
}

func (s *AuthzService) loadHeads(force bool) (*headCacheEntry, error) {
	headCacheMu.RLock()
	cached := headCache
	headCacheMu.RUnlock()

	if cached != nil && !force && time.Since(cached.fetchedAt) < headTTL {
		return cached, nil
	}

	headCacheMu.Lock()
	defer headCacheMu.Unlock()

	if headCache != nil && !force && time.Since(headCache.fetchedAt) < headTTL {
		return headCache, nil
	}

	var rows []models.Department
	if err := s.db.Where("head_user_id IS NOT NULL AND delete_at IS NULL").Find(&rows).Error; err != nil {
		return nil, err
	}

	byUser := make(map[int]int, len(rows))
	for _, d := range rows {
		if d.HeadUserID != nil {
			byUser[*d.HeadUserID] = d.DepartmentID
		}
	}

	entry := &headCacheEntry{byUser: byUser, fetchedAt: time.Now()}
	headCache = entry
	return entry, nil
}

// RoleOf returns the role id of a live user, ErrNotFound otherwise.
func (s *AuthzService) RoleOf(userID int) (int, error) {
	var user models.User
	if err := s.db.Select("user_id, role_id").
		Where("user_id = ? AND delete_at IS NULL", userID).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return user.RoleID, nil
}

// HeadedDepartment returns the id of the department the user heads, or 0.
func (s *AuthzService) HeadedDepartment(userID int) (int, error) {
	entry, err := s.loadHeads(false)
	if err != nil {
		return 0, err
	}
	if deptID, ok := entry.byUser[userID]; ok {
		return deptID, nil
	}

	// Head assignments change rarely but matter when they do; refresh once
	// before treating the user as a non-head.
	entry, err = s.loadHeads(true)
	if err != nil {
		return 0, err
	}
	return entry.byUser[userID], nil
}

// CanApprove reports whether the actor may approve or reject posts targeted
// inside the given department: admins anywhere, heads in their own department.
func (s *AuthzService) CanApprove(actorID, departmentID int) (bool, error) {
	roleID, err := s.RoleOf(actorID)
	if err != nil {
		return false, err
	}
	if roleID == models.RoleAdmin {
		return true, nil
	}
	if roleID != models.RoleDeptHead {
		return false, nil
	}
	headed, err := s.HeadedDepartment(actorID)
	if err != nil {
		return false, err
	}
	return headed != 0 && headed == departmentID, nil
}

// CanAutoApprove reports whether a post by the actor addressed at the target
// publishes without review: teachers auto-publish to groups they teach, heads
// auto-publish anywhere inside their own department.
func (s *AuthzService) CanAutoApprove(actorID int, target models.Target) (bool, error) {
	if target.Type == models.VisibilityGroup {
		group, err := s.members.GroupByID(target.ID)
		if err != nil {
			return false, err
		}
		assignments, err := s.members.TeacherAssignments(actorID)
		if err != nil {
			return false, err
		}
		for _, a := range assignments {
			if AssignmentCoversGroup(a, group.GroupID, group.ClassID) {
				return true, nil
			}
		}
	}

	headed, err := s.HeadedDepartment(actorID)
	if err != nil {
		return false, err
	}
	if headed == 0 {
		return false, nil
	}
	targetDept, err := s.members.DepartmentOfTarget(target)
	if err != nil {
		return false, err
	}
	return targetDept == headed, nil
}

// AssignmentCoversGroup reports whether a teaching assignment covers the
// given group. A nil assignment group means "all groups of that class", so it
// covers any group whose class matches the assignment's class.
func AssignmentCoversGroup(a models.TeacherAssignment, groupID, groupClassID int) bool {
	if a.GroupID != nil {
		return *a.GroupID == groupID
	}
	return a.ClassID == groupClassID
}
