package services

import (
	"errors"

	"gorm.io/gorm"

	"school-management-api/models"
)

// Recipient is one notification target resolved from membership data.
type Recipient struct {
	UserID int    `gorm:"column:user_id"`
	Email  string `gorm:"column:email"`
}

// StudentMembership is a student's place in the department/class/group
// hierarchy. GroupID is nil for students not assigned to any group.
type StudentMembership struct {
	DepartmentID int
	ClassID      int
	GroupID      *int
}

// MembershipService answers "who belongs where" questions over the school
// hierarchy. It is read-only: enrollment itself is managed elsewhere.
type MembershipService struct {
	db *gorm.DB
}

func NewMembershipService(db *gorm.DB) *MembershipService {
	return &MembershipService{db: db}
}

const recipientSelect = `
SELECT u.user_id, u.email
FROM students s
JOIN users u ON u.user_id = s.user_id
WHERE s.delete_at IS NULL AND u.delete_at IS NULL AND s.status = 'active'`

// StudentsByGroup returns the students enrolled in one group.
func (s *MembershipService) StudentsByGroup(groupID int) ([]Recipient, error) {
	var out []Recipient
	err := s.db.Raw(recipientSelect+` AND s.group_id = ?`, groupID).Scan(&out).Error
	return out, err
}

// StudentsByClass returns the students enrolled in one class, all groups included.
func (s *MembershipService) StudentsByClass(classID int) ([]Recipient, error) {
	var out []Recipient
	err := s.db.Raw(recipientSelect+` AND s.class_id = ?`, classID).Scan(&out).Error
	return out, err
}

// StudentsByDepartment returns every student of a department.
func (s *MembershipService) StudentsByDepartment(departmentID int) ([]Recipient, error) {
	var out []Recipient
	err := s.db.Raw(recipientSelect+` AND s.department_id = ?`, departmentID).Scan(&out).Error
	return out, err
}

// StudentMembershipOf resolves the department/class/group of the student
// behind a user id. Returns ErrNotFound for users without a student profile.
func (s *MembershipService) StudentMembershipOf(userID int) (StudentMembership, error) {
	var st models.Student
	if err := s.db.Where("user_id = ? AND delete_at IS NULL", userID).First(&st).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return StudentMembership{}, ErrNotFound
		}
		return StudentMembership{}, err
	}
	return StudentMembership{
		DepartmentID: st.DepartmentID,
		ClassID:      st.ClassID,
		GroupID:      st.GroupID,
	}, nil
}

// TeacherByUser resolves the teacher profile behind a user id.
func (s *MembershipService) TeacherByUser(userID int) (*models.Teacher, error) {
	var t models.Teacher
	if err := s.db.Where("user_id = ? AND delete_at IS NULL", userID).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// TeacherAssignments returns the teaching assignments of the teacher behind
// a user id, with the class and group relations loaded. Users without a
// teacher profile get an empty slice, not an error.
func (s *MembershipService) TeacherAssignments(userID int) ([]models.TeacherAssignment, error) {
	teacher, err := s.TeacherByUser(userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var assignments []models.TeacherAssignment
	err = s.db.Preload("Class").Preload("Group").
		Where("teacher_id = ? AND delete_at IS NULL", teacher.TeacherID).
		Find(&assignments).Error
	return assignments, err
}

// GroupByID loads a group with its class relation.
func (s *MembershipService) GroupByID(groupID int) (*models.Group, error) {
	var g models.Group
	if err := s.db.Preload("Class").Where("group_id = ? AND delete_at IS NULL", groupID).First(&g).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &g, nil
}

// ClassByID loads a class.
func (s *MembershipService) ClassByID(classID int) (*models.StudentClass, error) {
	var c models.StudentClass
	if err := s.db.Where("class_id = ? AND delete_at IS NULL", classID).First(&c).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// DepartmentByID loads a department.
func (s *MembershipService) DepartmentByID(departmentID int) (*models.Department, error) {
	var d models.Department
	if err := s.db.Where("department_id = ? AND delete_at IS NULL", departmentID).First(&d).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &d, nil
}

// ClassesByDepartment lists the classes of one department.
func (s *MembershipService) ClassesByDepartment(departmentID int) ([]models.StudentClass, error) {
	var classes []models.StudentClass
	err := s.db.Where("department_id = ? AND delete_at IS NULL", departmentID).Find(&classes).Error
	return classes, err
}

// GroupsByClass lists the groups of one class.
func (s *MembershipService) GroupsByClass(classID int) ([]models.Group, error) {
	var groups []models.Group
	err := s.db.Where("class_id = ? AND delete_at IS NULL", classID).Find(&groups).Error
	return groups, err
}

// DepartmentOfTarget walks a target up to its department: a class belongs to
// a department directly, a group via its class.
func (s *MembershipService) DepartmentOfTarget(t models.Target) (int, error) {
	switch t.Type {
	case models.VisibilityDepartment:
		return t.ID, nil
	case models.VisibilityClass:
		class, err := s.ClassByID(t.ID)
		if err != nil {
			return 0, err
		}
		return class.DepartmentID, nil
	case models.VisibilityGroup:
		group, err := s.GroupByID(t.ID)
		if err != nil {
			return 0, err
		}
		class, err := s.ClassByID(group.ClassID)
		if err != nil {
			return 0, err
		}
		return class.DepartmentID, nil
	}
	return 0, validationf("unknown target type %q", t.Type)
}

// TargetExists verifies the referenced department/class/group row is present.
func (s *MembershipService) TargetExists(t models.Target) error {
	var err error
	switch t.Type {
	case models.VisibilityDepartment:
		_, err = s.DepartmentByID(t.ID)
	case models.VisibilityClass:
		_, err = s.ClassByID(t.ID)
	case models.VisibilityGroup:
		_, err = s.GroupByID(t.ID)
	default:
		return validationf("unknown target type %q", t.Type)
	}
	return err
}
