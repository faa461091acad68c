package models

import "time"

// Department represents the departments table. HeadUserID points at the user
// currently holding head-of-department authority for this department.
type Department struct {
	DepartmentID int        `gorm:"primaryKey;column:department_id" json:"department_id"`
	Name         string     `gorm:"column:name" json:"name"`
	HeadUserID   *int       `gorm:"column:head_user_id" json:"head_user_id,omitempty"`
	CreateAt     time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt     time.Time  `gorm:"column:update_at" json:"update_at"`
	DeleteAt     *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	Head *User `gorm:"foreignKey:HeadUserID" json:"head,omitempty"`
}

// StudentClass represents the classes table (e.g. "L1-CS").
type StudentClass struct {
	ClassID      int        `gorm:"primaryKey;column:class_id" json:"class_id"`
	DepartmentID int        `gorm:"column:department_id" json:"department_id"`
	Name         string     `gorm:"column:name" json:"name"`
	Level        string     `gorm:"column:level" json:"level"`
	AcademicYear string     `gorm:"column:academic_year" json:"academic_year"`
	CreateAt     time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt     time.Time  `gorm:"column:update_at" json:"update_at"`
	DeleteAt     *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	Department Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
}

// Group represents the groups table. Every group belongs to exactly one class.
type Group struct {
	GroupID  int        `gorm:"primaryKey;column:group_id" json:"group_id"`
	ClassID  int        `gorm:"column:class_id" json:"class_id"`
	Name     string     `gorm:"column:name" json:"name"`
	Capacity int        `gorm:"column:capacity;default:30" json:"capacity"`
	CreateAt time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt time.Time  `gorm:"column:update_at" json:"update_at"`
	DeleteAt *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	Class StudentClass `gorm:"foreignKey:ClassID" json:"class,omitempty"`
}

// Student represents the students table. A student belongs to exactly one
// department and class, and at most one group.
type Student struct {
	StudentID    int        `gorm:"primaryKey;column:student_id" json:"student_id"`
	UserID       int        `gorm:"column:user_id;unique" json:"user_id"`
	StudentNo    string     `gorm:"column:student_no;unique" json:"student_no"`
	DepartmentID int        `gorm:"column:department_id" json:"department_id"`
	ClassID      int        `gorm:"column:class_id" json:"class_id"`
	GroupID      *int       `gorm:"column:group_id" json:"group_id,omitempty"`
	Status       string     `gorm:"column:status;default:'active'" json:"status"`
	CreateAt     time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt     time.Time  `gorm:"column:update_at" json:"update_at"`
	DeleteAt     *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	User       User         `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Department Department   `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
	Class      StudentClass `gorm:"foreignKey:ClassID" json:"class,omitempty"`
	Group      *Group       `gorm:"foreignKey:GroupID" json:"group,omitempty"`
}

// Teacher represents the teachers table.
type Teacher struct {
	TeacherID    int        `gorm:"primaryKey;column:teacher_id" json:"teacher_id"`
	UserID       int        `gorm:"column:user_id;unique" json:"user_id"`
	DepartmentID int        `gorm:"column:department_id" json:"department_id"`
	CreateAt     time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt     time.Time  `gorm:"column:update_at" json:"update_at"`
	DeleteAt     *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	User       User       `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Department Department `gorm:"foreignKey:DepartmentID" json:"department,omitempty"`
}

// Subject represents the subjects table.
type Subject struct {
	SubjectID int        `gorm:"primaryKey;column:subject_id" json:"subject_id"`
	Name      string     `gorm:"column:name" json:"name"`
	Code      string     `gorm:"column:code;unique" json:"code"`
	CreateAt  time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt  time.Time  `gorm:"column:update_at" json:"update_at"`
	DeleteAt  *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

// TeacherAssignment represents the teacher_subjects table. A NULL group means
// the teacher is assigned to every group of that class.
type TeacherAssignment struct {
	AssignmentID int        `gorm:"primaryKey;column:assignment_id" json:"assignment_id"`
	TeacherID    int        `gorm:"column:teacher_id" json:"teacher_id"`
	ClassID      int        `gorm:"column:class_id" json:"class_id"`
	SubjectID    int        `gorm:"column:subject_id" json:"subject_id"`
	GroupID      *int       `gorm:"column:group_id" json:"group_id,omitempty"`
	Semester     int        `gorm:"column:semester;default:1" json:"semester"`
	AcademicYear string     `gorm:"column:academic_year" json:"academic_year"`
	CreateAt     time.Time  `gorm:"column:create_at" json:"create_at"`
	DeleteAt     *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	Teacher Teacher      `gorm:"foreignKey:TeacherID" json:"teacher,omitempty"`
	Class   StudentClass `gorm:"foreignKey:ClassID" json:"class,omitempty"`
	Subject Subject      `gorm:"foreignKey:SubjectID" json:"subject,omitempty"`
	Group   *Group       `gorm:"foreignKey:GroupID" json:"group,omitempty"`
}

// TableName overrides
func (Department) TableName() string {
	return "departments"
}

func (StudentClass) TableName() string {
	return "classes"
}

func (Group) TableName() string {
	return "groups"
}

func (Student) TableName() string {
	return "students"
}

func (Teacher) TableName() string {
	return "teachers"
}

func (Subject) TableName() string {
	return "subjects"
}

func (TeacherAssignment) TableName() string {
	return "teacher_subjects"
}
