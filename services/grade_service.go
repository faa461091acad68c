package services

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"school-management-api/models"
)

type GradeService struct {
	db       *gorm.DB
	notifier *NotificationService
}

func NewGradeService(db *gorm.DB, notifier *NotificationService) *GradeService {
	return &GradeService{db: db, notifier: notifier}
}

// Create records a grade and notifies the student. The notification is best
// effort; a failed insert there never rolls back the grade.
func (s *GradeService) Create(teacherUserID int, req models.GradeCreateRequest) (*models.Grade, error) {
	var subject models.Subject
	if err := s.db.Where("subject_id = ?", req.SubjectID).First(&subject).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	var student models.Student
	if err := s.db.Where("student_id = ?", req.StudentID).First(&student).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	grade := models.Grade{
		StudentID:  req.StudentID,
		SubjectID:  req.SubjectID,
		FinalGrade: req.FinalGrade,
		Remarks:    req.Remarks,
		EnteredBy:  teacherUserID,
	}
	if err := s.db.Create(&grade).Error; err != nil {
		return nil, err
	}

	s.notifyGrade(student.UserID, gradeNotification("Grade Published", subject.Name, grade.FinalGrade, grade.GradeID))
	return &grade, nil
}

// UpdateGrade changes an existing grade and re-notifies the student.
func (s *GradeService) Update(gradeID int, req models.GradeUpdateRequest, teacherUserID int) (*models.Grade, error) {
	var grade models.Grade
	if err := s.db.Preload("Subject").Preload("Student").
		Where("grade_id = ?", gradeID).First(&grade).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if grade.EnteredBy != teacherUserID {
		return nil, ErrForbidden
	}

	if req.FinalGrade != nil {
		grade.FinalGrade = *req.FinalGrade
	}
	if req.Remarks != nil {
		grade.Remarks = req.Remarks
	}
	if err := s.db.Save(&grade).Error; err != nil {
		return nil, err
	}

	s.notifyGrade(grade.Student.UserID, gradeNotification("Grade Updated", grade.Subject.Name, grade.FinalGrade, grade.GradeID))
	return &grade, nil
}

// GradesForStudent lists a student's grades with subjects loaded.
func (s *GradeService) GradesForStudent(studentID int) ([]models.Grade, error) {
	var grades []models.Grade
	err := s.db.Preload("Subject").
		Where("student_id = ?", studentID).
		Order("create_at DESC").
		Find(&grades).Error
	return grades, err
}

func gradeNotification(title, subjectName string, finalGrade float64, gradeID int) NotificationInput {
	return NotificationInput{
		Type:       models.NotificationGradePublished,
		Title:      title,
		Message:    fmt.Sprintf("New grade published for %s: %.2f/20", subjectName, finalGrade),
		EntityType: "Grade",
		EntityID:   gradeID,
		URL:        "/grades",
	}
}

func (s *GradeService) notifyGrade(userID int, in NotificationInput) {
	if err := s.notifier.Notify(userID, in); err != nil {
		log.Printf("grade notification for user %d failed: %v", userID, err)
	}
}
