package models

import "time"

// Post statuses
const (
	PostStatusDraft           = "DRAFT"
	PostStatusPendingApproval = "PENDING_APPROVAL"
	PostStatusApproved        = "APPROVED"
	PostStatusRejected        = "REJECTED"
	PostStatusArchived        = "ARCHIVED"
)

// Post visibility scopes
const (
	VisibilityDepartment = "DEPARTMENT"
	VisibilityClass      = "CLASS"
	VisibilityGroup      = "GROUP"
)

// Post categories
const (
	CategoryGeneral      = "GENERAL"
	CategoryAnnouncement = "ANNOUNCEMENT"
	CategorySchedule     = "SCHEDULE"
	CategoryExam         = "EXAM"
	CategoryAssignment   = "ASSIGNMENT"
)

// Target is the single department/class/group a post is addressed to.
// Posts persist the target as three nullable foreign keys, but all in-code
// logic goes through this tagged form so a post can never carry two targets.
type Target struct {
	Type string `json:"type"` // DEPARTMENT | CLASS | GROUP
	ID   int    `json:"id"`
}

// Post represents the posts table.
type Post struct {
	PostID          int     `gorm:"primaryKey;column:post_id" json:"post_id"`
	Title           string  `gorm:"column:title" json:"title"`
	Content         string  `gorm:"column:content;type:text" json:"content"`
	AuthorID        int     `gorm:"column:author_id" json:"author_id"`
	Status          string  `gorm:"column:status;type:enum('DRAFT','PENDING_APPROVAL','APPROVED','REJECTED','ARCHIVED');default:'PENDING_APPROVAL'" json:"status"`
	Visibility      string  `gorm:"column:visibility;type:enum('DEPARTMENT','CLASS','GROUP')" json:"visibility"`
	Urgent          bool    `gorm:"column:urgent" json:"urgent"`
	Category        string  `gorm:"column:category;type:enum('GENERAL','ANNOUNCEMENT','SCHEDULE','EXAM','ASSIGNMENT');default:'GENERAL'" json:"category"`
	TargetDeptID    *int    `gorm:"column:target_department_id" json:"target_department_id,omitempty"`
	TargetClassID   *int    `gorm:"column:target_class_id" json:"target_class_id,omitempty"`
	TargetGroupID   *int    `gorm:"column:target_group_id" json:"target_group_id,omitempty"`
	ApprovedBy      *int    `gorm:"column:approved_by" json:"approved_by,omitempty"`
	RejectionReason *string `gorm:"column:rejection_reason" json:"rejection_reason,omitempty"`

	CreateAt    time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt    time.Time  `gorm:"column:update_at" json:"update_at"`
	PublishedAt *time.Time `gorm:"column:published_at" json:"published_at,omitempty"`

	Author   User  `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Approver *User `gorm:"foreignKey:ApprovedBy" json:"approver,omitempty"`
}

func (Post) TableName() string {
	return "posts"
}

// Target returns the post's target in tagged form. The zero Target is
// returned for rows that violate the one-target invariant.
func (p *Post) Target() Target {
	switch {
	case p.TargetGroupID != nil:
		return Target{Type: VisibilityGroup, ID: *p.TargetGroupID}
	case p.TargetClassID != nil:
		return Target{Type: VisibilityClass, ID: *p.TargetClassID}
	case p.TargetDeptID != nil:
		return Target{Type: VisibilityDepartment, ID: *p.TargetDeptID}
	}
	return Target{}
}

// SetTarget clears all three target columns and sets the one matching t.
func (p *Post) SetTarget(t Target) {
	p.TargetDeptID = nil
	p.TargetClassID = nil
	p.TargetGroupID = nil
	id := t.ID
	switch t.Type {
	case VisibilityDepartment:
		p.TargetDeptID = &id
	case VisibilityClass:
		p.TargetClassID = &id
	case VisibilityGroup:
		p.TargetGroupID = &id
	}
}

func (p *Post) IsEditable() bool {
	return p.Status == PostStatusDraft || p.Status == PostStatusRejected
}

// ===== Request/Response DTOs =====

// PostCreateRequest for creating posts
type PostCreateRequest struct {
	Title         string `json:"title" binding:"required"`
	Content       string `json:"content" binding:"required"`
	Visibility    string `json:"visibility" binding:"required,oneof=DEPARTMENT CLASS GROUP"`
	Urgent        bool   `json:"urgent"`
	Category      string `json:"category" binding:"omitempty,oneof=GENERAL ANNOUNCEMENT SCHEDULE EXAM ASSIGNMENT"`
	Draft         bool   `json:"draft"`
	TargetDeptID  *int   `json:"target_department_id"`
	TargetClassID *int   `json:"target_class_id"`
	TargetGroupID *int   `json:"target_group_id"`
}

// PostUpdateRequest for author edits while DRAFT/REJECTED
type PostUpdateRequest struct {
	Title         *string `json:"title"`
	Content       *string `json:"content"`
	Visibility    *string `json:"visibility" binding:"omitempty,oneof=DEPARTMENT CLASS GROUP"`
	Urgent        *bool   `json:"urgent"`
	Category      *string `json:"category" binding:"omitempty,oneof=GENERAL ANNOUNCEMENT SCHEDULE EXAM ASSIGNMENT"`
	TargetDeptID  *int    `json:"target_department_id"`
	TargetClassID *int    `json:"target_class_id"`
	TargetGroupID *int    `json:"target_group_id"`
}

type PostRejectRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// PostResponse for API responses
type PostResponse struct {
	PostID          int        `json:"post_id"`
	Title           string     `json:"title"`
	Content         string     `json:"content"`
	AuthorID        int        `json:"author_id"`
	AuthorName      string     `json:"author_name,omitempty"`
	Status          string     `json:"status"`
	Visibility      string     `json:"visibility"`
	Urgent          bool       `json:"urgent"`
	Category        string     `json:"category"`
	Target          Target     `json:"target"`
	ApprovedBy      *int       `json:"approved_by,omitempty"`
	ApproverName    string     `json:"approver_name,omitempty"`
	RejectionReason *string    `json:"rejection_reason,omitempty"`
	CreateAt        time.Time  `json:"create_at"`
	UpdateAt        time.Time  `json:"update_at"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
}

// PostTargetOption is one entry of the compose-UI target picker: a place the
// actor may address a post to, with whether publishing there needs approval.
type PostTargetOption struct {
	Type          string `json:"type"`
	ID            int    `json:"id"`
	Name          string `json:"name"`
	NeedsApproval bool   `json:"needs_approval"`
}

// ToResponse converts Post to PostResponse
func (p *Post) ToResponse() PostResponse {
	resp := PostResponse{
		PostID:          p.PostID,
		Title:           p.Title,
		Content:         p.Content,
		AuthorID:        p.AuthorID,
		Status:          p.Status,
		Visibility:      p.Visibility,
		Urgent:          p.Urgent,
		Category:        p.Category,
		Target:          p.Target(),
		ApprovedBy:      p.ApprovedBy,
		RejectionReason: p.RejectionReason,
		CreateAt:        p.CreateAt,
		UpdateAt:        p.UpdateAt,
		PublishedAt:     p.PublishedAt,
	}
	if p.Author.UserID != 0 {
		resp.AuthorName = p.Author.FullName()
	}
	if p.Approver != nil && p.Approver.UserID != 0 {
		resp.ApproverName = p.Approver.FullName()
	}
	return resp
}
