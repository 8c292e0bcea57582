package models

import (
	"time"

	"github.com/google/uuid"
)

type CommentType string

const (
	CommentQuestion      CommentType = "question"
	CommentClarification CommentType = "clarification"
	CommentConcern       CommentType = "concern"
	CommentInterest      CommentType = "interest"
	CommentFeedback      CommentType = "feedback"
)

// Comment is one Q&A entry on a submission thread. Replies reference their
// parent; private comments are visible to the author and admins only.
type Comment struct {
	ID           uint        `gorm:"primaryKey" json:"id"`
	SubmissionID uuid.UUID   `gorm:"type:uuid;not null;index" json:"submission_id"`
	AuthorID     uint        `gorm:"not null;index" json:"author_id"`
	Author       *User       `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Content      string      `gorm:"size:2000;not null" json:"content"`
	Type         CommentType `gorm:"size:50;not null" json:"type"`
	ParentID     *uint       `gorm:"index" json:"parent_id"`

	RequiresResponse bool `gorm:"default:false" json:"requires_response"`
	IsAnswered       bool `gorm:"default:false" json:"is_answered"`
	IsPrivate        bool `gorm:"default:false" json:"is_private"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Comment) TableName() string {
	return "comments"
}

// AddCommentRequest represents a new comment or question on a submission
type AddCommentRequest struct {
	Content          string `json:"content" binding:"required,max=2000"`
	Type             string `json:"type" binding:"required,oneof=question clarification concern interest feedback"`
	RequiresResponse bool   `json:"requires_response"`
	IsPrivate        bool   `json:"is_private"`
}

// ReplyRequest represents a reply to an existing comment
type ReplyRequest struct {
	Content string `json:"content" binding:"required,max=2000"`
}
