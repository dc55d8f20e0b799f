package course

import (
	"errors"
	"time"

	"github.com/devtrails/campdir/internal/domain/bootcamp"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Course struct {
	ID                   primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title                string             `bson:"title" json:"title"`
	Description          string             `bson:"description" json:"description"`
	Weeks                int                `bson:"weeks" json:"weeks"`
	Tuition              float64            `bson:"tuition" json:"tuition"`
	MinimumSkill         string             `bson:"minimumSkill" json:"minimumSkill"`
	ScholarshipAvailable bool               `bson:"scholarshipAvailable" json:"scholarshipAvailable"`

	BootcampID primitive.ObjectID `bson:"bootcamp" json:"bootcamp"`
	UserID     primitive.ObjectID `bson:"user" json:"user"`

	// filled on reads that expand the parent, never stored
	Bootcamp *bootcamp.Summary `bson:"bootcampDoc,omitempty" json:"bootcampSummary,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

var ErrNotFound = errors.New("course not found")

type CreateCourseRequest struct {
	Title                string  `json:"title" binding:"required,max=120"`
	Description          string  `json:"description" binding:"required,max=1000"`
	Weeks                int     `json:"weeks" binding:"required,min=1"`
	Tuition              float64 `json:"tuition" binding:"required,min=0"`
	MinimumSkill         string  `json:"minimumSkill" binding:"required,oneof=beginner intermediate advanced"`
	ScholarshipAvailable bool    `json:"scholarshipAvailable"`
}

type UpdateCourseRequest struct {
	Title                *string  `json:"title" binding:"omitempty,max=120"`
	Description          *string  `json:"description" binding:"omitempty,max=1000"`
	Weeks                *int     `json:"weeks" binding:"omitempty,min=1"`
	Tuition              *float64 `json:"tuition" binding:"omitempty,min=0"`
	MinimumSkill         *string  `json:"minimumSkill" binding:"omitempty,oneof=beginner intermediate advanced"`
	ScholarshipAvailable *bool    `json:"scholarshipAvailable"`
}

func NewFromCreateRequest(req CreateCourseRequest, bootcampID, userID primitive.ObjectID) Course {
	now := time.Now().UTC()

	return Course{
		ID:                   primitive.NewObjectID(),
		Title:                req.Title,
		Description:          req.Description,
		Weeks:                req.Weeks,
		Tuition:              req.Tuition,
		MinimumSkill:         req.MinimumSkill,
		ScholarshipAvailable: req.ScholarshipAvailable,
		BootcampID:           bootcampID,
		UserID:               userID,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
}
