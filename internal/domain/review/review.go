package review

import (
	"errors"
	"time"

	"github.com/devtrails/campdir/internal/domain/bootcamp"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Review struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title  string             `bson:"title" json:"title"`
	Text   string             `bson:"text" json:"text"`
	Rating int                `bson:"rating" json:"rating"`

	BootcampID primitive.ObjectID `bson:"bootcamp" json:"bootcamp"`
	UserID     primitive.ObjectID `bson:"user" json:"user"`

	Bootcamp *bootcamp.Summary `bson:"bootcampDoc,omitempty" json:"bootcampSummary,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

var (
	ErrNotFound = errors.New("review not found")
	// one review per (user, bootcamp), backed by a unique index
	ErrAlreadyReviewed = errors.New("user has already reviewed this bootcamp")
)

type CreateReviewRequest struct {
	Title  string `json:"title" binding:"required,max=100"`
	Text   string `json:"text" binding:"required,max=1000"`
	Rating int    `json:"rating" binding:"required,min=1,max=10"`
}

type UpdateReviewRequest struct {
	Title  *string `json:"title" binding:"omitempty,max=100"`
	Text   *string `json:"text" binding:"omitempty,max=1000"`
	Rating *int    `json:"rating" binding:"omitempty,min=1,max=10"`
}

func NewFromCreateRequest(req CreateReviewRequest, bootcampID, userID primitive.ObjectID) Review {
	now := time.Now().UTC()

	return Review{
		ID:         primitive.NewObjectID(),
		Title:      req.Title,
		Text:       req.Text,
		Rating:     req.Rating,
		BootcampID: bootcampID,
		UserID:     userID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
