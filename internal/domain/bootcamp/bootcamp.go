package bootcamp

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Location is a GeoJSON point plus the address parts the geocoder resolved.
type Location struct {
	Type             string    `bson:"type" json:"type"` // always "Point"
	Coordinates      []float64 `bson:"coordinates" json:"coordinates"` // [lng, lat]
	FormattedAddress string    `bson:"formattedAddress,omitempty" json:"formattedAddress,omitempty"`
	Street           string    `bson:"street,omitempty" json:"street,omitempty"`
	City             string    `bson:"city,omitempty" json:"city,omitempty"`
	State            string    `bson:"state,omitempty" json:"state,omitempty"`
	Zipcode          string    `bson:"zipcode,omitempty" json:"zipcode,omitempty"`
	Country          string    `bson:"country,omitempty" json:"country,omitempty"`
}

type Bootcamp struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Website     string             `bson:"website,omitempty" json:"website,omitempty"`
	Phone       string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Email       string             `bson:"email,omitempty" json:"email,omitempty"`
	Address     string             `bson:"address,omitempty" json:"address,omitempty"`
	Location    Location           `bson:"location" json:"location"`
	Careers     []string           `bson:"careers" json:"careers"`

	Housing       bool `bson:"housing" json:"housing"`
	JobAssistance bool `bson:"jobAssistance" json:"jobAssistance"`
	JobGuarantee  bool `bson:"jobGuarantee" json:"jobGuarantee"`
	AcceptGiBill  bool `bson:"acceptGi" json:"acceptGi"`

	// derived from reviews/courses; unset until the first dependent exists
	AverageRating *float64 `bson:"averageRating,omitempty" json:"averageRating,omitempty"`
	AverageCost   *float64 `bson:"averageCost,omitempty" json:"averageCost,omitempty"`

	Photo string             `bson:"photo,omitempty" json:"photo,omitempty"`
	Owner primitive.ObjectID `bson:"owner" json:"owner"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Summary is the shape embedded when another resource populates its bootcamp.
type Summary struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
}

var ErrNotFound = errors.New("bootcamp not found")

type CreateBootcampRequest struct {
	Name          string   `json:"name" binding:"required,min=2,max=50"`
	Description   string   `json:"description" binding:"required,max=500"`
	Website       string   `json:"website" binding:"omitempty,url"`
	Phone         string   `json:"phone" binding:"omitempty,max=20"`
	Email         string   `json:"email" binding:"omitempty,email"`
	Address       string   `json:"address" binding:"required"`
	Careers       []string `json:"careers" binding:"required,min=1,dive,oneof='Web Development' 'Mobile Development' 'UI/UX' 'Data Science' 'Business' 'Other'"`
	Housing       bool     `json:"housing"`
	JobAssistance bool     `json:"jobAssistance"`
	JobGuarantee  bool     `json:"jobGuarantee"`
	AcceptGiBill  bool     `json:"acceptGi"`
}

type UpdateBootcampRequest struct {
	Name          *string   `json:"name" binding:"omitempty,min=2,max=50"`
	Description   *string   `json:"description" binding:"omitempty,max=500"`
	Website       *string   `json:"website" binding:"omitempty,url"`
	Phone         *string   `json:"phone" binding:"omitempty,max=20"`
	Email         *string   `json:"email" binding:"omitempty,email"`
	Careers       *[]string `json:"careers" binding:"omitempty,min=1,dive,oneof='Web Development' 'Mobile Development' 'UI/UX' 'Data Science' 'Business' 'Other'"`
	Housing       *bool     `json:"housing"`
	JobAssistance *bool     `json:"jobAssistance"`
	JobGuarantee  *bool     `json:"jobGuarantee"`
	AcceptGiBill  *bool     `json:"acceptGi"`
}

func NewFromCreateRequest(req CreateBootcampRequest, owner primitive.ObjectID, loc Location) Bootcamp {
	now := time.Now().UTC()

	return Bootcamp{
		ID:            primitive.NewObjectID(),
		Name:          req.Name,
		Description:   req.Description,
		Website:       req.Website,
		Phone:         req.Phone,
		Email:         req.Email,
		Address:       req.Address,
		Location:      loc,
		Careers:       req.Careers,
		Housing:       req.Housing,
		JobAssistance: req.JobAssistance,
		JobGuarantee:  req.JobGuarantee,
		AcceptGiBill:  req.AcceptGiBill,
		Owner:         owner,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
