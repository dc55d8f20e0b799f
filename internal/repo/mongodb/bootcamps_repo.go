package mongodb

import (
	"context"
	"time"

	"github.com/devtrails/campdir/internal/domain/bootcamp"
	"github.com/devtrails/campdir/internal/observability"
	"github.com/devtrails/campdir/internal/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type BootcampsRepo struct {
	coll    *mongo.Collection
	courses *mongo.Collection
	reviews *mongo.Collection
	prom    *observability.Prom
}

func NewBootcampsRepo(database *mongo.Database, prom *observability.Prom) *BootcampsRepo {
	return &BootcampsRepo{
		coll:    database.Collection("bootcamps"),
		courses: database.Collection("courses"),
		reviews: database.Collection("reviews"),
		prom:    prom,
	}
}

func (r *BootcampsRepo) Create(ctx context.Context, b bootcamp.Bootcamp) (bootcamp.Bootcamp, error) {
	err := observe(r.prom, "bootcamps.create", func() error {
		_, err := r.coll.InsertOne(ctx, b)
		return err
	})

	if err != nil {
		return bootcamp.Bootcamp{}, translateErr(err, bootcamp.ErrNotFound)
	}

	return b, nil
}

func (r *BootcampsRepo) List(ctx context.Context, p query.Params) ([]bootcamp.Bootcamp, int64, error) {
	filter := p.FilterDocument()

	var total int64
	var output []bootcamp.Bootcamp

	err := observe(r.prom, "bootcamps.list", func() error {
		var err error
		total, err = r.coll.CountDocuments(ctx, filter)

		if err != nil {
			return err
		}

		cur, err := r.coll.Find(ctx, filter, p.FindOptions())

		if err != nil {
			return err
		}

		output = make([]bootcamp.Bootcamp, 0, p.Limit)
		return cur.All(ctx, &output)
	})

	if err != nil {
		return nil, 0, err
	}

	return output, total, nil
}

func (r *BootcampsRepo) GetByID(ctx context.Context, id primitive.ObjectID) (bootcamp.Bootcamp, error) {
	var b bootcamp.Bootcamp

	err := observe(r.prom, "bootcamps.get", func() error {
		return r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&b)
	})

	if err != nil {
		return bootcamp.Bootcamp{}, translateErr(err, bootcamp.ErrNotFound)
	}

	return b, nil
}

func (r *BootcampsRepo) Update(ctx context.Context, id primitive.ObjectID, req bootcamp.UpdateBootcampRequest) (bootcamp.Bootcamp, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}

	if req.Name != nil {
		set["name"] = *req.Name
	}
	if req.Description != nil {
		set["description"] = *req.Description
	}
	if req.Website != nil {
		set["website"] = *req.Website
	}
	if req.Phone != nil {
		set["phone"] = *req.Phone
	}
	if req.Email != nil {
		set["email"] = *req.Email
	}
	if req.Careers != nil {
		set["careers"] = *req.Careers
	}
	if req.Housing != nil {
		set["housing"] = *req.Housing
	}
	if req.JobAssistance != nil {
		set["jobAssistance"] = *req.JobAssistance
	}
	if req.JobGuarantee != nil {
		set["jobGuarantee"] = *req.JobGuarantee
	}
	if req.AcceptGiBill != nil {
		set["acceptGi"] = *req.AcceptGiBill
	}

	var b bootcamp.Bootcamp

	err := observe(r.prom, "bootcamps.update", func() error {
		return r.coll.FindOneAndUpdate(
			ctx,
			bson.M{"_id": id},
			bson.M{"$set": set},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&b)
	})

	if err != nil {
		return bootcamp.Bootcamp{}, translateErr(err, bootcamp.ErrNotFound)
	}

	return b, nil
}

// remover is the slice of *mongo.Collection the cascade needs.
type remover interface {
	DeleteMany(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
}

// deleteBootcampTree removes dependent courses and reviews before the
// bootcamp itself, so an interrupted delete never strands children pointing
// at a live parent.
func deleteBootcampTree(ctx context.Context, bootcamps, courses, reviews remover, id primitive.ObjectID) error {
	if _, err := courses.DeleteMany(ctx, bson.M{"bootcamp": id}); err != nil {
		return err
	}
	if _, err := reviews.DeleteMany(ctx, bson.M{"bootcamp": id}); err != nil {
		return err
	}

	res, err := bootcamps.DeleteOne(ctx, bson.M{"_id": id})

	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Delete removes the bootcamp and, explicitly, its dependent courses and
// reviews. The cascade lives here rather than in storage hooks so no orphan
// can survive a partial implementation elsewhere.
func (r *BootcampsRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	err := observe(r.prom, "bootcamps.delete", func() error {
		return deleteBootcampTree(ctx, r.coll, r.courses, r.reviews, id)
	})

	return translateErr(err, bootcamp.ErrNotFound)
}

func (r *BootcampsRepo) CountByOwner(ctx context.Context, owner primitive.ObjectID) (int64, error) {
	var n int64

	err := observe(r.prom, "bootcamps.count_by_owner", func() error {
		var err error
		n, err = r.coll.CountDocuments(ctx, bson.M{"owner": owner})
		return err
	})

	return n, err
}

// WithinRadius returns bootcamps inside the spherical cap centered at
// lng/lat; radius is already in radians (miles divided by Earth's radius).
func (r *BootcampsRepo) WithinRadius(ctx context.Context, lng, lat, radius float64) ([]bootcamp.Bootcamp, error) {
	var output []bootcamp.Bootcamp

	err := observe(r.prom, "bootcamps.within_radius", func() error {
		cur, err := r.coll.Find(ctx, bson.M{
			"location": bson.M{
				"$geoWithin": bson.M{
					"$centerSphere": bson.A{bson.A{lng, lat}, radius},
				},
			},
		})

		if err != nil {
			return err
		}

		output = make([]bootcamp.Bootcamp, 0)
		return cur.All(ctx, &output)
	})

	if err != nil {
		return nil, err
	}

	return output, nil
}

func (r *BootcampsRepo) SetPhoto(ctx context.Context, id primitive.ObjectID, filename string) error {
	err := observe(r.prom, "bootcamps.set_photo", func() error {
		res, err := r.coll.UpdateByID(ctx, id, bson.M{"$set": bson.M{
			"photo":     filename,
			"updatedAt": time.Now().UTC(),
		}})

		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return mongo.ErrNoDocuments
		}
		return nil
	})

	return translateErr(err, bootcamp.ErrNotFound)
}
