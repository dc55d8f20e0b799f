package mongodb

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/devtrails/campdir/internal/domain/review"
	"github.com/devtrails/campdir/internal/observability"
	"github.com/devtrails/campdir/internal/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ReviewsRepo struct {
	coll      *mongo.Collection
	bootcamps *mongo.Collection
	prom      *observability.Prom
}

func NewReviewsRepo(database *mongo.Database, prom *observability.Prom) *ReviewsRepo {
	return &ReviewsRepo{
		coll:      database.Collection("reviews"),
		bootcamps: database.Collection("bootcamps"),
		prom:      prom,
	}
}

func (r *ReviewsRepo) Create(ctx context.Context, rv review.Review) (review.Review, error) {
	err := observe(r.prom, "reviews.create", func() error {
		if _, err := r.coll.InsertOne(ctx, rv); err != nil {
			return err
		}
		return r.recomputeAverageRating(ctx, rv.BootcampID)
	})

	if err != nil {
		if errors.Is(translateErr(err, review.ErrNotFound), ErrDuplicate) {
			return review.Review{}, review.ErrAlreadyReviewed
		}
		return review.Review{}, translateErr(err, review.ErrNotFound)
	}

	return rv, nil
}

func (r *ReviewsRepo) List(ctx context.Context, p query.Params) ([]review.Review, int64, error) {
	filter := p.FilterDocument()
	pipeline := listPipeline(p)

	var total int64
	var output []review.Review

	err := observe(r.prom, "reviews.list", func() error {
		var err error
		total, err = r.coll.CountDocuments(ctx, filter)

		if err != nil {
			return err
		}

		cur, err := r.coll.Aggregate(ctx, pipeline)

		if err != nil {
			return err
		}

		output = make([]review.Review, 0, p.Limit)
		return cur.All(ctx, &output)
	})

	if err != nil {
		return nil, 0, err
	}

	return output, total, nil
}

func (r *ReviewsRepo) ListByBootcamp(ctx context.Context, bootcampID primitive.ObjectID) ([]review.Review, error) {
	var output []review.Review

	err := observe(r.prom, "reviews.list_by_bootcamp", func() error {
		cur, err := r.coll.Find(ctx, bson.M{"bootcamp": bootcampID})

		if err != nil {
			return err
		}

		output = make([]review.Review, 0)
		return cur.All(ctx, &output)
	})

	if err != nil {
		return nil, err
	}

	return output, nil
}

func (r *ReviewsRepo) GetByID(ctx context.Context, id primitive.ObjectID) (review.Review, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"_id": id}}},
	}
	pipeline = append(pipeline, lookupBootcamp()...)

	var out []review.Review

	err := observe(r.prom, "reviews.get", func() error {
		cur, err := r.coll.Aggregate(ctx, pipeline)

		if err != nil {
			return err
		}
		return cur.All(ctx, &out)
	})

	if err != nil {
		return review.Review{}, err
	}
	if len(out) == 0 {
		return review.Review{}, review.ErrNotFound
	}

	return out[0], nil
}

func (r *ReviewsRepo) Update(ctx context.Context, id primitive.ObjectID, req review.UpdateReviewRequest) (review.Review, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}

	if req.Title != nil {
		set["title"] = *req.Title
	}
	if req.Text != nil {
		set["text"] = *req.Text
	}
	if req.Rating != nil {
		set["rating"] = *req.Rating
	}

	var rv review.Review

	err := observe(r.prom, "reviews.update", func() error {
		err := r.coll.FindOneAndUpdate(
			ctx,
			bson.M{"_id": id},
			bson.M{"$set": set},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&rv)

		if err != nil {
			return err
		}
		return r.recomputeAverageRating(ctx, rv.BootcampID)
	})

	if err != nil {
		return review.Review{}, translateErr(err, review.ErrNotFound)
	}

	return rv, nil
}

func (r *ReviewsRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	err := observe(r.prom, "reviews.delete", func() error {
		var rv review.Review

		err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&rv)

		if err != nil {
			return err
		}
		return r.recomputeAverageRating(ctx, rv.BootcampID)
	})

	return translateErr(err, review.ErrNotFound)
}

// recomputeAverageRating keeps the bootcamp aggregate in step with its
// reviews, one decimal of precision; no reviews unsets the field.
func (r *ReviewsRepo) recomputeAverageRating(ctx context.Context, bootcampID primitive.ObjectID) error {
	cur, err := r.coll.Aggregate(ctx, mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"bootcamp": bootcampID}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id": "$bootcamp",
			"avg": bson.M{"$avg": "$rating"},
		}}},
	})

	if err != nil {
		return err
	}

	var results []struct {
		Avg float64 `bson:"avg"`
	}

	if err := cur.All(ctx, &results); err != nil {
		return err
	}

	if len(results) == 0 {
		_, err = r.bootcamps.UpdateByID(ctx, bootcampID, bson.M{
			"$unset": bson.M{"averageRating": ""},
		})
		return err
	}

	rating := math.Round(results[0].Avg*10) / 10

	_, err = r.bootcamps.UpdateByID(ctx, bootcampID, bson.M{
		"$set": bson.M{"averageRating": rating},
	})
	return err
}
