package mongodb

import (
	"context"
	"math"
	"time"

	"github.com/devtrails/campdir/internal/domain/course"
	"github.com/devtrails/campdir/internal/observability"
	"github.com/devtrails/campdir/internal/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CoursesRepo struct {
	coll      *mongo.Collection
	bootcamps *mongo.Collection
	prom      *observability.Prom
}

func NewCoursesRepo(database *mongo.Database, prom *observability.Prom) *CoursesRepo {
	return &CoursesRepo{
		coll:      database.Collection("courses"),
		bootcamps: database.Collection("bootcamps"),
		prom:      prom,
	}
}

// lookupBootcamp expands the parent bootcamp into bootcampDoc.
func lookupBootcamp() []bson.D {
	return []bson.D{
		{{Key: "$lookup", Value: bson.M{
			"from":         "bootcamps",
			"localField":   "bootcamp",
			"foreignField": "_id",
			"as":           "bootcampDoc",
		}}},
		{{Key: "$unwind", Value: bson.M{
			"path":                       "$bootcampDoc",
			"preserveNullAndEmptyArrays": true,
		}}},
	}
}

// listPipeline filters, sorts and pages a list query, then expands the parent
// bootcamp. A select list projects after the lookup, with bootcampDoc kept so
// the parent summary survives a narrow selection.
func listPipeline(p query.Params) mongo.Pipeline {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: p.FilterDocument()}},
		bson.D{{Key: "$sort", Value: p.SortDocument()}},
		bson.D{{Key: "$skip", Value: p.Skip()}},
		bson.D{{Key: "$limit", Value: int64(p.Limit)}},
	}
	pipeline = append(pipeline, lookupBootcamp()...)

	if proj := p.ProjectDocument(); proj != nil {
		proj = append(proj, bson.E{Key: "bootcampDoc", Value: 1})
		pipeline = append(pipeline, bson.D{{Key: "$project", Value: proj}})
	}

	return pipeline
}

func (r *CoursesRepo) Create(ctx context.Context, c course.Course) (course.Course, error) {
	err := observe(r.prom, "courses.create", func() error {
		if _, err := r.coll.InsertOne(ctx, c); err != nil {
			return err
		}
		return r.recomputeAverageCost(ctx, c.BootcampID)
	})

	if err != nil {
		return course.Course{}, translateErr(err, course.ErrNotFound)
	}

	return c, nil
}

func (r *CoursesRepo) List(ctx context.Context, p query.Params) ([]course.Course, int64, error) {
	filter := p.FilterDocument()
	pipeline := listPipeline(p)

	var total int64
	var output []course.Course

	err := observe(r.prom, "courses.list", func() error {
		var err error
		total, err = r.coll.CountDocuments(ctx, filter)

		if err != nil {
			return err
		}

		cur, err := r.coll.Aggregate(ctx, pipeline)

		if err != nil {
			return err
		}

		output = make([]course.Course, 0, p.Limit)
		return cur.All(ctx, &output)
	})

	if err != nil {
		return nil, 0, err
	}

	return output, total, nil
}

func (r *CoursesRepo) ListByBootcamp(ctx context.Context, bootcampID primitive.ObjectID) ([]course.Course, error) {
	var output []course.Course

	err := observe(r.prom, "courses.list_by_bootcamp", func() error {
		cur, err := r.coll.Find(ctx, bson.M{"bootcamp": bootcampID})

		if err != nil {
			return err
		}

		output = make([]course.Course, 0)
		return cur.All(ctx, &output)
	})

	if err != nil {
		return nil, err
	}

	return output, nil
}

func (r *CoursesRepo) GetByID(ctx context.Context, id primitive.ObjectID) (course.Course, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"_id": id}}},
	}
	pipeline = append(pipeline, lookupBootcamp()...)

	var out []course.Course

	err := observe(r.prom, "courses.get", func() error {
		cur, err := r.coll.Aggregate(ctx, pipeline)

		if err != nil {
			return err
		}
		return cur.All(ctx, &out)
	})

	if err != nil {
		return course.Course{}, err
	}
	if len(out) == 0 {
		return course.Course{}, course.ErrNotFound
	}

	return out[0], nil
}

func (r *CoursesRepo) Update(ctx context.Context, id primitive.ObjectID, req course.UpdateCourseRequest) (course.Course, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}

	if req.Title != nil {
		set["title"] = *req.Title
	}
	if req.Description != nil {
		set["description"] = *req.Description
	}
	if req.Weeks != nil {
		set["weeks"] = *req.Weeks
	}
	if req.Tuition != nil {
		set["tuition"] = *req.Tuition
	}
	if req.MinimumSkill != nil {
		set["minimumSkill"] = *req.MinimumSkill
	}
	if req.ScholarshipAvailable != nil {
		set["scholarshipAvailable"] = *req.ScholarshipAvailable
	}

	var c course.Course

	err := observe(r.prom, "courses.update", func() error {
		err := r.coll.FindOneAndUpdate(
			ctx,
			bson.M{"_id": id},
			bson.M{"$set": set},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&c)

		if err != nil {
			return err
		}
		return r.recomputeAverageCost(ctx, c.BootcampID)
	})

	if err != nil {
		return course.Course{}, translateErr(err, course.ErrNotFound)
	}

	return c, nil
}

func (r *CoursesRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	err := observe(r.prom, "courses.delete", func() error {
		var c course.Course

		err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&c)

		if err != nil {
			return err
		}
		return r.recomputeAverageCost(ctx, c.BootcampID)
	})

	return translateErr(err, course.ErrNotFound)
}

// recomputeAverageCost runs in the same request as the mutation that made it
// stale. Cost is rounded up to the nearest ten; no courses unsets the field.
func (r *CoursesRepo) recomputeAverageCost(ctx context.Context, bootcampID primitive.ObjectID) error {
	cur, err := r.coll.Aggregate(ctx, mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{"bootcamp": bootcampID}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id": "$bootcamp",
			"avg": bson.M{"$avg": "$tuition"},
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
			"$unset": bson.M{"averageCost": ""},
		})
		return err
	}

	cost := math.Ceil(results[0].Avg/10) * 10

	_, err = r.bootcamps.UpdateByID(ctx, bootcampID, bson.M{
		"$set": bson.M{"averageCost": cost},
	})
	return err
}
