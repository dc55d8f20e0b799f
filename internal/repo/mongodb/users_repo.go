package mongodb

import (
	"context"
	"time"

	"github.com/devtrails/campdir/internal/domain/user"
	"github.com/devtrails/campdir/internal/observability"
	"github.com/devtrails/campdir/internal/query"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type UsersRepo struct {
	coll *mongo.Collection
	prom *observability.Prom
}

func NewUsersRepo(database *mongo.Database, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{
		coll: database.Collection("users"),
		prom: prom,
	}
}

func (r *UsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	err := observe(r.prom, "users.create", func() error {
		_, err := r.coll.InsertOne(ctx, u)
		return err
	})

	if err != nil {
		return user.User{}, translateErr(err, user.ErrNotFound)
	}

	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id primitive.ObjectID) (user.User, error) {
	var u user.User

	err := observe(r.prom, "users.get", func() error {
		return r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	})

	if err != nil {
		return user.User{}, translateErr(err, user.ErrNotFound)
	}

	return u, nil
}

func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	var u user.User

	err := observe(r.prom, "users.get_by_email", func() error {
		return r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	})

	if err != nil {
		return user.User{}, translateErr(err, user.ErrNotFound)
	}

	return u, nil
}

func (r *UsersRepo) List(ctx context.Context, p query.Params) ([]user.User, int64, error) {
	filter := p.FilterDocument()

	var total int64
	var output []user.User

	err := observe(r.prom, "users.list", func() error {
		var err error
		total, err = r.coll.CountDocuments(ctx, filter)

		if err != nil {
			return err
		}

		cur, err := r.coll.Find(ctx, filter, p.FindOptions())

		if err != nil {
			return err
		}

		output = make([]user.User, 0, p.Limit)
		return cur.All(ctx, &output)
	})

	if err != nil {
		return nil, 0, err
	}

	return output, total, nil
}

// Update applies a partial update. passwordHash, when non-empty, replaces the
// stored credential; callers hash before reaching the repo.
func (r *UsersRepo) Update(ctx context.Context, id primitive.ObjectID, req user.UpdateUserRequest, passwordHash string) (user.User, error) {
	set := bson.M{"updatedAt": time.Now().UTC()}

	if req.Name != nil {
		set["name"] = *req.Name
	}
	if req.Email != nil {
		set["email"] = *req.Email
	}
	if req.Role != nil {
		set["role"] = *req.Role
	}
	if passwordHash != "" {
		set["password"] = passwordHash
	}

	var u user.User

	err := observe(r.prom, "users.update", func() error {
		return r.coll.FindOneAndUpdate(
			ctx,
			bson.M{"_id": id},
			bson.M{"$set": set},
			options.FindOneAndUpdate().SetReturnDocument(options.After),
		).Decode(&u)
	})

	if err != nil {
		return user.User{}, translateErr(err, user.ErrNotFound)
	}

	return u, nil
}

func (r *UsersRepo) UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	err := observe(r.prom, "users.update_password", func() error {
		res, err := r.coll.UpdateByID(ctx, id, bson.M{"$set": bson.M{
			"password":  passwordHash,
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

	return translateErr(err, user.ErrNotFound)
}

func (r *UsersRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	err := observe(r.prom, "users.delete", func() error {
		res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})

		if err != nil {
			return err
		}
		if res.DeletedCount == 0 {
			return mongo.ErrNoDocuments
		}
		return nil
	})

	return translateErr(err, user.ErrNotFound)
}

func (r *UsersRepo) SetResetToken(ctx context.Context, id primitive.ObjectID, tokenHash string, expire time.Time) error {
	err := observe(r.prom, "users.set_reset_token", func() error {
		res, err := r.coll.UpdateByID(ctx, id, bson.M{"$set": bson.M{
			"resetPasswordToken":  tokenHash,
			"resetPasswordExpire": expire,
		}})

		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return mongo.ErrNoDocuments
		}
		return nil
	})

	return translateErr(err, user.ErrNotFound)
}

// ResetPassword writes the new credential and drops the reset fields in one
// update, so a consumed token can never outlive the password it reset.
func (r *UsersRepo) ResetPassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	err := observe(r.prom, "users.reset_password", func() error {
		res, err := r.coll.UpdateByID(ctx, id, bson.M{
			"$set": bson.M{
				"password":  passwordHash,
				"updatedAt": time.Now().UTC(),
			},
			"$unset": bson.M{
				"resetPasswordToken":  "",
				"resetPasswordExpire": "",
			},
		})

		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return mongo.ErrNoDocuments
		}
		return nil
	})

	return translateErr(err, user.ErrNotFound)
}

func (r *UsersRepo) ClearResetToken(ctx context.Context, id primitive.ObjectID) error {
	err := observe(r.prom, "users.clear_reset_token", func() error {
		_, err := r.coll.UpdateByID(ctx, id, bson.M{"$unset": bson.M{
			"resetPasswordToken":  "",
			"resetPasswordExpire": "",
		}})
		return err
	})

	return translateErr(err, user.ErrNotFound)
}

// GetByResetToken matches the stored token hash with an unexpired expiry.
func (r *UsersRepo) GetByResetToken(ctx context.Context, tokenHash string, now time.Time) (user.User, error) {
	var u user.User

	err := observe(r.prom, "users.get_by_reset_token", func() error {
		return r.coll.FindOne(ctx, bson.M{
			"resetPasswordToken":  tokenHash,
			"resetPasswordExpire": bson.M{"$gt": now},
		}).Decode(&u)
	})

	if err != nil {
		return user.User{}, translateErr(err, user.ErrNotFound)
	}

	return u, nil
}
