package db

import (
	"context"
	"errors"

	"github.com/devtrails/campdir/internal/config"
	"github.com/devtrails/campdir/internal/domain/user"
	"github.com/devtrails/campdir/internal/security"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func EnsureAdminUser(ctx context.Context, database *mongo.Database, cfg config.Config) error {
	if cfg.AdminEmail == "" || cfg.AdminPassword == "" {
		return nil
	}

	users := database.Collection("users")

	// already seeded?
	err := users.FindOne(ctx, bson.M{"email": cfg.AdminEmail}).Err()

	if err == nil {
		return nil
	}

	if !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}

	hash, err := security.HashPassword(cfg.AdminPassword)

	if err != nil {
		return err
	}

	u := user.New(cfg.AdminName, cfg.AdminEmail, hash, user.RoleAdmin)

	_, err = users.InsertOne(ctx, u)

	return err
}
