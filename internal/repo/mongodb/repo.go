// Package mongodb holds one repository per collection. Repositories own all
// bson construction; handlers only see domain types and sentinel errors.
package mongodb

import (
	"errors"

	"github.com/devtrails/campdir/internal/observability"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrDuplicate surfaces a unique-index violation (email, review pair).
var ErrDuplicate = errors.New("duplicate field value entered")

// translateErr maps driver error shapes onto the sentinel taxonomy so no
// raw driver error reaches a handler.
func translateErr(err error, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return notFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return ErrDuplicate
	}
	return err
}

// observe wraps a logical DB op with metrics when a registry is wired.
func observe(prom *observability.Prom, op string, fn func() error) error {
	if prom == nil {
		return fn()
	}
	return prom.ObserveDB(op, fn)
}
