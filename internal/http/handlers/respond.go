package handlers

import (
	"errors"
	"net/http"

	"github.com/devtrails/campdir/internal/query"
	"github.com/devtrails/campdir/internal/repo/mongodb"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Response envelope: {success, count?, pagination?, data} on success,
// {success: false, error: <message or array>} on failure.

func RespondData(ctx *gin.Context, status int, data interface{}) {
	ctx.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func RespondList(ctx *gin.Context, count int, pagination query.Pagination, data interface{}) {
	ctx.JSON(http.StatusOK, gin.H{
		"success":    true,
		"count":      count,
		"pagination": pagination,
		"data":       data,
	})
}

func RespondCollection(ctx *gin.Context, count int, data interface{}) {
	ctx.JSON(http.StatusOK, gin.H{
		"success": true,
		"count":   count,
		"data":    data,
	})
}

func RespondError(ctx *gin.Context, status int, message interface{}) {
	ctx.JSON(status, gin.H{
		"success": false,
		"error":   message,
	})
}

func RespondBadRequest(ctx *gin.Context, message interface{}) {
	RespondError(ctx, http.StatusBadRequest, message)
}

func RespondNotFound(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusNotFound, message)
}

func RespondUnauthorized(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusUnauthorized, message)
}

func RespondForbidden(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusForbidden, message)
}

func RespondInternal(ctx *gin.Context, message string) {
	RespondError(ctx, http.StatusInternalServerError, message)
}

// RespondRepoError is the one place store-layer error shapes turn into HTTP
// statuses: not-found sentinels map to 404, duplicate keys to 400, anything
// else is a 500 with a generic message.
func RespondRepoError(ctx *gin.Context, err error, notFound error, notFoundMsg string) {
	switch {
	case errors.Is(err, notFound):
		RespondNotFound(ctx, notFoundMsg)
	case errors.Is(err, mongodb.ErrDuplicate):
		RespondBadRequest(ctx, "Duplicate field value entered")
	default:
		RespondInternal(ctx, "Server Error")
	}
}

// parseID decodes a hex object id; a malformed id responds 404, same as a
// well-formed id that matches nothing.
func parseID(ctx *gin.Context, param, notFoundMsg string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(ctx.Param(param))

	if err != nil {
		RespondNotFound(ctx, notFoundMsg)
		return primitive.NilObjectID, false
	}

	return id, true
}
