package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/devtrails/campdir/internal/domain/bootcamp"
	"github.com/devtrails/campdir/internal/domain/review"
	"github.com/devtrails/campdir/internal/domain/user"
	"github.com/devtrails/campdir/internal/http/middlewares"
	"github.com/devtrails/campdir/internal/query"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReviewsStore interface {
	Create(ctx context.Context, rv review.Review) (review.Review, error)
	List(ctx context.Context, p query.Params) ([]review.Review, int64, error)
	ListByBootcamp(ctx context.Context, bootcampID primitive.ObjectID) ([]review.Review, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (review.Review, error)
	Update(ctx context.Context, id primitive.ObjectID, req review.UpdateReviewRequest) (review.Review, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type ReviewsHandler struct {
	repo      ReviewsStore
	bootcamps BootcampsStore
}

func NewReviewsHandler(repo ReviewsStore, bootcamps BootcampsStore) *ReviewsHandler {
	return &ReviewsHandler{
		repo:      repo,
		bootcamps: bootcamps,
	}
}

func (h *ReviewsHandler) List(ctx *gin.Context) {
	if ctx.Param("id") != "" {
		h.listByBootcamp(ctx)
		return
	}

	params, err := query.Parse(ctx.Request.URL.Query())

	if err != nil {
		RespondBadRequest(ctx, err.Error())
		return
	}

	items, total, err := h.repo.List(ctx.Request.Context(), params)

	if err != nil {
		RespondInternal(ctx, "Server Error")
		return
	}

	RespondList(ctx, len(items), params.Paginate(total), items)
}

func (h *ReviewsHandler) listByBootcamp(ctx *gin.Context) {
	notFound := fmt.Sprintf("Bootcamp not found with id of %s", ctx.Param("id"))

	bootcampID, ok := parseID(ctx, "id", notFound)

	if !ok {
		return
	}

	if _, err := h.bootcamps.GetByID(ctx.Request.Context(), bootcampID); err != nil {
		RespondRepoError(ctx, err, bootcamp.ErrNotFound, notFound)
		return
	}

	items, err := h.repo.ListByBootcamp(ctx.Request.Context(), bootcampID)

	if err != nil {
		RespondInternal(ctx, "Server Error")
		return
	}

	RespondCollection(ctx, len(items), items)
}

func (h *ReviewsHandler) Get(ctx *gin.Context) {
	notFound := fmt.Sprintf("Review not found with id of %s", ctx.Param("reviewId"))

	id, ok := parseID(ctx, "reviewId", notFound)

	if !ok {
		return
	}

	rv, err := h.repo.GetByID(ctx.Request.Context(), id)

	if err != nil {
		RespondRepoError(ctx, err, review.ErrNotFound, notFound)
		return
	}

	RespondData(ctx, http.StatusOK, rv)
}

func (h *ReviewsHandler) Create(ctx *gin.Context) {
	caller, ok := middlewares.UserFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "Not authorized to access this route")
		return
	}

	notFound := fmt.Sprintf("Bootcamp not found with id of %s", ctx.Param("id"))

	bootcampID, ok := parseID(ctx, "id", notFound)

	if !ok {
		return
	}

	if _, err := h.bootcamps.GetByID(ctx.Request.Context(), bootcampID); err != nil {
		RespondRepoError(ctx, err, bootcamp.ErrNotFound, notFound)
		return
	}

	var req review.CreateReviewRequest

	if !BindJSON(ctx, &req) {
		return
	}

	rv, err := h.repo.Create(ctx.Request.Context(), review.NewFromCreateRequest(req, bootcampID, caller.ID))

	if err != nil {
		if errors.Is(err, review.ErrAlreadyReviewed) {
			RespondBadRequest(ctx, "User has already submitted a review for this bootcamp")
			return
		}

		RespondRepoError(ctx, err, review.ErrNotFound, "Review not found")
		return
	}

	RespondData(ctx, http.StatusCreated, rv)
}

func (h *ReviewsHandler) Update(ctx *gin.Context) {
	notFound := fmt.Sprintf("Review not found with id of %s", ctx.Param("reviewId"))

	id, ok := parseID(ctx, "reviewId", notFound)

	if !ok {
		return
	}

	var req review.UpdateReviewRequest

	if !BindJSON(ctx, &req) {
		return
	}

	existing, err := h.repo.GetByID(ctx.Request.Context(), id)

	if err != nil {
		RespondRepoError(ctx, err, review.ErrNotFound, notFound)
		return
	}

	if !h.callerOwns(ctx, existing.UserID, "update") {
		return
	}

	rv, err := h.repo.Update(ctx.Request.Context(), id, req)

	if err != nil {
		RespondRepoError(ctx, err, review.ErrNotFound, notFound)
		return
	}

	RespondData(ctx, http.StatusOK, rv)
}

func (h *ReviewsHandler) Delete(ctx *gin.Context) {
	notFound := fmt.Sprintf("Review not found with id of %s", ctx.Param("reviewId"))

	id, ok := parseID(ctx, "reviewId", notFound)

	if !ok {
		return
	}

	existing, err := h.repo.GetByID(ctx.Request.Context(), id)

	if err != nil {
		RespondRepoError(ctx, err, review.ErrNotFound, notFound)
		return
	}

	if !h.callerOwns(ctx, existing.UserID, "delete") {
		return
	}

	if err := h.repo.Delete(ctx.Request.Context(), id); err != nil {
		RespondRepoError(ctx, err, review.ErrNotFound, notFound)
		return
	}

	RespondData(ctx, http.StatusOK, gin.H{})
}

func (h *ReviewsHandler) callerOwns(ctx *gin.Context, owner primitive.ObjectID, verb string) bool {
	caller, ok := middlewares.UserFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "Not authorized to access this route")
		return false
	}

	if caller.ID != owner && caller.Role != user.RoleAdmin {
		RespondForbidden(ctx, fmt.Sprintf("User %s is not authorized to %s this review", caller.ID.Hex(), verb))
		return false
	}

	return true
}
