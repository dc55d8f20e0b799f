package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/devtrails/campdir/internal/domain/bootcamp"
	"github.com/devtrails/campdir/internal/domain/review"
	"github.com/devtrails/campdir/internal/domain/user"
	"github.com/devtrails/campdir/internal/http/handlers"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const validReviewBody = `{
	"title": "Learned a ton",
	"text": "Would recommend to anyone starting out",
	"rating": 8
}`

func TestCreateReview(t *testing.T) {
	reviewer := user.New("Rev", "rev@example.com", "hash", user.RoleUser)
	parent := bootcamp.Bootcamp{ID: primitive.NewObjectID()}

	tests := []struct {
		name       string
		body       string
		repoSetUp  func(*fakeReviewsRepo)
		parentErr  error
		wantStatus int
	}{
		{
			name:       "success",
			body:       validReviewBody,
			wantStatus: http.StatusCreated,
		},
		{
			name: "duplicate review",
			body: validReviewBody,
			repoSetUp: func(f *fakeReviewsRepo) {
				f.createFn = func(ctx context.Context, rv review.Review) (review.Review, error) {
					return review.Review{}, review.ErrAlreadyReviewed
				}
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "missing parent",
			body:       validReviewBody,
			parentErr:  bootcamp.ErrNotFound,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "rating out of range",
			body:       `{"title":"t","text":"x","rating":11}`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bootcamps := &fakeBootcampsRepo{
				getFn: func(ctx context.Context, id primitive.ObjectID) (bootcamp.Bootcamp, error) {
					if tt.parentErr != nil {
						return bootcamp.Bootcamp{}, tt.parentErr
					}
					return parent, nil
				},
			}

			reviews := &fakeReviewsRepo{}
			if tt.repoSetUp != nil {
				tt.repoSetUp(reviews)
			}

			h := handlers.NewReviewsHandler(reviews, bootcamps)
			mw := authFor(reviewer)
			r := setupRouter(http.MethodPost, "/api/v1/bootcamps/:id/reviews", mw.Protect(), h.Create)

			w := doJSON(r, http.MethodPost, "/api/v1/bootcamps/"+parent.ID.Hex()+"/reviews", tt.body)
			wantStatus(t, w, tt.wantStatus)
		})
	}
}

func TestCreateReview_StampsAuthor(t *testing.T) {
	reviewer := user.New("Rev", "rev@example.com", "hash", user.RoleUser)
	parent := bootcamp.Bootcamp{ID: primitive.NewObjectID()}

	var created review.Review

	bootcamps := &fakeBootcampsRepo{
		getFn: func(ctx context.Context, id primitive.ObjectID) (bootcamp.Bootcamp, error) {
			return parent, nil
		},
	}
	reviews := &fakeReviewsRepo{
		createFn: func(ctx context.Context, rv review.Review) (review.Review, error) {
			created = rv
			return rv, nil
		},
	}

	h := handlers.NewReviewsHandler(reviews, bootcamps)
	mw := authFor(reviewer)
	r := setupRouter(http.MethodPost, "/api/v1/bootcamps/:id/reviews", mw.Protect(), h.Create)

	w := doJSON(r, http.MethodPost, "/api/v1/bootcamps/"+parent.ID.Hex()+"/reviews", validReviewBody)
	wantStatus(t, w, http.StatusCreated)

	if created.UserID != reviewer.ID || created.BootcampID != parent.ID {
		t.Fatalf("review not stamped with author/bootcamp: %+v", created)
	}
}

func TestUpdateReview_Ownership(t *testing.T) {
	author := user.New("Rev", "rev@example.com", "hash", user.RoleUser)
	other := user.New("Other", "other@example.com", "hash", user.RoleUser)
	admin := user.New("Adm", "adm@example.com", "hash", user.RoleAdmin)

	existing := review.Review{ID: primitive.NewObjectID(), Rating: 8, UserID: author.ID}

	reviews := &fakeReviewsRepo{
		getFn: func(ctx context.Context, id primitive.ObjectID) (review.Review, error) {
			return existing, nil
		},
		updateFn: func(ctx context.Context, id primitive.ObjectID, req review.UpdateReviewRequest) (review.Review, error) {
			return existing, nil
		},
	}

	tests := []struct {
		name       string
		caller     user.User
		wantStatus int
	}{
		{name: "author may update", caller: author, wantStatus: http.StatusOK},
		{name: "admin may update", caller: admin, wantStatus: http.StatusOK},
		{name: "other user forbidden", caller: other, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := handlers.NewReviewsHandler(reviews, &fakeBootcampsRepo{})
			mw := authFor(tt.caller)
			r := setupRouter(http.MethodPut, "/api/v1/reviews/:reviewId", mw.Protect(), h.Update)

			w := doJSON(r, http.MethodPut, "/api/v1/reviews/"+existing.ID.Hex(), `{"rating":9}`)
			wantStatus(t, w, tt.wantStatus)
		})
	}
}

func TestGetReview_NotFound(t *testing.T) {
	h := handlers.NewReviewsHandler(&fakeReviewsRepo{}, &fakeBootcampsRepo{})
	r := setupRouter(http.MethodGet, "/api/v1/reviews/:reviewId", h.Get)

	w := doJSON(r, http.MethodGet, "/api/v1/reviews/"+primitive.NewObjectID().Hex(), "")
	wantStatus(t, w, http.StatusNotFound)

	w = doJSON(r, http.MethodGet, "/api/v1/reviews/garbage", "")
	wantStatus(t, w, http.StatusNotFound)
}
