package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/devtrails/campdir/internal/auth"
	"github.com/devtrails/campdir/internal/domain/bootcamp"
	"github.com/devtrails/campdir/internal/domain/course"
	"github.com/devtrails/campdir/internal/domain/review"
	"github.com/devtrails/campdir/internal/domain/user"
	"github.com/devtrails/campdir/internal/http/middlewares"
	"github.com/devtrails/campdir/internal/query"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Keep Gin quiet during tests

func init() {
	gin.SetMode(gin.TestMode)
}

// Fakes follow the fn-field pattern: unset functions return zero values so a
// test only wires the calls it cares about.

type fakeUsersRepo struct {
	createFn          func(ctx context.Context, u user.User) (user.User, error)
	getByIDFn         func(ctx context.Context, id primitive.ObjectID) (user.User, error)
	getByEmailFn      func(ctx context.Context, email string) (user.User, error)
	listFn            func(ctx context.Context, p query.Params) ([]user.User, int64, error)
	updateFn          func(ctx context.Context, id primitive.ObjectID, req user.UpdateUserRequest, passwordHash string) (user.User, error)
	updatePasswordFn  func(ctx context.Context, id primitive.ObjectID, passwordHash string) error
	resetPasswordFn   func(ctx context.Context, id primitive.ObjectID, passwordHash string) error
	deleteFn          func(ctx context.Context, id primitive.ObjectID) error
	setResetTokenFn   func(ctx context.Context, id primitive.ObjectID, tokenHash string, expire time.Time) error
	clearResetTokenFn func(ctx context.Context, id primitive.ObjectID) error
	getByResetTokenFn func(ctx context.Context, tokenHash string, now time.Time) (user.User, error)
}

func (f *fakeUsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	if f.createFn != nil {
		return f.createFn(ctx, u)
	}
	return u, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id primitive.ObjectID) (user.User, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}
	return user.User{}, user.ErrNotFound
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	if f.getByEmailFn != nil {
		return f.getByEmailFn(ctx, email)
	}
	return user.User{}, user.ErrNotFound
}

func (f *fakeUsersRepo) List(ctx context.Context, p query.Params) ([]user.User, int64, error) {
	if f.listFn != nil {
		return f.listFn(ctx, p)
	}
	return nil, 0, nil
}

func (f *fakeUsersRepo) Update(ctx context.Context, id primitive.ObjectID, req user.UpdateUserRequest, passwordHash string) (user.User, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, req, passwordHash)
	}
	return user.User{}, user.ErrNotFound
}

func (f *fakeUsersRepo) UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	if f.updatePasswordFn != nil {
		return f.updatePasswordFn(ctx, id, passwordHash)
	}
	return nil
}

func (f *fakeUsersRepo) ResetPassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	if f.resetPasswordFn != nil {
		return f.resetPasswordFn(ctx, id, passwordHash)
	}
	return nil
}

func (f *fakeUsersRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func (f *fakeUsersRepo) SetResetToken(ctx context.Context, id primitive.ObjectID, tokenHash string, expire time.Time) error {
	if f.setResetTokenFn != nil {
		return f.setResetTokenFn(ctx, id, tokenHash, expire)
	}
	return nil
}

func (f *fakeUsersRepo) ClearResetToken(ctx context.Context, id primitive.ObjectID) error {
	if f.clearResetTokenFn != nil {
		return f.clearResetTokenFn(ctx, id)
	}
	return nil
}

func (f *fakeUsersRepo) GetByResetToken(ctx context.Context, tokenHash string, now time.Time) (user.User, error) {
	if f.getByResetTokenFn != nil {
		return f.getByResetTokenFn(ctx, tokenHash, now)
	}
	return user.User{}, user.ErrNotFound
}

type fakeBootcampsRepo struct {
	createFn       func(ctx context.Context, b bootcamp.Bootcamp) (bootcamp.Bootcamp, error)
	listFn         func(ctx context.Context, p query.Params) ([]bootcamp.Bootcamp, int64, error)
	getFn          func(ctx context.Context, id primitive.ObjectID) (bootcamp.Bootcamp, error)
	updateFn       func(ctx context.Context, id primitive.ObjectID, req bootcamp.UpdateBootcampRequest) (bootcamp.Bootcamp, error)
	deleteFn       func(ctx context.Context, id primitive.ObjectID) error
	countByOwnerFn func(ctx context.Context, owner primitive.ObjectID) (int64, error)
	withinRadiusFn func(ctx context.Context, lng, lat, radius float64) ([]bootcamp.Bootcamp, error)
	setPhotoFn     func(ctx context.Context, id primitive.ObjectID, filename string) error
}

func (f *fakeBootcampsRepo) Create(ctx context.Context, b bootcamp.Bootcamp) (bootcamp.Bootcamp, error) {
	if f.createFn != nil {
		return f.createFn(ctx, b)
	}
	return b, nil
}

func (f *fakeBootcampsRepo) List(ctx context.Context, p query.Params) ([]bootcamp.Bootcamp, int64, error) {
	if f.listFn != nil {
		return f.listFn(ctx, p)
	}
	return nil, 0, nil
}

func (f *fakeBootcampsRepo) GetByID(ctx context.Context, id primitive.ObjectID) (bootcamp.Bootcamp, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return bootcamp.Bootcamp{}, bootcamp.ErrNotFound
}

func (f *fakeBootcampsRepo) Update(ctx context.Context, id primitive.ObjectID, req bootcamp.UpdateBootcampRequest) (bootcamp.Bootcamp, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, req)
	}
	return bootcamp.Bootcamp{}, bootcamp.ErrNotFound
}

func (f *fakeBootcampsRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

func (f *fakeBootcampsRepo) CountByOwner(ctx context.Context, owner primitive.ObjectID) (int64, error) {
	if f.countByOwnerFn != nil {
		return f.countByOwnerFn(ctx, owner)
	}
	return 0, nil
}

func (f *fakeBootcampsRepo) WithinRadius(ctx context.Context, lng, lat, radius float64) ([]bootcamp.Bootcamp, error) {
	if f.withinRadiusFn != nil {
		return f.withinRadiusFn(ctx, lng, lat, radius)
	}
	return nil, nil
}

func (f *fakeBootcampsRepo) SetPhoto(ctx context.Context, id primitive.ObjectID, filename string) error {
	if f.setPhotoFn != nil {
		return f.setPhotoFn(ctx, id, filename)
	}
	return nil
}

type fakeCoursesRepo struct {
	createFn         func(ctx context.Context, c course.Course) (course.Course, error)
	listFn           func(ctx context.Context, p query.Params) ([]course.Course, int64, error)
	listByBootcampFn func(ctx context.Context, bootcampID primitive.ObjectID) ([]course.Course, error)
	getFn            func(ctx context.Context, id primitive.ObjectID) (course.Course, error)
	updateFn         func(ctx context.Context, id primitive.ObjectID, req course.UpdateCourseRequest) (course.Course, error)
	deleteFn         func(ctx context.Context, id primitive.ObjectID) error
}

func (f *fakeCoursesRepo) Create(ctx context.Context, c course.Course) (course.Course, error) {
	if f.createFn != nil {
		return f.createFn(ctx, c)
	}
	return c, nil
}

func (f *fakeCoursesRepo) List(ctx context.Context, p query.Params) ([]course.Course, int64, error) {
	if f.listFn != nil {
		return f.listFn(ctx, p)
	}
	return nil, 0, nil
}

func (f *fakeCoursesRepo) ListByBootcamp(ctx context.Context, bootcampID primitive.ObjectID) ([]course.Course, error) {
	if f.listByBootcampFn != nil {
		return f.listByBootcampFn(ctx, bootcampID)
	}
	return nil, nil
}

func (f *fakeCoursesRepo) GetByID(ctx context.Context, id primitive.ObjectID) (course.Course, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return course.Course{}, course.ErrNotFound
}

func (f *fakeCoursesRepo) Update(ctx context.Context, id primitive.ObjectID, req course.UpdateCourseRequest) (course.Course, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, req)
	}
	return course.Course{}, course.ErrNotFound
}

func (f *fakeCoursesRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

type fakeReviewsRepo struct {
	createFn         func(ctx context.Context, rv review.Review) (review.Review, error)
	listFn           func(ctx context.Context, p query.Params) ([]review.Review, int64, error)
	listByBootcampFn func(ctx context.Context, bootcampID primitive.ObjectID) ([]review.Review, error)
	getFn            func(ctx context.Context, id primitive.ObjectID) (review.Review, error)
	updateFn         func(ctx context.Context, id primitive.ObjectID, req review.UpdateReviewRequest) (review.Review, error)
	deleteFn         func(ctx context.Context, id primitive.ObjectID) error
}

func (f *fakeReviewsRepo) Create(ctx context.Context, rv review.Review) (review.Review, error) {
	if f.createFn != nil {
		return f.createFn(ctx, rv)
	}
	return rv, nil
}

func (f *fakeReviewsRepo) List(ctx context.Context, p query.Params) ([]review.Review, int64, error) {
	if f.listFn != nil {
		return f.listFn(ctx, p)
	}
	return nil, 0, nil
}

func (f *fakeReviewsRepo) ListByBootcamp(ctx context.Context, bootcampID primitive.ObjectID) ([]review.Review, error) {
	if f.listByBootcampFn != nil {
		return f.listByBootcampFn(ctx, bootcampID)
	}
	return nil, nil
}

func (f *fakeReviewsRepo) GetByID(ctx context.Context, id primitive.ObjectID) (review.Review, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return review.Review{}, review.ErrNotFound
}

func (f *fakeReviewsRepo) Update(ctx context.Context, id primitive.ObjectID, req review.UpdateReviewRequest) (review.Review, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, req)
	}
	return review.Review{}, review.ErrNotFound
}

func (f *fakeReviewsRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

// Auth plumbing for routes behind Protect: the verifier accepts any token and
// the loader returns the canned user, so a plain Bearer header authenticates.

type staticVerifier struct {
	claims *auth.Claims
}

func (v staticVerifier) VerifyToken(string) (*auth.Claims, error) {
	return v.claims, nil
}

type staticLoader struct {
	u user.User
}

func (l staticLoader) GetByID(context.Context, primitive.ObjectID) (user.User, error) {
	return l.u, nil
}

func authFor(u user.User) *middlewares.AuthMiddleware {
	return middlewares.NewAuthMiddleware(
		staticVerifier{claims: &auth.Claims{UserID: u.ID.Hex(), Role: u.Role}},
		staticLoader{u: u},
	)
}

func setupRouter(method, path string, h ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Handle(method, path, h...)
	return r
}

func doJSON(r *gin.Engine, method, target, body string) *httptest.ResponseRecorder {
	var buf *bytes.Buffer
	if body != "" {
		buf = bytes.NewBufferString(body)
	} else {
		buf = &bytes.Buffer{}
	}

	req := httptest.NewRequest(method, target, buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer test-token")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var out map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body: %v (%s)", err, w.Body.String())
	}
	return out
}

func wantStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()

	if w.Code != want {
		t.Fatalf("expected status %d, got %d (%s)", want, w.Code, w.Body.String())
	}
	if want >= http.StatusBadRequest {
		body := decodeBody(t, w)
		if success, ok := body["success"].(bool); !ok || success {
			t.Fatalf("expected success=false envelope, got %s", w.Body.String())
		}
	}
}
