package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/devtrails/campdir/internal/domain/bootcamp"
	"github.com/devtrails/campdir/internal/domain/course"
	"github.com/devtrails/campdir/internal/domain/user"
	"github.com/devtrails/campdir/internal/http/middlewares"
	"github.com/devtrails/campdir/internal/query"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CoursesStore interface {
	Create(ctx context.Context, c course.Course) (course.Course, error)
	List(ctx context.Context, p query.Params) ([]course.Course, int64, error)
	ListByBootcamp(ctx context.Context, bootcampID primitive.ObjectID) ([]course.Course, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (course.Course, error)
	Update(ctx context.Context, id primitive.ObjectID, req course.UpdateCourseRequest) (course.Course, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type CoursesHandler struct {
	repo      CoursesStore
	bootcamps BootcampsStore
}

func NewCoursesHandler(repo CoursesStore, bootcamps BootcampsStore) *CoursesHandler {
	return &CoursesHandler{
		repo:      repo,
		bootcamps: bootcamps,
	}
}

// List serves both GET /courses and GET /bootcamps/:id/courses; the nested
// form skips query parsing and returns every course of the bootcamp.
func (h *CoursesHandler) List(ctx *gin.Context) {
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

func (h *CoursesHandler) listByBootcamp(ctx *gin.Context) {
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

func (h *CoursesHandler) Get(ctx *gin.Context) {
	notFound := fmt.Sprintf("Course not found with id of %s", ctx.Param("courseId"))

	id, ok := parseID(ctx, "courseId", notFound)

	if !ok {
		return
	}

	c, err := h.repo.GetByID(ctx.Request.Context(), id)

	if err != nil {
		RespondRepoError(ctx, err, course.ErrNotFound, notFound)
		return
	}

	RespondData(ctx, http.StatusOK, c)
}

func (h *CoursesHandler) Create(ctx *gin.Context) {
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

	parent, err := h.bootcamps.GetByID(ctx.Request.Context(), bootcampID)

	if err != nil {
		RespondRepoError(ctx, err, bootcamp.ErrNotFound, notFound)
		return
	}

	// only the bootcamp owner (or an admin) may attach courses
	if parent.Owner != caller.ID && caller.Role != user.RoleAdmin {
		RespondForbidden(ctx, fmt.Sprintf("User %s is not authorized to add a course to bootcamp %s", caller.ID.Hex(), bootcampID.Hex()))
		return
	}

	var req course.CreateCourseRequest

	if !BindJSON(ctx, &req) {
		return
	}

	c, err := h.repo.Create(ctx.Request.Context(), course.NewFromCreateRequest(req, bootcampID, caller.ID))

	if err != nil {
		RespondRepoError(ctx, err, course.ErrNotFound, "Course not found")
		return
	}

	RespondData(ctx, http.StatusCreated, c)
}

func (h *CoursesHandler) Update(ctx *gin.Context) {
	notFound := fmt.Sprintf("Course not found with id of %s", ctx.Param("courseId"))

	id, ok := parseID(ctx, "courseId", notFound)

	if !ok {
		return
	}

	var req course.UpdateCourseRequest

	if !BindJSON(ctx, &req) {
		return
	}

	existing, err := h.repo.GetByID(ctx.Request.Context(), id)

	if err != nil {
		RespondRepoError(ctx, err, course.ErrNotFound, notFound)
		return
	}

	if !h.callerOwns(ctx, existing.UserID, "update") {
		return
	}

	c, err := h.repo.Update(ctx.Request.Context(), id, req)

	if err != nil {
		RespondRepoError(ctx, err, course.ErrNotFound, notFound)
		return
	}

	RespondData(ctx, http.StatusOK, c)
}

func (h *CoursesHandler) Delete(ctx *gin.Context) {
	notFound := fmt.Sprintf("Course not found with id of %s", ctx.Param("courseId"))

	id, ok := parseID(ctx, "courseId", notFound)

	if !ok {
		return
	}

	existing, err := h.repo.GetByID(ctx.Request.Context(), id)

	if err != nil {
		RespondRepoError(ctx, err, course.ErrNotFound, notFound)
		return
	}

	if !h.callerOwns(ctx, existing.UserID, "delete") {
		return
	}

	if err := h.repo.Delete(ctx.Request.Context(), id); err != nil {
		RespondRepoError(ctx, err, course.ErrNotFound, notFound)
		return
	}

	RespondData(ctx, http.StatusOK, gin.H{})
}

func (h *CoursesHandler) callerOwns(ctx *gin.Context, owner primitive.ObjectID, verb string) bool {
	caller, ok := middlewares.UserFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "Not authorized to access this route")
		return false
	}

	if caller.ID != owner && caller.Role != user.RoleAdmin {
		RespondForbidden(ctx, fmt.Sprintf("User %s is not authorized to %s this course", caller.ID.Hex(), verb))
		return false
	}

	return true
}
