package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/devtrails/campdir/internal/domain/user"
	"github.com/devtrails/campdir/internal/query"
	"github.com/devtrails/campdir/internal/security"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminUsersStore extends the auth store with the admin-only operations.
type AdminUsersStore interface {
	UsersStore
	List(ctx context.Context, p query.Params) ([]user.User, int64, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// UsersHandler is the admin-only user management surface. Every route is
// mounted behind Protect plus an admin role check.
type UsersHandler struct {
	repo AdminUsersStore
}

func NewUsersHandler(repo AdminUsersStore) *UsersHandler {
	return &UsersHandler{repo: repo}
}

func (h *UsersHandler) List(ctx *gin.Context) {
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

func (h *UsersHandler) Get(ctx *gin.Context) {
	notFound := fmt.Sprintf("User not found with id of %s", ctx.Param("id"))

	id, ok := parseID(ctx, "id", notFound)

	if !ok {
		return
	}

	u, err := h.repo.GetByID(ctx.Request.Context(), id)

	if err != nil {
		RespondRepoError(ctx, err, user.ErrNotFound, notFound)
		return
	}

	RespondData(ctx, http.StatusOK, u)
}

func (h *UsersHandler) Create(ctx *gin.Context) {
	var req user.CreateUserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	u, err := h.repo.Create(ctx.Request.Context(), user.New(req.Name, req.Email, hash, req.Role))

	if err != nil {
		RespondRepoError(ctx, err, user.ErrNotFound, "User not found")
		return
	}

	RespondData(ctx, http.StatusCreated, u)
}

func (h *UsersHandler) Update(ctx *gin.Context) {
	notFound := fmt.Sprintf("User not found with id of %s", ctx.Param("id"))

	id, ok := parseID(ctx, "id", notFound)

	if !ok {
		return
	}

	var req user.UpdateUserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	var hash string

	if req.Password != nil {
		var err error
		hash, err = security.HashPassword(*req.Password)

		if err != nil {
			RespondInternal(ctx, "Could not update user")
			return
		}
	}

	u, err := h.repo.Update(ctx.Request.Context(), id, req, hash)

	if err != nil {
		RespondRepoError(ctx, err, user.ErrNotFound, notFound)
		return
	}

	RespondData(ctx, http.StatusOK, u)
}

func (h *UsersHandler) Delete(ctx *gin.Context) {
	notFound := fmt.Sprintf("User not found with id of %s", ctx.Param("id"))

	id, ok := parseID(ctx, "id", notFound)

	if !ok {
		return
	}

	if err := h.repo.Delete(ctx.Request.Context(), id); err != nil {
		RespondRepoError(ctx, err, user.ErrNotFound, notFound)
		return
	}

	RespondData(ctx, http.StatusOK, gin.H{})
}
