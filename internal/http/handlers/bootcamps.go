package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/devtrails/campdir/internal/domain/bootcamp"
	"github.com/devtrails/campdir/internal/domain/user"
	"github.com/devtrails/campdir/internal/geocode"
	"github.com/devtrails/campdir/internal/http/middlewares"
	"github.com/devtrails/campdir/internal/query"
	"github.com/devtrails/campdir/internal/storage"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// earthRadiusMiles is the divisor turning a distance in miles into radians
// for $centerSphere.
const earthRadiusMiles = 3963.0

type BootcampsStore interface {
	Create(ctx context.Context, b bootcamp.Bootcamp) (bootcamp.Bootcamp, error)
	List(ctx context.Context, p query.Params) ([]bootcamp.Bootcamp, int64, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (bootcamp.Bootcamp, error)
	Update(ctx context.Context, id primitive.ObjectID, req bootcamp.UpdateBootcampRequest) (bootcamp.Bootcamp, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	CountByOwner(ctx context.Context, owner primitive.ObjectID) (int64, error)
	WithinRadius(ctx context.Context, lng, lat, radius float64) ([]bootcamp.Bootcamp, error)
	SetPhoto(ctx context.Context, id primitive.ObjectID, filename string) error
}

type BootcampsHandler struct {
	repo      BootcampsStore
	geo       geocode.Geocoder
	photos    *storage.PhotoStore
	maxUpload int64
}

func NewBootcampsHandler(repo BootcampsStore, geo geocode.Geocoder, photos *storage.PhotoStore, maxUpload int64) *BootcampsHandler {
	return &BootcampsHandler{
		repo:      repo,
		geo:       geo,
		photos:    photos,
		maxUpload: maxUpload,
	}
}

func (h *BootcampsHandler) List(ctx *gin.Context) {
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

func (h *BootcampsHandler) Get(ctx *gin.Context) {
	notFound := fmt.Sprintf("Bootcamp not found with id of %s", ctx.Param("id"))

	id, ok := parseID(ctx, "id", notFound)

	if !ok {
		return
	}

	b, err := h.repo.GetByID(ctx.Request.Context(), id)

	if err != nil {
		RespondRepoError(ctx, err, bootcamp.ErrNotFound, notFound)
		return
	}

	RespondData(ctx, http.StatusOK, b)
}

func (h *BootcampsHandler) Create(ctx *gin.Context) {
	caller, ok := middlewares.UserFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "Not authorized to access this route")
		return
	}

	var req bootcamp.CreateBootcampRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// publishers get a single listing; admins may hold any number
	if caller.Role != user.RoleAdmin {
		n, err := h.repo.CountByOwner(ctx.Request.Context(), caller.ID)

		if err != nil {
			RespondInternal(ctx, "Server Error")
			return
		}
		if n > 0 {
			RespondBadRequest(ctx, fmt.Sprintf("The user with ID %s has already published a bootcamp", caller.ID.Hex()))
			return
		}
	}

	loc, err := h.geocodeAddress(ctx, req.Address)

	if err != nil {
		if errors.Is(err, geocode.ErrNoResults) {
			RespondBadRequest(ctx, "Address could not be geocoded")
			return
		}

		RespondInternal(ctx, "Geocoding service unavailable")
		return
	}

	b, err := h.repo.Create(ctx.Request.Context(), bootcamp.NewFromCreateRequest(req, caller.ID, loc))

	if err != nil {
		RespondRepoError(ctx, err, bootcamp.ErrNotFound, "Bootcamp not found")
		return
	}

	RespondData(ctx, http.StatusCreated, b)
}

func (h *BootcampsHandler) Update(ctx *gin.Context) {
	notFound := fmt.Sprintf("Bootcamp not found with id of %s", ctx.Param("id"))

	id, ok := parseID(ctx, "id", notFound)

	if !ok {
		return
	}

	var req bootcamp.UpdateBootcampRequest

	if !BindJSON(ctx, &req) {
		return
	}

	existing, err := h.repo.GetByID(ctx.Request.Context(), id)

	if err != nil {
		RespondRepoError(ctx, err, bootcamp.ErrNotFound, notFound)
		return
	}

	if !h.callerOwns(ctx, existing.Owner, "update") {
		return
	}

	b, err := h.repo.Update(ctx.Request.Context(), id, req)

	if err != nil {
		RespondRepoError(ctx, err, bootcamp.ErrNotFound, notFound)
		return
	}

	RespondData(ctx, http.StatusOK, b)
}

func (h *BootcampsHandler) Delete(ctx *gin.Context) {
	notFound := fmt.Sprintf("Bootcamp not found with id of %s", ctx.Param("id"))

	id, ok := parseID(ctx, "id", notFound)

	if !ok {
		return
	}

	existing, err := h.repo.GetByID(ctx.Request.Context(), id)

	if err != nil {
		RespondRepoError(ctx, err, bootcamp.ErrNotFound, notFound)
		return
	}

	if !h.callerOwns(ctx, existing.Owner, "delete") {
		return
	}

	if err := h.repo.Delete(ctx.Request.Context(), id); err != nil {
		RespondRepoError(ctx, err, bootcamp.ErrNotFound, notFound)
		return
	}

	RespondData(ctx, http.StatusOK, gin.H{})
}

// WithinRadius serves GET /radius/:zipcode/:distance, distance in miles.
func (h *BootcampsHandler) WithinRadius(ctx *gin.Context) {
	zipcode := ctx.Param("zipcode")

	distance, err := strconv.ParseFloat(ctx.Param("distance"), 64)

	if err != nil || distance <= 0 {
		RespondBadRequest(ctx, "Distance must be a positive number of miles")
		return
	}

	loc, err := h.geocodeAddress(ctx, zipcode)

	if err != nil {
		if errors.Is(err, geocode.ErrNoResults) {
			RespondNotFound(ctx, fmt.Sprintf("Location not found for zipcode %s", zipcode))
			return
		}

		RespondInternal(ctx, "Geocoding service unavailable")
		return
	}

	items, err := h.repo.WithinRadius(ctx.Request.Context(), loc.Coordinates[0], loc.Coordinates[1], distance/earthRadiusMiles)

	if err != nil {
		RespondInternal(ctx, "Server Error")
		return
	}

	RespondCollection(ctx, len(items), items)
}

func (h *BootcampsHandler) UploadPhoto(ctx *gin.Context) {
	notFound := fmt.Sprintf("Bootcamp not found with id of %s", ctx.Param("id"))

	id, ok := parseID(ctx, "id", notFound)

	if !ok {
		return
	}

	existing, err := h.repo.GetByID(ctx.Request.Context(), id)

	if err != nil {
		RespondRepoError(ctx, err, bootcamp.ErrNotFound, notFound)
		return
	}

	if !h.callerOwns(ctx, existing.Owner, "update") {
		return
	}

	file, err := ctx.FormFile("file")

	if err != nil {
		RespondBadRequest(ctx, "Please upload a file")
		return
	}

	if !strings.HasPrefix(file.Header.Get("Content-Type"), "image/") {
		RespondBadRequest(ctx, "Please upload an image file")
		return
	}

	if file.Size > h.maxUpload {
		RespondBadRequest(ctx, fmt.Sprintf("Please upload an image less than %d bytes", h.maxUpload))
		return
	}

	name := fmt.Sprintf("photo_%s%s", id.Hex(), filepath.Ext(file.Filename))

	if err := h.photos.Save(file, name); err != nil {
		RespondInternal(ctx, "Problem with file upload")
		return
	}

	if err := h.repo.SetPhoto(ctx.Request.Context(), id, name); err != nil {
		RespondRepoError(ctx, err, bootcamp.ErrNotFound, notFound)
		return
	}

	RespondData(ctx, http.StatusOK, name)
}

func (h *BootcampsHandler) geocodeAddress(ctx *gin.Context, address string) (bootcamp.Location, error) {
	loc, err := h.geo.Geocode(ctx.Request.Context(), address)

	if err != nil {
		return bootcamp.Location{}, err
	}

	return bootcamp.Location{
		Type:             "Point",
		Coordinates:      []float64{loc.Lng, loc.Lat},
		FormattedAddress: loc.FormattedAddress,
		Street:           loc.Street,
		City:             loc.City,
		State:            loc.State,
		Zipcode:          loc.Zipcode,
		Country:          loc.Country,
	}, nil
}

// callerOwns enforces the ownership rule shared by every mutating bootcamp
// route: the owner or an admin may proceed, everyone else gets a 403.
func (h *BootcampsHandler) callerOwns(ctx *gin.Context, owner primitive.ObjectID, verb string) bool {
	caller, ok := middlewares.UserFromContext(ctx)

	if !ok {
		RespondUnauthorized(ctx, "Not authorized to access this route")
		return false
	}

	if caller.ID != owner && caller.Role != user.RoleAdmin {
		RespondForbidden(ctx, fmt.Sprintf("User %s is not authorized to %s this bootcamp", caller.ID.Hex(), verb))
		return false
	}

	return true
}
