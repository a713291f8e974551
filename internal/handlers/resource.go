package handlers

import (
	"context"
	"net/http"

	"ev-dealer-hub/internal/access"
	"ev-dealer-hub/internal/dealership"
	"ev-dealer-hub/internal/form"
	"ev-dealer-hub/internal/middleware"
	"ev-dealer-hub/internal/models"
	"ev-dealer-hub/internal/store"

	"github.com/gin-gonic/gin"
)

// resource serves the CRUD routes of one entity store through its record form.
type resource[T any, P store.Record[T]] struct {
	name   access.Resource
	store  *store.Store[T, P]
	schema *form.Schema

	// defaults prefills a new record's draft before the request body is applied.
	defaults func(sess dealership.Session, input map[string]any, d *form.Draft)
	// stamp runs once on a new record, after decoding.
	stamp func(sess dealership.Session, rec P)
	// check runs on every created or patched record before it is committed.
	// values holds the parsed fields that were set.
	check func(sess dealership.Session, values map[string]any, rec P) error
	// guard can veto a delete or a toggle.
	guard func(sess dealership.Session, id uint) error

	status func(ctx context.Context, sess dealership.Session, id uint, to string) (T, error)
	toggle bool
}

func mount[T any, P store.Record[T]](api *gin.RouterGroup, path string, res *resource[T, P]) *gin.RouterGroup {
	g := api.Group(path, middleware.RequireAccess(res.name))
	g.GET("", res.list)
	g.GET("/:id", res.get)
	g.POST("", res.create)
	g.PATCH("/:id", res.patch)
	g.DELETE("/:id", res.remove)
	if res.toggle {
		g.POST("/:id/toggle", res.flip)
	}
	if res.status != nil {
		g.POST("/:id/status", res.setStatus)
	}
	return g
}

// --- GET: /R ---
func (res *resource[T, P]) list(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	c.JSON(http.StatusOK, dealership.Visible(sess, res.store.List()))
}

// --- GET: /R/:id ---
func (res *resource[T, P]) get(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	rec, err := dealership.Lookup(middleware.CurrentSession(c), res.store, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// --- POST: /R ---
func (res *resource[T, P]) create(c *gin.Context) {
	sess := middleware.CurrentSession(c)

	// 1. Parse JSON Input
	input, ok := bindInput(c)
	if !ok {
		return
	}

	// 2. Fill the form: own dealer first, then defaults, then what was sent
	draft := form.NewDraft(res.schema)
	if _, has := res.schema.Field("dealer_id"); has && sess.Scoped() && sess.DealerID != nil {
		draft.Set("dealer_id", *sess.DealerID)
	}
	if res.defaults != nil {
		res.defaults(sess, input, draft)
	}
	draft.Apply(input)

	// 3. Validate and build the record
	rec, err := form.Decode[T](draft)
	if err != nil {
		respondError(c, err)
		return
	}
	values, err := draft.Values()
	if err != nil {
		respondError(c, err)
		return
	}
	if res.stamp != nil {
		res.stamp(sess, P(&rec))
	}
	if err := res.verify(sess, values, P(&rec)); err != nil {
		respondError(c, err)
		return
	}

	// 4. Save
	created, err := res.store.Create(c.Request.Context(), rec)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// --- PATCH: /R/:id ---
// Only the fields sent are validated and merged; derived fields follow them.
func (res *resource[T, P]) patch(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	id, ok := paramID(c)
	if !ok {
		return
	}
	current, err := dealership.Lookup(sess, res.store, id)
	if err != nil {
		respondError(c, err)
		return
	}
	input, ok := bindInput(c)
	if !ok {
		return
	}

	draft, err := form.DraftFrom(res.schema, current)
	if err != nil {
		respondError(c, err)
		return
	}
	draft.Apply(input)
	changes, err := draft.Changes()
	if err != nil {
		respondError(c, err)
		return
	}

	next, err := store.Merged(current, changes)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := res.verify(sess, changes, P(&next)); err != nil {
		respondError(c, err)
		return
	}
	updated, err := res.store.Replace(c.Request.Context(), id, current, next)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// --- DELETE: /R/:id ---
func (res *resource[T, P]) remove(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	id, ok := paramID(c)
	if !ok {
		return
	}
	if _, err := dealership.Lookup(sess, res.store, id); err != nil {
		respondError(c, err)
		return
	}
	if res.guard != nil {
		if err := res.guard(sess, id); err != nil {
			respondError(c, err)
			return
		}
	}
	if err := res.store.Remove(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- POST: /R/:id/toggle ---
func (res *resource[T, P]) flip(c *gin.Context) {
	sess := middleware.CurrentSession(c)
	id, ok := paramID(c)
	if !ok {
		return
	}
	if res.guard != nil {
		if err := res.guard(sess, id); err != nil {
			respondError(c, err)
			return
		}
	}
	rec, err := dealership.ToggleActive(c.Request.Context(), sess, res.store, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// --- POST: /R/:id/status ---
func (res *resource[T, P]) setStatus(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status is required"})
		return
	}
	rec, err := res.status(c.Request.Context(), middleware.CurrentSession(c), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// verify runs the resource check, then makes sure a dealer-bound caller
// has not placed the record outside their own dealer.
func (res *resource[T, P]) verify(sess dealership.Session, values map[string]any, rec P) error {
	if res.check != nil {
		if err := res.check(sess, values, rec); err != nil {
			return err
		}
	}
	if _, owned := any(rec).(models.DealerOwned); owned && !sess.Sees(*rec) {
		return invalid(res.schema.Entity, "dealer_id", "must be your own dealer")
	}
	return nil
}

// bindInput reads the request body as a JSON object. The id is never
// taken from the body.
func bindInput(c *gin.Context) (map[string]any, bool) {
	var input map[string]any
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
		return nil, false
	}
	delete(input, "id")
	return input, true
}
