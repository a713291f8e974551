package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"ev-dealer-hub/internal/dealership"
	"ev-dealer-hub/internal/form"
	"ev-dealer-hub/internal/store"
	"ev-dealer-hub/internal/workflow"

	"github.com/gin-gonic/gin"
)

var (
	errForbidden = errors.New("you do not have permission to perform this action")
	errConflict  = errors.New("conflict")
)

// conflictError is a request that clashes with existing data.
type conflictError struct {
	msg string
}

func (e *conflictError) Error() string { return e.msg }

func (e *conflictError) Is(target error) bool { return target == errConflict }

// respondError maps domain errors onto HTTP statuses. Anything unexpected is
// logged and hidden behind a 500.
func respondError(c *gin.Context, err error) {
	body := gin.H{"error": err.Error()}
	if id := c.GetString("requestID"); id != "" {
		body["request_id"] = id
	}

	var verr *form.ValidationError
	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &verr):
		status = http.StatusUnprocessableEntity
		body["error"] = "validation failed"
		body["fields"] = verr.Fields
	case errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, workflow.ErrTransition), errors.Is(err, dealership.ErrStock),
		errors.Is(err, store.ErrStale), errors.Is(err, errConflict):
		status = http.StatusConflict
	case errors.Is(err, dealership.ErrPayment):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, errForbidden):
		status = http.StatusForbidden
	default:
		log.Printf("❌ %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		body["error"] = "Internal server error"
	}
	c.JSON(status, body)
}

// paramID reads the :id path parameter, answering 400 when it is not a
// positive number.
func paramID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID"})
		return 0, false
	}
	return uint(id), true
}

// invalid builds a single-field validation error.
func invalid(entity, field, msg string) error {
	return &form.ValidationError{Entity: entity, Fields: map[string]string{field: msg}}
}
