package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"estatehub/backend/internal/complaint"
	"estatehub/backend/internal/listing"
	"estatehub/backend/internal/models"
	"estatehub/backend/internal/reservation"
	"estatehub/backend/internal/storage"
	"estatehub/backend/internal/workflow"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	ErrUnauthorized = errors.New("authentication required")
	ErrForbidden    = errors.New("you are not allowed to do this")
	ErrBlocked      = errors.New("account is blocked")
	ErrBadRequest   = errors.New("bad request")
)

var registerTagNames sync.Once

// useJSONFieldNames makes validation errors report the json name of a field.
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, tag := range []string{"json", "form"} {
				name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return f.Name
		})
	})
}

func statusOf(err error) int {
	var verrs validator.ValidationErrors
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError

	switch {
	case errors.As(err, &verrs), errors.As(err, &syntaxErr), errors.As(err, &typeErr),
		errors.Is(err, io.EOF), errors.Is(err, ErrBadRequest),
		errors.Is(err, listing.ErrInvalidQuery), errors.Is(err, models.ErrDetailsMismatch),
		errors.Is(err, reservation.ErrInvalidDates), errors.Is(err, reservation.ErrNotRentable),
		errors.Is(err, reservation.ErrInvalidStatus),
		errors.Is(err, complaint.ErrInvalidReason), errors.Is(err, complaint.ErrInvalidStatus):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidToken):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden), errors.Is(err, ErrBlocked),
		errors.Is(err, reservation.ErrForbidden), errors.Is(err, complaint.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrConflict), errors.Is(err, workflow.ErrInvalidTransition),
		errors.Is(err, reservation.ErrUnavailable), errors.Is(err, complaint.ErrDuplicate):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// respondError writes {message} (plus {fields} for validation failures) with
// the status matching err.
func respondError(c *gin.Context, err error) {
	status := statusOf(err)
	body := gin.H{"message": err.Error()}

	switch status {
	case http.StatusInternalServerError:
		log.Printf("ERROR: %s %s: %v", c.Request.Method, c.FullPath(), err)
		body["message"] = "internal server error"
	case http.StatusBadRequest:
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fieldPath(fe)] = fe.Tag()
			}
			body["message"] = "validation failed"
			body["fields"] = fields
		} else if errors.Is(err, io.EOF) {
			body["message"] = "request body is required"
		}
	case http.StatusNotFound:
		body["message"] = "not found"
	}
	c.AbortWithStatusJSON(status, body)
}

// fieldPath drops the top-level struct name from the namespace ("postInput.details.area" -> "details.area").
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}
