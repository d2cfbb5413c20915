package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"taskhub/internal/apperr"
	"taskhub/internal/dto"
	"taskhub/internal/logging"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func init() {
	// Report body fields by their JSON names.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// respondError writes the JSON error body for err. Anything that is not an
// apperr.Error or a binding failure is logged and reported as a 500 without
// details.
func respondError(c *gin.Context, err error) {
	ae := classify(err)
	msg := ae.Msg
	if ae.Code == apperr.Internal {
		logging.FromContext(c).WithError(err).Error("internal error")
		msg = "internal error"
	}
	c.AbortWithStatusJSON(ae.Code.HTTPStatus(), dto.ErrorResponse{
		Error: msg,
		Code:  ae.Code.String(),
		Field: ae.Field,
	})
}

func classify(err error) *apperr.Error {
	var (
		ae      *apperr.Error
		verrs   validator.ValidationErrors
		typeErr *json.UnmarshalTypeError
		synErr  *json.SyntaxError
	)
	switch {
	case errors.As(err, &ae):
		return ae
	case errors.As(err, &verrs) && len(verrs) > 0:
		return fieldError(verrs[0])
	case errors.As(err, &typeErr):
		if typeErr.Field == "" {
			return apperr.InvalidField("", "request body must be a JSON object")
		}
		return apperr.InvalidField(typeErr.Field, fmt.Sprintf("%s must be %s", typeErr.Field, jsonKind(typeErr.Type)))
	case errors.As(err, &synErr), errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return apperr.InvalidField("", "request body must be a JSON object")
	default:
		return apperr.New(apperr.Internal, "internal error", err)
	}
}

// jsonKind names the JSON value a Go type decodes from.
func jsonKind(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "an integer"
	case reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "a boolean"
	case reflect.Slice, reflect.Array:
		return "an array"
	default:
		return "an object"
	}
}

func fieldError(fe validator.FieldError) *apperr.Error {
	name := fe.Field()
	var msg string
	switch fe.Tag() {
	case "required":
		msg = name + " is required"
	case "max":
		msg = fmt.Sprintf("%s must be at most %s characters", name, fe.Param())
	case "min":
		msg = fmt.Sprintf("%s must be at least %s characters", name, fe.Param())
	case "email":
		msg = name + " must be a valid email address"
	default:
		msg = name + " is invalid"
	}
	return apperr.InvalidField(name, msg)
}

func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		respondError(c, apperr.InvalidField(name, name+" must be a positive integer"))
		return 0, false
	}
	return id, true
}

func deleted(c *gin.Context, id int64) {
	c.JSON(http.StatusOK, dto.DeletedResponse{Deleted: true, ID: id})
}
