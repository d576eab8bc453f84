package handler

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// FieldError describes a single failed binding constraint.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var fieldMessages = map[string]string{
	"required": "field is required",
	"email":    "invalid email format",
	"min":      "value is too short",
	"oneof":    "value is not one of the allowed options",
}

// RegisterValidation makes binding errors report JSON field names
// instead of Go struct field names. Call once at startup.
func RegisterValidation() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
}

// BindError writes a 400 for a failed request binding. Validation
// failures are broken down per field; anything else (malformed JSON,
// bad types) is reported as-is.
func BindError(c *gin.Context, err error) {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		c.JSON(http.StatusBadRequest, NewErrorResponse(err.Error()))
		return
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		msg := fieldMessages[fe.Tag()]
		if msg == "" {
			msg = fe.Error()
		}
		fields = append(fields, FieldError{Field: fe.Field(), Message: msg})
	}

	c.JSON(http.StatusBadRequest, &Response{
		Status:  "error",
		Message: "validation failed",
		Data:    gin.H{"errors": fields},
	})
}
