package middleware

import (
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/facturo/backend/internal/domain/metrics"
	"github.com/facturo/backend/internal/domain/shared"
	"github.com/facturo/backend/internal/interfaces/http/dto"
)

// SetupValidator configures the binding validator with custom tags. Call
// once at startup before routes are served.
func SetupValidator() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}

	// Use json/form tag names in validation error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})

	_ = v.RegisterValidation("periodkind", func(fl validator.FieldLevel) bool {
		return metrics.PeriodKind(fl.Field().String()).IsValid()
	})
}

// HandleValidationError responds with a 400 carrying the offending fields
func HandleValidationError(c *gin.Context, err error) {
	message := err.Error()
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		fields := make([]string, 0, len(validationErrors))
		for _, fe := range validationErrors {
			fields = append(fields, fe.Field())
		}
		message = "invalid fields: " + strings.Join(fields, ", ")
	}

	requestID := c.GetString("request_id")
	c.JSON(http.StatusBadRequest,
		dto.NewErrorResponseWithRequestID(shared.CodeValidation, message, requestID))
}
