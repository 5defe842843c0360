package handler

import (
	"errors"
	"net/http"
	"reflect"
	"sync"
	"time"

	"pipeflow/internal/apierror"
	"pipeflow/internal/ledger"
	"pipeflow/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		// Teach the validator decimal.Decimal so min/max tags work on money
		// and weight fields.
		validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				f, _ := d.Float64()
				return f
			}
			return nil
		}, decimal.Decimal{})
	})
	return validate
}

// bindAndValidate binds the JSON body and runs struct validation, writing the
// 400/422 envelope itself. Returns false when the request was rejected.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid request body: "+err.Error()))
		return false
	}
	if err := getValidator().Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[fe.Field()] = fe.Tag()
			}
			c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
			return false
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.New(err.Error()))
		return false
	}
	return true
}

// parseUUIDParam reads a path parameter as a UUID, writing the 400 itself.
func parseUUIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

// writeError maps service and guard errors to HTTP responses. Capacity
// rejections carry the exact remaining capacity in the body.
func writeError(c *gin.Context, err error) {
	var capErr *ledger.CapacityError
	if errors.As(err, &capErr) {
		c.JSON(http.StatusConflict, apierror.NewCapacity(capErr.Error(), capErr.MaxAllowed))
		return
	}
	var intErr *ledger.IntegrityError
	if errors.As(err, &intErr) {
		c.JSON(http.StatusConflict, apierror.New(intErr.Error()))
		return
	}
	var parseErr *time.ParseError
	if errors.As(err, &parseErr) {
		c.JSON(http.StatusUnprocessableEntity, apierror.New("invalid date, expected YYYY-MM-DD"))
		return
	}

	switch {
	case errors.Is(err, ledger.ErrNonPositiveQuantity):
		c.JSON(http.StatusUnprocessableEntity, apierror.New(err.Error()))
	case errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, service.ErrSubOrderNotFound),
		errors.Is(err, service.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case errors.Is(err, service.ErrDuplicateOrderNo),
		errors.Is(err, service.ErrDuplicateUsername),
		errors.Is(err, service.ErrAlreadyCanceled),
		errors.Is(err, service.ErrOrderCompleted),
		errors.Is(err, service.ErrOrderCanceled):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken):
		c.JSON(http.StatusUnauthorized, apierror.New(err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, apierror.New("internal server error"))
	}
}
