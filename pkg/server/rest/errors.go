package rest

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/lintang-b-s/synthmap/pkg/geo"
	"github.com/lintang-b-s/synthmap/pkg/kv"
	"github.com/lintang-b-s/synthmap/pkg/lanespec"
	"github.com/lintang-b-s/synthmap/pkg/synthetic"

	"github.com/go-chi/render"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
)

// ErrResponse model info
//
//	@Description	error response
type ErrResponse struct {
	Err            error `json:"-"` // low-level runtime error
	HTTPStatusCode int   `json:"-"` // http response status code

	StatusText    string   `json:"status"`          // user-level status message
	AppCode       int64    `json:"code,omitempty"`  // application-specific error code
	ErrorText     string   `json:"error,omitempty"` // application-level error message, for debugging
	ErrValidation []string `json:"validation,omitempty"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func ErrInvalidRequest(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
	}
}

func ErrValidation(err error, errV []error) render.Renderer {
	vv := []string{}
	for _, v := range errV {
		vv = append(vv, v.Error())
	}
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusBadRequest,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
		ErrValidation:  vv,
	}
}

func ErrNotFoundRend(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusNotFound,
		StatusText:     "Not found.",
		ErrorText:      err.Error(),
	}
}

func ErrConflictRend(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusConflict,
		StatusText:     "Conflict.",
		ErrorText:      err.Error(),
	}
}

// ErrUnprocessableRend reports stored content the request points at, a snapshot or raw map,
// that cannot be turned into a model.
func ErrUnprocessableRend(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusUnprocessableEntity,
		StatusText:     "Unprocessable entity.",
		ErrorText:      err.Error(),
	}
}

func ErrInternalServerErrorRend(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: http.StatusInternalServerError,
		StatusText:     "Internal server error.",
		ErrorText:      err.Error(),
	}
}

// errRenderer maps editor errors to their response.
func errRenderer(err error) render.Renderer {
	switch {
	case errors.Is(err, synthetic.ErrEntityNotFound),
		errors.Is(err, kv.ErrMapNotFound),
		errors.Is(err, kv.ErrNoIntersectionsFound),
		errors.Is(err, os.ErrNotExist):
		return ErrNotFoundRend(err)
	case errors.Is(err, synthetic.ErrReferentialIntegrity),
		errors.Is(err, synthetic.ErrRoadExists):
		return ErrConflictRend(err)
	case errors.Is(err, lanespec.ErrInvalidSpec),
		errors.Is(err, synthetic.ErrSelfLoop),
		errors.Is(err, synthetic.ErrUnnamedModel),
		errors.Is(err, synthetic.ErrNegativeResidents):
		return ErrInvalidRequest(err)
	case errors.Is(err, synthetic.ErrInvalidSnapshot),
		errors.Is(err, geo.ErrDegenerateBounds):
		return ErrUnprocessableRend(err)
	}
	return ErrInternalServerErrorRend(errors.New("internal server error"))
}

func translateError(err error, trans ut.Translator) (errs []error) {
	if err == nil {
		return nil
	}
	var validatorErrs validator.ValidationErrors
	if !errors.As(err, &validatorErrs) {
		return []error{err}
	}
	for _, e := range validatorErrs {
		errs = append(errs, fmt.Errorf("%s", e.Translate(trans)))
	}
	return errs
}
