package router

import (
	"errors"

	"github.com/slotdraw/backend/pkg/errorx"
)

type response struct {
	Code  int64  `json:"code"`
	Error string `json:"error,omitempty"`
	Data  any    `json:"data,omitempty"`
}

func newResponse(data any) response {
	return response{
		Code: 0,
		Data: data,
	}
}

// newErrorResponse returns the body and the HTTP status of a failed request.
// Errors which are not errorx.Error are hidden behind errorx.Unknown.
func newErrorResponse(err error) (response, int) {
	errx := errorx.Error{}
	if errors.As(err, &errx) {
		return response{
			Code:  int64(errx.Code),
			Error: errx.Message,
		}, errx.Code.HTTPStatus()
	}

	return response{
		Code:  int64(errorx.Unknown.Code),
		Error: errorx.Unknown.Message,
	}, errorx.Unknown.Code.HTTPStatus()
}
