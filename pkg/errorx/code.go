package errorx

import "net/http"

type Code int

var Unknown = Error{Code: 100000, Message: "Request failed"}

const (
	// Common codes
	BadRequest       Code = 100001
	BadResponse      Code = 100002
	PermissionDenied Code = 100003
	NotFound         Code = 100004
	AlreadyExists    Code = 100006
	Internal         Code = 100007
	Unavailable      Code = 100008
	NotImplemented   Code = 100009

	// Slot codes
	SlotUnavailable                Code = 200001
	ReservationExpiredOrMismatched Code = 200002
	Conflict                       Code = 200003

	// Drawing codes
	DrawingNotEnded            Code = 300001
	DrawingEnded               Code = 300002
	InvalidSelectionParameters Code = 300003
	WinnersAlreadySelected     Code = 300004
)

var httpStatus = map[Code]int{
	BadRequest:       http.StatusBadRequest,
	BadResponse:      http.StatusInternalServerError,
	PermissionDenied: http.StatusForbidden,
	NotFound:         http.StatusNotFound,
	AlreadyExists:    http.StatusConflict,
	Internal:         http.StatusInternalServerError,
	Unavailable:      http.StatusServiceUnavailable,
	NotImplemented:   http.StatusNotImplemented,

	SlotUnavailable:                http.StatusConflict,
	ReservationExpiredOrMismatched: http.StatusGone,
	Conflict:                       http.StatusConflict,

	DrawingNotEnded:            http.StatusConflict,
	DrawingEnded:               http.StatusConflict,
	InvalidSelectionParameters: http.StatusConflict,
	WinnersAlreadySelected:     http.StatusConflict,
}

// HTTPStatus returns the status code a response carrying this code is sent
// with. Unknown codes are server errors.
func (c Code) HTTPStatus() int {
	if status, ok := httpStatus[c]; ok {
		return status
	}

	return http.StatusInternalServerError
}
