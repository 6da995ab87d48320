package errcode

import (
	"encoding/json"
	"net/http"
)

// ServeJSON writes err to w as the client's error envelope. Per the
// client's protocol, every mutating endpoint replies HTTP 200 even on
// failure; err's descriptor HTTPStatusCode is not written to the wire.
func ServeJSON(w http.ResponseWriter, err error) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	var envelope Errors
	switch e := err.(type) {
	case Errors:
		envelope = e
	case Error:
		envelope = Errors{Errors: []Error{e}}
	default:
		envelope = Errors{Errors: []Error{ErrorCodeUnknown.WithMessage(err.Error())}}
	}

	return json.NewEncoder(w).Encode(envelope)
}
