package utils

import (
	"encoding/json"
	"net/http"

	"vibin_chat/apperrors"
	"vibin_chat/models"
)

// WriteJSONResponse writes v as the JSON body with the given status
func WriteJSONResponse(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes {"error": msg} with the status mapped from err
func WriteError(w http.ResponseWriter, err error) {
	WriteJSONResponse(w, apperrors.HTTPStatus(err), models.ErrorResponse{
		Error: apperrors.PublicMessage(err),
		Code:  string(apperrors.CodeOf(err)),
	})
}

// DecodeJSON decodes the request body into v, rejecting malformed payloads as a validation error
func DecodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperrors.Validation("invalid request body")
	}
	return nil
}
