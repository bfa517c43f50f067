package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/tfc-warehouse/putaway-backend/pkg/errors"
)

// JSON sends a JSON response
func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// Error sends the flat error envelope
// {success:false, error:<kind>, message, ...context}.
func Error(w http.ResponseWriter, err error) {
	var appErr *errors.AppError
	if !errors.As(err, &appErr) {
		appErr = errors.System(err)
	}

	body := map[string]interface{}{
		"success": false,
		"error":   appErr.Kind,
		"message": appErr.Message,
	}
	for k, v := range appErr.Context {
		body[k] = v
	}

	JSON(w, appErr.StatusCode, body)
}

// DecodeJSON decodes the request body into the provided struct
func DecodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.New(errors.KindValidation, "invalid JSON body", http.StatusBadRequest)
	}
	return nil
}
