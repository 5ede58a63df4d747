package errors

import (
	"encoding/json"
	"net/http"

	"github.com/dropDatabas3/keywarden/internal/observability/logger"
)

// errorResponse controla exactamente qué campos se envían al cliente.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// WriteError escribe una respuesta HTTP basada en el error proporcionado.
// Maneja automáticamente errores de tipo *AppError y errores genéricos.
func WriteError(w http.ResponseWriter, err error) {
	appErr := FromError(err)

	resp := errorResponse{
		Code:    appErr.Code,
		Message: appErr.Message,
		Detail:  appErr.Detail,
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.HTTPStatus)

	if appErr.HTTPStatus >= http.StatusInternalServerError && appErr.Err != nil {
		logger.Named("http.errors").Error("internal_error",
			logger.Err(appErr.Err),
			logger.Op(appErr.Code),
		)
	}

	_ = json.NewEncoder(w).Encode(resp)
}
