package transport

import (
	"encoding/json"
	"net/http"

	"github.com/climatevia/pathway/errs"
)

// statusForKind maps the closed errs.Kind taxonomy onto HTTP status codes.
// Kinds the taxonomy has no HTTP analogue for (Transport,
// BadStructuredOutput, UnknownPrompt, InternalInvariant) collapse to 500:
// they are core-runtime
// invariants a caller cannot act on, not client-correctable request errors.
func statusForKind(kind errs.Kind) int {
	switch kind {
	case errs.InvalidInput:
		return http.StatusBadRequest
	case errs.Unauthenticated:
		return http.StatusUnauthorized
	case errs.Forbidden:
		return http.StatusForbidden
	case errs.NotFound:
		return http.StatusNotFound
	case errs.Unavailable:
		return http.StatusServiceUnavailable
	case errs.Timeout:
		return http.StatusGatewayTimeout
	case errs.Cancelled:
		return 499 // nginx-convention "client closed request", no stdlib constant
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, err error) {
	status := statusForKind(errs.KindOf(err))
	writeJSON(w, status, errorResponse{Error: err.Error()})
}
