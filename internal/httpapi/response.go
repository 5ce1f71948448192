package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/mesh-intelligence/agriledger/pkg/types"
)

// errorBody is the wire form of a domain error, e.g.
// {"NotFound":{"msg":"a debt with id=1 not found"}}.
type errorBody map[types.ErrorKind]struct {
	Msg string `json:"msg"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeDomainError(w http.ResponseWriter, e *types.Error) {
	status := http.StatusBadRequest
	if e.Kind == types.KindNotFound {
		status = http.StatusNotFound
	}
	body := errorBody{}
	body[e.Kind] = struct {
		Msg string `json:"msg"`
	}{Msg: e.Msg}
	writeJSON(w, status, body)
}

func writeInternalError(w http.ResponseWriter) {
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
}
