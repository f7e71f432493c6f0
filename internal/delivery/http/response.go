package http

import (
	"encoding/json"
	"net/http"

	"go-shortlink/internal/domain"
	"go-shortlink/pkg/problemdetails"
)

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeProblem(w http.ResponseWriter, p *problemdetails.ProblemDetail) {
	w.Header().Set("Content-Type", "application/problem+json; charset=utf-8")
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// writeOutcome renders a failed outcome. Denied outcomes carry no detail.
func writeOutcome(w http.ResponseWriter, out *domain.Outcome) {
	status := out.HTTPStatus()
	if out.Denied() {
		writeProblem(w, problemdetails.New(http.StatusForbidden,
			problemdetails.TypeForbidden, "Forbidden", "Forbidden"))
		return
	}
	switch {
	case status == http.StatusNotFound:
		writeProblem(w, problemdetails.New(status,
			problemdetails.TypeNotFound, "Not Found", out.Message))
	case status >= 500:
		writeProblem(w, problemdetails.New(status,
			problemdetails.TypeInternalError, "Internal Server Error",
			"The request could not be processed."))
	default:
		writeProblem(w, problemdetails.New(status,
			problemdetails.TypeInvalidRequest, "Invalid Request", out.Message))
	}
}
