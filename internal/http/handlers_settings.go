package http

import (
	"net/http"
)

type vatRateResponse struct {
	Rate float64 `json:"rate"`
}

func (s *Server) handleVATRate(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		rate, err := s.deps.Settings.VATRate(r.Context())
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, vatRateResponse{Rate: rate})

	case http.MethodPut:
		var req vatRateResponse
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		if err := s.deps.Settings.SetVATRate(r.Context(), req.Rate); err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, vatRateResponse{Rate: req.Rate})

	default:
		methodNotAllowed(w, "GET, PUT")
	}
}
