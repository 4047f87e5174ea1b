package http

import (
	"net/http"

	"gestionale/internal/core"
)

type clientRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type clientResponse struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

func toClientResponse(c core.Client) clientResponse {
	return clientResponse{ID: c.ID, Name: c.Name, Email: c.Email}
}

func (s *Server) handleClients(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		clients, err := s.deps.Clients.List(r.Context())
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		out := make([]clientResponse, 0, len(clients))
		for _, c := range clients {
			out = append(out, toClientResponse(c))
		}
		writeJSON(w, http.StatusOK, out)

	case http.MethodPost:
		var req clientRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		id, err := s.deps.Clients.Create(r.Context(), core.Client{Name: req.Name, Email: req.Email})
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		created, err := s.deps.Clients.Get(r.Context(), id)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, toClientResponse(created))

	default:
		methodNotAllowed(w, "GET, POST")
	}
}

func (s *Server) handleClientByID(w http.ResponseWriter, r *http.Request) {
	id, action, err := pathID(r.URL.Path, "/api/clients/")
	if err != nil || action != "" {
		writeError(w, http.StatusBadRequest, "invalid client path")
		return
	}

	switch r.Method {
	case http.MethodGet:
		c, err := s.deps.Clients.Get(r.Context(), id)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, toClientResponse(c))
	case http.MethodDelete:
		if err := s.deps.Clients.Delete(r.Context(), id); err != nil {
			writeDomainError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	default:
		methodNotAllowed(w, "GET, DELETE")
	}
}
