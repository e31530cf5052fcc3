package api

import (
	"net/http"

	"github.com/rahulmohankumar24/finch-demo/internal/service"
)

func (s *Server) handleListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := s.svc.ListClients(r.Context())
	if err != nil {
		HandleError(w, err)
		return
	}
	JSONResponse(w, map[string]any{"success": true, "clients": clients})
}

func (s *Server) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	var req service.CreateClientRequest
	if err := decodeBody(w, r, &req); err != nil {
		HandleError(w, err)
		return
	}

	client, err := s.svc.CreateClient(r.Context(), req)
	if err != nil {
		HandleError(w, err)
		return
	}
	JSONResponseStatus(w, map[string]any{"success": true, "client": client}, http.StatusCreated)
}

func (s *Server) handleListClientMatters(w http.ResponseWriter, r *http.Request) {
	matters, err := s.svc.ListClientMatters(r.Context(), r.PathValue("id"))
	if err != nil {
		HandleError(w, err)
		return
	}
	JSONResponse(w, map[string]any{"success": true, "matters": matters})
}

func (s *Server) handleCreateClientMatter(w http.ResponseWriter, r *http.Request) {
	var req service.CreateMatterRequest
	if err := decodeBody(w, r, &req); err != nil {
		HandleError(w, err)
		return
	}

	status, err := s.svc.CreateMatterForClient(r.Context(), r.PathValue("id"), req)
	if err != nil {
		HandleError(w, err)
		return
	}
	JSONResponseStatus(w, map[string]any{"success": true, "matter": status}, http.StatusCreated)
}
