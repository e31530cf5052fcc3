package api

import (
	"fmt"
	"net/http"

	"github.com/rahulmohankumar24/finch-demo/internal/service"
)

func (s *Server) handleListMatters(w http.ResponseWriter, r *http.Request) {
	matters, err := s.svc.ListMatters(r.Context())
	if err != nil {
		HandleError(w, err)
		return
	}
	JSONResponse(w, map[string]any{"success": true, "matters": matters})
}

func (s *Server) handleCreateMatter(w http.ResponseWriter, r *http.Request) {
	var req service.CreateMatterRequest
	if err := decodeBody(w, r, &req); err != nil {
		HandleError(w, err)
		return
	}
	if err := requireFields("matterId", req.MatterID, "clientName", req.ClientName); err != nil {
		HandleError(w, err)
		return
	}

	status, err := s.svc.CreateMatter(r.Context(), req)
	if err != nil {
		HandleError(w, err)
		return
	}
	JSONResponseStatus(w, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Matter %s created for %s", req.MatterID, req.ClientName),
		"matter":  status,
	}, http.StatusCreated)
}

func (s *Server) handleGetMatter(w http.ResponseWriter, r *http.Request) {
	status, err := s.svc.MatterStatus(r.Context(), r.PathValue("id"))
	if err != nil {
		HandleError(w, err)
		return
	}
	JSONResponse(w, map[string]any{"success": true, "matter": status})
}

func (s *Server) handleGetDependencies(w http.ResponseWriter, r *http.Request) {
	report, err := s.svc.DependencyDetail(r.Context(), r.PathValue("id"))
	if err != nil {
		HandleError(w, err)
		return
	}
	JSONResponse(w, map[string]any{"success": true, "dependencies": report})
}

func (s *Server) handleRepairMatter(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	added, err := s.svc.RepairDefaults(r.Context(), id)
	if err != nil {
		HandleError(w, err)
		return
	}

	message := "All default tasks already exist"
	if len(added) > 0 {
		message = "Repaired matter " + id
	}
	JSONResponse(w, map[string]any{
		"success":    true,
		"message":    message,
		"addedTasks": added,
	})
}
