package api

import (
	"fmt"
	"net/http"

	"github.com/rahulmohankumar24/finch-demo/internal/matter"
)

type createTaskRequest struct {
	MatterID     string              `json:"matterId"`
	TaskID       string              `json:"taskId"`
	Name         string              `json:"name"`
	Dependencies []matter.Dependency `json:"dependencies"`
}

type taskRef struct {
	MatterID string `json:"matterId"`
	TaskID   string `json:"taskId"`
}

type addDependencyRequest struct {
	MatterID   string             `json:"matterId"`
	TaskID     string             `json:"taskId"`
	Dependency *matter.Dependency `json:"dependency"`
}

type editDependenciesRequest struct {
	MatterID     string               `json:"matterId"`
	TaskID       string               `json:"taskId"`
	Dependencies *[]matter.Dependency `json:"dependencies"`
}

type insertAfterRequest struct {
	MatterID          string `json:"matterId"`
	NewTaskID         string `json:"newTaskId"`
	NewTaskName       string `json:"newTaskName"`
	InsertAfterTaskID string `json:"insertAfterTaskId"`
}

// executeResponse flattens the execute result into the envelope.
type executeResponse struct {
	Success bool `json:"success"`
	matter.ExecuteResult
}

type insertResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	matter.InsertResult
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := decodeBody(w, r, &req); err != nil {
		HandleError(w, err)
		return
	}
	if err := requireFields("matterId", req.MatterID, "taskId", req.TaskID, "name", req.Name); err != nil {
		HandleError(w, err)
		return
	}

	task, err := s.svc.CreateTask(r.Context(), req.MatterID, req.TaskID, req.Name, req.Dependencies)
	if err != nil {
		HandleError(w, err)
		return
	}
	JSONResponseStatus(w, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Task %q created", task.Name),
		"task":    task,
	}, http.StatusCreated)
}

func (s *Server) handleExecuteTask(w http.ResponseWriter, r *http.Request) {
	var req taskRef
	if err := decodeBody(w, r, &req); err != nil {
		HandleError(w, err)
		return
	}
	if err := requireFields("matterId", req.MatterID, "taskId", req.TaskID); err != nil {
		HandleError(w, err)
		return
	}

	res, err := s.svc.ExecuteTask(r.Context(), req.MatterID, req.TaskID)
	if err != nil {
		HandleError(w, err)
		return
	}
	JSONResponse(w, executeResponse{Success: true, ExecuteResult: res})
}

func (s *Server) handleAddDependency(w http.ResponseWriter, r *http.Request) {
	var req addDependencyRequest
	if err := decodeBody(w, r, &req); err != nil {
		HandleError(w, err)
		return
	}
	if err := requireFields("matterId", req.MatterID, "taskId", req.TaskID); err != nil {
		HandleError(w, err)
		return
	}
	if req.Dependency == nil {
		HandleError(w, requireFields("dependency", ""))
		return
	}

	task, err := s.svc.AddDependency(r.Context(), req.MatterID, req.TaskID, *req.Dependency)
	if err != nil {
		HandleError(w, err)
		return
	}
	JSONResponse(w, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Dependency on %s added to %q", req.Dependency.TargetTaskID, task.Name),
		"task":    task,
	})
}

func (s *Server) handleEditDependencies(w http.ResponseWriter, r *http.Request) {
	var req editDependenciesRequest
	if err := decodeBody(w, r, &req); err != nil {
		HandleError(w, err)
		return
	}
	if err := requireFields("matterId", req.MatterID, "taskId", req.TaskID); err != nil {
		HandleError(w, err)
		return
	}
	// An explicit empty list clears; an absent one is a client error.
	if req.Dependencies == nil {
		HandleError(w, requireFields("dependencies", ""))
		return
	}

	task, err := s.svc.ReplaceDependencies(r.Context(), req.MatterID, req.TaskID, *req.Dependencies)
	if err != nil {
		HandleError(w, err)
		return
	}
	JSONResponse(w, map[string]any{
		"success": true,
		"message": fmt.Sprintf("Dependencies updated for %q", task.Name),
		"task":    task,
	})
}

func (s *Server) handleInsertAfter(w http.ResponseWriter, r *http.Request) {
	var req insertAfterRequest
	if err := decodeBody(w, r, &req); err != nil {
		HandleError(w, err)
		return
	}
	if err := requireFields(
		"matterId", req.MatterID,
		"newTaskId", req.NewTaskID,
		"newTaskName", req.NewTaskName,
		"insertAfterTaskId", req.InsertAfterTaskID,
	); err != nil {
		HandleError(w, err)
		return
	}

	res, err := s.svc.InsertTaskAfter(r.Context(), req.MatterID, req.NewTaskID, req.NewTaskName, req.InsertAfterTaskID)
	if err != nil {
		HandleError(w, err)
		return
	}
	JSONResponse(w, insertResponse{
		Success:      true,
		Message:      fmt.Sprintf("Task %q inserted after %q", res.Task.Name, res.After.Name),
		InsertResult: res,
	})
}
