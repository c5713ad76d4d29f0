package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/samodrei/telecaller/pkg/telecall"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := dashboardTmpl.Execute(w, s.dash.Snapshot()); err != nil {
		s.logger.Error("render dashboard failed", "error", err)
	}
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.dash.Snapshot())
}

func (s *Server) handlePlaceCall(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	req := telecall.CallRequest{
		Name:        r.PostFormValue("name"),
		PhoneNumber: r.PostFormValue("phone_number"),
		AIModel:     telecall.AIModel(r.PostFormValue("ai_model")),
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	if _, err := s.dash.PlaceCall(ctx, req); err != nil {
		var apiErr *telecall.Error
		if errors.As(err, &apiErr) && apiErr.Type == telecall.ErrInvalidRequest {
			http.Error(w, apiErr.Message, http.StatusBadRequest)
			return
		}
		s.logger.Error("place call failed", "error", err)
		http.Error(w, "call placement failed", http.StatusBadGateway)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleOpenForm(w http.ResponseWriter, r *http.Request) {
	s.dash.OpenForm()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleCloseForm(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	if !s.dash.CloseForm(ctx) {
		// A call is in flight; dismissal refused.
		http.Error(w, "call in progress", http.StatusConflict)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleToggleAutomation(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := s.requestContext(r)
	defer cancel()

	if _, err := s.dash.Automation().Toggle(ctx); err != nil {
		if errors.Is(err, telecall.ErrAutomationBusy) {
			http.Error(w, telecall.ErrAutomationBusy.Error(), http.StatusConflict)
			return
		}
		s.logger.Error("automation toggle failed", "error", err)
		http.Error(w, "automation toggle failed", http.StatusBadGateway)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleSort(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	column := telecall.SortColumn(r.PostFormValue("column"))
	switch column {
	case telecall.SortByName, telecall.SortByPhoneNumber, telecall.SortByAIModel, telecall.SortByFeedback, telecall.SortByFlaggedDate:
	default:
		http.Error(w, "unknown column", http.StatusBadRequest)
		return
	}
	s.dash.Logs().SortBy(column)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleOpenRecording(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	id := r.PostFormValue("id")
	if id == "" {
		http.Error(w, "missing id", http.StatusBadRequest)
		return
	}

	ctx, cancel := s.requestContext(r)
	defer cancel()

	if _, err := s.dash.OpenRecording(ctx, id); err != nil {
		s.logger.Error("open recording failed", "sid", id, "error", err)
		http.Error(w, "recording unavailable", http.StatusBadGateway)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleCloseRecording(w http.ResponseWriter, r *http.Request) {
	s.dash.CloseRecording()
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return r.Context(), func() {}
	}
	return context.WithTimeout(r.Context(), s.timeout)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
