package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/fundora/kyb-cli/internal/model"
	"github.com/fundora/kyb-cli/internal/questionnaire"
	"github.com/fundora/kyb-cli/internal/report"
	"github.com/fundora/kyb-cli/internal/scorer"
	"github.com/fundora/kyb-cli/internal/session"
)

const (
	maxBodyBytes    = 1 << 20
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// sessionState is the JSON view of a session.
type sessionState struct {
	ID       string                 `json:"id"`
	Index    int                    `json:"index"`
	Section  model.Section          `json:"section"`
	Answers  model.Answers          `json:"answers"`
	Errors   map[string]string      `json:"errors"`
	Terminal bool                   `json:"terminal"`
	Advanced *bool                  `json:"advanced,omitempty"`
	Profile  *model.InvestorProfile `json:"profile,omitempty"`
}

func stateOf(id string, c *questionnaire.Controller) sessionState {
	st := sessionState{
		ID:       id,
		Index:    c.Index(),
		Section:  c.CurrentSection(),
		Answers:  c.Answers(),
		Errors:   c.Errors(),
		Terminal: c.IsTerminal(),
	}
	if p, err := c.InvestorProfile(); err == nil {
		st.Profile = &p
	}
	return st
}

type answerRequest struct {
	Value model.Value `json:"value"`
}

type scoreRequest struct {
	Financials  scorer.Financials  `json:"financials"`
	Preferences scorer.Preferences `json:"preferences"`
}

type scoreResponse struct {
	scorer.Result
	FormattedCapacity string `json:"formatted_capacity"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"sessions": s.store.Len(),
	})
}

func (s *Server) handleQuestionnaire(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.q)
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if !decode(w, r, &req) {
		return
	}
	res := s.tables.Compute(req.Financials, req.Preferences)
	writeJSON(w, http.StatusOK, scoreResponse{
		Result:            res,
		FormattedCapacity: s.builder.FormatAmount(res.Capacity),
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, _ *http.Request) {
	sess, err := s.store.Create()
	if err != nil {
		if errors.Is(err, session.ErrCapacity) {
			writeError(w, http.StatusServiceUnavailable, "too many active sessions")
			return
		}
		s.log.Error("create session", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	s.withSession(w, sess, http.StatusCreated, func(*questionnaire.Controller) {})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	s.sessionAction(w, r, func(*questionnaire.Controller) int { return http.StatusOK })
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if !s.store.Delete(chi.URLParam(r, "id")) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRecordAnswer(w http.ResponseWriter, r *http.Request) {
	questionID := chi.URLParam(r, "questionID")
	if _, ok := s.q.Question(questionID); !ok {
		writeError(w, http.StatusNotFound, "unknown question "+questionID)
		return
	}
	var req answerRequest
	if !decode(w, r, &req) {
		return
	}
	s.sessionAction(w, r, func(c *questionnaire.Controller) int {
		c.RecordAnswer(questionID, req.Value)
		return http.StatusOK
	})
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	var advanced bool
	s.sessionAction(w, r, func(c *questionnaire.Controller) int {
		advanced = c.Advance()
		if !advanced && len(c.Errors()) > 0 {
			return http.StatusUnprocessableEntity
		}
		return http.StatusOK
	}, func(st *sessionState) { st.Advanced = &advanced })
}

func (s *Server) handleRetreat(w http.ResponseWriter, r *http.Request) {
	s.sessionAction(w, r, func(c *questionnaire.Controller) int {
		c.Retreat()
		return http.StatusOK
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	s.sessionAction(w, r, func(c *questionnaire.Controller) int {
		c.Reset()
		return http.StatusOK
	})
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	var (
		p       model.InvestorProfile
		profErr error
	)
	sess.With(func(c *questionnaire.Controller) {
		p, profErr = c.InvestorProfile()
	})
	if errors.Is(profErr, questionnaire.ErrNotTerminal) {
		writeError(w, http.StatusConflict, "profile is only available on the summary section")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	sess, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	var (
		buf     bytes.Buffer
		profErr error
	)
	err = sess.Do(func(c *questionnaire.Controller) error {
		p, err := c.InvestorProfile()
		if err != nil {
			profErr = err
			return nil
		}
		return report.Write(&buf, c.Questionnaire(), c.Answers(), p, s.report)
	})
	switch {
	case errors.Is(profErr, questionnaire.ErrNotTerminal):
		writeError(w, http.StatusConflict, "report is only available on the summary section")
		return
	case err != nil:
		s.log.Error("build report", zap.String("session_id", sess.ID), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="profil-`+sess.ID+`.xlsx"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.log.Warn("write report", zap.Error(err))
	}
}

// sessionAction looks the session up, runs fn under its lock and writes the
// resulting state with the status fn returns.
func (s *Server) sessionAction(w http.ResponseWriter, r *http.Request, fn func(c *questionnaire.Controller) int, decorate ...func(*sessionState)) {
	sess, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	var (
		status int
		st     sessionState
	)
	sess.With(func(c *questionnaire.Controller) {
		status = fn(c)
		st = stateOf(sess.ID, c)
	})
	for _, d := range decorate {
		d(&st)
	}
	writeJSON(w, status, st)
}

func (s *Server) withSession(w http.ResponseWriter, sess *session.Session, status int, fn func(*questionnaire.Controller)) {
	var st sessionState
	sess.With(func(c *questionnaire.Controller) {
		fn(c)
		st = stateOf(sess.ID, c)
	})
	writeJSON(w, status, st)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("server: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
