package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"feedback-insights-go/internal/analyzer"
	"feedback-insights-go/internal/batch"
	"feedback-insights-go/internal/retry"
	"feedback-insights-go/internal/types"
)

// Server owns the HTTP surface and the injected pipeline collaborators.
type Server struct {
	client       *analyzer.Client
	scheduler    *batch.Scheduler
	singlePolicy retry.Policy
}

func NewServer(client *analyzer.Client, scheduler *batch.Scheduler) *Server {
	return &Server{
		client:       client,
		scheduler:    scheduler,
		singlePolicy: retry.SinglePolicy(),
	}
}

func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	api.HandleFunc("/analyze", s.handleAnalyze).Methods(http.MethodPost)
	api.HandleFunc("/analyze/batch", s.handleAnalyzeBatch).Methods(http.MethodPost)
	api.HandleFunc("/extract", s.handleExtract).Methods(http.MethodPost)
	return r
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, log *logrus.Entry, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.WithField("error", err.Error()).Error("failed to write response")
	}
}

// writeError maps an error to its HTTP status and the external code/message
// pair. Internal diagnostic detail stays in the log, never in the body.
func writeError(w http.ResponseWriter, log *logrus.Entry, err error) {
	e := types.AsError(err)
	if e.Cause != nil {
		log = log.WithField("cause", e.Cause.Error())
	}
	log.WithFields(logrus.Fields{
		"code":   string(e.Code),
		"status": e.HTTPStatus,
	}).Warn(e.Message)

	writeJSON(w, log, e.HTTPStatus, errorBody{Error: errorDetail{
		Code:    string(e.Code),
		Message: e.Message,
	}})
}
