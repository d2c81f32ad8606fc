package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"feedback-insights-go/internal/aggregator"
	"feedback-insights-go/internal/extract"
	"feedback-insights-go/internal/logger"
	"feedback-insights-go/internal/types"
)

const (
	maxFeedbackChars = 5000
	maxBatchItems    = 100
	maxUploadBytes   = 10 << 20
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	reqLog := logger.New().WithRequest(r).WithField("handler", "health")
	reqLog.Debug("health check")
	writeJSON(w, reqLog, http.StatusOK, types.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	reqLog := logger.New().WithRequest(r).WithField("handler", "analyze")
	reqLog.Info("analyze request received")

	var req types.AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, reqLog, types.NewError(types.ErrValidation, "request body must be JSON with a feedback field").WithCause(err))
		return
	}
	if err := validateFeedback(req.Feedback); err != nil {
		writeError(w, reqLog, err)
		return
	}

	start := time.Now()
	result, err := s.singlePolicy.Do(r.Context(), func(ctx context.Context) (types.AnalysisResult, error) {
		return s.client.Analyze(ctx, req.Feedback)
	})
	reqLog = reqLog.WithField("duration_ms", time.Since(start).Milliseconds())
	if err != nil {
		writeError(w, reqLog, err)
		return
	}

	reqLog.WithField("sentiment", result.Sentiment).Info("analyze finished")
	writeJSON(w, reqLog, http.StatusOK, result)
}

func (s *Server) handleAnalyzeBatch(w http.ResponseWriter, r *http.Request) {
	reqLog := logger.New().WithRequest(r).WithField("handler", "analyze-batch")
	reqLog.Info("batch request received")

	var req types.BatchAnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, reqLog, types.NewError(types.ErrValidation, "request body must be JSON with a feedbacks array").WithCause(err))
		return
	}
	if len(req.Feedbacks) == 0 {
		writeError(w, reqLog, types.NewError(types.ErrValidation, "feedbacks must contain at least 1 item"))
		return
	}
	if len(req.Feedbacks) > maxBatchItems {
		writeError(w, reqLog, types.NewError(types.ErrValidation,
			fmt.Sprintf("feedbacks must contain at most %d items", maxBatchItems)))
		return
	}
	for i, fb := range req.Feedbacks {
		if err := validateFeedback(fb); err != nil {
			e := types.AsError(err)
			writeError(w, reqLog, types.NewError(types.ErrValidation,
				fmt.Sprintf("feedbacks[%d]: %s", i, e.Message)))
			return
		}
	}

	// Once submitted, a batch runs to completion; a dropped client
	// connection does not cancel in-flight provider calls.
	start := time.Now()
	items := s.scheduler.Process(context.WithoutCancel(r.Context()), req.Feedbacks)
	summary := aggregator.Summarize(items)

	reqLog.WithField("total", summary.TotalCount).
		WithField("duration_ms", time.Since(start).Milliseconds()).
		Info("batch finished")
	writeJSON(w, reqLog, http.StatusOK, types.BatchAnalyzeResponse{
		Items:   items,
		Summary: summary,
	})
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	reqLog := logger.New().WithRequest(r).WithField("handler", "extract")
	reqLog.Info("extract request received")

	filename, data, err := readUpload(r)
	if err != nil {
		writeError(w, reqLog, err)
		return
	}

	feedbacks, err := extract.FromUpload(filename, data)
	if err != nil {
		writeError(w, reqLog, err)
		return
	}

	reqLog.WithField("filename", filename).WithField("count", len(feedbacks)).Info("extract finished")
	writeJSON(w, reqLog, http.StatusOK, types.ExtractResponse{Feedbacks: feedbacks})
}

// readUpload accepts either a multipart form with a "file" part or a raw body
// with the filename passed as a query parameter.
func readUpload(r *http.Request) (string, []byte, error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxUploadBytes)

	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "multipart/form-data") {
		file, header, err := r.FormFile("file")
		if err != nil {
			return "", nil, types.NewError(types.ErrValidation, `multipart upload must carry a "file" part`).WithCause(err)
		}
		defer file.Close()
		data, err := io.ReadAll(file)
		if err != nil {
			return "", nil, types.NewError(types.ErrValidation, "failed to read uploaded file").WithCause(err)
		}
		return header.Filename, data, nil
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		return "", nil, types.NewError(types.ErrValidation, "failed to read request body").WithCause(err)
	}
	return r.URL.Query().Get("filename"), data, nil
}

func validateFeedback(fb string) error {
	n := utf8.RuneCountInString(fb)
	if n == 0 {
		return types.NewError(types.ErrValidation, "feedback must not be empty")
	}
	if n > maxFeedbackChars {
		return types.NewError(types.ErrValidation,
			fmt.Sprintf("feedback must be at most %d characters", maxFeedbackChars))
	}
	return nil
}
