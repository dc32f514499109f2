package trigger

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/goccy/go-json"

	"github.com/masahif/seodash/internal/logging"
	"github.com/masahif/seodash/internal/metrics"
)

// Result is the HTTP answer for one trigger request
type Result struct {
	Status int
	Body   any
}

// ErrorBody is returned for rejected and failed triggers
type ErrorBody struct {
	Error string `json:"error"`
}

// SuccessBody is returned when the job completed
type SuccessBody struct {
	Success  bool  `json:"success"`
	Duration int64 `json:"duration"` // milliseconds
}

// Gate authorizes trigger requests against the shared cron secret.
// An empty secret rejects every request.
type Gate struct {
	secret []byte
	runner *Runner
}

// NewGate creates a gate for secret
func NewGate(secret string, runner *Runner) *Gate {
	if runner == nil {
		runner = NewRunner()
	}
	return &Gate{secret: []byte(secret), runner: runner}
}

// Authorized reports whether r carries "Authorization: Bearer <secret>"
func (g *Gate) Authorized(r *http.Request) bool {
	if len(g.secret) == 0 {
		return false
	}

	token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), g.secret) == 1
}

// RunJob authorizes r and runs job. Unauthorized requests never reach the job.
func (g *Gate) RunJob(r *http.Request, name string, job Job) Result {
	if !g.Authorized(r) {
		metrics.RecordUnauthorized(name)
		logging.ForJob(r.Context(), name).Warn("Unauthorized trigger", "remote_addr", r.RemoteAddr)
		return Result{Status: http.StatusUnauthorized, Body: ErrorBody{Error: "Unauthorized"}}
	}

	// A dropped client must not abort a run halfway; request values are kept
	outcome := g.runner.Run(context.WithoutCancel(r.Context()), name, job)
	if outcome.Err != nil {
		return Result{Status: http.StatusInternalServerError, Body: ErrorBody{Error: "Collection failed"}}
	}
	return Result{
		Status: http.StatusOK,
		Body:   SuccessBody{Success: true, Duration: outcome.Duration.Milliseconds()},
	}
}

// Handler serves job behind the gate
func (g *Gate) Handler(name string, job Job) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, g.RunJob(r, name, job))
	}
}

// WriteJSON writes a Result as a JSON response
func WriteJSON(w http.ResponseWriter, res Result) {
	data, err := json.Marshal(res.Body)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(res.Status)
	_, _ = w.Write(data)
}
