// Package health provides readiness tracking and HTTP probe handlers for
// the HTTP transport.
package health

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
)

// Readiness states.
const (
	stateStarting int32 = iota
	stateReady
	stateDraining
)

// Checker tracks server readiness and reports the registered tool set.
// It is safe for concurrent use.
type Checker struct {
	state   atomic.Int32
	version string
	tools   []string
}

// NewChecker creates a Checker in the Starting state. The version and tool
// names are included in readiness responses.
func NewChecker(version string, tools []string) *Checker {
	return &Checker{version: version, tools: tools}
}

// SetReady transitions to the Ready state.
func (c *Checker) SetReady() {
	c.state.Store(stateReady)
}

// SetDraining transitions to the Draining state.
func (c *Checker) SetDraining() {
	c.state.Store(stateDraining)
}

// IsReady reports whether the state is Ready.
func (c *Checker) IsReady() bool {
	return c.state.Load() == stateReady
}

// State returns the current state name.
func (c *Checker) State() string {
	switch c.state.Load() {
	case stateReady:
		return "ready"
	case stateDraining:
		return "draining"
	default:
		return "starting"
	}
}

type statusBody struct {
	Status  string   `json:"status"`
	Version string   `json:"version,omitempty"`
	Tools   []string `json:"tools,omitempty"`
}

// LivenessHandler always responds 200 OK. Use for /healthz.
func (*Checker) LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, statusBody{Status: "ok"})
	}
}

// ReadinessHandler responds 200 with the server version and tool list when
// ready, 503 while starting or draining. Use for /readyz.
func (c *Checker) ReadinessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		body := statusBody{Status: c.State(), Version: c.version, Tools: c.tools}
		if !c.IsReady() {
			writeJSON(w, http.StatusServiceUnavailable, body)
			return
		}
		writeJSON(w, http.StatusOK, body)
	}
}

func writeJSON(w http.ResponseWriter, code int, body statusBody) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
