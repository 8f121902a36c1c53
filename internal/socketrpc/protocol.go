package socketrpc

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"github.com/tinytelemetry/mockview/internal/model"
)

// JSON-RPC 2.0 Method Reference
//
// The socket RPC server exposes model.PracticeAPI over a Unix domain socket.
// Each method maps 1:1 to the PracticeAPI interface.
//
//   Method      Params                                   Result
//   ─────────   ──────────────────────────────────────   ──────────────────────
//   Roles       (none)                                   []Role
//   Start       {Candidate: string, Role: string}        CurrentQuestion
//   Resume      {Candidate: string}                      CurrentQuestion
//   Current     {InterviewID: string, Candidate: string} CurrentQuestion
//   Submit      Submission                               SubmitResult
//   Results     {InterviewID: string, Candidate: string} Results
//   History     {Candidate: string}                      []InterviewSummary
//   Dashboard   {Candidate: string}                      Dashboard
//
// An empty Candidate means the default candidate.
//
// Error codes follow JSON-RPC 2.0:
//   -32700  Parse error (malformed JSON)
//   -32601  Method not found
//   -32602  Invalid params
//   -32603  Internal error (marshal failure)
//   -32000  Application error; data names the model error, if any

const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInternal       = -32603
	codeApplication    = -32000
)

// StartParams is the params object for Start.
type StartParams struct {
	Candidate string
	Role      string
}

// CandidateParams is the params object for Resume, History and Dashboard.
type CandidateParams struct {
	Candidate string
}

// InterviewParams is the params object for Current and Results.
type InterviewParams struct {
	InterviewID string
	Candidate   string
}

// Request is a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params"`
}

// Response is a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      int             `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError represents a JSON-RPC 2.0 error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    string `json:"data,omitempty"`
}

func (e *RPCError) Error() string { return e.Message }

// Unwrap maps the error back to the model error named in Data so callers
// can use errors.Is across the socket.
func (e *RPCError) Unwrap() error {
	return sentinels[e.Data]
}

var sentinels = map[string]error{
	"not_found":            model.ErrNotFound,
	"unknown_role":         model.ErrUnknownRole,
	"not_enough_questions": model.ErrNotEnoughQuestions,
	"interview_complete":   model.ErrInterviewComplete,
	"not_complete":         model.ErrNotComplete,
	"forbidden":            model.ErrForbidden,
}

func sentinelName(err error) string {
	for name, s := range sentinels {
		if errors.Is(err, s) {
			return name
		}
	}
	return ""
}

// DefaultSocketPath returns the default Unix socket path.
// It prefers $XDG_RUNTIME_DIR/mockview/mockview.sock, falling back to
// ~/.local/state/mockview/mockview.sock.
func DefaultSocketPath() string {
	if dir := os.Getenv("XDG_RUNTIME_DIR"); dir != "" {
		return filepath.Join(dir, "mockview", "mockview.sock")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "/tmp/mockview.sock"
	}
	return filepath.Join(home, ".local", "state", "mockview", "mockview.sock")
}
