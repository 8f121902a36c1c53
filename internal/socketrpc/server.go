package socketrpc

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tinytelemetry/mockview/internal/model"
)

const (
	lineBufSize = 64 * 1024
	maxLineSize = 4 * 1024 * 1024
)

// Server exposes a model.PracticeAPI over a Unix domain socket using JSON-RPC 2.0.
type Server struct {
	socketPath string
	api        model.PracticeAPI
	listener   net.Listener
	wg         sync.WaitGroup
	quit       chan struct{}
	stopOnce   sync.Once

	connMu sync.Mutex
	conns  map[net.Conn]struct{}
}

// NewServer creates a new socket RPC server.
func NewServer(socketPath string, api model.PracticeAPI) *Server {
	return &Server{
		socketPath: socketPath,
		api:        api,
		quit:       make(chan struct{}),
		conns:      make(map[net.Conn]struct{}),
	}
}

// Start claims the socket path and begins accepting connections.
func (s *Server) Start() error {
	if err := os.MkdirAll(filepath.Dir(s.socketPath), 0o755); err != nil {
		return fmt.Errorf("socketrpc: mkdir: %w", err)
	}
	if err := claimSocket(s.socketPath); err != nil {
		return err
	}

	ln, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("socketrpc: listen: %w", err)
	}
	s.listener = ln

	s.wg.Add(1)
	go s.acceptLoop()

	log.Printf("socketrpc: serving interviews on %s", s.socketPath)
	return nil
}

// claimSocket removes a socket file left behind by a dead server. A live
// server on the same path is an error.
func claimSocket(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	conn, err := net.DialTimeout("unix", path, 500*time.Millisecond)
	if err == nil {
		conn.Close()
		return fmt.Errorf("socketrpc: %s is already served by another process", path)
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("socketrpc: remove stale socket: %w", err)
	}
	return nil
}

// Stop closes the listener and every open connection, waits for handlers,
// and removes the socket file. It is safe to call more than once.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.quit)
		if s.listener != nil {
			s.listener.Close()
		}
		s.connMu.Lock()
		for c := range s.conns {
			c.Close()
		}
		s.connMu.Unlock()
		s.wg.Wait()
		os.Remove(s.socketPath)
	})
}

func (s *Server) stopping() bool {
	select {
	case <-s.quit:
		return true
	default:
		return false
	}
}

// track registers conn unless the server is shutting down.
func (s *Server) track(conn net.Conn) bool {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	if s.stopping() {
		return false
	}
	s.conns[conn] = struct{}{}
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.connMu.Lock()
	delete(s.conns, conn)
	s.connMu.Unlock()
	conn.Close()
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.stopping() {
				return
			}
			log.Printf("socketrpc: accept: %v", err)
			continue
		}
		if !s.track(conn) {
			conn.Close()
			return
		}
		s.wg.Add(1)
		go s.serveConn(conn)
	}
}

// serveConn answers one request per line until the client hangs up.
func (s *Server) serveConn(conn net.Conn) {
	defer s.wg.Done()
	defer s.untrack(conn)

	lines := bufio.NewScanner(conn)
	lines.Buffer(make([]byte, 0, lineBufSize), maxLineSize)
	out := json.NewEncoder(conn)

	for lines.Scan() && !s.stopping() {
		var resp Response
		var req Request
		if err := json.Unmarshal(lines.Bytes(), &req); err != nil {
			resp = Response{JSONRPC: "2.0", Error: &RPCError{Code: codeParseError, Message: "parse error"}}
		} else {
			resp = s.dispatch(req)
		}
		if err := out.Encode(resp); err != nil {
			return
		}
	}
}

// paramsError marks a request whose params could not be decoded.
type paramsError struct{ err error }

func (e *paramsError) Error() string { return "invalid params: " + e.err.Error() }

// decodeParams fills dest from raw. Missing params decode as an empty object.
func decodeParams(raw json.RawMessage, dest any) error {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return &paramsError{err: err}
	}
	return nil
}

type handler func(api model.PracticeAPI, params json.RawMessage) (any, error)

var methods = map[string]handler{
	"Roles": func(api model.PracticeAPI, _ json.RawMessage) (any, error) {
		return api.Roles()
	},
	"Start": func(api model.PracticeAPI, raw json.RawMessage) (any, error) {
		var p StartParams
		if err := decodeParams(raw, &p); err != nil {
			return nil, err
		}
		return api.Start(p.Candidate, p.Role)
	},
	"Resume": func(api model.PracticeAPI, raw json.RawMessage) (any, error) {
		var p CandidateParams
		if err := decodeParams(raw, &p); err != nil {
			return nil, err
		}
		return api.Resume(p.Candidate)
	},
	"Current": func(api model.PracticeAPI, raw json.RawMessage) (any, error) {
		var p InterviewParams
		if err := decodeParams(raw, &p); err != nil {
			return nil, err
		}
		return api.Current(p.InterviewID, p.Candidate)
	},
	"Submit": func(api model.PracticeAPI, raw json.RawMessage) (any, error) {
		var sub model.Submission
		if err := decodeParams(raw, &sub); err != nil {
			return nil, err
		}
		return api.Submit(sub)
	},
	"Results": func(api model.PracticeAPI, raw json.RawMessage) (any, error) {
		var p InterviewParams
		if err := decodeParams(raw, &p); err != nil {
			return nil, err
		}
		return api.Results(p.InterviewID, p.Candidate)
	},
	"History": func(api model.PracticeAPI, raw json.RawMessage) (any, error) {
		var p CandidateParams
		if err := decodeParams(raw, &p); err != nil {
			return nil, err
		}
		return api.History(p.Candidate)
	},
	"Dashboard": func(api model.PracticeAPI, raw json.RawMessage) (any, error) {
		var p CandidateParams
		if err := decodeParams(raw, &p); err != nil {
			return nil, err
		}
		return api.Dashboard(p.Candidate)
	},
}

func (s *Server) dispatch(req Request) Response {
	resp := Response{JSONRPC: "2.0", ID: req.ID}

	h, ok := methods[req.Method]
	if !ok {
		resp.Error = &RPCError{Code: codeMethodNotFound, Message: "method not found: " + req.Method}
		return resp
	}

	result, err := h(s.api, req.Params)
	var perr *paramsError
	switch {
	case errors.As(err, &perr):
		resp.Error = &RPCError{Code: codeInvalidParams, Message: perr.Error()}
	case err != nil:
		resp.Error = &RPCError{Code: codeApplication, Message: err.Error(), Data: sentinelName(err)}
	default:
		data, merr := json.Marshal(result)
		if merr != nil {
			resp.Error = &RPCError{Code: codeInternal, Message: merr.Error()}
			break
		}
		resp.Result = data
	}
	return resp
}
