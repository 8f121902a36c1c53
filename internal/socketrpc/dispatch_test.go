package socketrpc

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/tinytelemetry/mockview/internal/model"
)

// stubAPI returns fixed values for dispatch unit testing.
type stubAPI struct{}

func (stubAPI) Roles() ([]model.Role, error) {
	return []model.Role{{Key: "web_developer", Label: "Web Developer"}}, nil
}
func (stubAPI) Start(candidate, role string) (model.CurrentQuestion, error) {
	if role == "astronaut" {
		return model.CurrentQuestion{}, model.ErrUnknownRole
	}
	return model.CurrentQuestion{InterviewID: "iv-1", Number: 1, Total: 5}, nil
}
func (stubAPI) Resume(candidate string) (model.CurrentQuestion, error) {
	return model.CurrentQuestion{InterviewID: "iv-1", Number: 2, Total: 5}, nil
}
func (stubAPI) Current(id, candidate string) (model.CurrentQuestion, error) {
	return model.CurrentQuestion{InterviewID: id, Number: 1, Total: 5}, nil
}
func (stubAPI) Submit(sub model.Submission) (model.SubmitResult, error) {
	return model.SubmitResult{Score: 50}, nil
}
func (stubAPI) Results(id, candidate string) (model.Results, error) {
	return model.Results{Interview: model.Interview{ID: id}}, nil
}
func (stubAPI) History(candidate string) ([]model.InterviewSummary, error) {
	return []model.InterviewSummary{{ID: "iv-1"}}, nil
}
func (stubAPI) Dashboard(candidate string) (model.Dashboard, error) {
	return model.Dashboard{Candidate: candidate}, nil
}

func newTestDispatcher() *Server {
	return &Server{api: stubAPI{}}
}

func TestDispatch_AllMethods(t *testing.T) {
	t.Parallel()
	srv := newTestDispatcher()

	tests := []struct {
		method string
		params string
	}{
		{"Roles", `{}`},
		{"Start", `{"Candidate":"ada","Role":"web_developer"}`},
		{"Resume", `{"Candidate":"ada"}`},
		{"Current", `{"InterviewID":"iv-1","Candidate":"ada"}`},
		{"Submit", `{"ID":"s1","InterviewID":"iv-1","Candidate":"ada","Answer":"x","Trigger":"manual"}`},
		{"Results", `{"InterviewID":"iv-1","Candidate":"ada"}`},
		{"History", `{"Candidate":"ada"}`},
		{"Dashboard", `{"Candidate":"ada"}`},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			t.Parallel()
			req := Request{
				JSONRPC: "2.0",
				ID:      1,
				Method:  tt.method,
				Params:  json.RawMessage(tt.params),
			}
			resp := srv.dispatch(req)
			if resp.Error != nil {
				t.Fatalf("dispatch(%s) error: %s", tt.method, resp.Error.Message)
			}
			if resp.Result == nil {
				t.Fatalf("dispatch(%s) returned nil result", tt.method)
			}
			if resp.JSONRPC != "2.0" {
				t.Errorf("JSONRPC = %q, want 2.0", resp.JSONRPC)
			}
			if resp.ID != 1 {
				t.Errorf("ID = %d, want 1", resp.ID)
			}
		})
	}
}

func TestDispatch_MethodNotFound(t *testing.T) {
	t.Parallel()
	srv := newTestDispatcher()

	resp := srv.dispatch(Request{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "NonExistentMethod",
		Params:  json.RawMessage(`{}`),
	})
	if resp.Error == nil {
		t.Fatal("expected error for unknown method")
	}
	if resp.Error.Code != -32601 {
		t.Errorf("error code = %d, want -32601", resp.Error.Code)
	}
}

func TestDispatch_InvalidParams(t *testing.T) {
	t.Parallel()
	srv := newTestDispatcher()

	resp := srv.dispatch(Request{
		JSONRPC: "2.0",
		ID:      2,
		Method:  "Submit",
		Params:  json.RawMessage(`not json`),
	})
	if resp.Error == nil {
		t.Fatal("expected error for malformed params")
	}
	if resp.Error.Code != -32602 {
		t.Errorf("error code = %d, want -32602 (invalid params)", resp.Error.Code)
	}
}

func TestDispatch_EmptyParamsOnOptionalMethods(t *testing.T) {
	t.Parallel()
	srv := newTestDispatcher()

	for _, method := range []string{"Roles", "Resume", "History", "Dashboard"} {
		t.Run(method, func(t *testing.T) {
			t.Parallel()
			resp := srv.dispatch(Request{
				JSONRPC: "2.0",
				ID:      1,
				Method:  method,
				Params:  nil,
			})
			if resp.Error != nil {
				t.Fatalf("dispatch(%s) with nil params: %s", method, resp.Error.Message)
			}
		})
	}
}

func TestDispatch_ApplicationErrorCarriesSentinel(t *testing.T) {
	t.Parallel()
	srv := newTestDispatcher()

	resp := srv.dispatch(Request{
		JSONRPC: "2.0",
		ID:      3,
		Method:  "Start",
		Params:  json.RawMessage(`{"Role":"astronaut"}`),
	})
	if resp.Error == nil {
		t.Fatal("expected application error")
	}
	if resp.Error.Code != -32000 || resp.Error.Data != "unknown_role" {
		t.Errorf("error = %+v", resp.Error)
	}
	if !errors.Is(resp.Error, model.ErrUnknownRole) {
		t.Error("RPCError does not unwrap to ErrUnknownRole")
	}
}

func TestDispatch_PreservesRequestID(t *testing.T) {
	t.Parallel()
	srv := newTestDispatcher()

	for _, id := range []int{0, 1, 42, 9999} {
		resp := srv.dispatch(Request{
			JSONRPC: "2.0",
			ID:      id,
			Method:  "Roles",
			Params:  json.RawMessage(`{}`),
		})
		if resp.ID != id {
			t.Errorf("request ID %d: response ID = %d", id, resp.ID)
		}
	}
}
