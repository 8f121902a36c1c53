package socketrpc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/tinytelemetry/mockview/internal/model"
)

// Client implements model.PracticeAPI over a Unix domain socket using JSON-RPC 2.0.
type Client struct {
	conn    net.Conn
	mu      sync.Mutex
	nextID  int
	scanner *bufio.Scanner
	encoder *json.Encoder
}

// Dial connects to the socket RPC server at the given path.
func Dial(socketPath string) (*Client, error) {
	conn, err := net.DialTimeout("unix", socketPath, 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("socketrpc: dial: %w", err)
	}
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 1024*1024), 10*1024*1024)
	return &Client{
		conn:    conn,
		scanner: scanner,
		encoder: json.NewEncoder(conn),
	}, nil
}

var _ model.PracticeAPI = (*Client)(nil)

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// call performs a JSON-RPC call and unmarshals the result into dest.
func (c *Client) call(method string, params, dest any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	id := c.nextID

	paramsData, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("socketrpc: marshal params: %w", err)
	}

	req := Request{
		JSONRPC: "2.0",
		ID:      id,
		Method:  method,
		Params:  paramsData,
	}

	c.conn.SetDeadline(time.Now().Add(30 * time.Second))
	defer c.conn.SetDeadline(time.Time{})

	if err := c.encoder.Encode(req); err != nil {
		return fmt.Errorf("socketrpc: send: %w", err)
	}

	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return fmt.Errorf("socketrpc: read: %w", err)
		}
		return fmt.Errorf("socketrpc: connection closed")
	}

	var resp Response
	if err := json.Unmarshal(c.scanner.Bytes(), &resp); err != nil {
		return fmt.Errorf("socketrpc: unmarshal response: %w", err)
	}

	if resp.Error != nil {
		return resp.Error
	}

	if dest != nil {
		if err := json.Unmarshal(resp.Result, dest); err != nil {
			return fmt.Errorf("socketrpc: unmarshal result: %w", err)
		}
	}
	return nil
}

func (c *Client) Roles() ([]model.Role, error) {
	var result []model.Role
	err := c.call("Roles", nil, &result)
	return result, err
}

func (c *Client) Start(candidate, role string) (model.CurrentQuestion, error) {
	var result model.CurrentQuestion
	err := c.call("Start", StartParams{Candidate: candidate, Role: role}, &result)
	return result, err
}

func (c *Client) Resume(candidate string) (model.CurrentQuestion, error) {
	var result model.CurrentQuestion
	err := c.call("Resume", CandidateParams{Candidate: candidate}, &result)
	return result, err
}

func (c *Client) Current(interviewID, candidate string) (model.CurrentQuestion, error) {
	var result model.CurrentQuestion
	err := c.call("Current", InterviewParams{InterviewID: interviewID, Candidate: candidate}, &result)
	return result, err
}

func (c *Client) Submit(sub model.Submission) (model.SubmitResult, error) {
	var result model.SubmitResult
	err := c.call("Submit", sub, &result)
	return result, err
}

func (c *Client) Results(interviewID, candidate string) (model.Results, error) {
	var result model.Results
	err := c.call("Results", InterviewParams{InterviewID: interviewID, Candidate: candidate}, &result)
	return result, err
}

func (c *Client) History(candidate string) ([]model.InterviewSummary, error) {
	var result []model.InterviewSummary
	err := c.call("History", CandidateParams{Candidate: candidate}, &result)
	return result, err
}

func (c *Client) Dashboard(candidate string) (model.Dashboard, error) {
	var result model.Dashboard
	err := c.call("Dashboard", CandidateParams{Candidate: candidate}, &result)
	return result, err
}
