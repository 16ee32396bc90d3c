// Package mcp is a client for the xiaohongshu-mcp sidecar, which exposes
// publishing as an MCP tool over JSON-RPC 2.0. The sidecar owns browser
// automation and login; this client only issues tools/call requests and
// interprets the loosely typed responses.
package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/xhsauto/xhsauto/internal/logutil"
	"github.com/xhsauto/xhsauto/internal/note"
)

const (
	toolName       = "publish_content"
	requestTimeout = 180 * time.Second
)

// Outcome classifies how a publish response was interpreted.
type Outcome string

const (
	// OutcomeSuccess means the service acknowledged the publish. An empty
	// result object counts: the sidecar returns one on success.
	OutcomeSuccess Outcome = "success"
	// OutcomeAmbiguous means the response carried neither result nor
	// error; the true outcome is unknown.
	OutcomeAmbiguous Outcome = "ambiguous"
	// OutcomeRejected means the service reported an explicit failure.
	OutcomeRejected Outcome = "rejected"
)

// Result is the interpreted response of one publish call.
type Result struct {
	Outcome Outcome
	Raw     map[string]any
	Message string
}

// Succeeded reports whether the publish was acknowledged.
func (r Result) Succeeded() bool { return r.Outcome == OutcomeSuccess }

// Client talks to a locally running xiaohongshu-mcp service.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New constructs a publish client for the given service base URL.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

type rpcRequest struct {
	JSONRPC string    `json:"jsonrpc"`
	Method  string    `json:"method"`
	Params  rpcParams `json:"params"`
	ID      int       `json:"id"`
}

type rpcParams struct {
	Name      string       `json:"name"`
	Arguments rpcArguments `json:"arguments"`
}

type rpcArguments struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Images  []string `json:"images"`
}

type rpcError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

// Publish sends the note to the service. Image paths must be absolute and
// point at existing files; the sidecar reads them from the shared
// filesystem.
func (c *Client) Publish(ctx context.Context, content note.Content) (Result, error) {
	if err := validateImages(content.ImagePaths); err != nil {
		return Result{}, err
	}

	payload, err := json.Marshal(rpcRequest{
		JSONRPC: "2.0",
		Method:  "tools/call",
		Params: rpcParams{
			Name: toolName,
			Arguments: rpcArguments{
				Title:   note.TruncateTitle(content.Title),
				Content: content.Body,
				Images:  content.ImagePaths,
			},
		},
		ID: 1,
	})
	if err != nil {
		return Result{}, fmt.Errorf("encode request: %w", err)
	}

	url := c.baseURL + "/mcp"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return Result{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	logutil.Infof("publishing note: title=%q images=%d", note.TruncateTitle(content.Title), len(content.ImagePaths))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, UnreachableError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	var decoded rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return Result{}, RejectedError{Message: "undecodable response", Detail: err.Error()}
	}
	if resp.StatusCode != http.StatusOK && decoded.Error == nil {
		return Result{}, RejectedError{Message: fmt.Sprintf("unexpected status %d", resp.StatusCode)}
	}

	return interpret(decoded)
}

// interpret applies the response contract: an error field rejects, any
// result without failure markers succeeds (the sidecar may return an empty
// object on success), anything else is ambiguous and fails the run.
func interpret(decoded rpcResponse) (Result, error) {
	if decoded.Error != nil {
		res := Result{Outcome: OutcomeRejected, Message: decoded.Error.Message}
		return res, RejectedError{
			Code:    decoded.Error.Code,
			Message: decoded.Error.Message,
			Detail:  strings.TrimSpace(string(decoded.Error.Data)),
		}
	}

	if decoded.Result == nil {
		return Result{Outcome: OutcomeAmbiguous}, ErrAmbiguousResponse
	}

	res := Result{Outcome: OutcomeSuccess, Raw: rawMap(decoded.Result)}

	body := string(decoded.Result)
	if msg := gjson.Get(body, "message"); msg.Exists() {
		res.Message = msg.String()
	}

	if reason := failureMarker(body); reason != "" {
		res.Outcome = OutcomeRejected
		return res, RejectedError{Message: reason, Detail: res.Message}
	}

	return res, nil
}

// failureMarker scans a result object for the failure shapes the sidecar
// is known to produce; an empty return means no failure was signalled.
func failureMarker(body string) string {
	if !gjson.Valid(body) {
		return ""
	}
	if v := gjson.Get(body, "success"); v.Exists() && !v.Bool() {
		return "result reported success=false"
	}
	if v := gjson.Get(body, "status"); v.Exists() && strings.EqualFold(v.String(), "failed") {
		return "result reported status=failed"
	}
	if v := gjson.Get(body, "error"); v.Exists() && v.String() != "" {
		return "result carried an error field"
	}
	if v := gjson.Get(body, "failed"); v.Exists() && v.Bool() {
		return "result reported failed=true"
	}
	return ""
}

func rawMap(raw json.RawMessage) map[string]any {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return nil
	}
	return m
}

func validateImages(paths []string) error {
	if len(paths) == 0 {
		return errors.New("no images to publish")
	}
	for _, p := range paths {
		if !filepath.IsAbs(p) {
			return fmt.Errorf("image path %q is not absolute", p)
		}
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("image %q not readable: %w", p, err)
		}
	}
	return nil
}
