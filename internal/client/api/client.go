// Package api is an HTTP client for the match server. It satisfies the REPL
// backend so the same commands drive a local or a remote match.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"khalistra/internal/server/core"
)

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Verbose    bool
	Trace      io.Writer
}

func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 40 * time.Second, // above the server long-poll timeout
		},
		Trace: io.Discard,
	}
}

func (c *Client) SetVerbose(v bool) {
	c.Verbose = v
}

// SetBaseURL updates the API base URL for the client
func (c *Client) SetBaseURL(u string) {
	c.BaseURL = strings.TrimRight(u, "/")
}

// Error is a non-2xx answer from the server
type Error struct {
	Status  int
	Code    string
	Message string
	Details string
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Code != "" {
		return fmt.Sprintf("%s (%s)", msg, e.Code)
	}
	return msg
}

func (c *Client) doRequest(method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(jsonData)
		if c.Verbose {
			fmt.Fprintf(c.Trace, "[API] %s %s %s\n", method, path, jsonData)
		}
	} else if c.Verbose {
		fmt.Fprintf(c.Trace, "[API] %s %s\n", method, path)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, bodyReader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if c.Verbose {
		fmt.Fprintf(c.Trace, "[%d %s] %s\n", resp.StatusCode, http.StatusText(resp.StatusCode), respBody)
	}

	if resp.StatusCode >= 400 {
		apiErr := &Error{Status: resp.StatusCode}
		var errResp core.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil {
			apiErr.Code = errResp.Code
			apiErr.Message = errResp.Error
			apiErr.Details = errResp.Details
		} else {
			apiErr.Message = strings.TrimSpace(string(respBody))
		}
		return apiErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func matchPath(matchID string) string {
	return "/api/v1/matches/" + url.PathEscape(matchID)
}

// API Methods

func (c *Client) Health() (map[string]any, error) {
	var resp map[string]any
	err := c.doRequest(http.MethodGet, "/health", nil, &resp)
	return resp, err
}

func (c *Client) CreateMatch(req core.CreateMatchRequest) (core.MatchResponse, error) {
	var resp core.MatchResponse
	err := c.doRequest(http.MethodPost, "/api/v1/matches", req, &resp)
	return resp, err
}

func (c *Client) GetMatch(matchID string) (core.MatchResponse, error) {
	var resp core.MatchResponse
	err := c.doRequest(http.MethodGet, matchPath(matchID), nil, &resp)
	return resp, err
}

// WaitMatch blocks until the match moves past version or the server times
// the poll out
func (c *Client) WaitMatch(matchID string, version int) (core.MatchResponse, error) {
	var resp core.MatchResponse
	path := fmt.Sprintf("%s?wait=true&version=%d", matchPath(matchID), version)
	err := c.doRequest(http.MethodGet, path, nil, &resp)
	return resp, err
}

func (c *Client) LegalMoves(matchID, pieceID, playerID string) (core.LegalMovesResponse, error) {
	var resp core.LegalMovesResponse
	path := matchPath(matchID) + "/pieces/" + url.PathEscape(pieceID) + "/moves"
	if playerID != "" {
		path += "?playerId=" + url.QueryEscape(playerID)
	}
	err := c.doRequest(http.MethodGet, path, nil, &resp)
	return resp, err
}

func (c *Client) MakeMove(matchID string, req core.MoveRequest) (core.MatchResponse, error) {
	var resp core.MatchResponse
	err := c.doRequest(http.MethodPost, matchPath(matchID)+"/moves", req, &resp)
	return resp, err
}

func (c *Client) UndoMoves(matchID string, count int) (core.MatchResponse, error) {
	var resp core.MatchResponse
	err := c.doRequest(http.MethodPost, matchPath(matchID)+"/undo", core.UndoRequest{Count: count}, &resp)
	return resp, err
}

func (c *Client) Resign(matchID string, req core.ResignRequest) (core.MatchResponse, error) {
	var resp core.MatchResponse
	err := c.doRequest(http.MethodPost, matchPath(matchID)+"/resign", req, &resp)
	return resp, err
}

func (c *Client) GetBoard(matchID string) (core.BoardResponse, error) {
	var resp core.BoardResponse
	err := c.doRequest(http.MethodGet, matchPath(matchID)+"/board", nil, &resp)
	return resp, err
}

func (c *Client) DeleteMatch(matchID string) error {
	return c.doRequest(http.MethodDelete, matchPath(matchID), nil, nil)
}
