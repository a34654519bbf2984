// Package anki talks to the AnkiConnect add-on, the local automation API
// exposed by a running Anki instance.
package anki

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// connectVersion is the AnkiConnect protocol version this client speaks.
const connectVersion = 6

// Client is an AnkiConnect API client.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient creates a client for the AnkiConnect endpoint at url.
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// request is the AnkiConnect envelope: every call is a POST with an action
// name, protocol version and action-specific params.
type request struct {
	Action  string `json:"action"`
	Version int    `json:"version"`
	Params  any    `json:"params,omitempty"`
}

type response struct {
	Result json.RawMessage `json:"result"`
	Error  *string         `json:"error"`
}

// invoke performs one AnkiConnect call and decodes its result into out.
func (c *Client) invoke(ctx context.Context, action string, params any, out any) error {
	payload, err := json.Marshal(request{
		Action:  action,
		Version: connectVersion,
		Params:  params,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from AnkiConnect", resp.StatusCode)
	}

	var envelope response
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if envelope.Error != nil && *envelope.Error != "" {
		if strings.Contains(strings.ToLower(*envelope.Error), "duplicate") {
			return ErrDuplicate
		}
		return &APIError{Action: action, Message: *envelope.Error}
	}

	if out != nil {
		if err := json.Unmarshal(envelope.Result, out); err != nil {
			return fmt.Errorf("failed to decode %s result: %w", action, err)
		}
	}
	return nil
}

// Version probes the AnkiConnect endpoint, verifying Anki is running and the
// add-on responds.
func (c *Client) Version(ctx context.Context) (int, error) {
	var version int
	if err := c.invoke(ctx, "version", nil, &version); err != nil {
		return 0, err
	}
	return version, nil
}

// FindNotes returns the IDs of notes matching an Anki search query.
func (c *Client) FindNotes(ctx context.Context, query string) ([]int64, error) {
	params := map[string]string{"query": query}

	var ids []int64
	if err := c.invoke(ctx, "findNotes", params, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// AddNote creates a basic front/back note in the given deck and returns the
// new note ID. A duplicate rejection from Anki is returned as ErrDuplicate.
func (c *Client) AddNote(ctx context.Context, deck, model, front, back string) (int64, error) {
	params := map[string]any{
		"note": map[string]any{
			"deckName":  deck,
			"modelName": model,
			"fields": map[string]string{
				"Front": front,
				"Back":  back,
			},
		},
	}

	var id int64
	if err := c.invoke(ctx, "addNote", params, &id); err != nil {
		return 0, err
	}
	return id, nil
}
