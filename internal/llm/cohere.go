/*
 * Copyright 2025 sookrat.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package llm talks to the Cohere v2 chat API, in both single-response and
// server-sent-event streaming form.
package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const chatPath = "/v2/chat"

// Client is a minimal Cohere v2 chat client.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a client for the given credentials. baseURL defaults to
// the public Cohere endpoint when empty.
func NewClient(apiKey, model, baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://api.cohere.com"
	}
	return &Client{
		apiKey:     apiKey,
		model:      model,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Stream      bool      `json:"stream,omitempty"`
	Temperature *float64  `json:"temperature,omitempty"`
	MaxTokens   *int      `json:"max_tokens,omitempty"`
}

// Options tune one chat call. Zero values fall back to the client defaults.
type Options struct {
	Model       string
	Temperature *float64
	MaxTokens   *int
}

func (c *Client) request(question string, opts Options, stream bool) chatRequest {
	model := opts.Model
	if model == "" {
		model = c.model
	}
	return chatRequest{
		Model:       model,
		Messages:    []message{{Role: "user", Content: question}},
		Stream:      stream,
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	}
}

type chatResponse struct {
	Message struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"message"`
}

// streamEvent covers the subset of v2 stream event fields we consume. Only
// content-delta events carry text.
type streamEvent struct {
	Type  string `json:"type"`
	Delta struct {
		Message struct {
			Content struct {
				Text string `json:"text"`
			} `json:"content"`
		} `json:"message"`
	} `json:"delta"`
}

// Chat sends one user question and returns the full answer text.
func (c *Client) Chat(ctx context.Context, question string, opts Options) (string, error) {
	resp, err := c.post(ctx, c.request(question, opts, false))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", apiError(resp)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	for _, part := range parsed.Message.Content {
		if part.Type == "text" {
			return part.Text, nil
		}
	}
	return "", fmt.Errorf("chat response contained no text content")
}

// ChatStream sends one user question and invokes emit for every text chunk
// as it arrives. emit errors abort the stream.
func (c *Client) ChatStream(ctx context.Context, question string, opts Options, emit func(chunk string) error) error {
	resp, err := c.post(ctx, c.request(question, opts, true))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apiError(resp)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" || payload == "[DONE]" {
			continue
		}
		var event streamEvent
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			continue
		}
		if event.Type != "content-delta" {
			continue
		}
		if text := event.Delta.Message.Content.Text; text != "" {
			if err := emit(text); err != nil {
				return err
			}
		}
	}
	return scanner.Err()
}

func (c *Client) post(ctx context.Context, body chatRequest) (*http.Response, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+chatPath, bytes.NewReader(encoded))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return c.httpClient.Do(req)
}

func apiError(resp *http.Response) error {
	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	var parsed struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(detail, &parsed) == nil && parsed.Message != "" {
		return fmt.Errorf("cohere api: %s (status %d)", parsed.Message, resp.StatusCode)
	}
	return fmt.Errorf("cohere api: status %d", resp.StatusCode)
}
