// Copyright (c) 2025 The UniVote Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package notify

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Telegram delivers messages via the Telegram Bot API sendMessage call.
// The handle is the chat id bound during the link handoff.
type Telegram struct {
	token   string
	apiBase string
	client  *http.Client
}

// NewTelegram creates a Telegram channel. apiBase is normally
// "https://api.telegram.org"; tests point it at a local server.
func NewTelegram(token, apiBase string) *Telegram {
	return &Telegram{
		token:   token,
		apiBase: apiBase,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

func (t *Telegram) Deliver(handle, message string) error {
	body, err := json.Marshal(sendMessageRequest{ChatID: handle, Text: message})
	if err != nil {
		return fmt.Errorf("failed to encode sendMessage: %w", err)
	}

	url := t.apiBase + "/bot" + t.token + "/sendMessage"
	resp, err := t.client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("telegram request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram sendMessage returned status %d", resp.StatusCode)
	}
	return nil
}
