// Package whatsapp implements the dispatch Transport over the WhatsApp
// Cloud API, resolving per-tenant credentials from the tenant row.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"wasender/internal/store"
)

const defaultBaseURL = "https://graph.facebook.com/v19.0"

type Client struct {
	store   *store.Store
	http    *http.Client
	BaseURL string
}

func NewClient(st *store.Store) *Client {
	return &Client{
		store:   st,
		http:    &http.Client{Timeout: 30 * time.Second},
		BaseURL: defaultBaseURL,
	}
}

// --- Message Structures ---

type GenericMessage struct {
	MessagingProduct string    `json:"messaging_product"`
	To               string    `json:"to"`
	Type             string    `json:"type"`
	Text             *TextObj  `json:"text,omitempty"`
	Image            *MediaObj `json:"image,omitempty"`
}

type TextObj struct {
	Body       string `json:"body"`
	PreviewUrl bool   `json:"preview_url,omitempty"`
}

type MediaObj struct {
	Link    string `json:"link,omitempty"`
	Caption string `json:"caption,omitempty"`
}

// Send delivers one text or image message to a recipient on behalf of a
// tenant. Synchronous: it returns only once the Cloud API has accepted
// or rejected the message.
func (c *Client) Send(ctx context.Context, tenantID, to, content, mediaURL string) error {
	tenant, err := c.store.Tenant(ctx, tenantID)
	if err != nil {
		return fmt.Errorf("resolve tenant session: %w", err)
	}
	if tenant.WhatsAppToken == "" || tenant.PhoneNumberID == "" {
		return fmt.Errorf("tenant %s has no WhatsApp session configured", tenantID)
	}

	msg := GenericMessage{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             &TextObj{Body: content},
	}
	if mediaURL != "" {
		msg = GenericMessage{
			MessagingProduct: "whatsapp",
			To:               to,
			Type:             "image",
			Image:            &MediaObj{Link: mediaURL, Caption: content},
		}
	}

	url := fmt.Sprintf("%s/%s/messages", c.BaseURL, tenant.PhoneNumberID)
	return c.post(ctx, url, tenant.WhatsAppToken, msg)
}

func (c *Client) post(ctx context.Context, url, token string, body interface{}) error {
	jsonData, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("API error: %s - %s", resp.Status, string(respBody))
	}
	return nil
}
