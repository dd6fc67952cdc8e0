// Package greenapi implements a client for the GreenAPI WhatsApp gateway.
package greenapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"
)

const (
	// ClientTimeout is the total request timeout.
	ClientTimeout = 30 * time.Second
	// DialTimeout is the connection timeout.
	DialTimeout = 10 * time.Second
	// TLSHandshakeTimeout is the TLS negotiation timeout.
	TLSHandshakeTimeout = 10 * time.Second
	// ResponseHeaderTimeout is time to wait for response headers.
	ResponseHeaderTimeout = 15 * time.Second
)

// StatusQuotaExceeded is the non-standard status code GreenAPI returns
// when the monthly message quota is exhausted.
const StatusQuotaExceeded = 466

// StateAuthorized is the instance state reported when the WhatsApp
// account is connected and able to send.
const StateAuthorized = "authorized"

// ErrNotConfigured indicates the gateway credentials are missing.
var ErrNotConfigured = errors.New("gateway credentials not configured")

// SendError describes a failed gateway call.
type SendError struct {
	StatusCode  int
	Description string
}

func (e *SendError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("gateway error (status %d)", e.StatusCode)
	}
	return fmt.Sprintf("gateway error (status %d): %s", e.StatusCode, e.Description)
}

// IsQuotaExceeded reports whether err indicates the monthly send quota
// ran out. Quota exhaustion is an account-level condition, not a fault
// in the inbound message, so callers treat it as non-fatal.
func IsQuotaExceeded(err error) bool {
	var se *SendError
	if !errors.As(err, &se) {
		return false
	}
	if se.StatusCode == StatusQuotaExceeded {
		return true
	}
	desc := strings.ToLower(se.Description)
	return strings.Contains(desc, "quota exceeded") ||
		strings.Contains(desc, "monthly quota") ||
		strings.Contains(desc, "limit reached")
}

// Client sends WhatsApp messages through a GreenAPI instance.
type Client struct {
	baseURL    string
	instanceID string
	token      string
	httpc      *http.Client
	logger     *slog.Logger
}

// NewClient creates a gateway client. Empty credentials produce a client
// whose send methods return ErrNotConfigured, so callers can hold a
// non-nil client regardless of environment.
func NewClient(baseURL, instanceID, token string, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		instanceID: instanceID,
		token:      token,
		httpc:      newHTTPClient(),
		logger:     logger,
	}
}

// newHTTPClient builds an HTTP client tuned for gateway calls.
func newHTTPClient() *http.Client {
	return &http.Client{
		Timeout: ClientTimeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   DialTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   TLSHandshakeTimeout,
			ResponseHeaderTimeout: ResponseHeaderTimeout,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
		},
	}
}

// Configured reports whether credentials are present.
func (c *Client) Configured() bool {
	return c.instanceID != "" && c.token != ""
}

func (c *Client) methodURL(method string) string {
	return fmt.Sprintf("%s/waInstance%s/%s/%s", c.baseURL, c.instanceID, method, c.token)
}

type sendMessageRequest struct {
	ChatID  string `json:"chatId"`
	Message string `json:"message"`
}

type sendMessageResponse struct {
	IDMessage string `json:"idMessage"`
}

// gatewayError covers the two error body shapes GreenAPI responds with.
type gatewayError struct {
	Message      string `json:"message"`
	InvokeStatus struct {
		Description string `json:"description"`
	} `json:"invokeStatus"`
}

func (g *gatewayError) description() string {
	if g.InvokeStatus.Description != "" {
		return g.InvokeStatus.Description
	}
	return g.Message
}

// SendMessage delivers a text message to the given phone number and
// returns the gateway message ID.
func (c *Client) SendMessage(ctx context.Context, phone, text string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	chatID := FormatChatID(phone)
	if chatID == "" {
		return "", fmt.Errorf("invalid phone number %q", phone)
	}

	payload, err := json.Marshal(sendMessageRequest{ChatID: chatID, Message: text})
	if err != nil {
		return "", fmt.Errorf("marshal send request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.methodURL("sendMessage"), bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("read gateway response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var gerr gatewayError
		_ = json.Unmarshal(body, &gerr)
		sendErr := &SendError{StatusCode: resp.StatusCode, Description: gerr.description()}
		if resp.StatusCode == StatusQuotaExceeded && sendErr.Description == "" {
			sendErr.Description = "monthly quota exceeded"
		}
		return "", sendErr
	}

	var result sendMessageResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("decode gateway response: %w", err)
	}
	if result.IDMessage == "" {
		return "", &SendError{StatusCode: resp.StatusCode, Description: "response missing idMessage"}
	}

	c.logger.Info("whatsapp message sent",
		"chat_id", chatID,
		"message_id", result.IDMessage,
	)
	return result.IDMessage, nil
}

// SendTemplate renders a named template and sends it.
func (c *Client) SendTemplate(ctx context.Context, phone, templateName string, data TemplateData) (string, error) {
	text, err := Render(templateName, data)
	if err != nil {
		return "", err
	}
	return c.SendMessage(ctx, phone, text)
}

// SendStaffAssignment sends the three-message introduction sequence after
// a staff member is assigned. A failure stops the sequence; the count of
// delivered messages is returned either way.
func (c *Client) SendStaffAssignment(ctx context.Context, phone, staffName string) (int, error) {
	messages := StaffAssignmentMessages(staffName)

	for i, msg := range messages {
		if _, err := c.SendMessage(ctx, phone, msg); err != nil {
			return i, fmt.Errorf("staff assignment message %d: %w", i+1, err)
		}
		// Short pause keeps delivery order stable on the gateway side
		if i < len(messages)-1 {
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return i + 1, ctx.Err()
			}
		}
	}
	return len(messages), nil
}

type stateInstanceResponse struct {
	StateInstance string `json:"stateInstance"`
}

// GetStateInstance returns the gateway instance state
// (e.g. "authorized", "notAuthorized", "blocked").
func (c *Client) GetStateInstance(ctx context.Context) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.methodURL("getStateInstance"), nil)
	if err != nil {
		return "", fmt.Errorf("build state request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("get instance state: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &SendError{StatusCode: resp.StatusCode, Description: strings.TrimSpace(string(body))}
	}

	var result stateInstanceResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode state response: %w", err)
	}
	return result.StateInstance, nil
}

// Connected reports whether the WhatsApp account is authorized to send.
func (c *Client) Connected(ctx context.Context) (bool, error) {
	state, err := c.GetStateInstance(ctx)
	if err != nil {
		return false, err
	}
	return state == StateAuthorized, nil
}
