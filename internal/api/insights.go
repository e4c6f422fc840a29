package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
)

// Messages returns the insights conversation of userID. The backend wraps
// the list as a JSON encoded string inside the "messages" field.
func (c *Client) Messages(ctx context.Context, userID string) ([]Message, error) {
	const op = "insights.messages"
	if err := requireUser(op, userID); err != nil {
		return nil, err
	}

	var envelope struct {
		Messages string `json:"messages"`
	}
	err := c.do(ctx, request{
		op:     op,
		method: http.MethodGet,
		path:   "/insights/messages/" + url.PathEscape(userID),
	}, &envelope)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(envelope.Messages) == "" {
		return []Message{}, nil
	}
	var msgs []Message
	if err := json.Unmarshal([]byte(envelope.Messages), &msgs); err != nil {
		return nil, &Error{Op: op, Kind: KindDecode, Err: err}
	}
	return msgs, nil
}

// SendMessage posts a question to the insights assistant and returns the
// assistant's reply. The reply is empty when the backend answers later; the
// answer then shows up in Messages.
func (c *Client) SendMessage(ctx context.Context, userID, message string) (Message, error) {
	const op = "insights.send"
	if err := requireUser(op, userID); err != nil {
		return Message{}, err
	}
	if strings.TrimSpace(message) == "" {
		return Message{}, &Error{Op: op, Kind: KindInvalid, Err: errors.New("message is empty")}
	}
	body, err := jsonBody(op, map[string]string{"message": message, "userId": userID})
	if err != nil {
		return Message{}, err
	}

	var resp struct {
		Message Message `json:"message"`
	}
	err = c.do(ctx, request{
		op:          op,
		method:      http.MethodPost,
		path:        "/insights/send-message",
		body:        body,
		contentType: "application/json",
		emptyOK:     true,
	}, &resp)
	if err != nil {
		return Message{}, err
	}
	return resp.Message, nil
}
