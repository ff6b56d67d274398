// Package messenger реализует клиент Bot API платформы: отправку сообщений
// и исключение участников из группы. Вызовы best-effort: ошибка доставки
// логируется вызывающей стороной и никогда не откатывает состояние.
package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

type Client struct {
	token      string
	apiURL     string
	httpClient *http.Client
}

// NewClient создаёт новый клиент Bot API.
func NewClient(token, apiURL string) *Client {
	return &Client{
		token:      token,
		apiURL:     apiURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) call(ctx context.Context, method string, body any) error {
	url := fmt.Sprintf("%s/bot%s/%s", c.apiURL, c.token, method)
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return err
	}
	if !apiResp.OK {
		return errors.New("api error: " + apiResp.Description)
	}
	return nil
}

// SendMessage отправляет текстовое сообщение в чат.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	const op = "messenger.SendMessage"
	if err := c.call(ctx, "sendMessage", sendMessageRequest{ChatID: chatID, Text: text}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// RevokeMembership исключает участника из группы.
func (c *Client) RevokeMembership(ctx context.Context, chatID, userID int64) error {
	const op = "messenger.RevokeMembership"
	if err := c.call(ctx, "banChatMember", banChatMemberRequest{ChatID: chatID, UserID: userID}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
