package telegram

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Bot is the Telegram Bot API client.
type Bot struct {
	token      string
	apiURL     string
	httpClient *http.Client
}

// NewBot creates a new Telegram Bot client with the given token.
func NewBot(token string) *Bot {
	return &Bot{
		token:      token,
		apiURL:     fmt.Sprintf("https://api.telegram.org/bot%s", token),
		httpClient: &http.Client{},
	}
}

// SetAPIURL overrides the default Telegram API URL for testing purposes.
func (b *Bot) SetAPIURL(url string) {
	b.apiURL = url
}

// SetWebhook registers the webhook URL with Telegram. The secret token, when
// non-empty, is echoed back by Telegram in the X-Telegram-Bot-Api-Secret-Token
// header on every update.
func (b *Bot) SetWebhook(webhookURL, secretToken string) error {
	payload := SetWebhookRequest{URL: webhookURL, SecretToken: secretToken}

	var apiResp APIResponse
	if err := b.post("setWebhook", payload, &apiResp); err != nil {
		return fmt.Errorf("failed to set webhook: %w", err)
	}
	if !apiResp.OK {
		return fmt.Errorf("telegram setWebhook failed: %s", apiResp.Description)
	}
	return nil
}

// SendMessage sends a plain text message to a Telegram chat.
func (b *Bot) SendMessage(chatID int64, text string) error {
	return b.sendMessage(SendMessageRequest{ChatID: chatID, Text: text})
}

// SendMessageWithMode sends a message with optional parse mode (e.g. "Markdown").
func (b *Bot) SendMessageWithMode(chatID int64, text string, parseMode string) error {
	return b.sendMessage(SendMessageRequest{ChatID: chatID, Text: text, ParseMode: parseMode})
}

// SendMessageWithKeyboard sends a message with an inline keyboard attached.
func (b *Bot) SendMessageWithKeyboard(chatID int64, text string, parseMode string, keyboard *InlineKeyboardMarkup) error {
	return b.sendMessage(SendMessageRequest{
		ChatID:      chatID,
		Text:        text,
		ParseMode:   parseMode,
		ReplyMarkup: keyboard,
	})
}

// EditMessageText replaces the text of a previously sent message. Telegram
// drops the inline keyboard unless a new one is supplied, which is exactly
// what we want after a decision is taken.
func (b *Bot) EditMessageText(chatID int64, messageID int64, text string) error {
	payload := EditMessageTextRequest{ChatID: chatID, MessageID: messageID, Text: text}

	var apiResp APIResponse
	if err := b.post("editMessageText", payload, &apiResp); err != nil {
		return fmt.Errorf("failed to edit message: %w", err)
	}
	if !apiResp.OK {
		return fmt.Errorf("telegram editMessageText failed: %s", apiResp.Description)
	}
	return nil
}

// AnswerCallbackQuery acknowledges a button press so the client stops showing
// a loading spinner.
func (b *Bot) AnswerCallbackQuery(callbackQueryID string) error {
	payload := AnswerCallbackQueryRequest{CallbackQueryID: callbackQueryID}

	var apiResp APIResponse
	if err := b.post("answerCallbackQuery", payload, &apiResp); err != nil {
		return fmt.Errorf("failed to answer callback query: %w", err)
	}
	if !apiResp.OK {
		return fmt.Errorf("telegram answerCallbackQuery failed: %s", apiResp.Description)
	}
	return nil
}

func (b *Bot) sendMessage(payload SendMessageRequest) error {
	url := fmt.Sprintf("%s/sendMessage", b.apiURL)

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	resp, err := b.httpClient.Post(url, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("telegram sendMessage API error %d: %s", resp.StatusCode, string(raw))
	}

	return nil
}

func (b *Bot) post(method string, payload any, out *APIResponse) error {
	url := fmt.Sprintf("%s/%s", b.apiURL, method)

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s payload: %w", method, err)
	}

	resp, err := b.httpClient.Post(url, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", method, err)
	}
	return nil
}
