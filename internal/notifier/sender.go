package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/smtp"
	"time"
)

// DefaultTelegramAPIBase is the production Telegram Bot API endpoint.
const DefaultTelegramAPIBase = "https://api.telegram.org"

// TelegramSender posts completion texts to a Telegram chat.
type TelegramSender struct {
	logger     *slog.Logger
	httpClient *http.Client
	apiBase    string
	botToken   string
	chatID     string
}

// TelegramConfig holds Telegram channel configuration. APIBase is
// overridable for tests; empty means the production endpoint.
type TelegramConfig struct {
	APIBase  string
	BotToken string
	ChatID   string
	Timeout  time.Duration
}

func NewTelegramSender(cfg *TelegramConfig, logger *slog.Logger) *TelegramSender {
	apiBase := cfg.APIBase
	if apiBase == "" {
		apiBase = DefaultTelegramAPIBase
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &TelegramSender{
		logger:     logger,
		httpClient: &http.Client{Timeout: timeout},
		apiBase:    apiBase,
		botToken:   cfg.BotToken,
		chatID:     cfg.ChatID,
	}
}

// Configured reports whether the channel has credentials. Unconfigured
// channels are skipped silently.
func (s *TelegramSender) Configured() bool {
	return s.botToken != "" && s.chatID != ""
}

func (s *TelegramSender) Send(ctx context.Context, text string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", s.apiBase, s.botToken)

	body, err := json.Marshal(map[string]string{
		"chat_id": s.chatID,
		"text":    text,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal telegram request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("telegram API returned status %d: %s", resp.StatusCode, snippet)
	}

	s.logger.Debug("Telegram message sent",
		slog.String("chat_id", s.chatID),
	)
	return nil
}

// EmailSender delivers completion texts over SMTP.
type EmailSender struct {
	logger *slog.Logger
	config *EmailConfig
}

// EmailConfig holds SMTP channel configuration.
type EmailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	To       string
}

func NewEmailSender(cfg *EmailConfig, logger *slog.Logger) *EmailSender {
	return &EmailSender{
		logger: logger,
		config: cfg,
	}
}

func (s *EmailSender) Configured() bool {
	return s.config.Host != "" && s.config.To != ""
}

func (s *EmailSender) Send(_ context.Context, subject, body string) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		s.config.From, s.config.To, subject, body)

	var auth smtp.Auth
	if s.config.User != "" {
		auth = smtp.PlainAuth("", s.config.User, s.config.Password, s.config.Host)
	}

	if err := smtp.SendMail(addr, auth, s.config.From, []string{s.config.To}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Debug("Email sent",
		slog.String("to", s.config.To),
		slog.String("subject", subject),
	)
	return nil
}
