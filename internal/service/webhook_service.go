package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"wine-lot-exchange/internal/core/ports"

	"github.com/rs/zerolog"
)

// webhookRetryIntervals defines the delay before each retry attempt.
var webhookRetryIntervals = []time.Duration{
	15 * time.Second,
	60 * time.Second,
	2 * time.Minute,
	5 * time.Minute,
	10 * time.Minute,
}

// WebhookPayload is the JSON structure sent to an account's webhook_url.
type WebhookPayload struct {
	EventType string             `json:"event_type"`
	Data      WebhookPayloadData `json:"data"`
	Signature string             `json:"signature"`
}

// WebhookPayloadData holds the trade details in the webhook.
type WebhookPayloadData struct {
	TokenID   int64  `json:"token_id"`
	Price     int64  `json:"price,omitempty"`
	Payment   int64  `json:"payment,omitempty"`
	Buyer     string `json:"buyer,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

// webhookService implements ports.WebhookService. Events are delivered
// to the recipient account's webhook URL, signed with a service-level
// secret so receivers can authenticate the notification.
type webhookService struct {
	accountRepo   ports.AccountRepository
	sigSvc        ports.SignatureService
	signingSecret string
	httpClient    HTTPClient
	log           zerolog.Logger
}

// HTTPClient interface for testability.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// NewWebhookService creates a new webhook service.
func NewWebhookService(
	accountRepo ports.AccountRepository,
	sigSvc ports.SignatureService,
	signingSecret string,
	httpClient HTTPClient,
	log zerolog.Logger,
) ports.WebhookService {
	return &webhookService{
		accountRepo:   accountRepo,
		sigSvc:        sigSvc,
		signingSecret: signingSecret,
		httpClient:    httpClient,
		log:           log,
	}
}

// EnqueueTradeEvent notifies the event's recipient asynchronously with
// retries. Accounts without a webhook URL are skipped silently.
func (s *webhookService) EnqueueTradeEvent(ctx context.Context, event ports.TradeEvent) error {
	account, err := s.accountRepo.GetByID(ctx, event.Recipient)
	if err != nil {
		s.log.Error().Err(err).Str("account_id", event.Recipient.String()).Msg("webhook: failed to fetch account")
		return err
	}
	if account == nil || account.WebhookURL == nil || *account.WebhookURL == "" {
		s.log.Debug().Str("account_id", event.Recipient.String()).Msg("webhook: no webhook URL configured, skipping")
		return nil
	}

	data := WebhookPayloadData{
		TokenID:   event.TokenID,
		Price:     event.Price,
		Payment:   event.Payment,
		Timestamp: time.Now().Unix(),
	}
	if event.Buyer != nil {
		data.Buyer = event.Buyer.String()
	}

	dataBytes, _ := json.Marshal(data)
	signature := s.sigSvc.Sign(s.signingSecret, string(dataBytes))

	payload := WebhookPayload{
		EventType: event.EventType,
		Data:      data,
		Signature: signature,
	}

	// Fire async with retries
	go s.deliverWithRetries(*account.WebhookURL, payload, event.TokenID)

	return nil
}

// deliverWithRetries attempts to deliver the webhook, backing off
// between attempts.
func (s *webhookService) deliverWithRetries(url string, payload WebhookPayload, tokenID int64) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		s.log.Error().Err(err).Int64("token_id", tokenID).Msg("webhook: failed to marshal payload")
		return
	}

	for attempt := 0; attempt <= len(webhookRetryIntervals); attempt++ {
		if attempt > 0 {
			time.Sleep(webhookRetryIntervals[attempt-1])
		}

		req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(payloadBytes))
		if err != nil {
			s.log.Error().Err(err).Int64("token_id", tokenID).Int("attempt", attempt+1).Msg("webhook: failed to create request")
			continue
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			s.log.Warn().Err(err).Int64("token_id", tokenID).Int("attempt", attempt+1).Msg("webhook: delivery failed")
			continue
		}
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			s.log.Info().Int64("token_id", tokenID).Int("attempt", attempt+1).Int("status", resp.StatusCode).Msg("webhook: delivered successfully")
			return
		}

		s.log.Warn().Int64("token_id", tokenID).Int("attempt", attempt+1).Int("status", resp.StatusCode).Msg("webhook: non-2xx response, retrying")
	}

	s.log.Error().Int64("token_id", tokenID).Msg("webhook: all retry attempts exhausted")
}
