package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"wine-lot-exchange/internal/core/domain"
	"wine-lot-exchange/internal/core/ports"
	"wine-lot-exchange/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// capturingHTTPClient records delivered requests.
type capturingHTTPClient struct {
	mu       sync.Mutex
	requests []*http.Request
	bodies   []string
	status   int
	done     chan struct{}
}

func newCapturingHTTPClient(status int) *capturingHTTPClient {
	return &capturingHTTPClient{status: status, done: make(chan struct{}, 8)}
}

func (c *capturingHTTPClient) Do(req *http.Request) (*http.Response, error) {
	body, _ := io.ReadAll(req.Body)
	c.mu.Lock()
	c.requests = append(c.requests, req)
	c.bodies = append(c.bodies, string(body))
	c.mu.Unlock()
	c.done <- struct{}{}
	return &http.Response{
		StatusCode: c.status,
		Body:       io.NopCloser(strings.NewReader("")),
	}, nil
}

func TestWebhookService_EnqueueTradeEvent_Delivers(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	accountRepo := mocks.NewMockAccountRepository(ctrl)
	sigSvc := mocks.NewMockSignatureService(ctrl)
	client := newCapturingHTTPClient(http.StatusOK)
	svc := NewWebhookService(accountRepo, sigSvc, "signing-secret", client, zerolog.Nop())

	ctx := context.Background()
	seller := uuid.New()
	buyer := uuid.New()
	url := "https://seller.example.com/hooks"

	accountRepo.EXPECT().GetByID(ctx, seller).Return(&domain.Account{
		ID: seller, WebhookURL: &url, Status: domain.AccountStatusActive,
	}, nil)
	sigSvc.EXPECT().Sign("signing-secret", gomock.Any()).Return("sig-hex")

	err := svc.EnqueueTradeEvent(ctx, ports.TradeEvent{
		EventType: "SALE_COMPLETED",
		TokenID:   7,
		Recipient: seller,
		Price:     5000,
		Payment:   5000,
		Buyer:     &buyer,
	})
	require.NoError(t, err)

	select {
	case <-client.done:
	case <-time.After(2 * time.Second):
		t.Fatal("webhook was not delivered")
	}

	client.mu.Lock()
	defer client.mu.Unlock()
	require.Len(t, client.requests, 1)
	assert.Equal(t, url, client.requests[0].URL.String())
	assert.Equal(t, "application/json", client.requests[0].Header.Get("Content-Type"))

	var payload WebhookPayload
	require.NoError(t, json.Unmarshal([]byte(client.bodies[0]), &payload))
	assert.Equal(t, "SALE_COMPLETED", payload.EventType)
	assert.Equal(t, int64(7), payload.Data.TokenID)
	assert.Equal(t, buyer.String(), payload.Data.Buyer)
	assert.Equal(t, "sig-hex", payload.Signature)
}

func TestWebhookService_EnqueueTradeEvent_NoURLSkips(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	accountRepo := mocks.NewMockAccountRepository(ctrl)
	sigSvc := mocks.NewMockSignatureService(ctrl)
	client := newCapturingHTTPClient(http.StatusOK)
	svc := NewWebhookService(accountRepo, sigSvc, "signing-secret", client, zerolog.Nop())

	ctx := context.Background()
	recipient := uuid.New()

	accountRepo.EXPECT().GetByID(ctx, recipient).Return(&domain.Account{ID: recipient}, nil)

	err := svc.EnqueueTradeEvent(ctx, ports.TradeEvent{
		EventType: "LOT_REDEEMED", TokenID: 3, Recipient: recipient,
	})
	require.NoError(t, err)

	select {
	case <-client.done:
		t.Fatal("no delivery expected without a webhook URL")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWebhookService_EnqueueTradeEvent_RepoError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	accountRepo := mocks.NewMockAccountRepository(ctrl)
	sigSvc := mocks.NewMockSignatureService(ctrl)
	client := newCapturingHTTPClient(http.StatusOK)
	svc := NewWebhookService(accountRepo, sigSvc, "signing-secret", client, zerolog.Nop())

	ctx := context.Background()
	recipient := uuid.New()

	accountRepo.EXPECT().GetByID(ctx, recipient).Return(nil, errors.New("db down"))

	err := svc.EnqueueTradeEvent(ctx, ports.TradeEvent{
		EventType: "LOT_REDEEMED", TokenID: 3, Recipient: recipient,
	})
	assert.Error(t, err)
}
