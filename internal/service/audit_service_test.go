package service

import (
	"context"
	"testing"
	"time"

	"wine-lot-exchange/internal/core/domain"
	"wine-lot-exchange/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.uber.org/mock/gomock"
)

func TestAuditService_Log_PersistsToRepo(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockAuditRepository(ctrl)
	svc := NewAuditService(mockRepo, zerolog.Nop())

	done := make(chan struct{})
	mockRepo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, log *domain.AuditLog) error {
			if log.Action != domain.AuditActionBuy {
				t.Errorf("expected BUY, got %s", log.Action)
			}
			close(done)
			return nil
		},
	)

	accountID := uuid.New()
	svc.Log(context.Background(), &domain.AuditLog{
		ID:           uuid.New(),
		AccountID:    &accountID,
		Action:       domain.AuditActionBuy,
		ResourceType: "listing",
		ResourceID:   "42",
		IPAddress:    "127.0.0.1",
		CreatedAt:    time.Now(),
	})

	select {
	case <-done:
		// OK
	case <-time.After(2 * time.Second):
		t.Fatal("audit log not persisted in time")
	}
}

func TestAuditService_Log_NilRepo(t *testing.T) {
	svc := NewAuditService(nil, zerolog.Nop())

	accountID := uuid.New()
	// Should not panic
	svc.Log(context.Background(), &domain.AuditLog{
		ID:        uuid.New(),
		AccountID: &accountID,
		Action:    domain.AuditActionLogin,
		IPAddress: "127.0.0.1",
		CreatedAt: time.Now(),
	})

	time.Sleep(50 * time.Millisecond)
}
