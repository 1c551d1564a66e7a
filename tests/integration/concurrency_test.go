package integration

import (
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConcurrentBuys_ExactlyOneWinner fires several funded traders at
// the same listing simultaneously. Exactly one purchase must settle;
// every other attempt observes the retired listing and leaves its
// wallet untouched.
func TestConcurrentBuys_ExactlyOneWinner(t *testing.T) {
	app := newTestApp(t)

	producerID, producerToken := app.registerAndLogin(t, "chateau_race", "PRODUCER")
	app.whitelist(t, producerID)
	app.topup(t, producerToken, 50000)

	tokenID := app.mint(t, producerToken, 50000, testMinMintFee, "2030-01-01T00:00:00Z")

	status, resp := app.do(t, http.MethodPost, "/api/v1/listings", producerToken, map[string]interface{}{
		"token_id": tokenID,
		"price":    60000,
	})
	require.Equal(t, http.StatusCreated, status, "list failed: %v", resp)

	const contenders = 4

	type trader struct {
		id    uuid.UUID
		token string
	}
	traders := make([]trader, contenders)
	for i := range traders {
		id, token := app.registerAndLogin(t, fmt.Sprintf("race_trader_%d", i), "TRADER")
		app.whitelist(t, id)
		app.topup(t, token, 100000)
		traders[i] = trader{id: id, token: token}
	}

	var wins, losses int64
	winners := make([]uuid.UUID, 0, 1)
	var mu sync.Mutex

	var wg sync.WaitGroup
	for _, tr := range traders {
		wg.Add(1)
		go func(tr trader) {
			defer wg.Done()
			status, resp := app.do(t, http.MethodPost, fmt.Sprintf("/api/v1/listings/%d/buy", tokenID), tr.token, map[string]interface{}{
				"payment": 60000,
			})
			switch status {
			case http.StatusOK:
				atomic.AddInt64(&wins, 1)
				mu.Lock()
				winners = append(winners, tr.id)
				mu.Unlock()
			case http.StatusNotFound:
				assert.Equal(t, "MKT_001", errorCode(resp))
				atomic.AddInt64(&losses, 1)
			default:
				t.Errorf("unexpected status %d: %v", status, resp)
			}
		}(tr)
	}
	wg.Wait()

	require.Equal(t, int64(1), wins, "exactly one purchase must settle")
	require.Equal(t, int64(contenders-1), losses)

	// The winner owns the lot and is the only one who paid.
	status, resp = app.do(t, http.MethodGet, fmt.Sprintf("/api/v1/wines/%d", tokenID), producerToken, nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, winners, 1)
	assert.Equal(t, winners[0].String(), data(t, resp)["owner"])

	for _, tr := range traders {
		want := int64(100000)
		if tr.id == winners[0] {
			want = 40000
		}
		assert.Equal(t, want, app.balance(t, tr.token))
	}

	// Seller received one settlement on top of the post-mint balance.
	assert.Equal(t, int64(50000-testMinMintFee+60000), app.balance(t, producerToken))
}

// TestConcurrentTopups_NoLostUpdates hammers one wallet with parallel
// topups; the encrypted read-modify-write must not drop any of them.
func TestConcurrentTopups_NoLostUpdates(t *testing.T) {
	app := newTestApp(t)

	_, token := app.registerAndLogin(t, "topup_burst", "TRADER")

	const topups = 10
	var wg sync.WaitGroup
	for i := 0; i < topups; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status, resp := app.do(t, http.MethodPost, "/api/v1/wallets/topup", token, map[string]interface{}{
				"amount": 1000,
			})
			assert.Equal(t, http.StatusOK, status, "topup failed: %v", resp)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(topups*1000), app.balance(t, token))
}

// TestConcurrentMints_UniqueTokenIDs mints in parallel and verifies the
// registry never hands out the same token id twice.
func TestConcurrentMints_UniqueTokenIDs(t *testing.T) {
	app := newTestApp(t)

	producerID, producerToken := app.registerAndLogin(t, "chateau_seq", "PRODUCER")
	app.whitelist(t, producerID)

	const mints = 8
	app.topup(t, producerToken, mints*testMinMintFee)

	ids := make(chan int64, mints)
	var wg sync.WaitGroup
	for i := 0; i < mints; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			status, resp := app.do(t, http.MethodPost, "/api/v1/wines", producerToken, map[string]interface{}{
				"price":             50000,
				"vintage":           2022,
				"grape_variety":     "Riesling",
				"number_of_bottles": 60,
				"maturity_date":     "2030-01-01T00:00:00Z",
				"fee_paid":          testMinMintFee,
			})
			if assert.Equal(t, http.StatusCreated, status, "mint failed: %v", resp) {
				ids <- int64(data(t, resp)["token_id"].(float64))
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool)
	for id := range ids {
		assert.False(t, seen[id], "token id %d issued twice", id)
		seen[id] = true
	}
	assert.Len(t, seen, mints)

	assert.Equal(t, int64(0), app.balance(t, producerToken))
}
