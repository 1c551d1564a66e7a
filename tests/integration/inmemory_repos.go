package integration

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"wine-lot-exchange/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- In-Memory Account Repo ---

type inMemoryAccountRepo struct {
	mu       sync.RWMutex
	accounts map[uuid.UUID]*domain.Account
}

func newInMemoryAccountRepo() *inMemoryAccountRepo {
	return &inMemoryAccountRepo{accounts: make(map[uuid.UUID]*domain.Account)}
}

func (r *inMemoryAccountRepo) Create(ctx context.Context, a *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.accounts {
		if existing.Username == a.Username {
			return fmt.Errorf("username already exists")
		}
	}
	cp := *a
	r.accounts[a.ID] = &cp
	return nil
}

func (r *inMemoryAccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *inMemoryAccountRepo) GetByUsername(ctx context.Context, username string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.accounts {
		if a.Username == username {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

// --- In-Memory Wallet Repo ---

type inMemoryWalletRepo struct {
	mu      sync.RWMutex
	wallets map[uuid.UUID]*domain.Wallet
}

func newInMemoryWalletRepo() *inMemoryWalletRepo {
	return &inMemoryWalletRepo{wallets: make(map[uuid.UUID]*domain.Wallet)}
}

func (r *inMemoryWalletRepo) Create(ctx context.Context, w *domain.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *w
	r.wallets[w.ID] = &cp
	return nil
}

func (r *inMemoryWalletRepo) GetByAccountID(ctx context.Context, accountID uuid.UUID) (*domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, w := range r.wallets {
		if w.AccountID == accountID {
			cp := *w
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryWalletRepo) GetByAccountIDForUpdate(ctx context.Context, tx pgx.Tx, accountID uuid.UUID) (*domain.Wallet, error) {
	return r.GetByAccountID(ctx, accountID)
}

func (r *inMemoryWalletRepo) UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, encryptedBalance string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[walletID]
	if !ok {
		return fmt.Errorf("wallet not found")
	}
	w.EncryptedBalance = encryptedBalance
	w.UpdatedAt = time.Now()
	return nil
}

// --- In-Memory Wine Repo ---

type inMemoryWineRepo struct {
	mu     sync.RWMutex
	nextID int64
	lots   map[int64]*domain.WineLot
}

func newInMemoryWineRepo() *inMemoryWineRepo {
	return &inMemoryWineRepo{nextID: 1, lots: make(map[int64]*domain.WineLot)}
}

func (r *inMemoryWineRepo) Create(ctx context.Context, tx pgx.Tx, lot *domain.WineLot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	lot.ID = r.nextID
	r.nextID++ // ids advance even if the caller's tx later rolls back
	cp := *lot
	r.lots[lot.ID] = &cp
	return nil
}

func (r *inMemoryWineRepo) GetByID(ctx context.Context, id int64) (*domain.WineLot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	lot, ok := r.lots[id]
	if !ok {
		return nil, nil
	}
	cp := *lot
	return &cp, nil
}

func (r *inMemoryWineRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id int64) (*domain.WineLot, error) {
	return r.GetByID(ctx, id)
}

func (r *inMemoryWineRepo) ListActive(ctx context.Context) ([]domain.WineLot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.WineLot
	for _, lot := range r.lots {
		if !lot.Redeemed {
			out = append(out, *lot)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *inMemoryWineRepo) UpdateOwner(ctx context.Context, tx pgx.Tx, id int64, newOwner uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	lot, ok := r.lots[id]
	if !ok {
		return fmt.Errorf("wine lot not found")
	}
	lot.Owner = newOwner
	lot.UpdatedAt = time.Now()
	return nil
}

func (r *inMemoryWineRepo) MarkRedeemed(ctx context.Context, tx pgx.Tx, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	lot, ok := r.lots[id]
	if !ok {
		return fmt.Errorf("wine lot not found")
	}
	lot.Redeemed = true
	lot.UpdatedAt = time.Now()
	return nil
}

func (r *inMemoryWineRepo) SetMaturityDate(ctx context.Context, id int64, maturityDate time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	lot, ok := r.lots[id]
	if !ok {
		return fmt.Errorf("wine lot not found")
	}
	lot.MaturityDate = maturityDate
	lot.UpdatedAt = time.Now()
	return nil
}

// --- In-Memory Listing Repo ---

type inMemoryListingRepo struct {
	mu       sync.RWMutex
	listings map[int64]*domain.Listing
}

func newInMemoryListingRepo() *inMemoryListingRepo {
	return &inMemoryListingRepo{listings: make(map[int64]*domain.Listing)}
}

func (r *inMemoryListingRepo) Upsert(ctx context.Context, tx pgx.Tx, l *domain.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *l
	r.listings[l.TokenID] = &cp
	return nil
}

func (r *inMemoryListingRepo) GetByTokenID(ctx context.Context, tokenID int64) (*domain.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.listings[tokenID]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (r *inMemoryListingRepo) GetByTokenIDForUpdate(ctx context.Context, tx pgx.Tx, tokenID int64) (*domain.Listing, error) {
	return r.GetByTokenID(ctx, tokenID)
}

func (r *inMemoryListingRepo) ListActive(ctx context.Context) ([]domain.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []domain.Listing
	for _, l := range r.listings {
		if l.Active {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TokenID < out[j].TokenID })
	return out, nil
}

func (r *inMemoryListingRepo) Deactivate(ctx context.Context, tx pgx.Tx, tokenID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.listings[tokenID]
	if !ok {
		return nil // no listing slot is a no-op
	}
	l.Active = false
	l.UpdatedAt = time.Now()
	return nil
}

// --- In-Memory Whitelist Repo ---

type inMemoryWhitelistRepo struct {
	mu      sync.RWMutex
	members map[uuid.UUID]bool
}

func newInMemoryWhitelistRepo() *inMemoryWhitelistRepo {
	return &inMemoryWhitelistRepo{members: make(map[uuid.UUID]bool)}
}

func (r *inMemoryWhitelistRepo) Add(ctx context.Context, accountID, addedBy uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[accountID] = true
	return nil
}

func (r *inMemoryWhitelistRepo) Remove(ctx context.Context, accountID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.members, accountID)
	return nil
}

func (r *inMemoryWhitelistRepo) Contains(ctx context.Context, accountID uuid.UUID) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.members[accountID], nil
}

// --- In-Memory Audit Repo ---

type inMemoryAuditRepo struct {
	mu      sync.Mutex
	entries []*domain.AuditLog
}

func newInMemoryAuditRepo() *inMemoryAuditRepo {
	return &inMemoryAuditRepo{}
}

func (r *inMemoryAuditRepo) Create(ctx context.Context, log *domain.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, log)
	return nil
}

// --- Serializing Transactor ---

// serialTransactor hands out transactions guarded by a single mutex so
// that in-flight transactions are mutually exclusive, mirroring the
// row-lock serialization the SQL repos get from SELECT ... FOR UPDATE.
type serialTransactor struct {
	mu sync.Mutex
}

func newSerialTransactor() *serialTransactor {
	return &serialTransactor{}
}

func (t *serialTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	t.mu.Lock()
	return &serialTx{release: &t.mu}, nil
}

// serialTx releases the transactor mutex on Commit or Rollback,
// whichever comes first. The deferred Rollback in service code after a
// successful Commit must not unlock twice.
type serialTx struct {
	release *sync.Mutex
	once    sync.Once
}

func (t *serialTx) done() {
	t.once.Do(t.release.Unlock)
}

func (t *serialTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *serialTx) Commit(ctx context.Context) error          { t.done(); return nil }
func (t *serialTx) Rollback(ctx context.Context) error        { t.done(); return nil }
func (t *serialTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *serialTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *serialTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *serialTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *serialTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *serialTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *serialTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *serialTx) Conn() *pgx.Conn { return nil }
