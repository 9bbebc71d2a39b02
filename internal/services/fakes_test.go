package services

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"github.com/leo4coinb-dot/cryptobackend/internal/config"
	"github.com/leo4coinb-dot/cryptobackend/internal/eth"
	"github.com/leo4coinb-dot/cryptobackend/internal/events"
	"github.com/leo4coinb-dot/cryptobackend/internal/models"
	"github.com/leo4coinb-dot/cryptobackend/internal/repositories"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

const receiver = "0x00000000000000000000000000000000000000aa"

func testConfig() *config.Config {
	return &config.Config{
		ReceiveWallet:     receiver,
		TokenContract:     "0xdac17f958d2ee523a2206206994597c13d831ec7",
		TokenDecimals:     6,
		MinAmount:         decimal.NewFromInt(10),
		PaymentScanBlocks: 5000,
		ChainQueryTimeout: time.Second,
		PremiumDuration:   30 * 24 * time.Hour,
		JWTSecret:         "test-secret",
		JWTExpiration:     7 * 24 * time.Hour,
		NonceTTL:          15 * time.Minute,
		NonceSingleUse:    true,
	}
}

type wallet struct {
	key     *ecdsa.PrivateKey
	address string
}

func newWallet(t *testing.T) wallet {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return wallet{key: key, address: eth.NormalizeAddress(crypto.PubkeyToAddress(key.PublicKey).Hex())}
}

func (w wallet) sign(t *testing.T, message string) string {
	t.Helper()
	sig, err := crypto.Sign(accounts.TextHash([]byte(message)), w.key)
	require.NoError(t, err)
	sig[64] += 27
	return hexutil.Encode(sig)
}

type memNonces struct {
	mu       sync.Mutex
	rows     []*models.Nonce
	consumed int
	err      error
}

func (m *memNonces) Create(_ context.Context, n *models.Nonce) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	n.ID = uuid.New()
	n.CreatedAt = time.Now()
	cp := *n
	m.rows = append(m.rows, &cp)
	return nil
}

func (m *memNonces) GetLatest(_ context.Context, address string) (*models.Nonce, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for i := len(m.rows) - 1; i >= 0; i-- {
		if m.rows[i].Address == address {
			cp := *m.rows[i]
			return &cp, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *memNonces) Consume(_ context.Context, n *models.Nonce) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, row := range m.rows {
		if row.ID == n.ID {
			if row.UsedAt != nil {
				return false, nil
			}
			now := time.Now()
			row.UsedAt = &now
			m.consumed++
			return true, nil
		}
	}
	return false, nil
}

type memUsers struct {
	mu   sync.Mutex
	rows map[string]*models.User
	err  error
}

func newMemUsers() *memUsers {
	return &memUsers{rows: map[string]*models.User{}}
}

func (m *memUsers) EnsureExists(_ context.Context, address string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.rows[address]; !ok {
		m.rows[address] = &models.User{Address: address, CreatedAt: time.Now()}
	}
	return nil
}

func (m *memUsers) GetByAddress(_ context.Context, address string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.rows[address]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) SetPremium(_ context.Context, address string, until time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	u, ok := m.rows[address]
	if !ok {
		u = &models.User{Address: address, CreatedAt: time.Now()}
		m.rows[address] = u
	}
	u.IsPremium = true
	u.PremiumUntil = &until
	return nil
}

func (m *memUsers) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rows)
}

type memAudit struct {
	mu      sync.Mutex
	entries []models.AuditLog
}

func (m *memAudit) Log(_ context.Context, e models.AuditLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, e)
	return nil
}

type fakeChain struct {
	head      uint64
	events    []models.TransferEvent
	err       error
	block     bool
	fromBlock uint64
}

func (f *fakeChain) CurrentBlock(ctx context.Context) (uint64, error) {
	if f.block {
		<-ctx.Done()
		return 0, ctx.Err()
	}
	if f.err != nil {
		return 0, f.err
	}
	return f.head, nil
}

func (f *fakeChain) Transfers(_ context.Context, from, to string, fromBlock uint64) ([]models.TransferEvent, error) {
	f.fromBlock = fromBlock
	var out []models.TransferEvent
	for _, ev := range f.events {
		if ev.From == from && ev.To == to {
			out = append(out, ev)
		}
	}
	return out, nil
}

func transfer(from string, raw int64, tx string) models.TransferEvent {
	return models.TransferEvent{
		From:        from,
		To:          receiver,
		Value:       big.NewInt(raw),
		TxHash:      tx,
		BlockNumber: 19_999_000,
	}
}

type fakePublisher struct {
	published []events.Event
	err       error
}

func (f *fakePublisher) Publish(_ context.Context, _ string, e events.Event) error {
	f.published = append(f.published, e)
	return f.err
}

type fakeRecorder struct {
	mu       sync.Mutex
	issued   int
	logins   map[string]int
	payments map[string]int
}

func newFakeRecorder() *fakeRecorder {
	return &fakeRecorder{logins: map[string]int{}, payments: map[string]int{}}
}

func (f *fakeRecorder) RecordChallengeIssued() {
	f.mu.Lock()
	f.issued++
	f.mu.Unlock()
}

func (f *fakeRecorder) RecordLogin(result string) {
	f.mu.Lock()
	f.logins[result]++
	f.mu.Unlock()
}

func (f *fakeRecorder) RecordPaymentCheck(result string) {
	f.mu.Lock()
	f.payments[result]++
	f.mu.Unlock()
}

func (f *fakeRecorder) ObserveChainQuery(time.Duration) {}

var errBoom = errors.New("boom")
