package eth

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/leo4coinb-dot/cryptobackend/internal/models"
	"github.com/shopspring/decimal"
)

var transferEventSignature = crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)"))

// ChainReader is the subset of the Ethereum RPC used to read ERC-20 transfers.
// *ethclient.Client satisfies it.
type ChainReader interface {
	BlockNumber(ctx context.Context) (uint64, error)
	FilterLogs(ctx context.Context, q ethereum.FilterQuery) ([]gethtypes.Log, error)
}

// Dial opens an RPC client for endpoint.
func Dial(ctx context.Context, endpoint string) (*ethclient.Client, error) {
	trimmed := strings.TrimSpace(endpoint)
	if trimmed == "" {
		return nil, fmt.Errorf("rpc endpoint required")
	}
	return ethclient.DialContext(ctx, trimmed)
}

// TransferScanner reads Transfer events of one token contract.
type TransferScanner struct {
	client ChainReader
	token  common.Address
}

func NewTransferScanner(client ChainReader, tokenContract string) (*TransferScanner, error) {
	if !common.IsHexAddress(tokenContract) {
		return nil, fmt.Errorf("invalid token contract address %q", tokenContract)
	}
	return &TransferScanner{client: client, token: common.HexToAddress(tokenContract)}, nil
}

func (s *TransferScanner) CurrentBlock(ctx context.Context) (uint64, error) {
	return s.client.BlockNumber(ctx)
}

// Transfers returns token transfers from -> to mined in [fromBlock, latest].
func (s *TransferScanner) Transfers(ctx context.Context, from, to string, fromBlock uint64) ([]models.TransferEvent, error) {
	if !common.IsHexAddress(from) {
		return nil, fmt.Errorf("invalid from address %q", from)
	}
	if !common.IsHexAddress(to) {
		return nil, fmt.Errorf("invalid to address %q", to)
	}
	fromAddr := common.HexToAddress(from)
	toAddr := common.HexToAddress(to)

	logs, err := s.client.FilterLogs(ctx, ethereum.FilterQuery{
		FromBlock: new(big.Int).SetUint64(fromBlock),
		ToBlock:   nil, // latest
		Addresses: []common.Address{s.token},
		Topics: [][]common.Hash{
			{transferEventSignature},
			{common.BytesToHash(fromAddr.Bytes())},
			{common.BytesToHash(toAddr.Bytes())},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("filter transfer logs: %w", err)
	}

	events := make([]models.TransferEvent, 0, len(logs))
	for _, lg := range logs {
		if lg.Removed || lg.Address != s.token {
			continue
		}
		if len(lg.Topics) < 3 || lg.Topics[0] != transferEventSignature {
			continue
		}
		events = append(events, models.TransferEvent{
			From:        NormalizeAddress(common.BytesToAddress(lg.Topics[1].Bytes()).Hex()),
			To:          NormalizeAddress(common.BytesToAddress(lg.Topics[2].Bytes()).Hex()),
			Value:       new(big.Int).SetBytes(lg.Data),
			TxHash:      lg.TxHash.Hex(),
			BlockNumber: lg.BlockNumber,
		})
	}
	return events, nil
}

// WindowStart is the first block of a scan covering the last window blocks.
func WindowStart(head, window uint64) uint64 {
	if head < window {
		return 0
	}
	return head - window
}

// ScaleAmount converts a raw token integer into display units.
func ScaleAmount(raw *big.Int, decimals int32) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(raw, -decimals)
}
