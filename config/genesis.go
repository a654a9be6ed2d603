package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spendbench/spendbench/pkg/crypto"
	"github.com/spendbench/spendbench/pkg/types"
)

// =============================================================================
// Protocol Rules (immutable, defined in genesis)
// These MUST match across all participants or bundles that are valid on
// one node become invalid on another.
// =============================================================================

// Denomination constants. 1 coin = 10^12 base units; all amounts in this
// engine are base units.
const (
	Decimals  = 12
	Coin      = 1_000_000_000_000
	MilliCoin = 1_000_000_000
	MicroCoin = 1_000_000
)

// MaxCoinAmount bounds any single coin's amount (MAX_COIN_AMOUNT).
const MaxCoinAmount uint64 = 1 << 62

// CoinbaseFreezePeriod is the number of blocks after confirmation before a
// coinbase coin record becomes spendable (COINBASE_FREEZE_PERIOD).
const CoinbaseFreezePeriod types.Height = 200

// MaxBlockCost is the per-bundle cost ceiling (MAX_BLOCK_COST).
const MaxBlockCost uint64 = 11_000_000_000

// ClvmCostRatio is the integer multiplier converting bytes and condition
// counts into the same cost unit as runner cost (CLVM_COST_RATIO).
const ClvmCostRatio uint64 = 1

// TxPerSecond, BlockTimeTarget and MempoolBlockBuffer are the mempool
// sizing parameters. The cost capacity below (MempoolCapacity) is
// MaxBlockCost * MempoolBlockBuffer; TxPerSecond and BlockTimeTarget do
// not enter that product.
const (
	TxPerSecond        uint64 = 50
	BlockTimeTarget    uint64 = 3  // seconds
	MempoolBlockBuffer uint64 = 10 // blocks of headroom the mempool holds beyond one block
)

// MempoolCapacity is the total cost budget a single tip's mempool may
// hold (Σ item.cost ≤ capacity), derived from the block cost budget and
// the buffer of blocks' worth of transactions the mempool should absorb
// between blocks.
const MempoolCapacity uint64 = MaxBlockCost * MempoolBlockBuffer

// PotentialCacheSize bounds the FIFO potential-tx cache (POTENTIAL_CACHE_SIZE).
const PotentialCacheSize int = 1000

// OldMempoolWindow bounds how many past heights' evicted items are kept
// for replay against the next tip (OLD_MEMPOOL_WINDOW).
const OldMempoolWindow int = 3

// Genesis holds the protocol rules every participant must agree on. This
// is immutable after launch; changing it is a hard fork.
type Genesis struct {
	ChainID   string `json:"chain_id"`
	ChainName string `json:"chain_name"`
	Timestamp uint64 `json:"timestamp"`

	MaxCoinAmount        uint64         `json:"max_coin_amount"`
	CoinbaseFreezePeriod types.Height   `json:"coinbase_freeze_period"`
	MaxBlockCost         uint64         `json:"max_block_cost"`
	ClvmCostRatio        uint64         `json:"clvm_cost_ratio"`
	TxPerSecond          uint64         `json:"tx_per_second"`
	BlockTimeTarget      uint64         `json:"block_time_target"`
	MempoolBlockBuffer   uint64         `json:"mempool_block_buffer"`
	PotentialCacheSize   int            `json:"potential_cache_size"`
	OldMempoolWindow     int            `json:"old_mempool_window"`
}

// MempoolCapacity derives this genesis's mempool cost budget.
func (g *Genesis) MempoolCapacity() uint64 {
	return g.MaxBlockCost * g.MempoolBlockBuffer
}

// MainnetGenesis returns the mainnet protocol parameters.
func MainnetGenesis() *Genesis {
	return &Genesis{
		ChainID:              "spendbench-mainnet-1",
		ChainName:            "Spendbench Mainnet",
		Timestamp:            1770734103,
		MaxCoinAmount:        MaxCoinAmount,
		CoinbaseFreezePeriod: CoinbaseFreezePeriod,
		MaxBlockCost:         MaxBlockCost,
		ClvmCostRatio:        ClvmCostRatio,
		TxPerSecond:          TxPerSecond,
		BlockTimeTarget:      BlockTimeTarget,
		MempoolBlockBuffer:   MempoolBlockBuffer,
		PotentialCacheSize:   PotentialCacheSize,
		OldMempoolWindow:     OldMempoolWindow,
	}
}

// TestnetGenesis returns relaxed protocol parameters for testing: a much
// smaller mempool capacity and cache so tests can exercise eviction
// without constructing thousands of bundles.
func TestnetGenesis() *Genesis {
	g := MainnetGenesis()
	g.ChainID = "spendbench-testnet-1"
	g.ChainName = "Spendbench Testnet"
	g.MaxBlockCost = 1_000_000
	g.MempoolBlockBuffer = 3
	g.PotentialCacheSize = 50
	g.OldMempoolWindow = 2
	return g
}

// GenesisFor returns the genesis parameters for the given network.
func GenesisFor(network NetworkType) *Genesis {
	if network == Testnet {
		return TestnetGenesis()
	}
	return MainnetGenesis()
}

// LoadGenesis loads protocol parameters from a file.
func LoadGenesis(path string) (*Genesis, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading genesis file: %w", err)
	}
	var g Genesis
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("parsing genesis file: %w", err)
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("invalid genesis: %w", err)
	}
	return &g, nil
}

// Save writes the protocol parameters to a file.
func (g *Genesis) Save(path string) error {
	data, err := json.MarshalIndent(g, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding genesis: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing genesis file: %w", err)
	}
	return nil
}

// Validate checks that the protocol parameters are self-consistent.
func (g *Genesis) Validate() error {
	if g.ChainID == "" {
		return fmt.Errorf("chain_id is required")
	}
	if g.MaxBlockCost == 0 {
		return fmt.Errorf("max_block_cost must be positive")
	}
	if g.ClvmCostRatio == 0 {
		return fmt.Errorf("clvm_cost_ratio must be positive")
	}
	if g.MempoolBlockBuffer == 0 {
		return fmt.Errorf("mempool_block_buffer must be positive")
	}
	if g.MaxCoinAmount == 0 {
		return fmt.Errorf("max_coin_amount must be positive")
	}
	return nil
}

// Hash returns a BLAKE3 hash of the genesis parameters, used to detect
// genesis mismatches between participants.
func (g *Genesis) Hash() (types.Hash, error) {
	data, err := json.Marshal(g)
	if err != nil {
		return types.Hash{}, err
	}
	return crypto.Hash(data), nil
}
