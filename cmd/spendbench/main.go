// spendbench is a small command-line harness for the coin-spend execution
// and mempool admission engine. It has no networking, no RPC framing, and
// no wallet: it reads JSON-encoded bundles and tips from disk, drives
// internal/engine directly, and prints the resulting decision.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spendbench/spendbench/config"
	"github.com/spendbench/spendbench/internal/engine"
	"github.com/spendbench/spendbench/internal/log"
	"github.com/spendbench/spendbench/internal/mempool"
	"github.com/spendbench/spendbench/internal/sigbatch"
	"github.com/spendbench/spendbench/internal/storage"
	"github.com/spendbench/spendbench/internal/unspent"
	"github.com/spendbench/spendbench/pkg/crypto"
	"github.com/spendbench/spendbench/pkg/types"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	// Scan global flags that appear before the subcommand.
	dataDir := config.DefaultDataDir()
	network := "mainnet"
	now := ""

	args := os.Args[1:]
	for len(args) > 0 {
		switch {
		case args[0] == "--datadir" && len(args) > 1:
			dataDir = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--datadir="):
			dataDir = args[0][len("--datadir="):]
			args = args[1:]
		case args[0] == "--network" && len(args) > 1:
			network = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--network="):
			network = args[0][len("--network="):]
			args = args[1:]
		case args[0] == "--now" && len(args) > 1:
			now = args[1]
			args = args[2:]
		case strings.HasPrefix(args[0], "--now="):
			now = args[0][len("--now="):]
			args = args[1:]
		default:
			goto dispatch
		}
	}

dispatch:
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	if err := log.Init("info", false, ""); err != nil {
		fatal("init logging: %v", err)
	}

	net := config.Mainnet
	if network == "testnet" {
		net = config.Testnet
	}
	cfg := &config.Config{Network: net, DataDir: dataDir}
	genesis := config.GenesisFor(net)

	eng, idx := openEngine(cfg, genesis)
	defer idx.Close()

	if now != "" {
		ms, err := strconv.ParseUint(now, 10, 64)
		if err != nil {
			fatal("invalid --now: %v", err)
		}
		eng.SetNow(ms)
	}

	cmd := args[0]
	cmdArgs := args[1:]

	switch cmd {
	case "admit":
		cmdAdmit(eng, cmdArgs)
	case "best-bundle":
		cmdBestBundle(eng, cmdArgs)
	case "tip":
		cmdTip(eng, idx, cmdArgs)
	case "rollback":
		cmdRollback(eng, cmdArgs)
	case "help", "--help", "-h":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		usage()
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: spendbench [global flags] <command> [flags]

Global flags:
  --datadir <path>   Data directory holding the unspent-coin store (default: %s)
  --network <net>    mainnet (default) or testnet
  --now <ms>         Wall-clock time (ms since epoch) for seconds assertions

Commands:
  admit <bundle.json>
                     Run a spend bundle through the full admission pipeline
                     and report accept/reject.
  best-bundle --tip <hash> --max-cost <n>
                     Print the highest fee-per-cost selection of admitted
                     bundles for a tip within a cost ceiling.
  tip <tip.json>     Advance (or add) a live chain tip: apply its confirmed
                     removals/additions to the unspent index, then
                     reconcile mempool pools against the new tip set.
  rollback <height>  Revert the unspent index to its state as of height.
`, config.DefaultDataDir())
}

func openEngine(cfg *config.Config, genesis *config.Genesis) (*engine.Engine, *unspent.Index) {
	db, err := storage.NewBadger(cfg.UnspentDir())
	if err != nil {
		fatal("open unspent store: %v", err)
	}
	idx := unspent.NewIndex(unspent.NewStore(db))
	eng := engine.New(genesis, idx, sigbatch.SchnorrBatchVerifier{}, cfg)
	return eng, idx
}

// ── admit ───────────────────────────────────────────────────────────────

func cmdAdmit(eng *engine.Engine, args []string) {
	if len(args) < 1 {
		fatal("Usage: spendbench admit <bundle.json>")
	}

	bundle := readBundle(args[0])
	accepted, err := eng.Admit(bundle)
	if err != nil {
		fmt.Printf("Rejected: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Admitted: %s\n", crypto.BundleID(bundle))
	fmt.Printf("  Cost: %d\n", accepted.Cost)
	fmt.Printf("  Fee:  %d\n", accepted.Fee)
}

// ── best-bundle ─────────────────────────────────────────────────────────

func cmdBestBundle(eng *engine.Engine, args []string) {
	fs := flag.NewFlagSet("best-bundle", flag.ExitOnError)
	tipHex := fs.String("tip", "", "Tip hash (32-byte hex)")
	maxCost := fs.Uint64("max-cost", 0, "Cost ceiling for the selection")
	fs.Parse(args)

	if *tipHex == "" || *maxCost == 0 {
		fatal("Usage: spendbench best-bundle --tip <hash> --max-cost <n>")
	}

	tip := parseHash(*tipHex)
	bundle, cost, fee := eng.BestBundle(tip, *maxCost)

	fmt.Printf("Selected %d spend(s)\n", len(bundle.Spends))
	fmt.Printf("  Cost: %d\n", cost)
	fmt.Printf("  Fee:  %d\n", fee)
	if len(bundle.Spends) > 0 {
		data, err := json.MarshalIndent(bundle, "", "  ")
		if err != nil {
			fatal("marshal bundle: %v", err)
		}
		fmt.Println(string(data))
	}
}

// ── tip ─────────────────────────────────────────────────────────────────

// tipFile is the on-disk shape of a tip transition: the confirming
// block's identity plus the coins it spent and created. AddedCoins carries
// full records (amount, puzzle hash, coinbase/timestamp) since those need
// to land in the durable unspent index; RemovedCoins only needs ids.
type tipFile struct {
	Hash         string             `json:"hash"`
	PrevHash     string             `json:"prev_hash"`
	Height       types.Height       `json:"height"`
	RemovedCoins []string           `json:"removed_coins"`
	AddedCoins   []types.CoinRecord `json:"added_coins"`
}

func cmdTip(eng *engine.Engine, idx *unspent.Index, args []string) {
	if len(args) < 1 {
		fatal("Usage: spendbench tip <tip.json>")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		fatal("read tip file: %v", err)
	}
	var tf tipFile
	if err := json.Unmarshal(data, &tf); err != nil {
		fatal("parse tip JSON: %v", err)
	}

	t := mempool.Tip{
		Hash:     parseHash(tf.Hash),
		PrevHash: parseHash(tf.PrevHash),
		Height:   tf.Height,
	}

	for _, r := range tf.AddedCoins {
		r := r
		if r.ConfirmedHeight == 0 {
			r.ConfirmedHeight = tf.Height
		}
		if err := idx.Add(r); err != nil {
			fatal("add confirmed coin %s: %v", crypto.CoinID(r.Coin), err)
		}
		t.Additions = append(t.Additions, crypto.CoinID(r.Coin))
	}
	for _, hexID := range tf.RemovedCoins {
		id := parseHash(hexID)
		if err := idx.MarkSpent(id, tf.Height); err != nil {
			fatal("mark spent %s: %v", id, err)
		}
		t.Removals = append(t.Removals, id)
	}

	eng.NewTips([]mempool.Tip{t})
	fmt.Printf("Tip %s at height %d: %d coin(s) added, %d spent\n",
		t.Hash, t.Height, len(t.Additions), len(t.Removals))
}

// ── rollback ────────────────────────────────────────────────────────────

func cmdRollback(eng *engine.Engine, args []string) {
	if len(args) < 1 {
		fatal("Usage: spendbench rollback <height>")
	}
	height, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		fatal("invalid height: %v", err)
	}
	if err := eng.Rollback(height); err != nil {
		fatal("rollback: %v", err)
	}
	fmt.Printf("Rolled back to height %d\n", height)
}

// ── helpers ─────────────────────────────────────────────────────────────

func readBundle(path string) types.SpendBundle {
	data, err := os.ReadFile(path)
	if err != nil {
		fatal("read bundle file: %v", err)
	}
	var bundle types.SpendBundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		fatal("parse bundle JSON: %v", err)
	}
	return bundle
}

func parseHash(s string) types.Hash {
	var h types.Hash
	if err := json.Unmarshal([]byte(strconv.Quote(s)), &h); err != nil {
		fatal("invalid hash %q: %v", s, err)
	}
	return h
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}
