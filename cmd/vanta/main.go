// Command vanta is the reference node/CLI for the Vanta ledger: it opens
// (or creates) a LevelDB-backed chain, wires up the PoW/PoS engine, and
// exposes wallet, mining, and subsystem demo operations over Cobra
// (teacher precedent: cmd/cli's per-subsystem command files and
// PersistentPreRunE middleware, generalized to this module's single
// binary).
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/vantachain/vanta/core"
	"github.com/vantachain/vanta/internal/storage"
	"github.com/vantachain/vanta/internal/walletstore"
)

var (
	logger  = logrus.StandardLogger()
	cfg     core.LedgerConfig
	engine  *core.Engine
	backend storage.Store
	wallets *walletstore.Store

	channels *core.ChannelEngine
	bridge   *core.Bridge
	shards   *core.ShardCoordinator
	rollups  *core.RollupBatcher

	flagConfigPath string
	flagDataDir    string
)

func main() {
	root := &cobra.Command{
		Use:               "vanta",
		Short:             "Vanta ledger node and CLI",
		PersistentPreRunE: initMiddleware,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if backend != nil {
				return persistChain()
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&flagConfigPath, "config", "", "path to a ledger config file (YAML, TOML, or JSON)")
	root.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "override the config's data directory")

	root.AddCommand(generateKeypairCmd())
	root.AddCommand(createWalletCmd())
	root.AddCommand(createWalletWithMnemonicCmd())
	root.AddCommand(recoverWalletCmd())
	root.AddCommand(listWalletsCmd())
	root.AddCommand(mineCmd())
	root.AddCommand(addTransactionCmd())
	root.AddCommand(balancesCmd())
	root.AddCommand(validateCmd())
	root.AddCommand(statsCmd())
	root.AddCommand(stakeCmd())
	root.AddCommand(unstakeCmd())
	root.AddCommand(validatorsCmd())
	root.AddCommand(openChannelCmd())
	root.AddCommand(updateChannelCmd())
	root.AddCommand(closeChannelCmd())
	root.AddCommand(crossChainTransferCmd())
	root.AddCommand(demoCmd())

	if err := root.Execute(); err != nil {
		logger.WithError(err).Error("command failed")
		os.Exit(1)
	}
}

func initMiddleware(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "help" || cmd.Name() == "completion" {
		return nil
	}
	var err error
	if flagConfigPath != "" {
		cfg, err = core.LoadLedgerConfig(flagConfigPath)
	} else {
		cfg = core.DefaultLedgerConfig()
	}
	if err != nil {
		return err
	}
	if flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}

	backend, err = storage.OpenLevelDBStore(cfg.DataDir+"/blockchain_db", logger)
	if err != nil {
		return err
	}
	wallets = walletstore.New(backend)

	engine, err = loadOrInitEngine()
	if err != nil {
		return err
	}

	channels = core.NewChannelEngine()
	bridge = core.NewBridge(core.BridgeConfig{
		MaxTransferAmount:  cfg.Bridge.MaxTransferAmount,
		DailyTransferLimit: cfg.Bridge.DailyTransferLimit,
		MinConfirmations:   cfg.Bridge.MinConfirmations,
		ProveTimeout:       cfg.Bridge.ProveTimeout,
		Validators:         make(map[string]core.TrustedValidator),
	})
	shards = core.NewShardCoordinator(cfg.Sharding.DefaultCapacity)
	rollups = core.NewRollupBatcher(core.RollupConfig{ChallengeWindow: cfg.Rollup.ChallengeWindow})
	return nil
}

func loadOrInitEngine() (*core.Engine, error) {
	blocks, err := backend.LoadBlockchain()
	if err != nil {
		e, err := core.NewEngine(cfg.ToEngineConfig())
		if err != nil {
			return nil, err
		}
		logger.Info("vanta: initialized fresh genesis ledger")
		return e, nil
	}
	e, err := core.NewEngine(cfg.ToEngineConfig())
	if err != nil {
		return nil, err
	}
	for _, b := range blocks[1:] { // genesis (index 0) is already applied by NewEngine
		blk := b
		if err := e.AddBlock(&blk); err != nil {
			return nil, fmt.Errorf("replay block %d: %w", blk.Index, err)
		}
	}
	logger.WithField("height", e.Height()).Info("vanta: replayed persisted ledger")
	return e, nil
}

func persistChain() error {
	chain := engine.Chain()
	flat := make([]core.Block, len(chain))
	for i, b := range chain {
		flat[i] = *b
	}
	return backend.SaveBlockchain(flat)
}
