package core

import (
	"time"

	"github.com/spf13/viper"
)

// LedgerConfig is the top-level, file-and-environment-loadable
// configuration for a Vanta node's engine and subsystems (SPEC_FULL §1.1
// ambient config expansion; teacher precedent: the reference CLI's
// pervasive `viper.New()` + `AutomaticEnv()` + `Unmarshal` pattern, e.g.
// `cmd/cli/network.go` and `cmd/cli/storage.go`, generalized here to one
// struct covering every subsystem instead of one viper instance per
// command).
type LedgerConfig struct {
	Consensus string `mapstructure:"consensus"` // "pow" or "pos"

	PoW struct {
		Difficulty  int    `mapstructure:"difficulty"`
		MaxAttempts uint64 `mapstructure:"max_attempts"`
	} `mapstructure:"pow"`

	PoS struct {
		MinStake      uint64  `mapstructure:"min_stake"`
		MaxValidators int     `mapstructure:"max_validators"`
		BaseReward    uint64  `mapstructure:"base_reward"`
		SlashingRate  float64 `mapstructure:"slashing_rate"`
	} `mapstructure:"pos"`

	BlockReward  uint64 `mapstructure:"block_reward"`
	MaxSnapshots int    `mapstructure:"max_snapshots"`

	Sharding struct {
		Enabled            bool    `mapstructure:"enabled"`
		DefaultCapacity    int     `mapstructure:"default_capacity"`
		RebalanceThreshold float64 `mapstructure:"rebalance_threshold"`
	} `mapstructure:"sharding"`

	Bridge struct {
		MaxTransferAmount  uint64        `mapstructure:"max_transfer_amount"`
		DailyTransferLimit uint64        `mapstructure:"daily_transfer_limit"`
		MinConfirmations   int           `mapstructure:"min_confirmations"`
		ProveTimeout       time.Duration `mapstructure:"prove_timeout"`
	} `mapstructure:"bridge"`

	Rollup struct {
		ChallengeWindow uint64 `mapstructure:"challenge_window"`
	} `mapstructure:"rollup"`

	DataDir string `mapstructure:"data_dir"`
}

// DefaultLedgerConfig returns sane development defaults, used when no
// config file is supplied (spec §6: "data/blockchain_db/", "data/shards/").
func DefaultLedgerConfig() LedgerConfig {
	var cfg LedgerConfig
	cfg.Consensus = "pow"
	cfg.PoW.Difficulty = 3
	cfg.PoW.MaxAttempts = 5_000_000
	cfg.PoS.MinStake = 1_000
	cfg.PoS.MaxValidators = 100
	cfg.PoS.BaseReward = 50
	cfg.PoS.SlashingRate = 0.1
	cfg.BlockReward = 50
	cfg.MaxSnapshots = maxSnapshotsDefault
	cfg.Sharding.DefaultCapacity = 1000
	cfg.Sharding.RebalanceThreshold = rebalanceThresholdDefault
	cfg.Bridge.MaxTransferAmount = 100_000
	cfg.Bridge.DailyTransferLimit = 1_000_000
	cfg.Bridge.MinConfirmations = 6
	cfg.Bridge.ProveTimeout = 24 * time.Hour
	cfg.Rollup.ChallengeWindow = 100
	cfg.DataDir = "data"
	return cfg
}

// LoadLedgerConfig reads a config file at path through viper (YAML, TOML,
// and JSON all auto-detected from the extension, matching the teacher's own
// `viper.New()` per-command setup), falling back to DefaultLedgerConfig for
// any key the file doesn't set and allowing `VANTA_`-prefixed environment
// variables to override either (teacher precedent: `AutomaticEnv()` in
// `cmd/cli/network.go`).
func LoadLedgerConfig(path string) (LedgerConfig, error) {
	cfg := DefaultLedgerConfig()

	v := viper.New()
	setLedgerConfigDefaults(v, cfg)
	v.SetEnvPrefix("VANTA")
	v.AutomaticEnv()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return cfg, WrapError(KindStorageError, err, "read config %s", path)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, WrapError(KindInvalidInput, err, "parse config %s", path)
	}
	return cfg, nil
}

// setLedgerConfigDefaults seeds viper with defaults so that a config file
// setting only some keys still produces a fully populated LedgerConfig.
func setLedgerConfigDefaults(v *viper.Viper, defaults LedgerConfig) {
	v.SetDefault("consensus", defaults.Consensus)
	v.SetDefault("pow.difficulty", defaults.PoW.Difficulty)
	v.SetDefault("pow.max_attempts", defaults.PoW.MaxAttempts)
	v.SetDefault("pos.min_stake", defaults.PoS.MinStake)
	v.SetDefault("pos.max_validators", defaults.PoS.MaxValidators)
	v.SetDefault("pos.base_reward", defaults.PoS.BaseReward)
	v.SetDefault("pos.slashing_rate", defaults.PoS.SlashingRate)
	v.SetDefault("block_reward", defaults.BlockReward)
	v.SetDefault("max_snapshots", defaults.MaxSnapshots)
	v.SetDefault("sharding.enabled", defaults.Sharding.Enabled)
	v.SetDefault("sharding.default_capacity", defaults.Sharding.DefaultCapacity)
	v.SetDefault("sharding.rebalance_threshold", defaults.Sharding.RebalanceThreshold)
	v.SetDefault("bridge.max_transfer_amount", defaults.Bridge.MaxTransferAmount)
	v.SetDefault("bridge.daily_transfer_limit", defaults.Bridge.DailyTransferLimit)
	v.SetDefault("bridge.min_confirmations", defaults.Bridge.MinConfirmations)
	v.SetDefault("bridge.prove_timeout", defaults.Bridge.ProveTimeout)
	v.SetDefault("rollup.challenge_window", defaults.Rollup.ChallengeWindow)
	v.SetDefault("data_dir", defaults.DataDir)
}

// ToEngineConfig converts the PoW/PoS portions of a LedgerConfig into an
// EngineConfig.
func (c LedgerConfig) ToEngineConfig() EngineConfig {
	consensus := ConsensusPoW
	if c.Consensus == "pos" {
		consensus = ConsensusPoS
	}
	return EngineConfig{
		Consensus:   consensus,
		Difficulty:  c.PoW.Difficulty,
		MaxAttempts: c.PoW.MaxAttempts,
		PoS: PoSConfig{
			MinStake:      c.PoS.MinStake,
			MaxValidators: c.PoS.MaxValidators,
			BaseReward:    c.PoS.BaseReward,
			SlashingRate:  c.PoS.SlashingRate,
		},
		BlockReward:  c.BlockReward,
		MaxSnapshots: c.MaxSnapshots,
	}
}
