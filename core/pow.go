package core

import (
	"context"
	"crypto/sha256"
	"strings"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/sirupsen/logrus"
)

// mineCheckInterval is how often (in nonce iterations) a mining loop checks
// its cancellation flag (spec §5: "K ≈ 10^4").
const mineCheckInterval = 10_000

// PoWMiner searches nonces until a block's hash meets a leading-zero
// difficulty target (spec §4.5).
type PoWMiner struct {
	Difficulty  int
	MaxAttempts uint64
	logger      *logrus.Logger
}

// NewPoWMiner constructs a miner configured with difficulty D and a maximum
// nonce search bound M (spec §4.5).
func NewPoWMiner(difficulty int, maxAttempts uint64) *PoWMiner {
	return &PoWMiner{Difficulty: difficulty, MaxAttempts: maxAttempts, logger: logrus.StandardLogger()}
}

type powPreimage struct {
	BlockData    []byte
	PreviousHash string
	Nonce        uint64
}

func (m *PoWMiner) hashAt(blockData []byte, previousHash Hash, nonce uint64) (Hash, error) {
	enc, err := rlp.EncodeToBytes(powPreimage{BlockData: blockData, PreviousHash: string(previousHash), Nonce: nonce})
	if err != nil {
		return "", WrapError(KindInvalidInput, err, "encode pow preimage")
	}
	sum := sha256.Sum256(enc)
	return hashBytesToHash(sum[:]), nil
}

// ValidateHash reports whether hash (hex, lowercase) satisfies the miner's
// difficulty target: D leading '0' characters (spec §4.5).
func (m *PoWMiner) ValidateHash(hash Hash) bool {
	return validateHashDifficulty(hash, m.Difficulty)
}

func validateHashDifficulty(hash Hash, difficulty int) bool {
	if difficulty <= 0 {
		return true
	}
	if len(hash) < difficulty {
		return false
	}
	return strings.Count(string(hash[:difficulty]), "0") == difficulty
}

// Mine searches nonces 0..MaxAttempts for one whose hash, as computed over
// (blockData, previousHash, nonce), satisfies the difficulty target (spec
// §4.5). It is cancellable: the stop flag is checked every
// mineCheckInterval iterations (spec §5).
func (m *PoWMiner) Mine(ctx context.Context, blockData []byte, previousHash Hash) (nonce uint64, hash Hash, err error) {
	for n := uint64(0); n < m.MaxAttempts; n++ {
		if n%mineCheckInterval == 0 {
			select {
			case <-ctx.Done():
				return 0, "", ctx.Err()
			default:
			}
		}
		h, err := m.hashAt(blockData, previousHash, n)
		if err != nil {
			return 0, "", err
		}
		if validateHashDifficulty(h, m.Difficulty) {
			return n, h, nil
		}
	}
	return 0, "", NewError(KindMiningLimitExceeded, "no nonce found within %d attempts at difficulty %d", m.MaxAttempts, m.Difficulty)
}

// AdjustDifficulty returns the next difficulty given a target inter-block
// time and an observed one (spec §4.5): +1 if observed < target/2, -1
// (floor 1) if observed > 2*target, unchanged otherwise.
func (m *PoWMiner) AdjustDifficulty(targetSeconds, observedSeconds float64) int {
	return adjustDifficulty(m.Difficulty, targetSeconds, observedSeconds)
}

func adjustDifficulty(current int, targetSeconds, observedSeconds float64) int {
	switch {
	case observedSeconds < targetSeconds/2:
		return current + 1
	case observedSeconds > 2*targetSeconds:
		if current <= 1 {
			return 1
		}
		return current - 1
	default:
		return current
	}
}

// RetargetWindow is the number of blocks between difficulty adjustments
// (spec §4.5: "every N blocks").
const RetargetWindow = 2016

// AverageInterBlockTime computes the average inter-block time of the last
// N-1 (timestamp) pairs in timestamps, used to drive AdjustDifficulty every
// RetargetWindow blocks (spec §4.5).
func AverageInterBlockTime(timestamps []int64) float64 {
	if len(timestamps) < 2 {
		return 0
	}
	var total int64
	for i := 1; i < len(timestamps); i++ {
		total += timestamps[i] - timestamps[i-1]
	}
	return float64(total) / float64(len(timestamps)-1)
}
