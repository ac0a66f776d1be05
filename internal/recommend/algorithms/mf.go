// TuneIsland - Song Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tuneisland

package algorithms

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// FactorConfig contains configuration for the matrix factorization trainer.
type FactorConfig struct {
	// Factors is the latent dimension K.
	Factors int `koanf:"factors"`

	// LearningRate is the SGD step size.
	LearningRate float64 `koanf:"learning_rate"`

	// Regularization is the L2 penalty applied to both factor vectors.
	Regularization float64 `koanf:"regularization"`

	// MaxEpochs bounds the number of full passes over the observed cells.
	MaxEpochs int `koanf:"max_epochs"`

	// Patience is the number of consecutive epochs without RMSE improvement
	// after which training stops.
	Patience int `koanf:"patience"`

	// InitScale bounds the uniform random initialization: [0, InitScale).
	InitScale float64 `koanf:"init_scale"`

	// Seed for the random number generator. Zero draws a fresh seed per run.
	Seed int64 `koanf:"seed"`

	// LogEvery emits a progress line every N epochs.
	LogEvery int `koanf:"log_every"`
}

// DefaultFactorConfig returns the production training parameters.
func DefaultFactorConfig() FactorConfig {
	return FactorConfig{
		Factors:        50,
		LearningRate:   0.005,
		Regularization: 0.015,
		MaxEpochs:      1000,
		Patience:       10,
		InitScale:      0.1,
		LogEvery:       10,
	}
}

// EpochStats is reported to the OnEpoch hook after each epoch.
type EpochStats struct {
	Epoch    int
	RMSE     float64
	BestRMSE float64
	Improved bool
}

// FactorTrainer learns user and item factor matrices by stochastic gradient
// descent over the positive cells of an AffinityMatrix, keeping the snapshot
// with the lowest training RMSE.
type FactorTrainer struct {
	cfg    FactorConfig
	logger zerolog.Logger

	// OnEpoch, if set, is called synchronously after every epoch.
	OnEpoch func(EpochStats)
}

// NewFactorTrainer creates a trainer, replacing zero config values with
// defaults. Seed is left as given.
func NewFactorTrainer(cfg FactorConfig, logger zerolog.Logger) *FactorTrainer {
	def := DefaultFactorConfig()
	if cfg.Factors <= 0 {
		cfg.Factors = def.Factors
	}
	if cfg.LearningRate <= 0 {
		cfg.LearningRate = def.LearningRate
	}
	if cfg.Regularization < 0 {
		cfg.Regularization = def.Regularization
	}
	if cfg.MaxEpochs <= 0 {
		cfg.MaxEpochs = def.MaxEpochs
	}
	if cfg.Patience <= 0 {
		cfg.Patience = def.Patience
	}
	if cfg.InitScale <= 0 {
		cfg.InitScale = def.InitScale
	}
	if cfg.LogEvery <= 0 {
		cfg.LogEvery = def.LogEvery
	}

	return &FactorTrainer{
		cfg:    cfg,
		logger: logger.With().Str("algorithm", "sgd_mf").Logger(),
	}
}

// Config returns the effective configuration.
func (t *FactorTrainer) Config() FactorConfig {
	return t.cfg
}

// Train fits a FactorModel to the positive cells of m.
//
// Every epoch starts from a copy of the previous epoch's factors; the
// returned model is the snapshot with the lowest RMSE, which is never mutated
// after it is recorded. A matrix without positive cells yields a zero model.
func (t *FactorTrainer) Train(ctx context.Context, m *AffinityMatrix) (*FactorModel, error) {
	users, items := m.Dims()
	k := t.cfg.Factors

	cells := m.PositiveCells()
	if len(cells) == 0 {
		t.logger.Debug().Int("users", users).Int("items", items).Msg("no positive cells, returning zero model")
		return newZeroModel(users, items, k), nil
	}

	seed := t.cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	//nolint:gosec // G404: math/rand is sufficient for factor initialization
	rng := rand.New(rand.NewSource(seed))

	current := &FactorModel{
		userFactors: randomDense(rng, users, k, t.cfg.InitScale),
		itemFactors: randomDense(rng, items, k, t.cfg.InitScale),
		rmse:        math.Inf(1),
	}
	best := current
	stale := 0

	for epoch := 1; epoch <= t.cfg.MaxEpochs; epoch++ {
		if ContextCancelled(ctx) {
			return nil, ctx.Err()
		}

		next := current.copyFactors()
		rng.Shuffle(len(cells), func(a, b int) {
			cells[a], cells[b] = cells[b], cells[a]
		})
		t.sgdPass(next, cells)

		next.rmse = next.trainingRMSE(cells)
		next.epoch = epoch
		current = next

		improved := next.rmse < best.rmse
		if improved {
			best = next
			stale = 0
		} else {
			stale++
		}

		if t.OnEpoch != nil {
			t.OnEpoch(EpochStats{Epoch: epoch, RMSE: next.rmse, BestRMSE: best.rmse, Improved: improved})
		}
		if epoch%t.cfg.LogEvery == 0 {
			t.logger.Debug().
				Int("epoch", epoch).
				Float64("rmse", next.rmse).
				Float64("best_rmse", best.rmse).
				Msg("training progress")
		}

		if stale >= t.cfg.Patience {
			t.logger.Debug().Int("epoch", epoch).Int("best_epoch", best.epoch).Msg("early stopping")
			break
		}
	}

	t.logger.Info().
		Int("users", users).
		Int("items", items).
		Int("observations", len(cells)).
		Int("best_epoch", best.epoch).
		Float64("rmse", best.rmse).
		Msg("factorization complete")

	return best, nil
}

// sgdPass applies one gradient step per cell to model in place. Each update
// reads the pre-update values of both vectors.
func (t *FactorTrainer) sgdPass(model *FactorModel, cells []Cell) {
	k := t.cfg.Factors
	lr := t.cfg.LearningRate
	reg := t.cfg.Regularization

	pOld := make([]float64, k)
	for _, c := range cells {
		p := model.userFactors.RawRowView(c.User)
		q := model.itemFactors.RawRowView(c.Item)

		e := c.Value - floats.Dot(p, q)
		copy(pOld, p)

		for f := 0; f < k; f++ {
			p[f] += lr * (e*q[f] - reg*p[f])
			q[f] += lr * (e*pOld[f] - reg*q[f])
		}
	}
}

// FactorModel is an immutable snapshot of trained user and item factors.
type FactorModel struct {
	userFactors *mat.Dense // nil when there are no users
	itemFactors *mat.Dense // nil when there are no items
	rmse        float64
	epoch       int
}

// Predict returns the dot product of user row u and item row i.
func (fm *FactorModel) Predict(u, i int) (float64, error) {
	if fm.userFactors == nil || fm.itemFactors == nil {
		return 0, ErrFactorIndex
	}
	users, _ := fm.userFactors.Dims()
	items, _ := fm.itemFactors.Dims()
	if u < 0 || u >= users || i < 0 || i >= items {
		return 0, ErrFactorIndex
	}
	return floats.Dot(fm.userFactors.RawRowView(u), fm.itemFactors.RawRowView(i)), nil
}

// RMSE returns the training error of this snapshot. A zero model reports 0.
func (fm *FactorModel) RMSE() float64 {
	if math.IsInf(fm.rmse, 1) {
		return 0
	}
	return fm.rmse
}

// Epoch returns the epoch this snapshot was taken after (0 for the initial
// or zero model).
func (fm *FactorModel) Epoch() int {
	return fm.epoch
}

// UserFactors returns a copy of the latent vector for user row u.
func (fm *FactorModel) UserFactors(u int) []float64 {
	return rowCopy(fm.userFactors, u)
}

// ItemFactors returns a copy of the latent vector for item row i.
func (fm *FactorModel) ItemFactors(i int) []float64 {
	return rowCopy(fm.itemFactors, i)
}

func (fm *FactorModel) copyFactors() *FactorModel {
	return &FactorModel{
		userFactors: mat.DenseCopyOf(fm.userFactors),
		itemFactors: mat.DenseCopyOf(fm.itemFactors),
	}
}

func (fm *FactorModel) trainingRMSE(cells []Cell) float64 {
	var sum float64
	for _, c := range cells {
		e := c.Value - floats.Dot(fm.userFactors.RawRowView(c.User), fm.itemFactors.RawRowView(c.Item))
		sum += e * e
	}
	return math.Sqrt(sum / float64(len(cells)))
}

func newZeroModel(users, items, k int) *FactorModel {
	fm := &FactorModel{}
	if users > 0 {
		fm.userFactors = mat.NewDense(users, k, nil)
	}
	if items > 0 {
		fm.itemFactors = mat.NewDense(items, k, nil)
	}
	return fm
}

func randomDense(rng *rand.Rand, rows, cols int, scale float64) *mat.Dense {
	data := make([]float64, rows*cols)
	for i := range data {
		data[i] = rng.Float64() * scale
	}
	return mat.NewDense(rows, cols, data)
}

func rowCopy(m *mat.Dense, r int) []float64 {
	if m == nil {
		return nil
	}
	rows, _ := m.Dims()
	if r < 0 || r >= rows {
		return nil
	}
	out := make([]float64, len(m.RawRowView(r)))
	copy(out, m.RawRowView(r))
	return out
}
