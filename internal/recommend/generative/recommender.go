// TuneIsland - Song Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tuneisland

// Package generative recommends songs by asking a text-generation service to
// pick ids from a rendered catalog.
//
// Every failure, including a response without usable ids, is reported as
// recommend.ErrExternalService so that the engine substitutes its rating
// fallback.
package generative

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/tuneisland/internal/metrics"
	"github.com/tomtom215/tuneisland/internal/models"
	"github.com/tomtom215/tuneisland/internal/recommend"
)

// Name is the strategy name reported in logs and metrics.
const Name = "generative"

// TextGenerator completes a prompt. It is implemented by llm.Client.
type TextGenerator interface {
	Complete(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error)
}

// Config controls the generation request.
type Config struct {
	MaxTokens   int
	Temperature float64
	Limits      PromptLimits
}

// Recommender is a recommend.Strategy backed by a TextGenerator.
type Recommender struct {
	gen    TextGenerator
	cfg    Config
	logger zerolog.Logger
}

var _ recommend.Strategy = (*Recommender)(nil)

// New creates a Recommender. Zero limits and a non-positive MaxTokens are
// replaced with defaults.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(gen TextGenerator, cfg Config, logger zerolog.Logger) *Recommender {
	def := DefaultPromptLimits()
	if cfg.Limits.History <= 0 {
		cfg.Limits.History = def.History
	}
	if cfg.Limits.Liked <= 0 {
		cfg.Limits.Liked = def.Liked
	}
	if cfg.Limits.Rated <= 0 {
		cfg.Limits.Rated = def.Rated
	}
	if cfg.Limits.Catalog <= 0 {
		cfg.Limits.Catalog = def.Catalog
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 100
	}

	return &Recommender{
		gen:    gen,
		cfg:    cfg,
		logger: logger.With().Str("strategy", Name).Logger(),
	}
}

// Name returns the strategy name.
func (r *Recommender) Name() string {
	return Name
}

// Recommend asks the generator for up to req.N catalog songs.
func (r *Recommender) Recommend(ctx context.Context, req recommend.Request) ([]*models.Song, error) {
	var liked map[int64]struct{}
	if req.Context != nil {
		liked = req.Context.Liked
	}

	prompt := BuildPrompt(PromptInput{
		User:    req.User,
		Liked:   liked,
		Catalog: req.Candidates,
		N:       req.N,
	}, r.cfg.Limits)

	text, err := r.gen.Complete(ctx, prompt, r.cfg.MaxTokens, r.cfg.Temperature)
	if err != nil {
		if errors.Is(err, recommend.ErrExternalService) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", recommend.ErrExternalService, err)
	}

	ids, err := ParseIDs(text)
	if err != nil {
		metrics.RecordLLMParseFailure("no_ids")
		r.logger.Debug().Int64("user_id", req.User.ID).Int("response_len", len(text)).Msg("response contained no ids")
		return nil, fmt.Errorf("%w: %w", recommend.ErrExternalService, err)
	}

	songs := resolve(ids, req.Candidates, req.N)
	if len(songs) == 0 {
		metrics.RecordLLMParseFailure("unknown_ids")
		return nil, fmt.Errorf("%w: %w", recommend.ErrExternalService, errNoKnownIDs)
	}
	return songs, nil
}

var errNoKnownIDs = errors.New("response ids match no catalog song")

// resolve maps ids to catalog songs in response order, dropping unknown ids.
func resolve(ids []int64, catalog []*models.Song, n int) []*models.Song {
	byID := make(map[int64]*models.Song, len(catalog))
	for _, s := range catalog {
		byID[s.ID] = s
	}

	out := make([]*models.Song, 0, min(n, len(ids)))
	for _, id := range ids {
		if len(out) == n {
			break
		}
		if s, ok := byID[id]; ok {
			out = append(out, s)
		}
	}
	return out
}
