// TuneIsland - Song Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tuneisland

package algorithms

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/tomtom215/tuneisland/internal/models"
)

// Affinity bonuses added on top of the normalized play count.
const (
	LikeBonus       = 0.3
	RatingBonusMax  = 0.2
	MaxAffinity     = 1.0
	ratingNormalize = models.MaxRating
)

// AffinityMatrix is a dense users x items matrix of implicit preference
// strengths in [0, 1]. Row u belongs to UserIDs[u], column i to ItemIDs[i].
type AffinityMatrix struct {
	data *mat.Dense

	UserIDs []int64
	ItemIDs []int64

	// UserIndex and ItemIndex invert UserIDs and ItemIDs.
	UserIndex map[int64]int
	ItemIndex map[int64]int
}

// Dims returns the number of users and items.
func (m *AffinityMatrix) Dims() (users, items int) {
	return len(m.UserIDs), len(m.ItemIDs)
}

// At returns the affinity of user row u for item column i.
func (m *AffinityMatrix) At(u, i int) float64 {
	if m.data == nil {
		return 0
	}
	return m.data.At(u, i)
}

// Row returns a copy of user row u.
func (m *AffinityMatrix) Row(u int) []float64 {
	_, cols := m.Dims()
	row := make([]float64, cols)
	if m.data != nil {
		mat.Row(row, u, m.data)
	}
	return row
}

// PositiveCells lists every (user, item) index pair with a strictly positive
// affinity, in row-major order.
func (m *AffinityMatrix) PositiveCells() []Cell {
	if m.data == nil {
		return nil
	}
	rows, cols := m.Dims()
	var cells []Cell
	for u := 0; u < rows; u++ {
		row := m.data.RawRowView(u)
		for i := 0; i < cols; i++ {
			if row[i] > 0 {
				cells = append(cells, Cell{User: u, Item: i, Value: row[i]})
			}
		}
	}
	return cells
}

// Cell is one observed training example.
type Cell struct {
	User  int
	Item  int
	Value float64
}

// MatrixBuilder converts user signals into an AffinityMatrix.
type MatrixBuilder struct{}

// NewMatrixBuilder creates a MatrixBuilder.
func NewMatrixBuilder() *MatrixBuilder {
	return &MatrixBuilder{}
}

// Build produces a len(users) x len(items) affinity matrix.
//
// For a user with a non-empty history, every catalog item gets
//
//	min(plays/maxPlays + likeBonus + ratingBonus, 1)
//
// where likeBonus is 0.3 for liked items and ratingBonus is rating/5*0.2 for
// items the user rated. Users without history produce an all-zero row. History
// entries for songs outside the catalog are ignored.
func (b *MatrixBuilder) Build(users []UserSignals, items []*models.Song) *AffinityMatrix {
	m := &AffinityMatrix{
		UserIDs:   make([]int64, len(users)),
		ItemIDs:   make([]int64, len(items)),
		UserIndex: make(map[int64]int, len(users)),
		ItemIndex: make(map[int64]int, len(items)),
	}
	for u, sig := range users {
		m.UserIDs[u] = sig.UserID
		m.UserIndex[sig.UserID] = u
	}
	for i, song := range items {
		m.ItemIDs[i] = song.ID
		m.ItemIndex[song.ID] = i
	}

	// mat.NewDense panics on zero dimensions.
	if len(users) == 0 || len(items) == 0 {
		return m
	}
	m.data = mat.NewDense(len(users), len(items), nil)

	for u, sig := range users {
		if len(sig.History) == 0 {
			continue
		}
		b.fillRow(m.data.RawRowView(u), sig, items, m.ItemIndex)
	}
	return m
}

// fillRow writes one user's affinities into row.
func (b *MatrixBuilder) fillRow(row []float64, sig UserSignals, items []*models.Song, itemIndex map[int64]int) {
	plays := make(map[int]int, len(sig.History))
	for _, songID := range sig.History {
		if i, ok := itemIndex[songID]; ok {
			plays[i]++
		}
	}

	maxPlays := 1
	for _, c := range plays {
		maxPlays = max(maxPlays, c)
	}

	for i, song := range items {
		base := float64(plays[i]) / float64(maxPlays)

		var likeBonus float64
		if _, ok := sig.Liked[song.ID]; ok {
			likeBonus = LikeBonus
		}

		var ratingBonus float64
		if r, ok := userRating(sig, song); ok {
			ratingBonus = (r / ratingNormalize) * RatingBonusMax
		}

		row[i] = math.Min(base+likeBonus+ratingBonus, MaxAffinity)
	}
}

// userRating prefers the rating recorded on the profile and falls back to the
// song's aggregate rating when only the song knows the user rated it.
func userRating(sig UserSignals, song *models.Song) (float64, bool) {
	if r, ok := sig.Ratings[song.ID]; ok {
		return clampRating(r), true
	}
	if song.HasRating() && song.RatedByUser(sig.UserID) {
		return clampRating(song.Rating), true
	}
	return 0, false
}

func clampRating(r float64) float64 {
	return math.Max(0, math.Min(r, ratingNormalize))
}
