// TuneIsland - Song Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tuneisland

package generative

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/tomtom215/tuneisland/internal/models"
)

// PromptLimits bounds each prompt section.
type PromptLimits struct {
	History int `koanf:"history"`
	Liked   int `koanf:"liked"`
	Rated   int `koanf:"rated"`
	Catalog int `koanf:"catalog"`
}

// DefaultPromptLimits returns the standard section sizes.
func DefaultPromptLimits() PromptLimits {
	return PromptLimits{History: 10, Liked: 10, Rated: 10, Catalog: 50}
}

// PromptInput is everything BuildPrompt needs about one user.
type PromptInput struct {
	User    *models.UserProfile
	Liked   map[int64]struct{}
	Catalog []*models.Song
	N       int
}

// BuildPrompt renders the recommendation prompt. Sections appear in a fixed
// order: recent plays, liked songs, rated songs, catalog, instruction. Empty
// sections are omitted, except the catalog.
func BuildPrompt(in PromptInput, limits PromptLimits) string {
	byID := make(map[int64]*models.Song, len(in.Catalog))
	for _, s := range in.Catalog {
		byID[s.ID] = s
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Based on the listener profile and song catalog below, recommend %d songs.\n", in.N)

	if lines := historyLines(in.User, byID, limits.History); len(lines) > 0 {
		writeSection(&b, "Recently played:", lines)
	}
	if lines := likedLines(in.Liked, byID, limits.Liked); len(lines) > 0 {
		writeSection(&b, "Liked songs:", lines)
	}
	if lines := ratedLines(in.User, in.Catalog, limits.Rated); len(lines) > 0 {
		writeSection(&b, "Rated songs:", lines)
	}
	writeSection(&b, "Catalog:", catalogLines(in.Catalog, limits.Catalog))

	fmt.Fprintf(&b, "\nChoose the %d most suitable songs from the catalog for this listener, "+
		"considering their history, likes and ratings. "+
		"Reply with the song ids only, most recommended first, separated by commas. "+
		"Example: 15,2,4,1\n", in.N)

	return b.String()
}

func writeSection(b *strings.Builder, title string, lines []string) {
	b.WriteString("\n")
	b.WriteString(title)
	b.WriteString("\n")
	for _, l := range lines {
		b.WriteString("- ")
		b.WriteString(l)
		b.WriteString("\n")
	}
}

func describe(s *models.Song) string {
	return fmt.Sprintf("%s (%s)", s.Name, s.Singer)
}

func historyLines(user *models.UserProfile, byID map[int64]*models.Song, limit int) []string {
	var lines []string
	for _, id := range user.History {
		if len(lines) == limit {
			break
		}
		if s, ok := byID[id]; ok {
			lines = append(lines, describe(s))
		}
	}
	return lines
}

func likedLines(liked map[int64]struct{}, byID map[int64]*models.Song, limit int) []string {
	ids := make([]int64, 0, len(liked))
	for id := range liked {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var lines []string
	for _, id := range ids {
		if len(lines) == limit {
			break
		}
		if s, ok := byID[id]; ok {
			lines = append(lines, describe(s))
		}
	}
	return lines
}

// ratedLines prefers the user's own rating and falls back to the song mean
// for songs that only record the user in RatedBy.
func ratedLines(user *models.UserProfile, catalog []*models.Song, limit int) []string {
	var lines []string
	for _, s := range catalog {
		if len(lines) == limit {
			break
		}
		r, ok := user.RatingFor(s.ID)
		if !ok {
			if !s.RatedByUser(user.ID) {
				continue
			}
			r = s.Rating
		}
		lines = append(lines, fmt.Sprintf("%s - rating: %s", describe(s), formatFloat(r)))
	}
	return lines
}

func catalogLines(catalog []*models.Song, limit int) []string {
	lines := make([]string, 0, min(limit, len(catalog)))
	for _, s := range catalog {
		if len(lines) == limit {
			break
		}
		lines = append(lines, fmt.Sprintf("[%d] %s tags: %s plays: %d rating: %s",
			s.ID, describe(s), tagString(s.Tags), s.PlayCount, formatFloat(s.Rating)))
	}
	return lines
}

func tagString(tags []models.SongTag) string {
	if len(tags) == 0 {
		return "none"
	}
	parts := make([]string, len(tags))
	for i, t := range tags {
		parts[i] = string(t)
	}
	return strings.Join(parts, ", ")
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 1, 64)
}
