// TuneIsland - Song Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tuneisland

package generative

import (
	"errors"
	"strconv"
	"strings"
)

// maxIDDigits is the longest digit run accepted as an id.
const maxIDDigits = 8

// ErrUnparsable is returned when a response contains no usable ids.
var ErrUnparsable = errors.New("no song ids in response")

// ParseIDs extracts an ordered, de-duplicated list of positive ids from free
// text.
//
// The primary pass splits on half-width and full-width commas and reads one
// number per token. It is abandoned entirely if any token holds more than one
// digit run, since the text is then narrative rather than a list. The
// fallback pass collects every digit run in the text.
func ParseIDs(text string) ([]int64, error) {
	ids, ok := parseList(text)
	if !ok || len(ids) == 0 {
		ids = scanDigits(text)
	}
	if len(ids) == 0 {
		return nil, ErrUnparsable
	}
	return dedupe(ids), nil
}

func parseList(text string) ([]int64, bool) {
	tokens := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == '，'
	})

	var ids []int64
	for _, tok := range tokens {
		runs := digitRuns(tok)
		switch len(runs) {
		case 0:
			continue
		case 1:
			if id, ok := toID(runs[0]); ok {
				ids = append(ids, id)
			}
		default:
			return nil, false
		}
	}
	return ids, true
}

func scanDigits(text string) []int64 {
	var ids []int64
	for _, run := range digitRuns(text) {
		if id, ok := toID(run); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

// digitRuns returns the maximal runs of ASCII digits in s.
func digitRuns(s string) []string {
	var (
		runs  []string
		start = -1
	)
	for i := 0; i < len(s); i++ {
		isDigit := s[i] >= '0' && s[i] <= '9'
		switch {
		case isDigit && start < 0:
			start = i
		case !isDigit && start >= 0:
			runs = append(runs, s[start:i])
			start = -1
		}
	}
	if start >= 0 {
		runs = append(runs, s[start:])
	}
	return runs
}

func toID(run string) (int64, bool) {
	if len(run) > maxIDDigits {
		return 0, false
	}
	id, err := strconv.ParseInt(run, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
