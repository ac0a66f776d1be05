// TuneIsland - Song Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tuneisland

/*
Package models defines the data structures shared across TuneIsland.

Key Components:

  - Song: catalog item with tags, play count and aggregate rating
  - UserProfile: play history, collected songlists, ratings and the
    persisted recommendation list produced by each training cycle
  - Songlist: ordered set of song ids, used to derive liked songs
  - APIResponse: standard HTTP response envelope

Ownership:

The store package owns persistence and all mutations of these values. The
recommend package only reads them, with one exception: the recommendation
list on UserProfile, which is replaced wholesale once per training cycle.
*/
package models
