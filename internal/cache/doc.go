// TuneIsland - Song Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tuneisland

/*
Package cache provides a thread-safe generic LRU cache with TTL expiration.

The recommendation engine keeps the hot song list here so that the
popularity fallback of the read path does not scan the catalog on every
request. The engine clears the cache after each training cycle.

# Usage Example

	hot := cache.NewLRU[string, []*models.Song](1, 10*time.Minute)
	hot.Add("hot", songs)

	if songs, ok := hot.Get("hot"); ok {
	    // serve cached list
	}

# Thread Safety

All methods are safe for concurrent use.
*/
package cache
