// TuneIsland - Song Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/tuneisland

/*
Package logging provides centralized zerolog-based logging for TuneIsland.

A global logger is configured once at startup and handed to components, which
derive their own child loggers:

	logging.Init(logging.Config{Level: "info", Format: "json", Timestamp: true})
	engine, err := recommend.NewEngine(cfg, logging.WithComponent("engine"))

Request handlers log through Ctx, which attaches the request ID placed in the
context by the API middleware:

	logging.Ctx(r.Context()).Warn().Err(err).Msg("lookup failed")

Libraries that only accept *slog.Logger, such as the suture event hook, use
NewSlogLogger so their output lands in the same JSON stream.

# Configuration

Environment Variables (read by internal/config):
  - LOG_LEVEL: trace, debug, info, warn, error (default: info)
  - LOG_FORMAT: json, console (default: json)
  - LOG_CALLER: include caller info (default: false)

Always terminate log chains with .Msg() or .Send():

	logging.Info().Str("key", "value").Msg("message")  // Correct
	logging.Info().Str("key", "value")                 // WRONG - log not emitted
*/
package logging
