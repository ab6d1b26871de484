// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the main promptlab TUI: a session sidebar, a
// conversation viewport showing scored experiment responses, and a
// prompt composer. The model is a standard bubbletea Model; all network
// work happens in commands so the UI never blocks, including while the
// client is offline or waiting out a rate limit.
package chat
