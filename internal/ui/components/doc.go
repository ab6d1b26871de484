// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides reusable UI components for the promptlab
// TUI: the session sidebar, conversation entry rendering, the example
// prompt grid, and toast notifications.
package components
