// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the resilient HTTP client for the PromptLab backend.
//
// The client wraps net/http with three behaviors the UI depends on:
//
//   - Offline queueing: requests issued while the network is unreachable are
//     parked on a pending queue and replayed, in submission order, when
//     connectivity returns. The caller blocks until its request settles.
//   - Rate-limit retry: an HTTP 429 response schedules exactly one deferred
//     retry after the server-specified cooldown, surfacing a single
//     notification for the whole cooldown window.
//   - Typed errors: every other non-2xx status maps to an *Error and
//     propagates to the caller unchanged, with no retry.
//
// # Usage
//
//	monitor := offline.NewMonitor()
//	client := api.NewClient("https://api.example.com", monitor).
//	    WithTimeout(30 * time.Second).
//	    WithNotifier(toasts)
//	defer client.Close()
//
//	resp, err := client.Get(ctx, "/sessions", nil)
package api
