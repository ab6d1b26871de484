// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for sessions and experiments.
//
// This package defines the core domain types used throughout the application
// for representing conversation sessions, prompt experiments, and the scored
// response variants the backend generates for each experiment.
//
// # Key Types
//
//   - Session: A conversation thread holding zero or more experiments
//   - Experiment: One prompt submission with its generated response variants
//   - Variant: A single generated candidate answer with quality scores
//   - Entry: One element of the displayed conversation (user text or experiment)
//
// # Usage
//
// Convert a fetched experiment list into displayable conversation entries:
//
//	entries := model.EntriesFromExperiments(experiments)
//	for _, e := range entries {
//	    fmt.Println(e.Preview(50))
//	}
package model
