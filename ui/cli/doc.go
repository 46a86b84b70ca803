// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.
//
// Package cli implements the stratus command line using Cobra. Commands load
// configuration, open the store and delegate to internal/core; the serve
// command starts the HTTP API and the optional metrics monitor.
package cli
