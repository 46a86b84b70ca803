// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

// Package model defines the persisted entities of Stratus: users, virtual
// machines, alerts, AI recommendations, system metrics, settings, remote
// hosts and the audit trail. JSON field names match the REST API.
package model // import "github.com/toeirei/stratus/internal/model"
