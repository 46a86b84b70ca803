// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

package core

import (
	"context"
	"fmt"
	"strings"

	"github.com/toeirei/stratus/internal/model"
)

// Alert types and severities.
const (
	AlertWarning = "warning"
	AlertError   = "error"
	AlertInfo    = "info"

	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// ListAlerts returns all alerts in creation order.
func (s *Service) ListAlerts(ctx context.Context) ([]model.Alert, error) {
	return s.store.ListAlerts(ctx)
}

// ListUnreadAlerts returns the alerts not yet marked read.
func (s *Service) ListUnreadAlerts(ctx context.Context) ([]model.Alert, error) {
	return s.store.ListUnreadAlerts(ctx)
}

// MarkAlertRead returns db.ErrNotFound for an unknown id.
func (s *Service) MarkAlertRead(ctx context.Context, id int) error {
	return s.store.MarkAlertRead(ctx, id)
}

// CreateAlert validates the type and severity before storing a.
func (s *Service) CreateAlert(ctx context.Context, a model.Alert) (model.Alert, error) {
	var c fieldChecker
	switch a.Type {
	case AlertWarning, AlertError, AlertInfo:
	default:
		c.add("type", fmt.Sprintf("Invalid enum value. Expected 'warning' | 'error' | 'info', received '%s'", a.Type))
	}
	switch a.Severity {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
	default:
		c.add("severity", fmt.Sprintf("Invalid enum value. Expected 'low' | 'medium' | 'high' | 'critical', received '%s'", a.Severity))
	}
	if strings.TrimSpace(a.Title) == "" {
		c.add("title", "Required")
	}
	if len(c.errs) > 0 {
		return model.Alert{}, &ValidationError{Message: "Invalid alert data", Errors: c.errs}
	}
	return s.store.CreateAlert(ctx, a)
}
