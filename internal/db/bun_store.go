// Copyright (c) 2026 Stratus Team
// Stratus - private cloud administration dashboard
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"errors"
	"fmt"
	"os/user"
	"strings"
	"time"

	"github.com/toeirei/stratus/internal/model"
	"github.com/uptrace/bun"
)

// defaultMetricsLimit is used when a caller asks for a non-positive number of
// metric rows.
const defaultMetricsLimit = 50

// BunStore implements Store for every supported engine on top of *bun.DB.
type BunStore struct {
	bun    *bun.DB
	dbType string
}

// BunDB exposes the underlying *bun.DB for tests and maintenance code.
func (s *BunStore) BunDB() *bun.DB { return s.bun }

// DBType returns "sqlite", "postgres" or "mysql".
func (s *BunStore) DBType() string { return s.dbType }

// Close closes the underlying connection pool.
func (s *BunStore) Close() error { return s.bun.Close() }

func now() time.Time { return time.Now().UTC() }

// --- Users ---

func (s *BunStore) CreateUser(ctx context.Context, u model.User) (model.User, error) {
	if u.Role == "" {
		u.Role = "user"
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now()
	}
	m := userToModel(u)
	m.ID = 0
	if _, err := s.bun.NewInsert().Model(&m).Exec(ctx); err != nil {
		return model.User{}, MapDBError(err)
	}
	return userModelToModel(m), nil
}

func (s *BunStore) GetUser(ctx context.Context, id int) (*model.User, error) {
	var m UserModel
	if err := s.bun.NewSelect().Model(&m).Where("id = ?", id).Limit(1).Scan(ctx); err != nil {
		return nil, MapDBError(err)
	}
	u := userModelToModel(m)
	return &u, nil
}

func (s *BunStore) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	var m UserModel
	if err := s.bun.NewSelect().Model(&m).Where("username = ?", username).Limit(1).Scan(ctx); err != nil {
		return nil, MapDBError(err)
	}
	u := userModelToModel(m)
	return &u, nil
}

// --- Virtual machines ---

func (s *BunStore) ListVirtualMachines(ctx context.Context) ([]model.VirtualMachine, error) {
	var ms []VirtualMachineModel
	if err := s.bun.NewSelect().Model(&ms).OrderExpr("id ASC").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]model.VirtualMachine, 0, len(ms))
	for _, m := range ms {
		out = append(out, vmModelToModel(m))
	}
	return out, nil
}

func (s *BunStore) GetVirtualMachine(ctx context.Context, id int) (*model.VirtualMachine, error) {
	var m VirtualMachineModel
	if err := s.bun.NewSelect().Model(&m).Where("id = ?", id).Limit(1).Scan(ctx); err != nil {
		return nil, MapDBError(err)
	}
	vm := vmModelToModel(m)
	return &vm, nil
}

func (s *BunStore) CreateVirtualMachine(ctx context.Context, vm model.VirtualMachine) (model.VirtualMachine, error) {
	if vm.Uptime == "" {
		vm.Uptime = "0d 0h"
	}
	if vm.CreatedAt.IsZero() {
		vm.CreatedAt = now()
	}
	m := vmToModel(vm)
	m.ID = 0
	if _, err := s.bun.NewInsert().Model(&m).Exec(ctx); err != nil {
		return model.VirtualMachine{}, MapDBError(err)
	}
	return vmModelToModel(m), nil
}

// UpdateVirtualMachine loads the row, applies patch and writes it back in one
// transaction.
func (s *BunStore) UpdateVirtualMachine(ctx context.Context, id int, patch model.VirtualMachinePatch) (*model.VirtualMachine, error) {
	var out model.VirtualMachine
	err := WithTx(ctx, s.bun, func(ctx context.Context, tx bun.Tx) error {
		var m VirtualMachineModel
		if err := tx.NewSelect().Model(&m).Where("id = ?", id).Limit(1).Scan(ctx); err != nil {
			return MapDBError(err)
		}
		vm := vmModelToModel(m)
		patch.Apply(&vm)
		vm.ID = id
		updated := vmToModel(vm)
		if _, err := tx.NewUpdate().Model(&updated).WherePK().Exec(ctx); err != nil {
			return MapDBError(err)
		}
		out = vm
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *BunStore) DeleteVirtualMachine(ctx context.Context, id int) error {
	res, err := s.bun.NewDelete().Model((*VirtualMachineModel)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return MapDBError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// --- Alerts ---

func (s *BunStore) listAlerts(ctx context.Context, unreadOnly bool) ([]model.Alert, error) {
	var ms []AlertModel
	q := s.bun.NewSelect().Model(&ms).OrderExpr("created_at ASC, id ASC")
	if unreadOnly {
		q = q.Where("is_read = ?", false)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]model.Alert, 0, len(ms))
	for _, m := range ms {
		out = append(out, alertModelToModel(m))
	}
	return out, nil
}

func (s *BunStore) ListAlerts(ctx context.Context) ([]model.Alert, error) {
	return s.listAlerts(ctx, false)
}

func (s *BunStore) ListUnreadAlerts(ctx context.Context) ([]model.Alert, error) {
	return s.listAlerts(ctx, true)
}

func (s *BunStore) CreateAlert(ctx context.Context, a model.Alert) (model.Alert, error) {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now()
	}
	m := alertToModel(a)
	m.ID = 0
	if _, err := s.bun.NewInsert().Model(&m).Exec(ctx); err != nil {
		return model.Alert{}, MapDBError(err)
	}
	return alertModelToModel(m), nil
}

// MarkAlertRead returns ErrNotFound when no alert has id.
func (s *BunStore) MarkAlertRead(ctx context.Context, id int) error {
	exists, err := s.bun.NewSelect().Model((*AlertModel)(nil)).Where("id = ?", id).Exists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	_, err = s.bun.NewUpdate().Model((*AlertModel)(nil)).Set("is_read = ?", true).Where("id = ?", id).Exec(ctx)
	return MapDBError(err)
}

// --- Recommendations ---

func (s *BunStore) listRecommendations(ctx context.Context, status string) ([]model.Recommendation, error) {
	var ms []RecommendationModel
	q := s.bun.NewSelect().Model(&ms).OrderExpr("created_at ASC, id ASC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]model.Recommendation, 0, len(ms))
	for _, m := range ms {
		out = append(out, recommendationModelToModel(m))
	}
	return out, nil
}

func (s *BunStore) ListRecommendations(ctx context.Context) ([]model.Recommendation, error) {
	return s.listRecommendations(ctx, "")
}

func (s *BunStore) ListPendingRecommendations(ctx context.Context) ([]model.Recommendation, error) {
	return s.listRecommendations(ctx, model.RecommendationPending)
}

func (s *BunStore) CreateRecommendation(ctx context.Context, r model.Recommendation) (model.Recommendation, error) {
	if r.Status == "" {
		r.Status = model.RecommendationPending
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now()
	}
	m := recommendationToModel(r)
	m.ID = 0
	if _, err := s.bun.NewInsert().Model(&m).Exec(ctx); err != nil {
		return model.Recommendation{}, MapDBError(err)
	}
	return recommendationModelToModel(m), nil
}

// UpdateRecommendationStatus returns ErrNotFound when no recommendation has id.
func (s *BunStore) UpdateRecommendationStatus(ctx context.Context, id int, status string) error {
	exists, err := s.bun.NewSelect().Model((*RecommendationModel)(nil)).Where("id = ?", id).Exists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		return ErrNotFound
	}
	_, err = s.bun.NewUpdate().Model((*RecommendationModel)(nil)).Set("status = ?", status).Where("id = ?", id).Exec(ctx)
	return MapDBError(err)
}

// --- System metrics ---

func (s *BunStore) LatestSystemMetrics(ctx context.Context) (*model.SystemMetrics, error) {
	var m SystemMetricsModel
	err := s.bun.NewSelect().Model(&m).OrderExpr("timestamp DESC, id DESC").Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(MapDBError(err), ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	out := metricsModelToModel(m)
	return &out, nil
}

func (s *BunStore) ListSystemMetrics(ctx context.Context, limit int) ([]model.SystemMetrics, error) {
	if limit <= 0 {
		limit = defaultMetricsLimit
	}
	var ms []SystemMetricsModel
	if err := s.bun.NewSelect().Model(&ms).OrderExpr("timestamp DESC, id DESC").Limit(limit).Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]model.SystemMetrics, 0, len(ms))
	for _, m := range ms {
		out = append(out, metricsModelToModel(m))
	}
	return out, nil
}

func (s *BunStore) CreateSystemMetrics(ctx context.Context, sm model.SystemMetrics) (model.SystemMetrics, error) {
	if sm.Timestamp.IsZero() {
		sm.Timestamp = now()
	}
	m := metricsToModel(sm)
	m.ID = 0
	if _, err := s.bun.NewInsert().Model(&m).Exec(ctx); err != nil {
		return model.SystemMetrics{}, MapDBError(err)
	}
	return metricsModelToModel(m), nil
}

// --- Settings ---

func (s *BunStore) GetSetting(ctx context.Context, key string) (string, bool, error) {
	var m SettingModel
	err := s.bun.NewSelect().Model(&m).Where("? = ?", bun.Ident("key"), key).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(MapDBError(err), ErrNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return m.Value, true, nil
}

// SetSetting updates the row for key or inserts it when missing.
func (s *BunStore) SetSetting(ctx context.Context, key, value string) error {
	return WithTx(ctx, s.bun, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().Model((*SettingModel)(nil)).Where("? = ?", bun.Ident("key"), key).Exists(ctx)
		if err != nil {
			return err
		}
		if exists {
			_, err = tx.NewUpdate().Model((*SettingModel)(nil)).
				Set("value = ?", value).
				Set("updated_at = ?", now()).
				Where("? = ?", bun.Ident("key"), key).
				Exec(ctx)
			return MapDBError(err)
		}
		m := SettingModel{Key: key, Value: value, UpdatedAt: now()}
		_, err = tx.NewInsert().Model(&m).Exec(ctx)
		return MapDBError(err)
	})
}

// --- Hosts ---

func (s *BunStore) ListHosts(ctx context.Context) ([]model.Host, error) {
	var ms []HostModel
	if err := s.bun.NewSelect().Model(&ms).OrderExpr("name ASC").Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]model.Host, 0, len(ms))
	for _, m := range ms {
		out = append(out, hostModelToModel(m))
	}
	return out, nil
}

func (s *BunStore) GetHostByName(ctx context.Context, name string) (*model.Host, error) {
	var m HostModel
	if err := s.bun.NewSelect().Model(&m).Where("name = ?", name).Limit(1).Scan(ctx); err != nil {
		return nil, MapDBError(err)
	}
	h := hostModelToModel(m)
	return &h, nil
}

func (s *BunStore) CreateHost(ctx context.Context, h model.Host) (model.Host, error) {
	if h.CreatedAt.IsZero() {
		h.CreatedAt = now()
	}
	m := HostModel{Name: h.Name, Address: h.Address, Username: h.Username, CreatedAt: h.CreatedAt}
	if _, err := s.bun.NewInsert().Model(&m).Exec(ctx); err != nil {
		return model.Host{}, MapDBError(err)
	}
	_ = s.LogAction(ctx, "ADD_HOST", fmt.Sprintf("host: %s (%s@%s)", h.Name, h.Username, h.Address))
	return hostModelToModel(m), nil
}

func (s *BunStore) DeleteHost(ctx context.Context, id int) error {
	res, err := s.bun.NewDelete().Model((*HostModel)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return MapDBError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	_ = s.LogAction(ctx, "DELETE_HOST", fmt.Sprintf("id: %d", id))
	return nil
}

// GetKnownHostKey returns "" without error when the host is not pinned.
func (s *BunStore) GetKnownHostKey(ctx context.Context, hostname string) (string, error) {
	var kh KnownHostModel
	err := s.bun.NewSelect().Model(&kh).Where("hostname = ?", hostname).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(MapDBError(err), ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return kh.Key, nil
}

// AddKnownHostKey pins key for hostname, replacing an earlier pin.
func (s *BunStore) AddKnownHostKey(ctx context.Context, hostname, key string) error {
	err := WithTx(ctx, s.bun, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().Model((*KnownHostModel)(nil)).Where("hostname = ?", hostname).Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewInsert().Model(&KnownHostModel{Hostname: hostname, Key: key}).Exec(ctx)
		return MapDBError(err)
	})
	if err == nil {
		_ = s.LogAction(ctx, "TRUST_HOST", fmt.Sprintf("hostname: %s", hostname))
	}
	return err
}

// --- Audit log ---

// currentUsername returns the OS user running the process, without a
// Windows domain prefix.
func currentUsername() string {
	cur, err := user.Current()
	if err != nil {
		return "unknown"
	}
	if parts := strings.Split(cur.Username, `\`); len(parts) > 1 {
		return parts[1]
	}
	return cur.Username
}

// LogAction inserts an audit log entry attributed to the current OS user.
func (s *BunStore) LogAction(ctx context.Context, action, details string) error {
	m := AuditLogModel{Timestamp: now(), Username: currentUsername(), Action: action, Details: details}
	_, err := s.bun.NewInsert().Model(&m).Exec(ctx)
	return MapDBError(err)
}

func (s *BunStore) ListAuditLog(ctx context.Context, limit int) ([]model.AuditLogEntry, error) {
	var ms []AuditLogModel
	q := s.bun.NewSelect().Model(&ms).OrderExpr("timestamp DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	out := make([]model.AuditLogEntry, 0, len(ms))
	for _, m := range ms {
		out = append(out, auditModelToModel(m))
	}
	return out, nil
}
