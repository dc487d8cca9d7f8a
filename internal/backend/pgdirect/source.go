// Package pgdirect serves backend.DataSource straight from the managed
// Postgres instance through gorm. Row-level policies still apply: calls made
// with credentials in the context run inside a transaction that carries the
// caller's JWT claims, the same way the REST gateway does it.
package pgdirect

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"novelhub/internal/backend"
	"novelhub/internal/metrics"
)

type Options struct {
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	// Role assumed for authenticated callers. Defaults to "authenticated".
	Role string
}

type Source struct {
	db      *gorm.DB
	logger  *slog.Logger
	metrics *metrics.Metrics
	role    string
}

var _ backend.DataSource = (*Source)(nil)

// Open connects with a Postgres connection string.
func Open(dsn string, opts Options) (*Source, error) {
	db, err := gorm.Open(postgres.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return New(db, opts), nil
}

// New wraps an existing gorm handle; tests pass one built over sqlmock.
func New(db *gorm.DB, opts Options) *Source {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Role == "" {
		opts.Role = "authenticated"
	}
	return &Source{db: db, logger: opts.Logger, metrics: opts.Metrics, role: opts.Role}
}

func gormConfig() *gorm.Config {
	return &gorm.Config{
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
		Logger:                 logger.Default.LogMode(logger.Warn),
	}
}

func (s *Source) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Source) Select(ctx context.Context, q *backend.Query, dest any) (int64, error) {
	var total int64
	err := s.run(ctx, "select:"+q.Table, func(tx *gorm.DB) error {
		base := func() *gorm.DB {
			stmt := tx.Table(q.Table)
			for _, cond := range conditions(q.Filters) {
				stmt = stmt.Where(cond)
			}
			if len(q.AnyOf) > 0 {
				stmt = stmt.Where(clause.Or(conditions(q.AnyOf)...))
			}
			return stmt
		}

		if q.Count {
			if err := base().Count(&total).Error; err != nil {
				return err
			}
		}

		if q.Empty {
			if q.Single {
				return gorm.ErrRecordNotFound
			}
			clearSlice(dest)
			return nil
		}

		stmt := base()
		if len(q.Columns) > 0 {
			stmt = stmt.Select(q.Columns)
		}
		for _, o := range q.Orders {
			stmt = stmt.Order(clause.OrderByColumn{Column: clause.Column{Name: o.Column}, Desc: !o.Ascending})
		}
		if q.Offset > 0 {
			stmt = stmt.Offset(q.Offset)
		}
		if q.Limit > 0 {
			stmt = stmt.Limit(q.Limit)
		}

		if q.Single {
			return stmt.Take(dest).Error
		}
		return stmt.Find(dest).Error
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// Insert writes values. When dest is set the row is copied into it first and
// filled from RETURNING, so generated keys and timestamps come back.
func (s *Source) Insert(ctx context.Context, table string, values any, dest any) error {
	return s.run(ctx, "insert:"+table, func(tx *gorm.DB) error {
		if dest == nil {
			return tx.Table(table).Create(values).Error
		}
		if err := assign(dest, values); err != nil {
			return err
		}
		return tx.Table(table).Clauses(clause.Returning{}).Create(dest).Error
	})
}

// Upsert merges every supplied column except the conflict target into the
// existing row, which is what merge-duplicates does on the REST side.
func (s *Source) Upsert(ctx context.Context, table string, values any, onConflict []string, dest any) error {
	row, err := toRow(values)
	if err != nil {
		return err
	}

	conflict := make([]clause.Column, 0, len(onConflict))
	skip := make(map[string]bool, len(onConflict))
	for _, c := range onConflict {
		conflict = append(conflict, clause.Column{Name: c})
		skip[c] = true
	}
	var update []string
	for _, col := range sortedKeys(row) {
		if !skip[col] {
			update = append(update, col)
		}
	}

	onConflictClause := clause.OnConflict{Columns: conflict}
	if len(update) == 0 {
		onConflictClause.DoNothing = true
	} else {
		onConflictClause.DoUpdates = clause.AssignmentColumns(update)
	}

	return s.run(ctx, "upsert:"+table, func(tx *gorm.DB) error {
		if err := tx.Table(table).Clauses(onConflictClause).Create(row).Error; err != nil {
			return err
		}
		if dest == nil {
			return nil
		}
		key := make(map[string]any, len(onConflict))
		for _, c := range onConflict {
			key[c] = row[c]
		}
		return tx.Table(table).Where(key).Take(dest).Error
	})
}

func (s *Source) Update(ctx context.Context, table string, patch map[string]any, filters []backend.Filter, dest any) error {
	return s.run(ctx, "update:"+table, func(tx *gorm.DB) error {
		stmt := tx.Table(table)
		for _, cond := range conditions(filters) {
			stmt = stmt.Where(cond)
		}
		if err := stmt.Updates(patch).Error; err != nil {
			return err
		}
		if dest == nil {
			return nil
		}
		reread := tx.Table(table)
		for _, cond := range conditions(filters) {
			reread = reread.Where(cond)
		}
		if isSlicePointer(dest) {
			return reread.Find(dest).Error
		}
		return reread.Take(dest).Error
	})
}

func (s *Source) Delete(ctx context.Context, table string, filters []backend.Filter) error {
	return s.run(ctx, "delete:"+table, func(tx *gorm.DB) error {
		stmt := tx.Table(table)
		for _, cond := range conditions(filters) {
			stmt = stmt.Where(cond)
		}
		return stmt.Delete(map[string]any{}).Error
	})
}

// RPC calls fn with named arguments: SELECT * FROM fn(a => $1, b => $2).
func (s *Source) RPC(ctx context.Context, fn string, params map[string]any, dest any) error {
	names := sortedKeys(params)
	args := make([]string, 0, len(names))
	vars := make([]any, 0, len(names))
	for _, name := range names {
		args = append(args, quoteIdent(name)+" => ?")
		vars = append(vars, params[name])
	}
	sql := fmt.Sprintf("SELECT * FROM %s(%s)", quoteIdent(fn), strings.Join(args, ", "))

	return s.run(ctx, "rpc:"+fn, func(tx *gorm.DB) error {
		if dest == nil {
			return tx.Exec(sql, vars...).Error
		}
		return tx.Raw(sql, vars...).Scan(dest).Error
	})
}

// run executes fn with the caller's claims applied and translates the
// resulting error into the backend vocabulary.
func (s *Source) run(ctx context.Context, operation string, fn func(tx *gorm.DB) error) error {
	start := time.Now()
	db := s.db.WithContext(ctx)

	var err error
	if creds, ok := backend.CredentialsFrom(ctx); ok {
		err = db.Transaction(func(tx *gorm.DB) error {
			if err := s.applyClaims(tx, creds); err != nil {
				return err
			}
			return fn(tx)
		})
	} else {
		err = fn(db)
	}

	err = translateError(err)
	s.metrics.ObserveBackend(operation, err, time.Since(start))
	if err != nil {
		s.logger.DebugContext(ctx, "database call failed",
			slog.String("operation", operation),
			slog.String("error", err.Error()))
	}
	return err
}

// applyClaims sets the request claims RLS policies read. A caller can only
// act as anon or the configured end-user role.
func (s *Source) applyClaims(tx *gorm.DB, creds backend.Credentials) error {
	role := creds.Role
	if role != "anon" {
		role = s.role
	}
	claims, err := json.Marshal(map[string]string{"sub": creds.UserID, "role": role})
	if err != nil {
		return err
	}
	return tx.Exec("SELECT set_config('request.jwt.claims', ?, true), set_config('role', ?, true)",
		string(claims), role).Error
}

// assign copies values into dest through their shared JSON column names.
func assign(dest, values any) error {
	if reflect.ValueOf(dest).Pointer() == pointerOf(values) {
		return nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("encode row: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("decode row: %w", err)
	}
	return nil
}

func pointerOf(v any) uintptr {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer {
		return 0
	}
	return rv.Pointer()
}

func toRow(values any) (map[string]any, error) {
	if m, ok := values.(map[string]any); ok {
		return m, nil
	}
	data, err := json.Marshal(values)
	if err != nil {
		return nil, fmt.Errorf("encode row: %w", err)
	}
	var row map[string]any
	if err := json.Unmarshal(data, &row); err != nil {
		return nil, fmt.Errorf("upsert expects a single row: %w", err)
	}
	return row, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// clearSlice empties *dest when dest points at a slice.
func clearSlice(dest any) {
	if isSlicePointer(dest) {
		v := reflect.ValueOf(dest).Elem()
		v.Set(reflect.MakeSlice(v.Type(), 0, 0))
	}
}

func isSlicePointer(dest any) bool {
	t := reflect.TypeOf(dest)
	return t != nil && t.Kind() == reflect.Pointer && t.Elem().Kind() == reflect.Slice
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
