package postgres

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/uptrace/bun"

	"github.com/Trieuh2/scheduler-backend/internal/domain"
	"github.com/Trieuh2/scheduler-backend/internal/store"
)

func TestPostgresIntegration_AppointmentLifecycle(t *testing.T) {
	databaseURL := strings.TrimSpace(os.Getenv("SCHEDULER_TEST_DATABASE_URL"))
	if databaseURL == "" {
		t.Skip("SCHEDULER_TEST_DATABASE_URL not set")
	}

	db, err := Open(databaseURL, PoolConfig{MaxOpenConns: 1})
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	t.Cleanup(func() {
		_ = Close(db)
	})

	schema := "scheduler_test_" + randomHex(t, 8)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_, _ = db.NewRaw("DROP SCHEMA IF EXISTS " + schema + " CASCADE").Exec(ctx)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	err = db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewRaw("CREATE SCHEMA " + schema).Exec(ctx); err != nil {
			return err
		}
		if _, err := tx.NewRaw("SET LOCAL search_path TO " + schema).Exec(ctx); err != nil {
			return err
		}
		if err := applyMigrations(ctx, tx); err != nil {
			return err
		}
		if err := seedReferenceRows(ctx, tx); err != nil {
			return err
		}

		c := appointmentTx{tx: tx}

		start := time.Date(2026, time.July, 15, 13, 0, 0, 0, time.UTC)
		appt := &domain.Appointment{
			ID:         1,
			Title:      "Planning",
			Type:       "Planning Session",
			StartUTC:   start,
			EndUTC:     start.Add(time.Hour),
			CustomerID: 1,
			UserID:     1,
			ContactID:  1,
		}
		if err := c.InsertAppointment(ctx, appt); err != nil {
			return fmt.Errorf("insert: %w", err)
		}

		maxID, err := c.MaxAppointmentID(ctx)
		if err != nil {
			return err
		}
		if maxID != 1 {
			return fmt.Errorf("max id = %d, want 1", maxID)
		}

		// The customer's windows come back as canonical UTC strings, and
		// the candidate's own row is excluded.
		windows, err := c.AppointmentsForCustomer(ctx, 1, 0)
		if err != nil {
			return err
		}
		if len(windows) != 1 {
			return fmt.Errorf("windows = %d, want 1", len(windows))
		}
		if windows[0].StartUTC != "2026-07-15 13:00:00" || windows[0].EndUTC != "2026-07-15 14:00:00" {
			return fmt.Errorf("window = %+v", windows[0])
		}

		windows, err = c.AppointmentsForCustomer(ctx, 1, appt.ID)
		if err != nil {
			return err
		}
		if len(windows) != 0 {
			return fmt.Errorf("self-excluded windows = %d, want 0", len(windows))
		}

		// Inverted times violate the table's check constraint. The failed
		// statement aborts the transaction, so run it under a savepoint.
		if _, err := tx.NewRaw("SAVEPOINT before_bad_insert").Exec(ctx); err != nil {
			return err
		}
		bad := &domain.Appointment{
			ID:         2,
			Title:      "Broken",
			Type:       "Debrief",
			StartUTC:   start,
			EndUTC:     start.Add(-time.Hour),
			CustomerID: 1,
			UserID:     1,
			ContactID:  1,
		}
		if err := c.InsertAppointment(ctx, bad); err == nil {
			return fmt.Errorf("expected check constraint violation")
		}
		if _, err := tx.NewRaw("ROLLBACK TO SAVEPOINT before_bad_insert").Exec(ctx); err != nil {
			return err
		}

		appt.Title = "Planning (moved)"
		if err := c.UpdateAppointment(ctx, appt); err != nil {
			return fmt.Errorf("update: %w", err)
		}

		if err := c.DeleteAppointment(ctx, 999); err != store.ErrNotFound {
			return fmt.Errorf("delete missing = %v, want %v", err, store.ErrNotFound)
		}
		if err := c.DeleteAppointment(ctx, appt.ID); err != nil {
			return fmt.Errorf("delete: %w", err)
		}

		return nil
	})
	if err != nil {
		t.Fatalf("tx error: %v", err)
	}
}

func seedReferenceRows(ctx context.Context, tx bun.Tx) error {
	stmts := []string{
		"INSERT INTO countries (id, name) VALUES (1, 'U.S')",
		"INSERT INTO first_level_divisions (id, name, country_id) VALUES (1, 'New York', 1)",
		"INSERT INTO customers (id, name, address, postal_code, phone_number, division_id) VALUES (1, 'Acme', '1 Main St', '10001', '555-0100', 1)",
		"INSERT INTO users (id, username, password_hash) VALUES (1, 'admin', 'x')",
		"INSERT INTO contacts (id, name, email) VALUES (1, 'Ada', 'ada@example.com')",
	}
	for _, s := range stmts {
		if _, err := tx.NewRaw(s).Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

func randomHex(t *testing.T, bytesLen int) string {
	t.Helper()
	b := make([]byte, bytesLen)
	if _, err := rand.Read(b); err != nil {
		t.Fatalf("rand.Read error: %v", err)
	}
	return hex.EncodeToString(b)
}

type rawExecutor interface {
	NewRaw(query string, args ...any) *bun.RawQuery
}

func applyMigrations(ctx context.Context, exec rawExecutor) error {
	dir, err := migrationsDir()
	if err != nil {
		return err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		b, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return err
		}
		upSQL, err := extractGooseUp(string(b))
		if err != nil {
			return err
		}
		for _, stmt := range splitSQLStatements(upSQL) {
			if _, err := exec.NewRaw(stmt).Exec(ctx); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
		}
	}

	return nil
}

func migrationsDir() (string, error) {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("runtime.Caller failed")
	}
	base := filepath.Dir(file)
	return filepath.Clean(filepath.Join(base, "..", "..", "..", "migrations")), nil
}

func extractGooseUp(sql string) (string, error) {
	upMarker := "-- +goose Up"
	downMarker := "-- +goose Down"

	upIdx := strings.Index(sql, upMarker)
	if upIdx < 0 {
		return "", fmt.Errorf("missing goose up marker")
	}
	afterUp := sql[upIdx+len(upMarker):]
	afterUp = strings.TrimLeft(afterUp, "\r\n")

	downIdx := strings.Index(afterUp, downMarker)
	if downIdx < 0 {
		return strings.TrimSpace(afterUp), nil
	}
	return strings.TrimSpace(afterUp[:downIdx]), nil
}

func splitSQLStatements(sql string) []string {
	parts := strings.Split(sql, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		s := strings.TrimSpace(p)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}
