package migrate

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/multierr"
)

func TestEmbeddedMigrationsValidate(t *testing.T) {
	if err := ValidateFS(Embedded, EmbeddedDir); err != nil {
		t.Fatalf("embedded migrations invalid: %v", err)
	}
}

func TestValidateDirRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "orders.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := ValidateDir(dir); err == nil {
		t.Fatal("expected invalid filename error")
	}
}

func TestCreateSQLMigrationWritesTemplate(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "Add Order Tags!")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.HasSuffix(path, "_add_order_tags.sql") {
		t.Fatalf("unexpected filename %s", path)
	}
	if err := ValidateDir(dir); err != nil {
		t.Fatalf("created migration should validate: %v", err)
	}
}

func TestOrdersMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_orders.sql")
	checks := []string{
		"CREATE TABLE IF NOT EXISTS orders",
		"CONSTRAINT orders_order_number_key UNIQUE (order_number)",
		"CHECK (total = subtotal - discount_amount + shipping_cost + tax_amount)",
		"CREATE TABLE IF NOT EXISTS order_state_history",
		"FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE",
		"CHECK (quantity > 0)",
		"DROP TABLE IF EXISTS orders",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestRefundAndShipmentMigrations(t *testing.T) {
	refunds := readMigration(t, "*_create_refund_approvals.sql")
	for _, sub := range []string{"status refund_approval_status NOT NULL DEFAULT 'pending'", "CHECK (requested_amount > 0)"} {
		if !strings.Contains(refunds, sub) {
			t.Errorf("refund migration missing %q", sub)
		}
	}
	shipments := readMigration(t, "*_create_shipments.sql")
	for _, sub := range []string{"CREATE TABLE IF NOT EXISTS shipment_items", "status shipment_status NOT NULL DEFAULT 'pending'"} {
		if !strings.Contains(shipments, sub) {
			t.Errorf("shipment migration missing %q", sub)
		}
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := fs.Glob(Embedded, EmbeddedDir+"/"+pattern)
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration matching %s", pattern)
	}
	data, err := fs.ReadFile(Embedded, matches[0])
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	return string(data)
}

func TestCreateSQLMigrationRejectsDuplicateName(t *testing.T) {
	dir := t.TempDir()
	if _, err := CreateSQLMigration(dir, "add_index"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := CreateSQLMigration(dir, "Add Index"); err == nil {
		t.Fatal("expected duplicate name error")
	}
	if _, err := CreateSQLMigration(dir, "!!!"); err == nil {
		t.Fatal("expected empty sanitized name error")
	}
}

func TestSourceEmbeddedListsMigrations(t *testing.T) {
	fsys, err := Source("")
	if err != nil {
		t.Fatalf("source: %v", err)
	}
	matches, err := fs.Glob(fsys, "*.sql")
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(matches) < 7 {
		t.Fatalf("expected embedded migrations at the fs root, got %v", matches)
	}
	if _, err := Source(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for a missing directory")
	}
}

func TestParseVersion(t *testing.T) {
	v, err := ParseVersion("20260105090200")
	if err != nil || v != 20260105090200 {
		t.Fatalf("unexpected parse %d %v", v, err)
	}
	for _, bad := range []string{"", "2026", "2026010509020x"} {
		if _, err := ParseVersion(bad); err == nil {
			t.Fatalf("expected %q to be rejected", bad)
		}
	}
}

func TestValidateDirReportsEveryProblem(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"20260101000000_ok.sql":         "-- +goose Up\nSELECT 1;\n-- +goose Down\nSELECT 1;\n",
		"20260101000000_dup.sql":        "-- +goose Up\n-- +goose Down\n",
		"20260101000100_no_down.sql":    "-- +goose Up\nSELECT 1;\n",
		"20260101000200_unbalanced.sql": "-- +goose Up\n-- +goose StatementBegin\nSELECT 1;\n-- +goose Down\n",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	err := ValidateDir(dir)
	if err == nil {
		t.Fatal("expected validation errors")
	}
	if n := len(multierr.Errors(err)); n != 3 {
		t.Fatalf("expected 3 problems, got %d: %v", n, err)
	}
	for _, want := range []string{"used by both", "missing \"-- +goose Down\"", "StatementBegin"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %v", want, err)
		}
	}
}

func TestValidateDirEmpty(t *testing.T) {
	if err := ValidateDir(t.TempDir()); err == nil || !strings.Contains(err.Error(), "no migrations") {
		t.Fatalf("expected empty dir error, got %v", err)
	}
}
