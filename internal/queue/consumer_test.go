package queue

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestHandleOrderCreatedAppendsLine(t *testing.T) {
	dir := t.TempDir()
	body := []byte(`{"order_id":10,"restaurant_id":1,"table_id":2,"total_price":"7.50","status":"pending",
		"items":[{"product_id":3,"quantity":2,"unit_price":"2.50","is_cold_drink":true}],"created_at":"2026-01-01T12:00:00Z"}`)

	if err := HandleOrderCreated(dir, body); err != nil {
		t.Fatalf("HandleOrderCreated: %v", err)
	}
	if err := HandleOrderCreated(dir, body); err != nil {
		t.Fatalf("HandleOrderCreated (second): %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "orders.log"))
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	for _, want := range []string{"order_id=10", "table=2", "user=anonymous", "total=7.50", "2x#3@2.50(cold)"} {
		if !strings.Contains(lines[0], want) {
			t.Errorf("line %q missing %q", lines[0], want)
		}
	}
}

func TestHandleOrderCreatedRejectsBadPayload(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		body string
	}{
		{"not json", "{"},
		{"missing order id", `{"restaurant_id":1}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := HandleOrderCreated(dir, []byte(tc.body)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
	if _, err := os.Stat(filepath.Join(dir, "orders.log")); !os.IsNotExist(err) {
		t.Errorf("no log file should be written for rejected payloads")
	}
}
