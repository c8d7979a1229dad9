package orders

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestCSVStreamerFlushInterval(t *testing.T) {
	var buf bytes.Buffer
	streamer := newCSVStreamer(&buf)
	for i := 0; i < csvFlushEvery; i++ {
		if err := streamer.writeRow([]string{"row"}); err != nil {
			t.Fatalf("write row: %v", err)
		}
	}
	if streamer.pendingLines != 0 {
		t.Fatalf("expected pending lines reset to 0, got %d", streamer.pendingLines)
	}
	if err := streamer.Close(); err != nil {
		t.Fatalf("close streamer: %v", err)
	}
}

func exportRow() OrderRow {
	row := OrderRow{
		Order: Order{
			OrderDate:         time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC),
			Vehicle:           VehicleVan,
			StandardQty:       10,
			PremiumQty:        2,
			CreatedByUsername: "admin",
			CreatedAt:         time.Date(2025, 6, 10, 8, 30, 0, 0, time.UTC),
			SalesExecutive:    "ravi",
		},
		CustomerExists: true,
		CustomerName:   "Acme Traders",
		CustomerPhone:  "555-0100",
		RouteName:      "NORTH LOOP",
		StandardPrice:  40,
		PremiumPrice:   55,
	}
	Reprice(&row)
	return row
}

func TestWriteCSVAdminIncludesCreatorColumns(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, []OrderRow{exportRow()}, true); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	content := buf.String()
	lines := strings.Split(strings.TrimSuffix(content, "\r\n"), "\r\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d lines", len(lines))
	}
	if !strings.HasSuffix(lines[0], "CreatedBy,CreatedAt") {
		t.Fatalf("admin header missing creator columns: %q", lines[0])
	}
	if want := "2025-06-10,Acme Traders,555-0100,NORTH LOOP,ravi,VAN,10,2,400.00,110.00,510.00,admin,2025-06-10 08:30:00"; lines[1] != want {
		t.Fatalf("row = %q, want %q", lines[1], want)
	}
}

func TestWriteCSVNonAdminOmitsCreatorColumns(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, []OrderRow{exportRow()}, false); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	content := buf.String()
	if strings.Contains(content, "CreatedBy") || strings.Contains(content, "admin") {
		t.Fatalf("creator data leaked into non-admin export: %q", content)
	}
	if !strings.Contains(content, "510.00") {
		t.Fatalf("expected total column in export: %q", content)
	}
}
