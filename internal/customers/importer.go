package customers

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/routedesk/routedesk/internal/platform/httpx"
	"github.com/routedesk/routedesk/internal/registry"
)

// maxImportErrors bounds the failure list returned to the caller. Failures
// beyond this are still counted, just not described.
const maxImportErrors = 10

var importHeader = []string{"Name", "Route", "SalesExecutive", "GreenPrice", "OrangePrice", "Phone"}

// Importer reconciles a bulk customer CSV against the ledger and the
// reference registry. File-level problems (empty file, unknown route) abort
// the batch with nothing written; row-level problems skip the row and are
// reported in the summary.
type Importer struct {
	repo   Repository
	refs   Registry
	logger *slog.Logger
}

// NewImporter constructs an Importer.
func NewImporter(repo Repository, refs Registry, logger *slog.Logger) *Importer {
	return &Importer{repo: repo, refs: refs, logger: logger}
}

type importRow struct {
	num            int // 1-based data row number
	name           string
	route          string
	salesExecutive string
	greenPrice     string
	orangePrice    string
	phone          string
}

// Import runs one reconciliation batch. Rows are processed sequentially;
// the upsert key is the case-insensitive customer name.
func (im *Importer) Import(ctx context.Context, r io.Reader) (*ImportSummary, error) {
	rows, err := parseImportCSV(r)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: CSV file contains no data rows", httpx.ErrValidation)
	}

	routesByName, err := im.resolveRoutes(ctx, rows)
	if err != nil {
		return nil, err
	}

	summary := &ImportSummary{BatchID: uuid.NewString(), Errors: []ImportError{}}
	seen := make(map[string]int)

	for _, row := range rows {
		if msg := im.processRow(ctx, row, routesByName, seen, summary); msg != "" {
			summary.Failed++
			if len(summary.Errors) < maxImportErrors {
				summary.Errors = append(summary.Errors, ImportError{Row: row.num, Name: row.name, Message: msg})
			}
		}
	}

	im.logger.Info("customer import completed",
		"batch_id", summary.BatchID,
		"imported", summary.Imported,
		"updated", summary.Updated,
		"failed", summary.Failed,
	)
	return summary, nil
}

func parseImportCSV(r io.Reader) ([]importRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: CSV file is empty", httpx.ErrValidation)
		}
		return nil, fmt.Errorf("%w: unreadable CSV header", httpx.ErrValidation)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}
	if len(header) != len(importHeader) {
		return nil, fmt.Errorf("%w: expected header %s", httpx.ErrValidation, strings.Join(importHeader, ","))
	}
	for i, want := range importHeader {
		if strings.TrimSpace(header[i]) != want {
			return nil, fmt.Errorf("%w: expected header %s", httpx.ErrValidation, strings.Join(importHeader, ","))
		}
	}

	var rows []importRow
	num := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: malformed CSV near data row %d", httpx.ErrValidation, num+1)
		}
		num++
		rows = append(rows, importRow{
			num:            num,
			name:           strings.TrimSpace(record[0]),
			route:          strings.TrimSpace(record[1]),
			salesExecutive: strings.TrimSpace(record[2]),
			greenPrice:     strings.TrimSpace(record[3]),
			orangePrice:    strings.TrimSpace(record[4]),
			phone:          strings.TrimSpace(record[5]),
		})
	}
	return rows, nil
}

// resolveRoutes pre-validates every distinct route name referenced by the
// file. A single unknown or inactive route aborts the whole batch: a partial
// import against a bad route set is never performed.
func (im *Importer) resolveRoutes(ctx context.Context, rows []importRow) (map[string]*registry.Route, error) {
	routesByName := make(map[string]*registry.Route)
	var missing []string

	for _, row := range rows {
		if row.route == "" {
			continue
		}
		key := registry.NormalizeRouteName(row.route)
		if _, done := routesByName[key]; done {
			continue
		}
		route, err := im.refs.FindRouteByName(ctx, row.route)
		if err != nil {
			if errors.Is(err, registry.ErrNotFound) {
				routesByName[key] = nil
				missing = append(missing, key)
				continue
			}
			return nil, fmt.Errorf("resolve route %q: %w", row.route, err)
		}
		if !route.IsActive {
			routesByName[key] = nil
			missing = append(missing, key)
			continue
		}
		routesByName[key] = route
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("%w: unknown or inactive route(s): %s", httpx.ErrValidation, strings.Join(missing, ", "))
	}
	return routesByName, nil
}

// processRow validates and upserts one row. It returns a failure message, or
// empty string on success.
func (im *Importer) processRow(ctx context.Context, row importRow, routesByName map[string]*registry.Route, seen map[string]int, summary *ImportSummary) string {
	if row.name == "" {
		return "missing Name"
	}
	if row.route == "" {
		return "missing Route"
	}
	if row.salesExecutive == "" {
		return "missing SalesExecutive"
	}

	nameKey := strings.ToLower(row.name)
	if first, dup := seen[nameKey]; dup {
		return fmt.Sprintf("duplicate of data row %d", first)
	}

	standardPrice, err := parsePrice(row.greenPrice)
	if err != nil {
		return fmt.Sprintf("invalid GreenPrice: %v", err)
	}
	premiumPrice, err := parsePrice(row.orangePrice)
	if err != nil {
		return fmt.Sprintf("invalid OrangePrice: %v", err)
	}

	exec, err := im.refs.FindSalesExecutiveByDisplayName(ctx, row.salesExecutive)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			return fmt.Sprintf("sales executive %q not found", row.salesExecutive)
		}
		return fmt.Sprintf("resolve sales executive: %v", err)
	}

	existing, err := im.repo.FindByName(ctx, row.name)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Sprintf("lookup customer: %v", err)
	}

	if existing != nil {
		err = im.repo.Update(ctx, existing.ID, map[string]interface{}{
			"sales_executive": exec.Username,
			"standard_price":  standardPrice,
			"premium_price":   premiumPrice,
			"phone":           row.phone,
		})
		if err != nil {
			return fmt.Sprintf("update customer: %v", err)
		}
		seen[nameKey] = row.num
		summary.Updated++
		return ""
	}

	route := routesByName[registry.NormalizeRouteName(row.route)]
	_, err = im.repo.Create(ctx, Customer{
		Name:           row.name,
		RouteID:        route.ID,
		SalesExecutive: exec.Username,
		StandardPrice:  standardPrice,
		PremiumPrice:   premiumPrice,
		Phone:          row.phone,
	})
	if err != nil {
		return fmt.Sprintf("create customer: %v", err)
	}
	seen[nameKey] = row.num
	summary.Imported++
	return ""
}

// parsePrice accepts values like "1,250.50", "$40" or "₹ 35.00": currency
// symbols and thousands separators are stripped before parsing.
func parsePrice(raw string) (float64, error) {
	if raw == "" {
		return 0, errors.New("price is required")
	}
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			return r
		default:
			return -1
		}
	}, raw)
	if cleaned == "" {
		return 0, fmt.Errorf("%q is not a number", raw)
	}
	value, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", raw)
	}
	if value.IsNegative() {
		return 0, errors.New("price cannot be negative")
	}
	f, _ := value.Float64()
	return f, nil
}
