package orders

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

const (
	csvFlushEvery = 200
	csvBufferSize = 32 * 1024
)

type csvStreamer struct {
	buf          *bufio.Writer
	csv          *csv.Writer
	flushEvery   int
	pendingLines int
}

func newCSVStreamer(w io.Writer) *csvStreamer {
	buf := bufio.NewWriterSize(w, csvBufferSize)
	writer := csv.NewWriter(buf)
	writer.UseCRLF = true
	return &csvStreamer{buf: buf, csv: writer, flushEvery: csvFlushEvery}
}

func (s *csvStreamer) writeRow(row []string) error {
	if s == nil || s.csv == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	if err := s.csv.Write(row); err != nil {
		return err
	}
	s.pendingLines++
	if s.flushEvery > 0 && s.pendingLines >= s.flushEvery {
		return s.Flush()
	}
	return nil
}

func (s *csvStreamer) Flush() error {
	if s == nil || s.csv == nil || s.buf == nil {
		return fmt.Errorf("csv streamer not initialised")
	}
	s.csv.Flush()
	if err := s.csv.Error(); err != nil {
		return err
	}
	if err := s.buf.Flush(); err != nil {
		return err
	}
	s.pendingLines = 0
	return nil
}

func (s *csvStreamer) Close() error {
	return s.Flush()
}

// WriteCSV streams the order rows as CSV. Creator columns are only emitted
// for admin callers.
func WriteCSV(w io.Writer, rows []OrderRow, includeCreator bool) error {
	streamer := newCSVStreamer(w)

	header := []string{
		"Date", "Customer", "Phone", "Route", "SalesExecutive", "Vehicle",
		"StandardQty", "PremiumQty", "StandardTotal", "PremiumTotal", "Total",
	}
	if includeCreator {
		header = append(header, "CreatedBy", "CreatedAt")
	}
	if err := streamer.writeRow(header); err != nil {
		return err
	}

	for _, row := range rows {
		record := []string{
			row.OrderDate.UTC().Format("2006-01-02"),
			row.CustomerName,
			row.CustomerPhone,
			row.RouteName,
			row.SalesExecutive,
			string(row.Vehicle),
			strconv.Itoa(row.StandardQty),
			strconv.Itoa(row.PremiumQty),
			formatAmount(row.StandardTotal),
			formatAmount(row.PremiumTotal),
			formatAmount(row.Total),
		}
		if includeCreator {
			record = append(record,
				row.CreatedByUsername,
				row.CreatedAt.UTC().Format("2006-01-02 15:04:05"),
			)
		}
		if err := streamer.writeRow(record); err != nil {
			return err
		}
	}
	return streamer.Close()
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
