// Package flatfile implements the append-only CSV backend that every event is written to.
package flatfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"sync"

	"github.com/BarkinBalci/fall-event-service/internal/domain"
)

// Header is the fixed column layout of the fallback file
var Header = []string{"timestamp", "detection", "alert_type", "device_id", "sms_sent"}

// defaults fill missing trailing columns of rows written by older releases
var defaults = []string{"", "false", domain.Unknown, domain.Unknown, string(domain.SMSNotSent)}

// File is the fallback backend. Appends are serialized; reads never observe a partial row.
type File struct {
	path string
	mu   sync.RWMutex
}

// Open returns a File for path, creating it with the header row if it does not exist
func Open(path string) (*File, error) {
	f := &File{path: path}

	fh, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create fallback file: %w", err)
	}
	defer fh.Close()

	w := csv.NewWriter(fh)
	if err := w.Write(Header); err != nil {
		return nil, fmt.Errorf("failed to write fallback header: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to write fallback header: %w", err)
	}

	return f, nil
}

// Path returns the location of the file
func (f *File) Path() string {
	return f.path
}

// Append writes one event as a single row
func (f *File) Append(event *domain.FallEvent) error {
	row := []string{
		event.TimestampDisplay,
		strconv.FormatBool(event.Detection),
		event.AlertType,
		event.DeviceID,
		string(event.SMSSent),
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	fh, err := os.OpenFile(f.path, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open fallback file: %w", err)
	}

	w := csv.NewWriter(fh)
	if err := w.Write(row); err != nil {
		_ = fh.Close()
		return fmt.Errorf("failed to append row: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = fh.Close()
		return fmt.Errorf("failed to flush row: %w", err)
	}

	if err := fh.Close(); err != nil {
		return fmt.Errorf("failed to close fallback file: %w", err)
	}
	return nil
}

// Recent returns up to n rows, newest first, with legacy rows padded to full width
func (f *File) Recent(n int) ([][]string, error) {
	if n <= 0 {
		return [][]string{}, nil
	}

	rows, err := f.Rows()
	if err != nil {
		return nil, err
	}

	if n > len(rows) {
		n = len(rows)
	}

	recent := make([][]string, 0, n)
	for i := len(rows) - 1; i >= 0 && len(recent) < n; i-- {
		recent = append(recent, rows[i])
	}
	return recent, nil
}

// Rows returns every data row oldest first, with legacy rows padded to full width
func (f *File) Rows() ([][]string, error) {
	records, err := f.readAll()
	if err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, pad(record))
	}
	return rows, nil
}

// Count returns the number of data rows
func (f *File) Count() (int, error) {
	records, err := f.readAll()
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// readAll returns every record after the header. A missing file has no records.
func (f *File) readAll() ([][]string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	fh, err := os.Open(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return [][]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open fallback file: %w", err)
	}
	defer fh.Close()

	r := csv.NewReader(fh)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records := make([][]string, 0)
	header := true
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read fallback file: %w", err)
		}
		if header {
			header = false
			continue
		}
		records = append(records, record)
	}

	return records, nil
}

// pad appends the legacy defaults for rows written before device_id and sms_sent existed
func pad(record []string) []string {
	row := append([]string(nil), record...)
	for len(row) < len(defaults) {
		row = append(row, defaults[len(row)])
	}
	return row
}
