package recordrepo

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gocarina/gocsv"
)

const utf8BOM = "\ufeff"

// Load reads every record of the CSV file at path.
func Load(path string) (*Records, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open records %s: %w", path, err)
	}

	defer f.Close()

	records, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("records %s: %w", path, err)
	}

	records.Path = path
	return records, nil
}

// Parse reads a header row followed by data rows. Quoting is tolerant and
// leading spaces of a field are dropped. Every row must have as many fields as the header.
func Parse(in io.Reader) (*Records, error) {
	reader := gocsv.LazyCSVReader(in)

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(RequiredColumns, ", "))
	}

	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	columns := make([]string, len(header))
	for i, col := range header {
		columns[i] = strings.TrimSpace(col)
	}

	if err = checkColumns(columns); err != nil {
		return nil, err
	}

	records := &Records{
		Columns: columns,
		Items:   make([]Record, 0),
	}

	row := 1
	for {
		fields, _err := reader.Read()
		if errors.Is(_err, io.EOF) {
			break
		}

		row++
		if _err != nil {
			return nil, fmt.Errorf("%w %d: %w", ErrMalformedRow, row, _err)
		}

		rec := Record{
			Row:    row,
			Fields: make(map[string]string, len(columns)),
		}

		for i, col := range columns {
			rec.Fields[col] = fields[i]
		}

		records.Items = append(records.Items, rec)
	}

	return records, nil
}
