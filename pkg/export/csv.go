// Package export turns report datasets into the files users take away:
// plain CSV, Power BI flavored CSV and a Power BI template describing the
// data model.
package export

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"github.com/papercomputeco/reportkit/pkg/catalog"
	"github.com/papercomputeco/reportkit/pkg/record"
)

// ErrNoData is returned when exporting an empty dataset.
var ErrNoData = errors.New("no data to export")

// WriteCSV writes ds as CSV. The header is the key order of the first
// record, unquoted. Every cell is quoted with embedded quotes doubled, null
// or absent values become "". Rows are separated by "\n" with no trailing
// newline.
func WriteCSV(w io.Writer, ds record.Dataset) error {
	return writeCSV(w, ds, func(string, record.Value) bool { return false })
}

// WritePowerBICSV is WriteCSV with one difference: cells of number-typed
// metric columns are written unquoted when they hold a numeric value, so
// Power BI infers a numeric column.
func WritePowerBICSV(w io.Writer, ds record.Dataset, metrics []catalog.Metric) error {
	numeric := map[string]bool{}
	for _, m := range metrics {
		if catalog.DataTypeFor(m.ID) == catalog.DataTypeNumber {
			numeric[m.ID] = true
		}
	}
	return writeCSV(w, ds, func(key string, v record.Value) bool {
		if !numeric[key] {
			return false
		}
		if v.IsNull() {
			return true
		}
		_, ok := v.Float()
		return ok
	})
}

// CSV renders ds with WriteCSV into a string.
func CSV(ds record.Dataset) (string, error) {
	var b strings.Builder
	if err := WriteCSV(&b, ds); err != nil {
		return "", err
	}
	return b.String(), nil
}

func writeCSV(w io.Writer, ds record.Dataset, bare func(key string, v record.Value) bool) error {
	if len(ds) == 0 {
		return ErrNoData
	}

	bw := bufio.NewWriter(w)
	headers := ds[0].Keys()
	bw.WriteString(strings.Join(headers, ","))

	for _, r := range ds {
		bw.WriteByte('\n')
		for i, key := range headers {
			if i > 0 {
				bw.WriteByte(',')
			}
			v, ok := r.Get(key)
			if !ok {
				v = record.Null()
			}
			if bare(key, v) {
				bw.WriteString(v.Raw())
				continue
			}
			bw.WriteString(quote(v.Raw()))
		}
	}

	return bw.Flush()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
