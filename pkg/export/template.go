package export

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/papercomputeco/reportkit/pkg/catalog"
)

const (
	TemplateVersion = "1.0"
	DatasetName     = "Custom Report Dataset"
	MainTableName   = "MetricsData"
)

// Column is a column of a template table.
type Column struct {
	Name     string           `json:"name"`
	DataType catalog.DataType `json:"dataType"`
}

// Table is a template table.
type Table struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

// Template describes the data model of an exported report for Power BI.
// It never contains data rows.
type Template struct {
	Version     string  `json:"version"`
	DatasetName string  `json:"datasetName"`
	Tables      []Table `json:"tables"`
}

// NewTemplate builds the template for the selected metrics: one MetricsData
// table with a column per metric, then a "<Name>Dim" table for each
// categorical metric.
func NewTemplate(metrics []catalog.Metric) Template {
	main := Table{Name: MainTableName, Columns: make([]Column, 0, len(metrics))}
	for _, m := range metrics {
		main.Columns = append(main.Columns, Column{Name: m.Name, DataType: catalog.DataTypeFor(m.ID)})
	}

	t := Template{
		Version:     TemplateVersion,
		DatasetName: DatasetName,
		Tables:      []Table{main},
	}
	for _, m := range metrics {
		if !catalog.IsDimension(m.ID) {
			continue
		}
		t.Tables = append(t.Tables, Table{
			Name: m.Name + "Dim",
			Columns: []Column{
				{Name: "ID", DataType: catalog.DataTypeString},
				{Name: "Name", DataType: catalog.DataTypeString},
			},
		})
	}
	return t
}

// WriteTemplate writes NewTemplate(metrics) as JSON indented by two spaces,
// with no trailing newline.
func WriteTemplate(w io.Writer, metrics []catalog.Metric) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(NewTemplate(metrics)); err != nil {
		return err
	}
	_, err := w.Write(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
	return err
}
