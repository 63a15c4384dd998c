package catalog

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// File is the YAML layout of a catalog file.
//
//	products:
//	  - name: "Молоко 2,5% 0,9л"
//	    price: 310
//	exchange_required:
//	  - "Молоко 2,5% 0,9л"
type File struct {
	Products         []FileProduct `yaml:"products"`
	ExchangeRequired []string      `yaml:"exchange_required"`
}

// FileProduct is one product of a catalog file.
type FileProduct struct {
	Name  string  `yaml:"name"`
	Price float64 `yaml:"price"`
}

// Load reads a catalog, picking the format from the file extension. An empty
// path yields the built-in catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(path)
	case ".xlsx":
		return LoadXLSX(path)
	case ".csv":
		return LoadCSV(path)
	default:
		return nil, fmt.Errorf("unsupported catalog format: %s", path)
	}
}

// LoadYAML reads a catalog from a YAML file.
func LoadYAML(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return ParseYAML(data)
}

// ParseYAML builds a catalog from YAML content.
func ParseYAML(data []byte) (*Catalog, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}

	entries := make([]Entry, 0, len(file.Products))
	for _, p := range file.Products {
		entries = append(entries, Entry{Name: p.Name, Price: p.Price})
	}

	return New(entries, file.ExchangeRequired)
}

// File returns the catalog in its YAML file layout.
func (c *Catalog) File() File {
	f := File{Products: make([]FileProduct, 0, len(c.products))}
	for _, p := range c.products {
		f.Products = append(f.Products, FileProduct{Name: p.Name, Price: p.Price})
		if p.ExchangeRequired {
			f.ExchangeRequired = append(f.ExchangeRequired, p.Name)
		}
	}
	return f
}

// WriteYAML encodes the catalog in the layout ParseYAML reads.
func (c *Catalog) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c.File()); err != nil {
		return fmt.Errorf("failed to encode catalog: %w", err)
	}
	return enc.Close()
}

// LoadCSV reads a catalog from a CSV file with the same three columns as the
// XLSX layout: name, price, exchange flag. The delimiter may be "," or ";".
func LoadCSV(path string) (*Catalog, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ReadCSV(file)
}

// ReadCSV reads a catalog from CSV content.
func ReadCSV(r io.Reader) (*Catalog, error) {
	reader := bufio.NewReader(r)

	// Spreadsheet exports in this locale use ';' because ',' is the decimal
	// separator. Sniff the header line to pick the delimiter.
	comma := ','
	if head, err := reader.Peek(256); err == nil || err == io.EOF {
		line := string(head)
		if i := strings.IndexByte(line, '\n'); i >= 0 {
			line = line[:i]
		}
		if strings.Count(line, ";") > strings.Count(line, ",") {
			comma = ';'
		}
	}

	csvReader := csv.NewReader(reader)
	csvReader.Comma = comma
	csvReader.FieldsPerRecord = -1
	csvReader.LazyQuotes = true
	csvReader.TrimLeadingSpace = true

	rows, err := csvReader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}

	return fromRecords(rows, DefaultSheetColumns())
}
