package sampler

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	_ "embed"
)

//go:embed emojis.txt
var defaultCatalogData string

// Catalog is the fixed universe of selectable emoji symbols, loaded once
// and immutable afterwards. Each symbol carries a human-readable label.
type Catalog struct {
	symbols []string
	labels  map[string]string
}

// DefaultCatalog parses the embedded emoji list.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(strings.NewReader(defaultCatalogData))
}

// LoadCatalog reads a catalog from a symbol:label file on disk.
func LoadCatalog(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()

	catalog, err := ParseCatalog(f)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return catalog, nil
}

// ParseCatalog reads symbol:label pairs, one per line, colon-delimited.
// Blank lines are ignored; a line without the delimiter fails the load.
func ParseCatalog(r io.Reader) (*Catalog, error) {
	c := &Catalog{labels: make(map[string]string)}

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		symbol, label, ok := strings.Cut(line, ":")
		if !ok {
			return nil, fmt.Errorf("malformed catalog line %d: missing delimiter", lineNum)
		}
		symbol = strings.TrimSpace(symbol)
		label = strings.TrimSpace(label)
		if symbol == "" {
			return nil, fmt.Errorf("malformed catalog line %d: empty symbol", lineNum)
		}

		if _, exists := c.labels[symbol]; exists {
			continue
		}
		c.symbols = append(c.symbols, symbol)
		c.labels[symbol] = label
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	if len(c.symbols) == 0 {
		return nil, fmt.Errorf("catalog is empty")
	}
	return c, nil
}

// Len returns the catalog size.
func (c *Catalog) Len() int {
	return len(c.symbols)
}

// Symbols returns the catalog's symbols in load order.
func (c *Catalog) Symbols() []string {
	out := make([]string, len(c.symbols))
	copy(out, c.symbols)
	return out
}

// Label returns the label for a symbol.
func (c *Catalog) Label(symbol string) (string, bool) {
	label, ok := c.labels[symbol]
	return label, ok
}
