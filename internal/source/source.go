package source

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"clipset/internal/services"
)

const (
	FormatPlain    = "plain"
	FormatVGGSound = "vggsound"

	youtubeIDLength = 11
)

// Item is one row of the input table.
type Item struct {
	Index      int
	Identifier string
	Offset     float64
	Label      string
}

// Stem is the base name shared by every file derived from the item.
func (i Item) Stem() string {
	return strconv.Itoa(i.Index)
}

// URL renders the identifier through template. Identifiers that are already
// URLs are returned unchanged.
func (i Item) URL(template string) string {
	id := strings.TrimSpace(i.Identifier)
	if strings.Contains(id, "://") || !strings.Contains(template, "%s") {
		return id
	}
	return fmt.Sprintf(template, id)
}

// Load reads up to limit items from the CSV file at path. A limit of zero
// or less reads every row.
func Load(path, format string, limit int) ([]Item, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, services.Wrap(services.ErrInvalidPath, "source", "open table", path, err)
	}
	defer file.Close()
	return Read(file, format, limit)
}

// Read parses items from r.
func Read(r io.Reader, format string, limit int) ([]Item, error) {
	parse, err := parserFor(format)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	var items []Item
	for limit <= 0 || len(items) < limit {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "source", "read table", "malformed csv", err)
		}
		if blank(record) {
			continue
		}
		line, _ := reader.FieldPos(0)
		item, err := parse(record)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "source", "parse row", fmt.Sprintf("line %d", line), err)
		}
		item.Index = len(items)
		items = append(items, item)
	}
	return items, nil
}

type rowParser func(record []string) (Item, error)

func parserFor(format string) (rowParser, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case FormatPlain, "":
		return parsePlain, nil
	case FormatVGGSound:
		return parseVGGSound, nil
	default:
		return nil, services.Wrap(services.ErrValidation, "source", "select format", fmt.Sprintf("unsupported input format %q", format), nil)
	}
}

func parsePlain(record []string) (Item, error) {
	if len(record) < 2 {
		return Item{}, fmt.Errorf("expected identifier,offset[,label], got %d fields", len(record))
	}
	id := strings.TrimSpace(record[0])
	if id == "" {
		return Item{}, errors.New("empty identifier")
	}
	offset, err := parseOffset(record[1])
	if err != nil {
		return Item{}, err
	}
	item := Item{Identifier: id, Offset: offset}
	if len(record) > 2 {
		item.Label = strings.TrimSpace(record[2])
	}
	return item, nil
}

func parseVGGSound(record []string) (Item, error) {
	switch {
	case len(record) >= 3:
		id := strings.TrimSpace(record[0])
		if id == "" {
			return Item{}, errors.New("empty identifier")
		}
		offset, err := parseOffset(record[1])
		if err != nil {
			return Item{}, err
		}
		return Item{Identifier: id, Offset: offset, Label: strings.TrimSpace(record[2])}, nil
	case len(record) == 2:
		key := strings.TrimSpace(record[0])
		if len(key) <= youtubeIDLength+1 {
			return Item{}, fmt.Errorf("key %q is not ytid_start", key)
		}
		start := key[youtubeIDLength+1:]
		if len(start) > 6 {
			start = start[:6]
		}
		offset, err := strconv.Atoi(start)
		if err != nil {
			return Item{}, fmt.Errorf("start in %q: %w", key, err)
		}
		return Item{
			Identifier: key[:youtubeIDLength],
			Offset:     float64(offset),
			Label:      strings.TrimSpace(record[1]),
		}, nil
	default:
		return Item{}, fmt.Errorf("expected ytid_start,label or ytid,start,label, got %d fields", len(record))
	}
}

func parseOffset(value string) (float64, error) {
	offset, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, fmt.Errorf("offset %q: %w", value, err)
	}
	if offset < 0 {
		return 0, fmt.Errorf("offset %v is negative", offset)
	}
	return offset, nil
}

func blank(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

// Labels returns the label of every item, in order.
func Labels(items []Item) []string {
	labels := make([]string, len(items))
	for i, item := range items {
		labels[i] = item.Label
	}
	return labels
}
