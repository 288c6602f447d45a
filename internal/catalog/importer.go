package catalog

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ImportConfig defines where catalog fields live in a spreadsheet
type ImportConfig struct {
	FilePath       string // Path to the Excel or CSV file
	SubjectColumn  string // Column with the subject
	UnitColumn     string // Column with the unit
	TopicColumn    string // Column with the topic
	SubtopicColumn string // Column with the subtopic
	SheetName      string // Name of the sheet to import (Excel only)
	StartRow       int    // The row to start importing from (1-based index)
}

// DefaultImportConfig returns the default import configuration
func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		SubjectColumn:  "A",
		UnitColumn:     "B",
		TopicColumn:    "C",
		SubtopicColumn: "D",
		SheetName:      "Sheet1",
		StartRow:       2, // skip header
	}
}

// ImportResult holds the result of an import operation
type ImportResult struct {
	Catalogs       []*Catalog // one per subject, in first-seen order
	TotalProcessed int
	Skipped        int
	Errors         []string
}

// Import reads an Excel or CSV file into catalogs
func Import(config ImportConfig) (*ImportResult, error) {
	rows, err := readRows(config)
	if err != nil {
		return nil, err
	}

	b := newBuilder()
	result := &ImportResult{Errors: make([]string, 0)}
	cols := [4]int{
		columnToIndex(config.SubjectColumn),
		columnToIndex(config.UnitColumn),
		columnToIndex(config.TopicColumn),
		columnToIndex(config.SubtopicColumn),
	}

	for i, row := range rows {
		if i < config.StartRow-1 {
			continue
		}
		result.TotalProcessed++

		var fields [4]string
		empty := true
		for j, col := range cols {
			if col >= 0 && col < len(row) {
				fields[j] = strings.TrimSpace(row[col])
			}
			if fields[j] != "" {
				empty = false
			}
		}
		if empty {
			result.Skipped++
			continue
		}
		if fields[0] == "" || fields[2] == "" || fields[3] == "" {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: subject, topic and subtopic are required", i+1))
			continue
		}
		b.add(fields[0], fields[1], fields[2], fields[3])
	}

	result.Catalogs = b.catalogs
	return result, nil
}

// WriteJSON saves c as <subject>.json in dir and returns the path
func WriteJSON(dir string, c *Catalog) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create catalog directory: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode catalog: %w", err)
	}
	name := strings.ToLower(strings.Join(strings.Fields(c.Subject), "_")) + ".json"
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write catalog: %w", err)
	}
	return path, nil
}

func readRows(config ImportConfig) ([][]string, error) {
	if strings.ToLower(filepath.Ext(config.FilePath)) == ".csv" {
		file, err := os.Open(config.FilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open CSV file: %w", err)
		}
		defer file.Close()

		reader := csv.NewReader(file)
		reader.FieldsPerRecord = -1
		var rows [][]string
		for {
			row, err := reader.Read()
			if err == io.EOF {
				break
			}
			if err != nil {
				return nil, fmt.Errorf("failed to read CSV: %w", err)
			}
			rows = append(rows, row)
		}
		return rows, nil
	}

	f, err := excelize.OpenFile(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(config.SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows: %w", err)
	}
	return rows, nil
}

// builder assembles catalogs while keeping first-seen order at every level
type builder struct {
	catalogs  []*Catalog
	bySubject map[string]*Catalog
}

func newBuilder() *builder {
	return &builder{bySubject: make(map[string]*Catalog)}
}

func (b *builder) add(subject, unit, topic, subtopic string) {
	c, ok := b.bySubject[subject]
	if !ok {
		c = &Catalog{Subject: subject}
		b.bySubject[subject] = c
		b.catalogs = append(b.catalogs, c)
	}

	ui := -1
	for i := range c.Units {
		if c.Units[i].Unit == unit {
			ui = i
			break
		}
	}
	if ui == -1 {
		c.Units = append(c.Units, Unit{Unit: unit})
		ui = len(c.Units) - 1
	}
	u := &c.Units[ui]

	ti := -1
	for i := range u.Topics {
		if u.Topics[i].Topic == topic {
			ti = i
			break
		}
	}
	if ti == -1 {
		u.Topics = append(u.Topics, Topic{Topic: topic})
		ti = len(u.Topics) - 1
	}
	t := &u.Topics[ti]

	for _, s := range t.Subtopics {
		if s == subtopic {
			return
		}
	}
	t.Subtopics = append(t.Subtopics, subtopic)
}

// columnToIndex converts an Excel column letter to a 0-based index
func columnToIndex(column string) int {
	column = strings.ToUpper(strings.TrimSpace(column))
	if column == "" {
		return -1
	}
	result := 0
	for _, c := range column {
		if c < 'A' || c > 'Z' {
			return -1
		}
		result = result*26 + int(c-'A'+1)
	}
	return result - 1
}
