package accuracy

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/segmentio/parquet-go"
)

// FileFormat identifies a supported corpus file format.
type FileFormat string

const (
	FormatCSV     FileFormat = "csv"
	FormatParquet FileFormat = "parquet"
	FormatJSONL   FileFormat = "jsonl"
)

// DetectFileFormat picks the corpus format from the file extension.
// JSON Lines is the default for unknown extensions.
func DetectFileFormat(filename string) FileFormat {
	switch {
	case strings.HasSuffix(filename, ".csv"):
		return FormatCSV
	case strings.HasSuffix(filename, ".parquet"):
		return FormatParquet
	default:
		return FormatJSONL
	}
}

// LoadCorpus reads a labeled corpus from disk, detecting the format from
// the extension. CSV and Parquet carry annotations as a JSON-encoded
// column; JSONL carries one LabeledDocument object per line.
func LoadCorpus(path string) (*Corpus, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening corpus file: %w", err)
	}
	defer file.Close()

	switch DetectFileFormat(path) {
	case FormatCSV:
		return readCSV(file)
	case FormatParquet:
		return readParquet(file)
	default:
		return readJSONL(file)
	}
}

func readJSONL(r io.Reader) (*Corpus, error) {
	decoder := json.NewDecoder(r)
	corpus := &Corpus{}
	for {
		var doc LabeledDocument
		err := decoder.Decode(&doc)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decoding corpus record %d: %w", len(corpus.Documents)+1, err)
		}
		corpus.Documents = append(corpus.Documents, doc)
	}
	return corpus, nil
}

// readCSV expects columns text, locales, entities. The locales column is
// comma-separated country codes; the entities column is a JSON array of
// annotations.
func readCSV(r io.Reader) (*Corpus, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 3

	if _, err := reader.Read(); err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}

	corpus := &Corpus{}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV record %d: %w", len(corpus.Documents)+2, err)
		}

		doc := LabeledDocument{Text: record[0]}
		for _, locale := range strings.Split(record[1], ",") {
			if locale = strings.TrimSpace(locale); locale != "" {
				doc.Locales = append(doc.Locales, locale)
			}
		}
		if entities := strings.TrimSpace(record[2]); entities != "" && entities != "[]" {
			if err := json.Unmarshal([]byte(entities), &doc.Entities); err != nil {
				return nil, fmt.Errorf("parsing entities for record %d: %w", len(corpus.Documents)+2, err)
			}
		}
		corpus.Documents = append(corpus.Documents, doc)
	}
	return corpus, nil
}

// parquetRecord mirrors LabeledDocument with flattened columns for Parquet
// corpora: locales comma-separated, entities JSON-encoded.
type parquetRecord struct {
	Text     string `parquet:"text"`
	Locales  string `parquet:"locales"`
	Entities string `parquet:"entities"`
}

func readParquet(file *os.File) (*Corpus, error) {
	reader := parquet.NewReader(file)
	defer reader.Close()

	corpus := &Corpus{}
	for {
		var record parquetRecord
		err := reader.Read(&record)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading Parquet record %d: %w", len(corpus.Documents)+1, err)
		}

		doc := LabeledDocument{Text: record.Text}
		for _, locale := range strings.Split(record.Locales, ",") {
			if locale = strings.TrimSpace(locale); locale != "" {
				doc.Locales = append(doc.Locales, locale)
			}
		}
		if entities := strings.TrimSpace(record.Entities); entities != "" && entities != "[]" {
			if err := json.Unmarshal([]byte(entities), &doc.Entities); err != nil {
				return nil, fmt.Errorf("parsing entities for record %d: %w", len(corpus.Documents)+1, err)
			}
		}
		corpus.Documents = append(corpus.Documents, doc)
	}
	return corpus, nil
}
