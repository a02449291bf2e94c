// Package rawitems reads scraped items from JSONL or JSON array files and
// writes processed output as JSONL.
package rawitems

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/canhta/CareCircle/pkg/carecircle/ingest"
)

const maxLineBytes = 16 << 20

// LoadFile loads items from a JSONL file or a file holding one JSON array.
// Malformed JSONL lines are logged and skipped.
func LoadFile(path string, logger zerolog.Logger) ([]ingest.RawItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file %s: %w", path, err)
	}

	items, err := Decode(data, logger.With().Str("file", path).Logger())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return items, nil
}

// Decode parses JSONL or a JSON array, chosen by the first non-space byte.
func Decode(data []byte, logger zerolog.Logger) ([]ingest.RawItem, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("no items found")
	}

	if trimmed[0] == '[' {
		var items []ingest.RawItem
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("decode json array: %w", err)
		}
		return items, nil
	}

	return decodeLines(bytes.NewReader(trimmed), logger)
}

func decodeLines(r io.Reader, logger zerolog.Logger) ([]ingest.RawItem, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var items []ingest.RawItem
	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		var item ingest.RawItem
		if err := json.Unmarshal(raw, &item); err != nil {
			logger.Warn().Err(err).Int("line", line).Msg("skipping malformed JSON line")
			continue
		}
		items = append(items, item)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if len(items) == 0 {
		return nil, fmt.Errorf("no valid items found")
	}
	return items, nil
}

// WriteJSONL writes one JSON document per value.
func WriteJSONL[T any](w io.Writer, values []T) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	for _, v := range values {
		if err := enc.Encode(v); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteFile writes values as JSONL to path, replacing it.
func WriteFile[T any](path string, values []T) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteJSONL(f, values); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
