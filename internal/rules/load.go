package rules

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/thoreinstein/mimeo/internal/errors"
	"github.com/thoreinstein/mimeo/pkg/fileutil"
)

// Format identifies a rule file encoding.
type Format string

// Supported rule file formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatDSL  Format = "dsl"
)

// FormatFromPath picks the format from the file extension. Unknown
// extensions use the line format.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatDSL
	}
}

// Load reads and parses the rule file at path. Records without an id are
// assigned one by position.
func Load(path string) ([]Record, error) {
	data, err := fileutil.ReadFileWithLimit(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading rules file %s", path)
	}

	records, err := Parse(data, FormatFromPath(path))
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", path)
	}
	return records, nil
}

// Parse decodes data in the given format.
func Parse(data []byte, format Format) ([]Record, error) {
	var (
		records []Record
		err     error
	)

	switch format {
	case FormatDSL:
		records, err = parseDSL(data)
	case FormatJSON, FormatYAML, FormatTOML:
		records, err = parseStructured(data, format)
	default:
		return nil, errors.Newf("unsupported rules format %q", format)
	}
	if err != nil {
		return nil, errors.Mark(err, errors.ErrInvalidRules)
	}

	AssignIDs(records)
	return records, nil
}

// rawRecord is the on-disk shape shared by the structured formats. Loosely
// typed fields are normalized by toRecord.
type rawRecord struct {
	ID           any    `json:"id" yaml:"id" toml:"id"`
	Type         string `json:"type" yaml:"type" toml:"type"`
	OriginalPath string `json:"original_path" yaml:"original_path" toml:"original_path"`
	BackupPath   string `json:"backup_path" yaml:"backup_path" toml:"backup_path"`
	Filename     string `json:"filename" yaml:"filename" toml:"filename"`
	File         string `json:"file" yaml:"file" toml:"file"`
	Count        any    `json:"count" yaml:"count" toml:"count"`
	Number       any    `json:"number" yaml:"number" toml:"number"`
}

type rawFile struct {
	Rules *[]rawRecord `json:"rules" yaml:"rules" toml:"rules"`
}

func parseStructured(data []byte, format Format) ([]Record, error) {
	var doc rawFile

	switch format {
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			return nil, errors.Wrap(err, "parsing JSON")
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, errors.Wrap(err, "parsing YAML")
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, errors.Wrap(err, "parsing TOML")
		}
	}

	if doc.Rules == nil {
		return nil, errors.New(`missing top-level "rules" list`)
	}

	records := make([]Record, 0, len(*doc.Rules))
	for _, raw := range *doc.Rules {
		records = append(records, raw.toRecord())
	}
	return records, nil
}

func (raw rawRecord) toRecord() Record {
	r := Record{
		ID:           scalarString(raw.ID),
		Type:         NormalizeType(raw.Type),
		OriginalPath: raw.OriginalPath,
		BackupPath:   raw.BackupPath,
		Filename:     raw.Filename,
	}
	if r.Filename == "" {
		r.Filename = raw.File
	}

	count := raw.Count
	if count == nil {
		count = raw.Number
	}
	n, err := toCount(count)
	if err != nil {
		r.Problems = append(r.Problems, fmt.Sprintf("count: %v", err))
	}
	r.Count = n

	return r
}

func scalarString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	default:
		return fmt.Sprint(x)
	}
}

// toCount accepts the integer encodings produced by the JSON, YAML and TOML
// decoders, plus decimal strings.
func toCount(v any) (int, error) {
	switch x := v.(type) {
	case nil:
		return 0, nil
	case int:
		return x, nil
	case int64:
		return int(x), nil
	case uint64:
		if x > math.MaxInt {
			return 0, errors.Newf("%d is out of range", x)
		}
		return int(x), nil
	case float64:
		if x != math.Trunc(x) {
			return 0, errors.Newf("%v is not a whole number", x)
		}
		return int(x), nil
	case json.Number:
		n, err := strconv.Atoi(x.String())
		if err != nil {
			return 0, errors.Newf("%q is not a whole number", x.String())
		}
		return n, nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return 0, errors.Newf("%q is not a whole number", x)
		}
		return n, nil
	default:
		return 0, errors.Newf("unsupported value %v", x)
	}
}
