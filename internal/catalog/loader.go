package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/jask/malla/internal/curriculum"
)

// ErrLoad wraps every failure to read or decode a catalog.
var ErrLoad = errors.New("catalog load failed")

// Format names a catalog encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

const maxCatalogBytes = 8 << 20

// Loader reads a catalog from a file path or an http(s) URL. Skipped
// entries are logged to Log when it is set.
type Loader struct {
	Client *http.Client
	Log    *zerolog.Logger
}

// Load reads and decodes the catalog at source with a default Loader.
func Load(ctx context.Context, source string) ([]curriculum.Course, error) {
	return (&Loader{}).Load(ctx, source)
}

// Load reads and decodes the catalog at source.
func (l *Loader) Load(ctx context.Context, source string) ([]curriculum.Course, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, fmt.Errorf("%w: no catalog source configured", ErrLoad)
	}
	var (
		data   []byte
		format Format
		err    error
	)
	if isURL(source) {
		data, format, err = l.fetch(ctx, source)
	} else {
		data, err = os.ReadFile(source)
		format = FormatFromPath(source)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoad, source, err)
	}
	records, skipped, err := Decode(data, format)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrLoad, source, err)
	}
	if l.Log != nil {
		for _, sk := range skipped {
			l.Log.Warn().Err(sk.Err).Int("index", sk.Index).Str("source", source).Msg("catalog record skipped")
		}
	}
	return Courses(records), nil
}

func (l *Loader) fetch(ctx context.Context, source string) ([]byte, Format, error) {
	client := l.Client
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("HTTP status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCatalogBytes))
	if err != nil {
		return nil, "", err
	}

	format := FormatJSON
	if u, err := url.Parse(source); err == nil {
		format = FormatFromPath(u.Path)
	}
	if mt, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type")); err == nil {
		switch {
		case strings.Contains(mt, "toml"):
			format = FormatTOML
		case strings.Contains(mt, "yaml"):
			format = FormatYAML
		}
	}
	return data, format, nil
}

func isURL(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// FormatFromPath picks the format by file extension; JSON is the default.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Skip describes a catalog entry that was left out because it could not be
// decoded. Index is the entry's position in the document.
type Skip struct {
	Index int
	Err   error
}

func (s Skip) Error() string {
	return fmt.Sprintf("record %d: %v", s.Index, s.Err)
}

// Decode parses catalog records. JSON and YAML accept either a bare list or
// an object with a "materias" list; TOML always uses [[materias]] tables.
// Each entry is decoded on its own: a malformed entry is reported in skipped
// and the rest are kept. Only a document that cannot be parsed at all is an
// error.
func Decode(data []byte, format Format) (records []Record, skipped []Skip, err error) {
	switch format {
	case FormatTOML:
		return decodeTOML(data)
	case FormatYAML:
		return decodeYAML(data)
	default:
		return decodeJSON(data)
	}
}

func decodeTOML(data []byte) ([]Record, []Skip, error) {
	var doc struct {
		Materias []toml.Primitive `toml:"materias"`
	}
	md, err := toml.Decode(string(data), &doc)
	if err != nil {
		return nil, nil, fmt.Errorf("decode toml: %w", err)
	}
	var (
		records []Record
		skipped []Skip
	)
	for i, p := range doc.Materias {
		var rec Record
		if err := md.PrimitiveDecode(p, &rec); err != nil {
			skipped = append(skipped, Skip{Index: i, Err: err})
			continue
		}
		records = append(records, rec)
	}
	return records, skipped, nil
}

func decodeJSON(data []byte) ([]Record, []Skip, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil, errors.New("empty catalog")
	}
	var raws []json.RawMessage
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &raws); err != nil {
			return nil, nil, fmt.Errorf("decode json: %w", err)
		}
	} else {
		var doc struct {
			Materias []json.RawMessage `json:"materias"`
		}
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return nil, nil, fmt.Errorf("decode json: %w", err)
		}
		raws = doc.Materias
	}
	var (
		records []Record
		skipped []Skip
	)
	for i, raw := range raws {
		var rec Record
		if err := json.Unmarshal(raw, &rec); err != nil {
			skipped = append(skipped, Skip{Index: i, Err: err})
			continue
		}
		records = append(records, rec)
	}
	return records, skipped, nil
}

func decodeYAML(data []byte) ([]Record, []Skip, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, nil, fmt.Errorf("decode yaml: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, nil, errors.New("empty catalog")
	}
	var nodes []yaml.Node
	node := root.Content[0]
	if node.Kind == yaml.SequenceNode {
		for _, n := range node.Content {
			nodes = append(nodes, *n)
		}
	} else {
		var doc struct {
			Materias []yaml.Node `yaml:"materias"`
		}
		if err := node.Decode(&doc); err != nil {
			return nil, nil, fmt.Errorf("decode yaml: %w", err)
		}
		nodes = doc.Materias
	}
	var (
		records []Record
		skipped []Skip
	)
	for i := range nodes {
		var rec Record
		if err := nodes[i].Decode(&rec); err != nil {
			skipped = append(skipped, Skip{Index: i, Err: err})
			continue
		}
		records = append(records, rec)
	}
	return records, skipped, nil
}
