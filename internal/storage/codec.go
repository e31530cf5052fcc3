package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/rahulmohankumar24/finch-demo/internal/matter"
)

// SnapshotVersion is the current snapshot document version.
const SnapshotVersion = 1

// Snapshot is the document written by the file backend and by export.
type Snapshot struct {
	Version int                          `json:"version" yaml:"version"`
	Matters map[string]matter.MatterData `json:"matters" yaml:"matters"`
	Clients []Client                     `json:"clients,omitempty" yaml:"clients,omitempty"`
}

// NewSnapshot returns an empty snapshot at the current version.
func NewSnapshot() *Snapshot {
	return &Snapshot{Version: SnapshotVersion, Matters: make(map[string]matter.MatterData)}
}

// Format is a snapshot encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// ParseFormat parses a format name. Empty means YAML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "yaml", "yml":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown snapshot format: %s", s)
	}
}

// FormatForPath picks the encoding from a file extension.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// EncodeSnapshot serializes s in the given format.
func EncodeSnapshot(s *Snapshot, f Format) ([]byte, error) {
	if s.Version == 0 {
		s.Version = SnapshotVersion
	}
	switch f {
	case FormatJSON:
		data, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode snapshot: %w", err)
		}
		return append(data, '\n'), nil
	default:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return nil, fmt.Errorf("encode snapshot: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode snapshot: %w", err)
		}
		return buf.Bytes(), nil
	}
}

// DecodeSnapshot parses a snapshot document. JSON is detected by content,
// anything else is read as YAML. Both the wrapped form ({version, matters,
// clients}) and a bare matterId -> matter mapping are accepted.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return NewSnapshot(), nil
	}

	var s *Snapshot
	var err error
	if gjson.ValidBytes(trimmed) {
		s, err = decodeJSON(trimmed)
	} else {
		s, err = decodeYAML(trimmed)
	}
	if err != nil {
		return nil, err
	}

	if s.Version > SnapshotVersion {
		return nil, fmt.Errorf("unsupported snapshot version %d (max %d)", s.Version, SnapshotVersion)
	}
	if s.Version == 0 {
		s.Version = SnapshotVersion
	}
	if s.Matters == nil {
		s.Matters = make(map[string]matter.MatterData)
	}
	return s, nil
}

func decodeJSON(data []byte) (*Snapshot, error) {
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, fmt.Errorf("decode snapshot: top level must be an object")
	}

	s := &Snapshot{}
	matters := root.Get("matters")
	if !matters.Exists() {
		if err := json.Unmarshal(data, &s.Matters); err != nil {
			return nil, fmt.Errorf("decode matters: %w", err)
		}
		return s, nil
	}

	s.Version = int(root.Get("version").Int())
	if err := json.Unmarshal([]byte(matters.Raw), &s.Matters); err != nil {
		return nil, fmt.Errorf("decode matters: %w", err)
	}
	if clients := root.Get("clients"); clients.Exists() {
		if err := json.Unmarshal([]byte(clients.Raw), &s.Clients); err != nil {
			return nil, fmt.Errorf("decode clients: %w", err)
		}
	}
	return s, nil
}

func decodeYAML(data []byte) (*Snapshot, error) {
	var probe map[string]yaml.Node
	if err := yaml.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	s := &Snapshot{}
	if _, wrapped := probe["matters"]; wrapped {
		if err := yaml.Unmarshal(data, s); err != nil {
			return nil, fmt.Errorf("decode snapshot: %w", err)
		}
		return s, nil
	}
	if err := yaml.Unmarshal(data, &s.Matters); err != nil {
		return nil, fmt.Errorf("decode matters: %w", err)
	}
	return s, nil
}
