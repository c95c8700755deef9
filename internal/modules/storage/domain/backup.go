package domain

import (
	"bytes"
	"encoding/json"
	"fmt"

	apperrors "keyloop/internal/platform/errors"
)

const BackupVersion = 1

// Backup is the export document. Each namespace holds the stored JSON
// verbatim, or null when nothing is stored.
type Backup struct {
	Version       int             `json:"version"`
	ExportedAt    int64           `json:"exportedAt"`
	Preferences   json.RawMessage `json:"preferences"`
	SongProgress  json.RawMessage `json:"songProgress"`
	PracticeStats json.RawMessage `json:"practiceStats"`
	RecentFiles   json.RawMessage `json:"recentFiles"`
	Settings      json.RawMessage `json:"settings"`
}

func (b *Backup) Raw(ns Namespace) json.RawMessage {
	switch ns {
	case NamespacePreferences:
		return b.Preferences
	case NamespaceSongProgress:
		return b.SongProgress
	case NamespacePracticeStats:
		return b.PracticeStats
	case NamespaceRecentFiles:
		return b.RecentFiles
	case NamespaceSettings:
		return b.Settings
	default:
		return nil
	}
}

func (b *Backup) Set(ns Namespace, raw json.RawMessage) {
	if len(raw) == 0 {
		raw = json.RawMessage("null")
	}
	switch ns {
	case NamespacePreferences:
		b.Preferences = raw
	case NamespaceSongProgress:
		b.SongProgress = raw
	case NamespacePracticeStats:
		b.PracticeStats = raw
	case NamespaceRecentFiles:
		b.RecentFiles = raw
	case NamespaceSettings:
		b.Settings = raw
	}
}

// ParseBackup decodes and validates every present namespace. It returns the
// canonical encoding of each present namespace; nothing is returned unless
// the whole document is valid.
func ParseBackup(data []byte) (map[Namespace][]byte, error) {
	var doc Backup
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrImport, err)
	}
	if doc.Version > BackupVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", apperrors.ErrImport, doc.Version)
	}
	out := make(map[Namespace][]byte)
	for _, ns := range Namespaces() {
		raw := doc.Raw(ns)
		if isNull(raw) {
			continue
		}
		canonical, err := canonicalize(ns, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", apperrors.ErrImport, ns, err)
		}
		out[ns] = canonical
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no known namespace present", apperrors.ErrImport)
	}
	return out, nil
}

func canonicalize(ns Namespace, raw json.RawMessage) ([]byte, error) {
	switch ns {
	case NamespacePreferences:
		prefs := DefaultPreferences()
		if err := strictDecode(raw, &prefs); err != nil {
			return nil, err
		}
		if err := prefs.Validate(); err != nil {
			return nil, err
		}
		return json.Marshal(prefs)
	case NamespaceSongProgress:
		var all map[string]SongProgress
		if err := strictDecode(raw, &all); err != nil {
			return nil, err
		}
		if all == nil {
			return nil, fmt.Errorf("expected an object")
		}
		for key, record := range all {
			if err := record.Validate(); err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
		}
		return json.Marshal(all)
	case NamespacePracticeStats:
		var stats PracticeStats
		if err := strictDecode(raw, &stats); err != nil {
			return nil, err
		}
		if err := stats.Validate(); err != nil {
			return nil, err
		}
		return json.Marshal(stats)
	case NamespaceRecentFiles:
		var files []RecentFile
		if err := strictDecode(raw, &files); err != nil {
			return nil, err
		}
		if files == nil {
			return nil, fmt.Errorf("expected an array")
		}
		if err := ValidateRecentFiles(files); err != nil {
			return nil, err
		}
		if len(files) > MaxRecentFiles {
			files = files[:MaxRecentFiles]
		}
		return json.Marshal(files)
	case NamespaceSettings:
		var settings map[string]any
		if err := json.Unmarshal(raw, &settings); err != nil {
			return nil, err
		}
		if settings == nil {
			return nil, fmt.Errorf("expected an object")
		}
		return json.Marshal(settings)
	default:
		return nil, fmt.Errorf("unknown namespace")
	}
}

func strictDecode(raw json.RawMessage, v any) error {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
