package out

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"keyloop/internal/modules/session/domain"
	sessionout "keyloop/internal/modules/session/port/out"
)

// JournalSessionStore writes one YAML document per session under
// <dir>/sessions/YYYY/MM/DD.
type JournalSessionStore struct {
	root string
}

func NewJournalSessionStore(dataDir string) sessionout.SessionJournal {
	return &JournalSessionStore{root: filepath.Join(dataDir, "sessions")}
}

type journalEntry struct {
	SchemaVersion  int `yaml:"schema_version"`
	domain.Session `yaml:",inline"`
}

func (s *JournalSessionStore) Save(_ context.Context, session domain.Session) (string, error) {
	date := session.StartedAt.UTC()
	dir := filepath.Join(s.root, date.Format("2006"), date.Format("01"), date.Format("02"))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create session dir: %w", err)
	}
	id := session.ID
	if len(id) > 8 {
		id = id[:8]
	}
	path := filepath.Join(dir, fmt.Sprintf("%s-%s.yaml", date.Format("150405"), id))
	payload, err := yaml.Marshal(journalEntry{SchemaVersion: domain.SchemaVersion, Session: session})
	if err != nil {
		return "", fmt.Errorf("encode session: %w", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", fmt.Errorf("write session: %w", err)
	}
	return path, nil
}

// Recent returns up to limit sessions, newest first. Unreadable entries are
// skipped.
func (s *JournalSessionStore) Recent(_ context.Context, limit int) ([]domain.Session, error) {
	var out []domain.Session
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return fs.SkipAll
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".yaml") {
			return nil
		}
		payload, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		var entry journalEntry
		if err := yaml.Unmarshal(payload, &entry); err != nil || entry.ID == "" {
			return nil
		}
		out = append(out, entry.Session)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read session journal: %w", err)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EndedAt.After(out[j].EndedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
