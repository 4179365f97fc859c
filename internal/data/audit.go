package data

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rsdeals/discord-bridge/internal/biz/domain"
	"github.com/rsdeals/discord-bridge/internal/biz/repo"
)

const (
	maxLogEntries     = 200
	dedupeLookback    = 50
	renameRetries     = 10
	renameRetryDelay  = 50 * time.Millisecond
	timestampLayout   = "2006-01-02 15:04:05"
	maxContentPersist = 200
)

// logFiles maps logical log names to their on-disk files.
var logFiles = map[string]string{
	domain.LogFiltered: "filteredlogs.json",
	domain.LogD2D:      "d2dlogs.json",
	domain.LogBot:      "botlogs.json",
}

// auditRepo persists audit entries as capped JSON arrays, one file per
// logical log, with signature-based near-duplicate suppression and
// atomic replace-on-write.
type auditRepo struct {
	dir           string
	sourceGuildID string
	destGuildID   string
	mu            sync.Mutex
	now           func() time.Time
}

// NewAuditRepo creates the audit store rooted at dir. Guild ids are
// used for permalink derivation only.
func NewAuditRepo(dir, sourceGuildID, destGuildID string) (repo.AuditRepo, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	return &auditRepo{
		dir:           dir,
		sourceGuildID: sourceGuildID,
		destGuildID:   destGuildID,
		now:           time.Now,
	}, nil
}

// Append decorates, deduplicates and persists one entry. Malformed or
// missing log files degrade to an empty array; a ruined log must never
// take the pipeline down with it.
func (r *auditRepo) Append(logName string, entry domain.Entry) error {
	file, ok := logFiles[logName]
	if !ok {
		return fmt.Errorf("unknown log %q", logName)
	}
	path := filepath.Join(r.dir, file)

	record := entry.Clone()
	record["timestamp"] = r.now().Format(timestampLayout)
	record.Scrub()
	record.SetPermalink(r.sourceGuildID, r.destGuildID)
	if content, ok := record["content"].(string); ok {
		record["content"] = domain.TruncateContent(content, maxContentPersist)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	entries := readEntries(path)

	// Two collaborators logging the same logical event within a short
	// span must collapse to one record.
	sig := record.Signature()
	start := len(entries) - dedupeLookback
	if start < 0 {
		start = 0
	}
	for _, existing := range entries[start:] {
		if existing.Signature() == sig {
			return nil
		}
	}

	record["entry_id"] = uuid.NewString()
	entries = append(entries, record)
	if len(entries) > maxLogEntries {
		entries = entries[len(entries)-maxLogEntries:]
	}

	return writeEntries(path, entries)
}

// readEntries loads a log file, tolerating absence and malformed JSON.
func readEntries(path string) []domain.Entry {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var entries []domain.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		fmt.Printf("[Audit] Malformed log %s, starting fresh: %v\n", filepath.Base(path), err)
		return nil
	}
	return entries
}

// writeEntries persists via temp-file-then-rename. Concurrent readers
// holding the file open can make the rename transiently fail on some
// platforms, so it is retried briefly before falling back to an
// in-place overwrite.
func writeEntries(path string, entries []domain.Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode log: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temp log: %w", err)
	}

	for i := 0; i < renameRetries; i++ {
		if err := os.Rename(tmpPath, path); err == nil {
			return nil
		}
		time.Sleep(renameRetryDelay)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write log: %w", err)
	}
	os.Remove(tmpPath)
	return nil
}
