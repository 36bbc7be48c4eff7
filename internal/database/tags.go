package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"docvault/internal/logging"
	"docvault/internal/metrics"
)

// SetDocumentTags replaces a document's tag set. Names are trimmed,
// deduplicated case-insensitively, and empty entries dropped. Missing tags
// are created on the fly; the whole replacement is one transaction.
func (d *Database) SetDocumentTags(ctx context.Context, userID, docID string, tags []string) error {
	done := metrics.ObserveQuery("set_document_tags")

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		done(err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			logging.Error("rollback failed: %v", err)
		}
	}()

	var exists int
	err = tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM documents WHERE id = ? AND user_id = ?",
		docID, userID,
	).Scan(&exists)
	if err != nil {
		done(err)
		return fmt.Errorf("failed to verify document: %w", err)
	}
	if exists == 0 {
		done(nil)
		return ErrNotFound
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM document_tags WHERE document_id = ?", docID,
	); err != nil {
		done(err)
		return fmt.Errorf("failed to clear tags: %w", err)
	}

	for _, name := range normalizeTags(tags) {
		var tagID int64
		err := tx.QueryRowContext(ctx,
			"SELECT id FROM tags WHERE user_id = ? AND name = ? COLLATE NOCASE",
			userID, name,
		).Scan(&tagID)
		if errors.Is(err, sql.ErrNoRows) {
			result, createErr := tx.ExecContext(ctx,
				"INSERT INTO tags (user_id, name) VALUES (?, ?)",
				userID, name,
			)
			if createErr != nil {
				done(createErr)
				return fmt.Errorf("failed to create tag %q: %w", name, createErr)
			}
			tagID, _ = result.LastInsertId()
		} else if err != nil {
			done(err)
			return fmt.Errorf("failed to look up tag %q: %w", name, err)
		}

		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO document_tags (document_id, tag_id) VALUES (?, ?)",
			docID, tagID,
		); err != nil {
			done(err)
			return fmt.Errorf("failed to attach tag %q: %w", name, err)
		}
	}

	err = tx.Commit()
	done(err)
	if err != nil {
		return fmt.Errorf("failed to commit tags: %w", err)
	}
	return nil
}

// ListTags returns a user's tags with usage counts, unused tags excluded.
func (d *Database) ListTags(ctx context.Context, userID string) ([]Tag, error) {
	done := metrics.ObserveQuery("list_tags")

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx, `
		SELECT t.name, COUNT(dt.id)
		FROM tags t
		INNER JOIN document_tags dt ON dt.tag_id = t.id
		WHERE t.user_id = ?
		GROUP BY t.id
		ORDER BY t.name COLLATE NOCASE`,
		userID,
	)
	if err != nil {
		done(err)
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	defer rows.Close()

	var tags []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.Name, &t.Count); err != nil {
			done(err)
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, t)
	}

	err = rows.Err()
	done(err)
	if err != nil {
		return nil, fmt.Errorf("failed to iterate tags: %w", err)
	}
	return tags, nil
}

// documentTags loads one document's tag names. Callers hold the lock.
func (d *Database) documentTags(ctx context.Context, docID string) ([]string, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT t.name
		FROM document_tags dt
		INNER JOIN tags t ON t.id = dt.tag_id
		WHERE dt.document_id = ?
		ORDER BY t.name COLLATE NOCASE`,
		docID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load document tags: %w", err)
	}
	defer rows.Close()

	var tags []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan tag name: %w", err)
		}
		tags = append(tags, name)
	}
	return tags, rows.Err()
}

// normalizeTags trims, drops empties, and dedupes case-insensitively while
// keeping a stable order.
func normalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	var out []string
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
