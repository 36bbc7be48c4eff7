package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"docvault/internal/logging"
	"docvault/internal/metrics"
)

const documentColumns = `id, user_id, name, file_name, category, mime_type, size,
	file_path, thumb_path, thumb_status, pinned, sort_order, created_at`

func scanDocument(row interface{ Scan(...interface{}) error }) (*Document, error) {
	var doc Document
	var thumbPath sql.NullString
	var createdAt int64

	err := row.Scan(
		&doc.ID, &doc.UserID, &doc.Name, &doc.FileName, &doc.Category,
		&doc.MimeType, &doc.Size, &doc.FilePath, &thumbPath,
		&doc.ThumbStatus, &doc.Pinned, &doc.SortOrder, &createdAt,
	)
	if err != nil {
		return nil, err
	}

	if thumbPath.Valid {
		doc.ThumbPath = thumbPath.String
	}
	doc.CreatedAt = time.Unix(createdAt, 0)
	return &doc, nil
}

// CreateDocument inserts a new record, assigning it the next sort position
// for its owner. The thumbnail reference starts unset with status pending.
func (d *Database) CreateDocument(ctx context.Context, doc *Document) error {
	done := metrics.ObserveQuery("create_document")

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

	var next int
	err = tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(sort_order), -1) + 1 FROM documents WHERE user_id = ?",
		doc.UserID,
	).Scan(&next)
	if err != nil {
		done(err)
		return fmt.Errorf("failed to assign sort order: %w", err)
	}
	doc.SortOrder = next
	doc.ThumbStatus = ThumbPending
	doc.CreatedAt = time.Now()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (id, user_id, name, file_name, category, mime_type,
			size, file_path, thumb_status, pinned, sort_order, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID, doc.UserID, doc.Name, doc.FileName, doc.Category, doc.MimeType,
		doc.Size, doc.FilePath, doc.ThumbStatus, doc.Pinned, doc.SortOrder,
		doc.CreatedAt.Unix(),
	)
	if err != nil {
		done(err)
		return fmt.Errorf("failed to insert document: %w", err)
	}

	err = tx.Commit()
	done(err)
	if err != nil {
		return fmt.Errorf("failed to commit document: %w", err)
	}
	return nil
}

// GetDocument loads one record by id, scoped to its owner.
func (d *Database) GetDocument(ctx context.Context, userID, id string) (*Document, error) {
	done := metrics.ObserveQuery("get_document")

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc, err := scanDocument(d.db.QueryRowContext(ctx,
		"SELECT "+documentColumns+" FROM documents WHERE id = ? AND user_id = ?",
		id, userID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		done(nil)
		return nil, ErrNotFound
	}
	if err != nil {
		done(err)
		return nil, fmt.Errorf("failed to get document: %w", err)
	}

	doc.Tags, err = d.documentTags(ctx, doc.ID)
	done(err)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// ListDocuments returns all of a user's records, pinned first, then by the
// user-assigned sort order.
func (d *Database) ListDocuments(ctx context.Context, userID string) ([]Document, error) {
	done := metrics.ObserveQuery("list_documents")

	d.mu.RLock()
	defer d.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(ctx,
		"SELECT "+documentColumns+` FROM documents WHERE user_id = ?
		ORDER BY pinned DESC, sort_order ASC, created_at ASC`,
		userID,
	)
	if err != nil {
		done(err)
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			done(err)
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		done(err)
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}

	for i := range docs {
		tags, err := d.documentTags(ctx, docs[i].ID)
		if err != nil {
			done(err)
			return nil, err
		}
		docs[i].Tags = tags
	}

	done(nil)
	return docs, nil
}

// UpdateMeta applies metadata-only changes and returns the fresh record.
func (d *Database) UpdateMeta(ctx context.Context, userID, id string, upd MetaUpdate) error {
	done := metrics.ObserveQuery("update_document")

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := "UPDATE documents SET id = id"
	args := []interface{}{}
	if upd.Name != nil {
		query += ", name = ?"
		args = append(args, *upd.Name)
	}
	if upd.Pinned != nil {
		query += ", pinned = ?"
		args = append(args, *upd.Pinned)
	}
	if upd.SortOrder != nil {
		query += ", sort_order = ?"
		args = append(args, *upd.SortOrder)
	}
	query += " WHERE id = ? AND user_id = ?"
	args = append(args, id, userID)

	result, err := d.db.ExecContext(ctx, query, args...)
	done(err)
	if err != nil {
		return fmt.Errorf("failed to update document: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SetThumbnail records the background render result for a document. It is
// deliberately not user-scoped: the render task only knows the document id.
// The returned bool is false when the row no longer exists, which callers
// treat as a no-op (the document was deleted mid-render).
func (d *Database) SetThumbnail(ctx context.Context, id, thumbPath string, status ThumbStatus) (bool, error) {
	done := metrics.ObserveQuery("set_thumbnail")

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var path interface{}
	if thumbPath != "" {
		path = thumbPath
	}

	result, err := d.db.ExecContext(ctx,
		"UPDATE documents SET thumb_path = ?, thumb_status = ? WHERE id = ?",
		path, status, id,
	)
	if err != nil {
		done(err)
		return false, fmt.Errorf("failed to set thumbnail: %w", err)
	}

	affected, err := result.RowsAffected()
	done(err)
	if err != nil {
		return false, fmt.Errorf("failed to check thumbnail update: %w", err)
	}
	return affected > 0, nil
}

// SwapThumbnail atomically repoints the thumbnail reference and returns the
// prior path so the caller can reclaim the superseded artifact. The old and
// new paths are never visible together.
func (d *Database) SwapThumbnail(ctx context.Context, userID, id, thumbPath string) (string, error) {
	done := metrics.ObserveQuery("swap_thumbnail")

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		done(err)
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			logging.Error("rollback failed: %v", err)
		}
	}()

	var old sql.NullString
	err = tx.QueryRowContext(ctx,
		"SELECT thumb_path FROM documents WHERE id = ? AND user_id = ?",
		id, userID,
	).Scan(&old)
	if errors.Is(err, sql.ErrNoRows) {
		done(nil)
		return "", ErrNotFound
	}
	if err != nil {
		done(err)
		return "", fmt.Errorf("failed to read thumbnail path: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"UPDATE documents SET thumb_path = ?, thumb_status = ? WHERE id = ?",
		thumbPath, ThumbReady, id,
	)
	if err != nil {
		done(err)
		return "", fmt.Errorf("failed to swap thumbnail: %w", err)
	}

	err = tx.Commit()
	done(err)
	if err != nil {
		return "", fmt.Errorf("failed to commit thumbnail swap: %w", err)
	}
	return old.String, nil
}

// DeleteDocument removes the record. Tag links go with it via cascade.
func (d *Database) DeleteDocument(ctx context.Context, userID, id string) error {
	done := metrics.ObserveQuery("delete_document")

	d.mu.Lock()
	defer d.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	result, err := d.db.ExecContext(ctx,
		"DELETE FROM documents WHERE id = ? AND user_id = ?",
		id, userID,
	)
	if err != nil {
		done(err)
		return fmt.Errorf("failed to delete document: %w", err)
	}

	affected, err := result.RowsAffected()
	done(err)
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ReorderDocuments assigns dense sequential sort positions matching the
// given id sequence. The whole reorder is a single transaction: an unknown
// or foreign id rolls everything back so sort order never ends up partially
// applied.
func (d *Database) ReorderDocuments(ctx context.Context, userID string, orderedIDs []string) error {
	done := metrics.ObserveQuery("reorder_documents")

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

	for pos, id := range orderedIDs {
		result, err := tx.ExecContext(ctx,
			"UPDATE documents SET sort_order = ? WHERE id = ? AND user_id = ?",
			pos, id, userID,
		)
		if err != nil {
			done(err)
			return fmt.Errorf("failed to reorder document %s: %w", id, err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			done(err)
			return fmt.Errorf("failed to check reorder result: %w", err)
		}
		if affected == 0 {
			done(nil)
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
	}

	err = tx.Commit()
	done(err)
	if err != nil {
		return fmt.Errorf("failed to commit reorder: %w", err)
	}
	return nil
}
