// Package docs coordinates the document lifecycle: upload with best-effort
// background thumbnail rendering, metadata updates, reordering, deletion,
// and the quality-upgrade channel for client-rendered thumbnails.
package docs

import (
	"bytes"
	"context"
	"image"
	"path"
	"path/filepath"
	"strings"
	"sync"

	"docvault/internal/blob"
	"docvault/internal/database"
	"docvault/internal/doctypes"
	"docvault/internal/logging"
	"docvault/internal/metrics"
	"docvault/internal/render"

	"github.com/google/uuid"

	// Decoders for validating submitted thumbnails.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// DefaultMaxUploadSize caps uploads when no limit is configured.
const DefaultMaxUploadSize = 100 << 20 // 100 MiB

// maxThumbnailSize caps client-submitted thumbnail payloads.
const maxThumbnailSize = 5 << 20 // 5 MiB

// Options configures a Service.
type Options struct {
	MaxUploadSize int64
	RenderWorkers int
}

// ThumbnailRenderer produces a thumbnail for a payload. It never fails;
// the worst case is a synthetic placeholder. *render.Pipeline is the
// production implementation.
type ThumbnailRenderer interface {
	Render(ctx context.Context, data []byte, mimeType string) render.Result
}

// Service owns document records and their storage artifacts. All
// collaborators are injected; the process entry point owns their
// lifecycles.
type Service struct {
	db       *database.Database
	blobs    *blob.Store
	pipeline ThumbnailRenderer

	maxUploadSize int64
	renderSem     chan struct{}
	renders       sync.WaitGroup
}

// New builds a Service. RenderWorkers bounds concurrent background renders.
func New(db *database.Database, blobs *blob.Store, pipeline ThumbnailRenderer, opts Options) *Service {
	if opts.MaxUploadSize <= 0 {
		opts.MaxUploadSize = DefaultMaxUploadSize
	}
	if opts.RenderWorkers < 1 {
		opts.RenderWorkers = 1
	}
	return &Service{
		db:            db,
		blobs:         blobs,
		pipeline:      pipeline,
		maxUploadSize: opts.MaxUploadSize,
		renderSem:     make(chan struct{}, opts.RenderWorkers),
	}
}

// Upload validates and persists a new document, then kicks off thumbnail
// generation in the background. The call returns as soon as the primary
// file and the metadata row exist; the thumbnail reference fills in later.
func (s *Service) Upload(ctx context.Context, userID, fileName, mimeType string, data []byte) (*database.Document, error) {
	if userID == "" {
		return nil, validationf("missing user id")
	}
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return nil, validationf("missing file name")
	}
	if len(data) == 0 {
		return nil, validationf("empty file")
	}
	if int64(len(data)) > s.maxUploadSize {
		return nil, validationf("file exceeds %d byte limit", s.maxUploadSize)
	}

	mime := doctypes.DetectMime(mimeType, fileName)
	category := doctypes.DocCategoryFor(mime)
	id := uuid.NewString()

	fileKey := fileKeyFor(userID, id, fileName)
	if err := s.blobs.Write(fileKey, data); err != nil {
		metrics.UploadsTotal.WithLabelValues(string(category), "error").Inc()
		return nil, &StorageError{Op: "write", Err: err}
	}

	doc := &database.Document{
		ID:       id,
		UserID:   userID,
		Name:     displayName(fileName),
		FileName: fileName,
		Category: category,
		MimeType: mime,
		Size:     int64(len(data)),
		FilePath: fileKey,
	}

	if err := s.db.CreateDocument(ctx, doc); err != nil {
		// The record never existed, so the orphaned file is reclaimed
		// right away.
		if rmErr := s.blobs.Remove(fileKey); rmErr != nil {
			logging.Warn("Failed to reclaim file after create failure: %v", rmErr)
		}
		metrics.UploadsTotal.WithLabelValues(string(category), "error").Inc()
		return nil, err
	}

	metrics.UploadsTotal.WithLabelValues(string(category), "success").Inc()
	logging.Info("Document uploaded: %s (%s, %d bytes), rendering thumbnail", id, mime, len(data))

	s.scheduleRender(userID, id, mime, data)
	return doc, nil
}

// scheduleRender runs the thumbnail pipeline as a detached unit of work.
// The upload caller never blocks on it, and its failures never surface.
func (s *Service) scheduleRender(userID, id, mimeType string, data []byte) {
	s.renders.Add(1)
	go func() {
		defer s.renders.Done()

		s.renderSem <- struct{}{}
		defer func() { <-s.renderSem }()

		metrics.RendersInFlight.Inc()
		defer metrics.RendersInFlight.Dec()

		// Deliberately not tied to the upload request context: the
		// render outlives the HTTP call that triggered it.
		res := s.pipeline.Render(context.Background(), data, mimeType)

		thumbKey := thumbKeyFor(userID, id)
		if err := s.blobs.Write(thumbKey, res.Data); err != nil {
			// Thumbnail storage is best-effort: log, mark failed, move on.
			logging.Error("Failed to store thumbnail for %s: %v", id, err)
			if _, dbErr := s.db.SetThumbnail(context.Background(), id, "", database.ThumbFailed); dbErr != nil {
				logging.Error("Failed to record thumbnail failure for %s: %v", id, dbErr)
			}
			return
		}

		status := database.ThumbReady
		if res.FellBack {
			status = database.ThumbFailed
		}

		ok, err := s.db.SetThumbnail(context.Background(), id, thumbKey, status)
		if err != nil {
			logging.Error("Failed to record thumbnail for %s: %v", id, err)
			return
		}
		if !ok {
			// The document was deleted while we rendered. The write is a
			// no-op; reclaim the artifact so nothing orphaned remains.
			metrics.StaleRenderDrops.Inc()
			logging.Info("Document %s deleted mid-render, dropping thumbnail", id)
			if rmErr := s.blobs.Remove(thumbKey); rmErr != nil {
				logging.Warn("Failed to reclaim stale thumbnail %s: %v", thumbKey, rmErr)
			}
			return
		}

		logging.Debug("Thumbnail ready for %s (%s, fellBack=%v)", id, thumbKey, res.FellBack)
	}()
}

// WaitForRenders blocks until all in-flight background renders finish.
// Used by graceful shutdown and tests.
func (s *Service) WaitForRenders() {
	s.renders.Wait()
}

// Get returns one document.
func (s *Service) Get(ctx context.Context, userID, id string) (*database.Document, error) {
	return s.db.GetDocument(ctx, userID, id)
}

// List returns all of a user's documents, pinned first then in sort order.
func (s *Service) List(ctx context.Context, userID string) ([]database.Document, error) {
	return s.db.ListDocuments(ctx, userID)
}

// UpdateRequest carries optional metadata changes for Update. Nil fields
// are left untouched.
type UpdateRequest struct {
	Name      *string
	Tags      *[]string
	Pinned    *bool
	SortOrder *int
}

// Update applies metadata-only changes; file storage is never touched.
func (s *Service) Update(ctx context.Context, userID, id string, req UpdateRequest) (*database.Document, error) {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, validationf("name cannot be empty")
	}

	if req.Name != nil || req.Pinned != nil || req.SortOrder != nil {
		upd := database.MetaUpdate{Pinned: req.Pinned, SortOrder: req.SortOrder}
		if req.Name != nil {
			trimmed := strings.TrimSpace(*req.Name)
			upd.Name = &trimmed
		}
		if err := s.db.UpdateMeta(ctx, userID, id, upd); err != nil {
			return nil, err
		}
	}

	if req.Tags != nil {
		if err := s.db.SetDocumentTags(ctx, userID, id, *req.Tags); err != nil {
			return nil, err
		}
	}

	return s.db.GetDocument(ctx, userID, id)
}

// Reorder assigns dense sequential sort positions matching orderedIDs.
// All-or-nothing: one bad id leaves the previous order intact.
func (s *Service) Reorder(ctx context.Context, userID string, orderedIDs []string) error {
	if len(orderedIDs) == 0 {
		return validationf("empty id list")
	}
	seen := make(map[string]bool, len(orderedIDs))
	for _, id := range orderedIDs {
		if id == "" {
			return validationf("empty document id")
		}
		if seen[id] {
			return validationf("duplicate document id %s", id)
		}
		seen[id] = true
	}
	return s.db.ReorderDocuments(ctx, userID, orderedIDs)
}

// Delete removes the document's files and then its record. Filesystem
// cleanup runs first so a crash mid-operation leaves at worst an orphaned
// artifact, never a dangling reference. Missing files are tolerated, which
// makes the filesystem half idempotent.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	doc, err := s.db.GetDocument(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.blobs.Remove(doc.FilePath); err != nil {
		return &StorageError{Op: "delete", Err: err}
	}
	if doc.ThumbPath != "" {
		if err := s.blobs.Remove(doc.ThumbPath); err != nil {
			// Best-effort, same policy as thumbnail writes.
			logging.Warn("Failed to delete thumbnail %s: %v", doc.ThumbPath, err)
		}
	}

	if err := s.db.DeleteDocument(ctx, userID, id); err != nil {
		return err
	}

	metrics.DeletesTotal.Inc()
	logging.Info("Document deleted: %s", id)
	return nil
}

// SubmitThumbnail accepts a pre-rendered, higher-fidelity thumbnail from a
// capable client and repoints the document at it. The server-side
// placeholder is provisional by design and replaceable any number of
// times; the superseded artifact is reclaimed best-effort.
func (s *Service) SubmitThumbnail(ctx context.Context, userID, id string, data []byte) (*database.Document, error) {
	if len(data) == 0 {
		metrics.ThumbnailUpgradesTotal.WithLabelValues("rejected").Inc()
		return nil, validationf("empty thumbnail payload")
	}
	if len(data) > maxThumbnailSize {
		metrics.ThumbnailUpgradesTotal.WithLabelValues("rejected").Inc()
		return nil, validationf("thumbnail exceeds %d byte limit", maxThumbnailSize)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		metrics.ThumbnailUpgradesTotal.WithLabelValues("rejected").Inc()
		return nil, validationf("payload is not a decodable image: %v", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		metrics.ThumbnailUpgradesTotal.WithLabelValues("rejected").Inc()
		return nil, validationf("image has no pixels")
	}

	// Distinct name per submission so the swap is atomic from the
	// record's point of view and old/new never collide.
	ext := "." + format
	if format == "jpeg" {
		ext = ".jpg"
	}
	newKey := path.Join("users", userID, "thumbs", id+"-"+uuid.NewString()+ext)

	if err := s.blobs.Write(newKey, data); err != nil {
		metrics.ThumbnailUpgradesTotal.WithLabelValues("error").Inc()
		return nil, &StorageError{Op: "write", Err: err}
	}

	oldKey, err := s.db.SwapThumbnail(ctx, userID, id, newKey)
	if err != nil {
		if rmErr := s.blobs.Remove(newKey); rmErr != nil {
			logging.Warn("Failed to reclaim unreferenced thumbnail %s: %v", newKey, rmErr)
		}
		metrics.ThumbnailUpgradesTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	if oldKey != "" && oldKey != newKey {
		if err := s.blobs.Remove(oldKey); err != nil {
			// Deleting the superseded artifact never blocks the upgrade.
			logging.Warn("Failed to delete superseded thumbnail %s: %v", oldKey, err)
		}
	}

	metrics.ThumbnailUpgradesTotal.WithLabelValues("success").Inc()
	logging.Info("Thumbnail upgraded for document %s (%dx%d %s)", id, cfg.Width, cfg.Height, format)
	return s.db.GetDocument(ctx, userID, id)
}

// ThumbnailPath returns the blob key and MIME type for serving a
// document's thumbnail.
func (s *Service) ThumbnailPath(ctx context.Context, userID, id string) (string, string, error) {
	doc, err := s.db.GetDocument(ctx, userID, id)
	if err != nil {
		return "", "", err
	}
	if !doc.HasThumbnail() {
		return "", "", ErrNotFound
	}
	return doc.ThumbPath, thumbnailMime(doc.ThumbPath), nil
}

func thumbnailMime(key string) string {
	switch strings.ToLower(filepath.Ext(key)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return render.ThumbnailMimeType
	}
}

func fileKeyFor(userID, id, fileName string) string {
	ext := strings.ToLower(filepath.Ext(fileName))
	return path.Join("users", userID, "files", id+ext)
}

func thumbKeyFor(userID, id string) string {
	return path.Join("users", userID, "thumbs", id+".jpg")
}

// displayName derives the initial display name from the uploaded filename.
func displayName(fileName string) string {
	base := filepath.Base(fileName)
	if ext := filepath.Ext(base); ext != "" && len(base) > len(ext) {
		base = base[:len(base)-len(ext)]
	}
	return base
}
