package admin

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/dukerupert/flipcart/internal/domain"
	"github.com/dukerupert/flipcart/internal/email"
	"github.com/dukerupert/flipcart/internal/handler"
	"github.com/dukerupert/flipcart/internal/middleware"
	"github.com/dukerupert/flipcart/internal/storage"
	"github.com/dukerupert/flipcart/internal/worker"
)

// multipartMemory is how much of a multipart form is held in memory before
// spilling to temp files.
const multipartMemory = 8 << 20

// ImportNotifier mails the outcome of a CSV upload.
type ImportNotifier interface {
	SendImportReport(ctx context.Context, report email.ImportReport) error
}

// UploadRecorder counts image uploads.
type UploadRecorder interface {
	RecordImageUpload(err error)
}

// TaskRunner runs work after the response has been sent.
type TaskRunner interface {
	Submit(name string, task worker.Task) error
}

// goRunner runs each task on its own goroutine.
type goRunner struct{}

func (goRunner) Submit(_ string, task worker.Task) error {
	go func() { _ = task(context.Background()) }()
	return nil
}

// UploadHandler handles CSV imports and image uploads.
type UploadHandler struct {
	catalog  domain.CatalogStore
	storage  storage.Storage
	notifier ImportNotifier
	metrics  UploadRecorder
	tasks    TaskRunner
}

// NewUploadHandler creates a new upload handler. notifier, metrics and tasks
// may be nil.
func NewUploadHandler(catalog domain.CatalogStore, store storage.Storage, notifier ImportNotifier, metrics UploadRecorder, tasks TaskRunner) *UploadHandler {
	if tasks == nil {
		tasks = goRunner{}
	}
	return &UploadHandler{
		catalog:  catalog,
		storage:  store,
		notifier: notifier,
		metrics:  metrics,
		tasks:    tasks,
	}
}

type importResponse struct {
	Success       int                 `json:"success"`
	Message       string              `json:"message"`
	ImportedCount int                 `json:"importedCount"`
	CreatedCount  int                 `json:"createdCount"`
	Skipped       []domain.SkippedRow `json:"skipped"`
}

// UploadCSV handles POST /api/products/upload-csv (multipart field "file")
func (h *UploadHandler) UploadCSV(w http.ResponseWriter, r *http.Request) {
	const op = "admin.upload_csv"

	file, header, err := formFile(r, op, "file")
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		handler.ErrorResponse(w, r, readError(err, op))
		return
	}

	res, err := h.catalog.ImportCSV(r.Context(), data)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	audit(r, "Upload", "upload_csv",
		"filename", header.Filename,
		"imported", res.Imported,
		"created", res.Created,
		"skipped", len(res.Skipped),
	)
	h.notifyImport(r, header.Filename, res)

	skipped := res.Skipped
	if skipped == nil {
		skipped = []domain.SkippedRow{}
	}
	handler.WriteJSON(w, http.StatusOK, importResponse{
		Success:       1,
		Message:       "CSV processed successfully",
		ImportedCount: res.Imported,
		CreatedCount:  res.Created,
		Skipped:       skipped,
	})
}

// notifyImport mails the report in the background. Mail failures never
// affect the upload.
func (h *UploadHandler) notifyImport(r *http.Request, filename string, res *domain.ImportResult) {
	if h.notifier == nil {
		return
	}
	logger := middleware.GetLogger(r.Context())
	report := email.ImportReport{Filename: filename, Result: res}
	if admin := middleware.GetAdmin(r.Context()); admin != nil {
		report.Admin = admin.Username
	}

	err := h.tasks.Submit("import_report", func(ctx context.Context) error {
		if err := h.notifier.SendImportReport(ctx, report); err != nil {
			logger.Warn("import report not sent", "file", filename, "error", err)
			return err
		}
		return nil
	})
	if err != nil {
		logger.Warn("import report dropped", "file", filename, "error", err)
	}
}

type imageResponse struct {
	Success   int    `json:"success"`
	ImageURL  string `json:"imageUrl"`
	Filename  string `json:"filename"`
	VariantID string `json:"variant_id,omitempty"`
	Slot      int    `json:"slot,omitempty"`
}

// UploadImage handles POST /api/products/upload-image (multipart field
// "image"). With variant_id the URL is also recorded in the variant's image
// slot, which defaults to 1.
func (h *UploadHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	url, resp, err := h.uploadImage(r)
	if h.metrics != nil {
		h.metrics.RecordImageUpload(err)
	}
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}
	resp.ImageURL = url
	handler.WriteJSON(w, http.StatusOK, resp)
}

func (h *UploadHandler) uploadImage(r *http.Request) (string, imageResponse, error) {
	const op = "admin.upload_image"
	var resp imageResponse

	file, header, err := formFile(r, op, "image")
	if err != nil {
		return "", resp, err
	}
	defer file.Close()

	variantID := strings.TrimSpace(r.FormValue("variant_id"))
	slot := 0
	if raw := strings.TrimSpace(r.FormValue("slot")); raw != "" {
		slot, err = strconv.Atoi(raw)
		if err != nil || slot < 1 || slot > domain.ImageSlots {
			return "", resp, domain.NewValidationError(op, "slot", "slot must be between 1 and 5")
		}
	}
	if variantID != "" && slot == 0 {
		slot = 1
	}

	// Trust the bytes over the client's Content-Type header.
	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", resp, readError(err, op)
	}
	head = head[:n]
	contentType := http.DetectContentType(head)
	ext, ok := storage.ImageExtension(contentType)
	if !ok {
		return "", resp, domain.NewValidationError(op, "image", "image must be a JPEG, PNG, WebP or GIF file")
	}

	key := storage.ImageKey(variantID, slot, ext)
	url, err := h.storage.Put(r.Context(), key, io.MultiReader(bytes.NewReader(head), file), contentType)
	if err != nil {
		return "", resp, domain.Internal(err, op, "failed to store image")
	}

	if variantID != "" {
		if err := h.catalog.SetVariantImage(r.Context(), variantID, slot, url); err != nil {
			if derr := h.storage.Delete(context.WithoutCancel(r.Context()), key); derr != nil {
				middleware.GetLogger(r.Context()).Warn("orphaned image not removed", "key", key, "error", derr)
			}
			return "", resp, err
		}
	}

	audit(r, "Upload", "upload_image", "key", key, "original", header.Filename, "variant_id", variantID, "slot", slot)
	resp = imageResponse{Success: 1, Filename: key, VariantID: variantID}
	if variantID != "" {
		resp.Slot = slot
	}
	return url, resp, nil
}

func formFile(r *http.Request, op, field string) (multipart.File, *multipart.FileHeader, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return nil, nil, readError(err, op)
	}
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, domain.NewValidationError(op, field, "No file uploaded")
		}
		return nil, nil, readError(err, op)
	}
	return file, header, nil
}

func readError(err error, op string) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return domain.Errorf(domain.ETOOLARGE, op, "upload exceeds %d bytes", tooLarge.Limit)
	}
	return domain.WrapError(err, domain.EINVALID, op, "invalid multipart upload")
}
