package checkout

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"design-order-backend/internal/models"
	"design-order-backend/internal/schema"
)

// ErrCheckoutUnavailable is the retryable failure shown when a checkout
// session could not be obtained. The draft is left untouched.
var ErrCheckoutUnavailable = errors.New("failed to proceed to checkout, please try again")

const maxParallelUploads = 4

type SessionCreator interface {
	CreateSession(ctx context.Context, req models.CheckoutRequest) (*models.CheckoutResponse, error)
}

type FileUploader interface {
	UploadReference(ctx context.Context, draftID string, blob models.FileBlob) (models.FileMetadata, error)
}

// Handoff turns a completed draft into a checkout session and returns the
// URL the customer must be sent to.
type Handoff struct {
	creator  SessionCreator
	uploader FileUploader
	log      logrus.FieldLogger
}

// NewHandoff wires the handoff. uploader may be nil, in which case file
// metadata is forwarded without storage URLs.
func NewHandoff(creator SessionCreator, uploader FileUploader, log logrus.FieldLogger) *Handoff {
	return &Handoff{creator: creator, uploader: uploader, log: log}
}

// Start re-validates d, uploads its file blobs and requests a checkout session.
// Validation problems come back as schema.FieldErrors or ErrMissingFields;
// everything else is wrapped in ErrCheckoutUnavailable.
func (h *Handoff) Start(ctx context.Context, draftID string, d models.OrderDraft) (*models.CheckoutResponse, error) {
	if d.Email == "" || d.ContentText == "" || d.ProjectType == "" {
		return nil, ErrMissingFields
	}
	if errs := schema.ValidateWhole(d); !errs.OK() {
		return nil, errs
	}

	files, err := h.uploadReferences(ctx, draftID, d.UploadedFiles)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCheckoutUnavailable, err)
	}

	resp, err := h.creator.CreateSession(ctx, models.CheckoutRequest{
		Email:              d.Email,
		ContentText:        d.ContentText,
		ProjectType:        d.ProjectType,
		Dimensions:         d.Dimensions,
		IsExpress:          d.IsExpress,
		IncludeSourceFiles: d.IncludeSourceFiles,
		ReferenceLinks:     append([]string{}, d.ReferenceLinks...),
		UploadedFiles:      files,
		DraftID:            draftID,
	})
	if err != nil {
		h.log.WithError(err).WithField("draft_id", draftID).Error("checkout session request failed")
		return nil, fmt.Errorf("%w: %v", ErrCheckoutUnavailable, err)
	}
	if resp == nil || resp.URL == "" {
		return nil, fmt.Errorf("%w: %v", ErrCheckoutUnavailable, ErrNoCheckoutURL)
	}
	return resp, nil
}

// uploadReferences stores the blobs concurrently. The result keeps the order
// of blobs; the first failure cancels the remaining uploads.
func (h *Handoff) uploadReferences(ctx context.Context, draftID string, blobs []models.FileBlob) ([]models.FileMetadata, error) {
	files := make([]models.FileMetadata, len(blobs))
	if h.uploader == nil {
		for i, blob := range blobs {
			files[i] = models.FileMetadata{Name: blob.Name, Size: blob.Size, Type: blob.Type}
		}
		return files, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelUploads)
	for i, blob := range blobs {
		g.Go(func() error {
			meta, err := h.uploader.UploadReference(gctx, draftID, blob)
			if err != nil {
				h.log.WithError(err).WithFields(logrus.Fields{
					"draft_id": draftID,
					"file":     blob.Name,
				}).Error("reference upload failed")
				return err
			}
			files[i] = meta
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}
