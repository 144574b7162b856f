package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"design-order-backend/internal/models"
)

// SlotName prefixes every persisted draft key.
const SlotName = "order-store"

// PersistVersion is bumped whenever the persisted shape changes. Payloads with
// another version are discarded on load.
const PersistVersion = 1

var (
	ErrSlotEmpty          = errors.New("draft slot is empty")
	ErrIncompatibleFormat = errors.New("persisted draft has an incompatible version")
)

// PersistedDraft is the serialisable part of an OrderDraft. File blobs are not
// part of it.
type PersistedDraft struct {
	ProjectType        models.ProjectType `json:"projectType"`
	ContentText        string             `json:"contentText"`
	Dimensions         string             `json:"dimensions,omitempty"`
	ReferenceLinks     []string           `json:"referenceLinks"`
	IsExpress          bool               `json:"isExpress"`
	IncludeSourceFiles bool               `json:"includeSourceFiles"`
	Email              string             `json:"email"`
	TermsAccepted      bool               `json:"termsAccepted"`
}

// Persisted is what goes into the durable slot.
type Persisted struct {
	Version      int            `json:"version"`
	CurrentStep  int            `json:"currentStep"`
	PreviousStep int            `json:"previousStep"`
	FormData     PersistedDraft `json:"formData"`
}

// Persistable projects the store onto its durable shape, dropping file blobs.
func (s *Store) Persistable() Persisted {
	d := s.draft
	return Persisted{
		Version:      PersistVersion,
		CurrentStep:  s.currentStep,
		PreviousStep: s.previousStep,
		FormData: PersistedDraft{
			ProjectType:        d.ProjectType,
			ContentText:        d.ContentText,
			Dimensions:         d.Dimensions,
			ReferenceLinks:     append([]string(nil), d.ReferenceLinks...),
			IsExpress:          d.IsExpress,
			IncludeSourceFiles: d.IncludeSourceFiles,
			Email:              d.Email,
			TermsAccepted:      d.TermsAccepted,
		},
	}
}

// Restore rebuilds a store from its durable shape. Uploaded files come back
// empty.
func Restore(p Persisted) (*Store, error) {
	if p.Version != PersistVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrIncompatibleFormat, p.Version, PersistVersion)
	}
	f := p.FormData
	current, previous := clampStep(p.CurrentStep), clampStep(p.PreviousStep)
	return &Store{
		currentStep:  current,
		previousStep: previous,
		direction:    directionOf(previous, current),
		draft: models.OrderDraft{
			ProjectType:        f.ProjectType,
			ContentText:        f.ContentText,
			Dimensions:         f.Dimensions,
			ReferenceLinks:     append([]string(nil), f.ReferenceLinks...),
			UploadedFiles:      []models.FileBlob{},
			IsExpress:          f.IsExpress,
			IncludeSourceFiles: f.IncludeSourceFiles,
			Email:              f.Email,
			TermsAccepted:      f.TermsAccepted,
		},
	}, nil
}

// Slot is a durable key-value slot for persisted drafts.
type Slot interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Clear(ctx context.Context, key string) error
}

// Persister saves and restores stores under a per-session key.
type Persister struct {
	slot Slot
}

func NewPersister(slot Slot) *Persister {
	return &Persister{slot: slot}
}

func SlotKey(sessionID string) string {
	return SlotName + ":" + sessionID
}

func (p *Persister) Save(ctx context.Context, sessionID string, s *Store) error {
	data, err := json.Marshal(s.Persistable())
	if err != nil {
		return fmt.Errorf("failed to encode draft: %w", err)
	}
	if err := p.slot.Save(ctx, SlotKey(sessionID), data); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

// Load restores the store for sessionID. An empty slot yields ErrSlotEmpty and
// an unreadable or outdated payload yields ErrIncompatibleFormat.
func (p *Persister) Load(ctx context.Context, sessionID string) (*Store, error) {
	data, err := p.slot.Load(ctx, SlotKey(sessionID))
	if err != nil {
		return nil, err
	}
	var persisted Persisted
	if err := json.Unmarshal(data, &persisted); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIncompatibleFormat, err)
	}
	return Restore(persisted)
}

func (p *Persister) Clear(ctx context.Context, sessionID string) error {
	return p.slot.Clear(ctx, SlotKey(sessionID))
}
