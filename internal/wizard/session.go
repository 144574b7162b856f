package wizard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"design-order-backend/internal/draft"
	"design-order-backend/internal/models"
	"design-order-backend/internal/schema"
)

var (
	ErrUnknownStep          = errors.New("unknown wizard step")
	ErrStepMismatch         = errors.New("submitted step is not the current step")
	ErrStepNotReached       = errors.New("step has not been reached yet")
	ErrNotEditingReferences = errors.New("references can only be edited on the references step")
	ErrSubmissionPending    = errors.New("checkout is already in progress")
	ErrDraftReset           = errors.New("draft was reset while checkout was in progress")
)

// Checkout hands a completed draft to the payment collaborator.
type Checkout interface {
	Start(ctx context.Context, draftID string, d models.OrderDraft) (*models.CheckoutResponse, error)
}

// Session is one customer's wizard. All methods are safe for concurrent use;
// requests for the same session are applied one at a time.
type Session struct {
	id        string
	checkout  Checkout
	persister *draft.Persister
	log       logrus.FieldLogger

	mu         sync.Mutex
	store      *draft.Store
	steps      []Component
	refs       *referencesStep
	furthest   int
	submitting bool
	generation uint64
}

func newSession(id string, store *draft.Store, checkout Checkout, persister *draft.Persister, log logrus.FieldLogger) *Session {
	refs := &referencesStep{}
	s := &Session{
		id:        id,
		checkout:  checkout,
		persister: persister,
		log:       log.WithField("draft_id", id),
		store:     store,
		steps:     []Component{projectTypeStep{}, contentStep{}, refs, optionsStep{}, summaryStep{}},
		refs:      refs,
		furthest:  max(store.CurrentStep(), store.PreviousStep()),
	}
	s.enter()
	return s
}

func (s *Session) ID() string { return s.id }

// View returns the current wizard state.
func (s *Session) View() models.DraftResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}

// Submit validates req against the current step's schema. On success the
// step's slice is merged into the draft and the wizard advances; on the last
// step the draft is handed to checkout instead and the session URL returned.
// Validation failures come back as schema.FieldErrors and leave the draft
// untouched.
func (s *Session) Submit(ctx context.Context, step int, req models.StepRequest) (*models.CheckoutResponse, error) {
	d, gen, handoff, err := s.lockIn(ctx, step, req)
	if err != nil || !handoff {
		return nil, err
	}

	resp, err := s.checkout.Start(ctx, s.id, d)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.submitting = false
	if s.generation != gen {
		s.log.Info("discarding checkout result for reset draft")
		return nil, ErrDraftReset
	}
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (s *Session) lockIn(ctx context.Context, step int, req models.StepRequest) (models.OrderDraft, uint64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if step < schema.FirstStep || step > schema.LastStep {
		return models.OrderDraft{}, 0, false, fmt.Errorf("%w: %d", ErrUnknownStep, step)
	}
	if step != s.store.CurrentStep() {
		return models.OrderDraft{}, 0, false, ErrStepMismatch
	}
	if s.submitting {
		return models.OrderDraft{}, 0, false, ErrSubmissionPending
	}

	patch := s.component(step).Patch(req)
	candidate := s.store.Draft()
	patch.Apply(&candidate)
	if errs := schema.ValidateStep(step, candidate); !errs.OK() {
		return models.OrderDraft{}, 0, false, errs
	}
	s.store.UpdateFormData(patch)

	if step == schema.LastStep {
		s.persist(ctx)
		s.submitting = true
		return s.store.Draft(), s.generation, true, nil
	}

	s.store.NextStep()
	s.furthest = max(s.furthest, s.store.CurrentStep())
	s.enter()
	s.persist(ctx)
	return models.OrderDraft{}, 0, false, nil
}

// Back moves one step back without validating. Unsaved edits on the step
// being left are dropped.
func (s *Session) Back(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.PrevStep()
	s.enter()
	s.persist(ctx)
}

// Goto jumps to an already visited step.
func (s *Session) Goto(ctx context.Context, step int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if step < schema.FirstStep || step > schema.LastStep {
		return fmt.Errorf("%w: %d", ErrUnknownStep, step)
	}
	if step > s.furthest {
		return ErrStepNotReached
	}
	s.store.SetStep(step)
	s.enter()
	s.persist(ctx)
	return nil
}

// Reset empties the draft and returns to the first step. A checkout still in
// flight is discarded when it completes.
func (s *Session) Reset(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store.ResetForm()
	s.generation++
	s.furthest = schema.FirstStep
	s.enter()
	s.persist(ctx)
}

func (s *Session) AddLink(raw string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.onReferences(); err != nil {
		return "", err
	}
	return s.refs.AddLink(raw)
}

func (s *Session) RemoveLink(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.onReferences(); err != nil {
		return err
	}
	return s.refs.RemoveLink(i)
}

func (s *Session) AddFile(blob models.FileBlob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.onReferences(); err != nil {
		return err
	}
	return s.refs.AddFile(blob)
}

func (s *Session) RemoveFile(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.onReferences(); err != nil {
		return err
	}
	return s.refs.RemoveFile(i)
}

// Submitting reports whether a checkout request is in flight.
func (s *Session) Submitting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitting
}

func (s *Session) onReferences() error {
	if s.store.CurrentStep() != schema.StepReferences {
		return ErrNotEditingReferences
	}
	return nil
}

func (s *Session) component(step int) Component {
	return s.steps[step-schema.FirstStep]
}

func (s *Session) enter() {
	s.component(s.store.CurrentStep()).Enter(s.store.Draft())
}

func (s *Session) persist(ctx context.Context) {
	if s.persister == nil {
		return
	}
	if err := s.persister.Save(ctx, s.id, s.store); err != nil {
		s.log.WithError(err).Warn("failed to persist draft")
	}
}

func (s *Session) view() models.DraftResponse {
	step := s.store.CurrentStep()
	resp := models.DraftResponse{
		CurrentStep: step,
		Direction:   string(s.store.Direction()),
		StepName:    s.component(step).Name(),
		FormData:    s.store.Draft(),
		TotalPrice:  s.store.TotalPrice(),
	}
	if step == schema.StepReferences {
		resp.PendingLinks, resp.PendingFiles = s.refs.pending()
	}
	return resp
}
