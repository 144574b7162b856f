// Package draft holds the in-progress order wizard state and its durable
// projection.
package draft

import (
	"design-order-backend/internal/models"
	"design-order-backend/internal/pricing"
	"design-order-backend/internal/schema"
)

type Direction string

const (
	Forward  Direction = "forward"
	Backward Direction = "backward"
)

// Store is the mutable wizard state of one draft session. It is not safe for
// concurrent use; callers serialise access per session.
type Store struct {
	currentStep  int
	previousStep int
	direction    Direction
	draft        models.OrderDraft
}

func NewStore() *Store {
	return &Store{
		currentStep:  schema.FirstStep,
		previousStep: schema.FirstStep,
		direction:    Forward,
	}
}

func (s *Store) CurrentStep() int  { return s.currentStep }
func (s *Store) PreviousStep() int { return s.previousStep }

// Draft returns a copy of the accumulated form data.
func (s *Store) Draft() models.OrderDraft {
	return s.draft.Clone()
}

// SetStep moves to step n, clamped to the valid range.
func (s *Store) SetStep(n int) {
	s.move(clampStep(n), directionOf(s.currentStep, clampStep(n)))
}

// NextStep always reports Forward, even when clamped at the last step.
func (s *Store) NextStep() {
	s.move(clampStep(s.currentStep+1), Forward)
}

// PrevStep always reports Backward, even when clamped at the first step.
func (s *Store) PrevStep() {
	s.move(clampStep(s.currentStep-1), Backward)
}

func (s *Store) move(to int, d Direction) {
	s.previousStep = s.currentStep
	s.currentStep = to
	s.direction = d
}

// Direction reports which way the last transition went.
func (s *Store) Direction() Direction {
	return s.direction
}

func directionOf(from, to int) Direction {
	if to < from {
		return Backward
	}
	return Forward
}

// UpdateFormData merges p into the draft without validating it.
func (s *Store) UpdateFormData(p models.DraftPatch) {
	p.Apply(&s.draft)
}

// ResetForm returns to step 1 with an empty draft.
func (s *Store) ResetForm() {
	s.currentStep = schema.FirstStep
	s.previousStep = schema.FirstStep
	s.direction = Forward
	s.draft = models.OrderDraft{}
}

// TotalPrice is derived from the draft on every call.
func (s *Store) TotalPrice() int {
	return pricing.Total(pricing.Selection{
		IsExpress:          s.draft.IsExpress,
		IncludeSourceFiles: s.draft.IncludeSourceFiles,
	})
}

func clampStep(n int) int {
	if n < schema.FirstStep {
		return schema.FirstStep
	}
	if n > schema.LastStep {
		return schema.LastStep
	}
	return n
}
