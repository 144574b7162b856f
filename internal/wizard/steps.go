// Package wizard runs the five-step order form on top of a draft store.
package wizard

import (
	"design-order-backend/internal/models"
	"design-order-backend/internal/schema"
)

// Component is one wizard step. Enter pre-fills local edit state from the
// draft; Patch turns a submission into the slice of the draft the step owns.
type Component interface {
	Step() int
	Name() string
	Enter(d models.OrderDraft)
	Patch(req models.StepRequest) models.DraftPatch
}

type projectTypeStep struct{}

func (projectTypeStep) Step() int               { return schema.StepProjectType }
func (projectTypeStep) Name() string            { return "project-type" }
func (projectTypeStep) Enter(models.OrderDraft) {}
func (projectTypeStep) Patch(req models.StepRequest) models.DraftPatch {
	pt := req.ProjectType
	return models.DraftPatch{ProjectType: &pt}
}

type contentStep struct{}

func (contentStep) Step() int               { return schema.StepContentDetails }
func (contentStep) Name() string            { return "content-details" }
func (contentStep) Enter(models.OrderDraft) {}
func (contentStep) Patch(req models.StepRequest) models.DraftPatch {
	content, dims := req.ContentText, req.Dimensions
	return models.DraftPatch{ContentText: &content, Dimensions: &dims}
}

type optionsStep struct{}

func (optionsStep) Step() int               { return schema.StepOptions }
func (optionsStep) Name() string            { return "options" }
func (optionsStep) Enter(models.OrderDraft) {}
func (optionsStep) Patch(req models.StepRequest) models.DraftPatch {
	express, source, email := req.IsExpress, req.IncludeSourceFiles, req.Email
	return models.DraftPatch{IsExpress: &express, IncludeSourceFiles: &source, Email: &email}
}

// summaryStep does not advance; its submit hands the draft to checkout.
type summaryStep struct{}

func (summaryStep) Step() int               { return schema.StepSummary }
func (summaryStep) Name() string            { return "summary" }
func (summaryStep) Enter(models.OrderDraft) {}
func (summaryStep) Patch(req models.StepRequest) models.DraftPatch {
	accepted := req.TermsAccepted
	return models.DraftPatch{TermsAccepted: &accepted}
}
