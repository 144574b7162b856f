package wizard

import (
	"errors"
	"fmt"

	"design-order-backend/internal/models"
	"design-order-backend/internal/schema"
)

var ErrNoSuchEntry = errors.New("no entry at that position")

// referencesStep keeps the links and files being edited on step 3. They reach
// the draft only when the step is submitted.
type referencesStep struct {
	links []string
	files []models.FileBlob
}

func (r *referencesStep) Step() int    { return schema.StepReferences }
func (r *referencesStep) Name() string { return "references" }

func (r *referencesStep) Enter(d models.OrderDraft) {
	r.links = append([]string{}, d.ReferenceLinks...)
	r.files = append([]models.FileBlob{}, d.UploadedFiles...)
}

func (r *referencesStep) Patch(models.StepRequest) models.DraftPatch {
	links := append([]string{}, r.links...)
	files := append([]models.FileBlob{}, r.files...)
	return models.DraftPatch{ReferenceLinks: &links, UploadedFiles: &files}
}

// AddLink normalises raw and appends it. A rejected link leaves the list as
// it was.
func (r *referencesStep) AddLink(raw string) (string, error) {
	link, err := schema.NormalizeURL(raw)
	if err != nil {
		return "", err
	}
	for _, existing := range r.links {
		if existing == link {
			return "", schema.ErrDuplicateLink
		}
	}
	if len(r.links) >= schema.MaxReferenceLinks {
		return "", schema.ErrTooManyLinks
	}
	r.links = append(r.links, link)
	return link, nil
}

func (r *referencesStep) RemoveLink(i int) error {
	if i < 0 || i >= len(r.links) {
		return fmt.Errorf("link %d: %w", i, ErrNoSuchEntry)
	}
	r.links = append(r.links[:i:i], r.links[i+1:]...)
	return nil
}

// AddFile checks type and size first, then duplicates by name and size, then
// the count limit.
func (r *referencesStep) AddFile(blob models.FileBlob) error {
	if err := schema.ValidateFile(blob.Name, blob.Type, blob.Size); err != nil {
		return err
	}
	for _, f := range r.files {
		if f.Name == blob.Name && f.Size == blob.Size {
			return fmt.Errorf("%q: %w", blob.Name, schema.ErrDuplicateFile)
		}
	}
	if len(r.files) >= schema.MaxUploadedFiles {
		return schema.ErrTooManyFiles
	}
	r.files = append(r.files, blob)
	return nil
}

func (r *referencesStep) RemoveFile(i int) error {
	if i < 0 || i >= len(r.files) {
		return fmt.Errorf("file %d: %w", i, ErrNoSuchEntry)
	}
	r.files = append(r.files[:i:i], r.files[i+1:]...)
	return nil
}

func (r *referencesStep) pending() ([]string, []models.DraftFile) {
	files := make([]models.DraftFile, len(r.files))
	for i, f := range r.files {
		files[i] = models.DraftFile{Name: f.Name, Type: f.Type, Size: f.Size}
	}
	return append([]string{}, r.links...), files
}
