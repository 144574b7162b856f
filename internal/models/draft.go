package models

// FileBlob is an uploaded file held in memory while the wizard is open.
// Data never leaves the process except through the storage upload at checkout.
type FileBlob struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Size int64  `json:"size"`
	Data []byte `json:"-"`
}

// OrderDraft accumulates the wizard input before payment.
type OrderDraft struct {
	ProjectType        ProjectType `json:"projectType"`
	ContentText        string      `json:"contentText"`
	Dimensions         string      `json:"dimensions,omitempty"`
	ReferenceLinks     []string    `json:"referenceLinks"`
	UploadedFiles      []FileBlob  `json:"uploadedFiles"`
	IsExpress          bool        `json:"isExpress"`
	IncludeSourceFiles bool        `json:"includeSourceFiles"`
	Email              string      `json:"email"`
	TermsAccepted      bool        `json:"termsAccepted"`
}

// DraftPatch is a partial update of an OrderDraft. Nil fields are left alone.
type DraftPatch struct {
	ProjectType        *ProjectType
	ContentText        *string
	Dimensions         *string
	ReferenceLinks     *[]string
	UploadedFiles      *[]FileBlob
	IsExpress          *bool
	IncludeSourceFiles *bool
	Email              *string
	TermsAccepted      *bool
}

// Apply shallow-merges the patch into d.
func (p DraftPatch) Apply(d *OrderDraft) {
	if p.ProjectType != nil {
		d.ProjectType = *p.ProjectType
	}
	if p.ContentText != nil {
		d.ContentText = *p.ContentText
	}
	if p.Dimensions != nil {
		d.Dimensions = *p.Dimensions
	}
	if p.ReferenceLinks != nil {
		d.ReferenceLinks = append([]string(nil), (*p.ReferenceLinks)...)
	}
	if p.UploadedFiles != nil {
		d.UploadedFiles = append([]FileBlob(nil), (*p.UploadedFiles)...)
	}
	if p.IsExpress != nil {
		d.IsExpress = *p.IsExpress
	}
	if p.IncludeSourceFiles != nil {
		d.IncludeSourceFiles = *p.IncludeSourceFiles
	}
	if p.Email != nil {
		d.Email = *p.Email
	}
	if p.TermsAccepted != nil {
		d.TermsAccepted = *p.TermsAccepted
	}
}

// Clone returns a copy that shares no slices with d.
func (d OrderDraft) Clone() OrderDraft {
	c := d
	c.ReferenceLinks = append([]string(nil), d.ReferenceLinks...)
	c.UploadedFiles = append([]FileBlob(nil), d.UploadedFiles...)
	return c
}
