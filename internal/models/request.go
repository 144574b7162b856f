package models

// CheckoutRequest is the body of POST /checkout.
type CheckoutRequest struct {
	Email              string         `json:"email"`
	ContentText        string         `json:"contentText"`
	ProjectType        ProjectType    `json:"projectType"`
	Dimensions         string         `json:"dimensions,omitempty"`
	IsExpress          bool           `json:"isExpress"`
	IncludeSourceFiles bool           `json:"includeSourceFiles"`
	ReferenceLinks     []string       `json:"referenceLinks"`
	UploadedFiles      []FileMetadata `json:"uploadedFiles"`

	// DraftID links the session to the wizard draft it came from. It is
	// set server-side only.
	DraftID string `json:"-"`
}

// StepRequest carries the fields a wizard step submits. Each step reads only
// its own slice.
type StepRequest struct {
	ProjectType        ProjectType `json:"projectType"`
	ContentText        string      `json:"contentText"`
	Dimensions         string      `json:"dimensions"`
	IsExpress          bool        `json:"isExpress"`
	IncludeSourceFiles bool        `json:"includeSourceFiles"`
	Email              string      `json:"email"`
	TermsAccepted      bool        `json:"termsAccepted"`
}

type AddLinkRequest struct {
	URL string `json:"url"`
}

type UpdateStatusRequest struct {
	Status OrderStatus `json:"status" binding:"required"`
}
