// Package schema validates the order draft one wizard step at a time.
package schema

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"design-order-backend/internal/models"
)

const (
	MinContentLength  = 10
	MaxContentLength  = 5000
	MaxReferenceLinks = 10
	MaxUploadedFiles  = 10
	MaxFileSize       = 10 * 1024 * 1024
)

// Steps are numbered from 1.
const (
	StepProjectType = iota + 1
	StepContentDetails
	StepReferences
	StepOptions
	StepSummary

	FirstStep = StepProjectType
	LastStep  = StepSummary
)

var AcceptedFileTypes = []string{
	"image/jpeg",
	"image/png",
	"image/gif",
	"image/webp",
	"image/svg+xml",
	"application/pdf",
	"application/zip",
	"application/x-zip-compressed",
}

var (
	ErrEmptyURL            = errors.New("please enter a URL")
	ErrInvalidURL          = errors.New("please enter a valid URL")
	ErrDuplicateLink       = errors.New("this link has already been added")
	ErrTooManyLinks        = fmt.Errorf("maximum %d reference links allowed", MaxReferenceLinks)
	ErrUnsupportedFileType = errors.New("file type not supported")
	ErrFileTooLarge        = errors.New("file size must be less than 10MB")
	ErrDuplicateFile       = errors.New("this file has already been added")
	ErrTooManyFiles        = fmt.Errorf("maximum %d files allowed", MaxUploadedFiles)
)

// FieldErrors maps a draft field name to a user facing message.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e[k]
	}
	return strings.Join(parts, "; ")
}

// OK reports whether no field failed.
func (e FieldErrors) OK() bool { return len(e) == 0 }

func (e FieldErrors) merge(other FieldErrors) {
	for k, v := range other {
		if _, exists := e[k]; !exists {
			e[k] = v
		}
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

type contentFields struct {
	ContentText string `validate:"min=10,max=5000"`
}

type emailField struct {
	Email string `validate:"required,email"`
}

type linkField struct {
	URL string `validate:"required,http_url"`
}

// ValidateStep runs the schema of a single step. Earlier steps are not
// re-checked.
func ValidateStep(step int, d models.OrderDraft) FieldErrors {
	switch step {
	case StepProjectType:
		return ValidateProjectType(d)
	case StepContentDetails:
		return ValidateContentDetails(d)
	case StepReferences:
		return ValidateReferences(d)
	case StepOptions:
		return ValidateOptions(d)
	case StepSummary:
		return ValidateSummary(d)
	}
	return FieldErrors{"step": fmt.Sprintf("unknown step %d", step)}
}

func ValidateProjectType(d models.OrderDraft) FieldErrors {
	errs := FieldErrors{}
	if !d.ProjectType.Valid() {
		errs["projectType"] = "please select a project type"
	}
	return errs
}

func ValidateContentDetails(d models.OrderDraft) FieldErrors {
	errs := FieldErrors{}
	if err := validate.Struct(contentFields{ContentText: d.ContentText}); err != nil {
		if len([]rune(d.ContentText)) < MinContentLength {
			errs["contentText"] = fmt.Sprintf("please provide at least %d characters describing your project", MinContentLength)
		} else {
			errs["contentText"] = fmt.Sprintf("description is too long (max %d characters)", MaxContentLength)
		}
	}
	return errs
}

func ValidateReferences(d models.OrderDraft) FieldErrors {
	errs := FieldErrors{}
	if len(d.ReferenceLinks) > MaxReferenceLinks {
		errs["referenceLinks"] = ErrTooManyLinks.Error()
	} else {
		for i, link := range d.ReferenceLinks {
			if !validLink(link) {
				errs[fmt.Sprintf("referenceLinks.%d", i)] = ErrInvalidURL.Error()
			}
		}
	}

	if len(d.UploadedFiles) > MaxUploadedFiles {
		errs["uploadedFiles"] = ErrTooManyFiles.Error()
	} else {
		for i, f := range d.UploadedFiles {
			if err := ValidateFile(f.Name, f.Type, f.Size); err != nil {
				errs[fmt.Sprintf("uploadedFiles.%d", i)] = err.Error()
			}
		}
	}
	return errs
}

func ValidateOptions(d models.OrderDraft) FieldErrors {
	errs := FieldErrors{}
	if err := validate.Struct(emailField{Email: d.Email}); err != nil {
		errs["email"] = "please enter a valid email address"
	}
	return errs
}

func ValidateSummary(d models.OrderDraft) FieldErrors {
	errs := FieldErrors{}
	if !d.TermsAccepted {
		errs["termsAccepted"] = "you must accept the terms and conditions"
	}
	return errs
}

// ValidateOrder checks every field required to place an order (steps 1-4).
func ValidateOrder(d models.OrderDraft) FieldErrors {
	errs := FieldErrors{}
	for step := StepProjectType; step <= StepOptions; step++ {
		errs.merge(ValidateStep(step, d))
	}
	return errs
}

// ValidateWhole checks the complete draft, including acceptance of terms.
func ValidateWhole(d models.OrderDraft) FieldErrors {
	errs := ValidateOrder(d)
	errs.merge(ValidateSummary(d))
	return errs
}

// NormalizeURL trims raw, prepends https:// when no scheme is present and
// checks that the result is an absolute http(s) URL. Any other explicit
// scheme is rejected.
func NormalizeURL(raw string) (string, error) {
	link := strings.TrimSpace(raw)
	if link == "" {
		return "", ErrEmptyURL
	}
	if scheme, rest, ok := strings.Cut(link, "://"); ok && isScheme(scheme) {
		if !strings.EqualFold(scheme, "http") && !strings.EqualFold(scheme, "https") {
			return "", ErrInvalidURL
		}
		link = strings.ToLower(scheme) + "://" + rest
	} else {
		link = "https://" + link
	}
	if !validLink(link) {
		return "", ErrInvalidURL
	}
	return link, nil
}

// isScheme reports whether s has the shape of a URL scheme.
func isScheme(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return true
}

func validLink(link string) bool {
	return validate.Struct(linkField{URL: link}) == nil
}

// ValidateFile checks a single file against the type and size limits.
func ValidateFile(name, mimeType string, size int64) error {
	if !AcceptedFileType(mimeType) {
		return fmt.Errorf("%q: %w", name, ErrUnsupportedFileType)
	}
	if size > MaxFileSize {
		return fmt.Errorf("%q: %w", name, ErrFileTooLarge)
	}
	return nil
}

func AcceptedFileType(mimeType string) bool {
	for _, t := range AcceptedFileTypes {
		if t == mimeType {
			return true
		}
	}
	return false
}

// CheckoutDraft maps a checkout request onto a draft so the order schemas can
// be applied to it. Uploaded file metadata stands in for the blobs.
func CheckoutDraft(req models.CheckoutRequest) models.OrderDraft {
	files := make([]models.FileBlob, len(req.UploadedFiles))
	for i, f := range req.UploadedFiles {
		files[i] = models.FileBlob{Name: f.Name, Type: f.Type, Size: f.Size}
	}
	return models.OrderDraft{
		ProjectType:        req.ProjectType,
		ContentText:        req.ContentText,
		Dimensions:         req.Dimensions,
		ReferenceLinks:     req.ReferenceLinks,
		UploadedFiles:      files,
		IsExpress:          req.IsExpress,
		IncludeSourceFiles: req.IncludeSourceFiles,
		Email:              req.Email,
	}
}
