package schema_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"design-order-backend/internal/models"
	"design-order-backend/internal/schema"
)

func validDraft() models.OrderDraft {
	return models.OrderDraft{
		ProjectType:   models.ProjectTypeLogo,
		ContentText:   "A minimal fox logo",
		Email:         "a@b.com",
		TermsAccepted: true,
	}
}

func TestValidateProjectType(t *testing.T) {
	for _, pt := range models.ProjectTypes {
		d := models.OrderDraft{ProjectType: pt}
		assert.True(t, schema.ValidateProjectType(d).OK(), string(pt))
	}

	errs := schema.ValidateProjectType(models.OrderDraft{ProjectType: "poster"})
	assert.Contains(t, errs, "projectType")

	errs = schema.ValidateProjectType(models.OrderDraft{})
	assert.Contains(t, errs, "projectType")
}

func TestValidateContentDetails(t *testing.T) {
	tests := []struct {
		name    string
		content string
		ok      bool
	}{
		{name: "too_short", content: "too short", ok: false},
		{name: "min", content: strings.Repeat("a", 10), ok: true},
		{name: "max", content: strings.Repeat("a", 5000), ok: true},
		{name: "too_long", content: strings.Repeat("a", 5001), ok: false},
		{name: "multibyte_counts_characters", content: strings.Repeat("é", 10), ok: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			errs := schema.ValidateContentDetails(models.OrderDraft{ContentText: test.content})
			assert.Equal(t, test.ok, errs.OK(), errs.Error())
		})
	}
}

func TestValidateContentDetails_DimensionsUnconstrained(t *testing.T) {
	d := models.OrderDraft{ContentText: "a banner for a bakery", Dimensions: "about a hand's width"}
	assert.True(t, schema.ValidateContentDetails(d).OK())
}

func TestValidateReferences_EmptyIsValid(t *testing.T) {
	assert.True(t, schema.ValidateReferences(models.OrderDraft{}).OK())
}

func TestValidateReferences_Limits(t *testing.T) {
	links := make([]string, 11)
	for i := range links {
		links[i] = "https://example.com/" + strings.Repeat("x", i+1)
	}
	errs := schema.ValidateReferences(models.OrderDraft{ReferenceLinks: links})
	assert.Contains(t, errs, "referenceLinks")

	errs = schema.ValidateReferences(models.OrderDraft{ReferenceLinks: []string{"not a url"}})
	assert.Contains(t, errs, "referenceLinks.0")

	errs = schema.ValidateReferences(models.OrderDraft{UploadedFiles: []models.FileBlob{
		{Name: "brief.docx", Type: "application/msword", Size: 10},
	}})
	assert.Contains(t, errs, "uploadedFiles.0")
}

func TestValidateOptions(t *testing.T) {
	assert.True(t, schema.ValidateOptions(models.OrderDraft{Email: "a@b.com"}).OK())
	assert.Contains(t, schema.ValidateOptions(models.OrderDraft{Email: "a@"}), "email")
	assert.Contains(t, schema.ValidateOptions(models.OrderDraft{}), "email")
}

func TestValidateSummary(t *testing.T) {
	assert.True(t, schema.ValidateSummary(models.OrderDraft{TermsAccepted: true}).OK())
	assert.Contains(t, schema.ValidateSummary(models.OrderDraft{}), "termsAccepted")
}

func TestValidateStep_IsLocal(t *testing.T) {
	d := models.OrderDraft{Email: "a@b.com"}

	// Step 1 and 2 data are invalid, but step 4 only looks at its own slice.
	assert.True(t, schema.ValidateStep(schema.StepOptions, d).OK())
	assert.False(t, schema.ValidateStep(schema.StepProjectType, d).OK())
	assert.False(t, schema.ValidateStep(99, d).OK())
}

func TestValidateWhole(t *testing.T) {
	assert.True(t, schema.ValidateWhole(validDraft()).OK())

	d := validDraft()
	d.ContentText = "short"
	d.TermsAccepted = false
	errs := schema.ValidateWhole(d)
	assert.Contains(t, errs, "contentText")
	assert.Contains(t, errs, "termsAccepted")
	assert.True(t, schema.ValidateOrder(validDraft()).OK())
}

func TestNormalizeURL(t *testing.T) {
	link, err := schema.NormalizeURL("  dribbble.com/shots/1 ")
	require.NoError(t, err)
	assert.Equal(t, "https://dribbble.com/shots/1", link)

	link, err = schema.NormalizeURL("http://example.com")
	require.NoError(t, err)
	assert.Equal(t, "http://example.com", link)

	link, err = schema.NormalizeURL("HTTPS://example.com")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", link)

	link, err = schema.NormalizeURL("example.com/go?to=http://other.com")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/go?to=http://other.com", link)

	_, err = schema.NormalizeURL("ftp://example.com")
	assert.ErrorIs(t, err, schema.ErrInvalidURL)

	_, err = schema.NormalizeURL("javascript://alert(1)")
	assert.ErrorIs(t, err, schema.ErrInvalidURL)

	_, err = schema.NormalizeURL("   ")
	assert.ErrorIs(t, err, schema.ErrEmptyURL)

	_, err = schema.NormalizeURL("https://")
	assert.ErrorIs(t, err, schema.ErrInvalidURL)
}

func TestValidateFile(t *testing.T) {
	assert.NoError(t, schema.ValidateFile("a.png", "image/png", 1024))
	assert.NoError(t, schema.ValidateFile("a.zip", "application/zip", schema.MaxFileSize))
	assert.ErrorIs(t, schema.ValidateFile("a.png", "image/png", schema.MaxFileSize+1), schema.ErrFileTooLarge)
	assert.ErrorIs(t, schema.ValidateFile("a.exe", "application/octet-stream", 1), schema.ErrUnsupportedFileType)
}

func TestCheckoutDraft(t *testing.T) {
	d := schema.CheckoutDraft(models.CheckoutRequest{
		Email:         "a@b.com",
		ContentText:   "fifteen chars..",
		ProjectType:   models.ProjectTypeBanner,
		IsExpress:     true,
		UploadedFiles: []models.FileMetadata{{Name: "a.png", Type: "image/png", Size: 3}},
	})

	assert.Equal(t, models.ProjectTypeBanner, d.ProjectType)
	assert.True(t, d.IsExpress)
	require.Len(t, d.UploadedFiles, 1)
	assert.Equal(t, int64(3), d.UploadedFiles[0].Size)
	assert.True(t, schema.ValidateOrder(d).OK())
}
