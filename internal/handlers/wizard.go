package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"design-order-backend/internal/models"
	"design-order-backend/internal/schema"
	"design-order-backend/internal/wizard"
)

// DraftCookie names the cookie holding the wizard session id.
const DraftCookie = "draft_session"

type WizardHandler struct {
	registry     *wizard.Registry
	cookieMaxAge int
	secureCookie bool
	log          logrus.FieldLogger
}

// NewWizardHandler serves the order wizard. cookieMaxAge is in seconds and
// should match how long the durable draft slot is kept.
func NewWizardHandler(registry *wizard.Registry, cookieMaxAge int, secureCookie bool, log logrus.FieldLogger) *WizardHandler {
	return &WizardHandler{
		registry:     registry,
		cookieMaxAge: cookieMaxAge,
		secureCookie: secureCookie,
		log:          log,
	}
}

// session resolves the caller's wizard session and refreshes its cookie. On
// failure the response has been written.
func (h *WizardHandler) session(c *gin.Context) (*wizard.Session, bool) {
	id, _ := c.Cookie(DraftCookie)
	s, err := h.registry.Open(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return nil, false
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(DraftCookie, s.ID(), h.cookieMaxAge, "/", "", h.secureCookie, true)
	return s, true
}

// GetDraft godoc
// @Summary     Current wizard state
// @Description Returns the draft, the current step and the running total. Starts a new draft when the caller has none.
// @Tags        order
// @Produce     json
// @Success     200 {object} models.DraftResponse
// @Failure     503 {object} models.ErrorResponse
// @Router      /order/draft [get]
func (h *WizardHandler) GetDraft(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, s.View())
}

// SubmitStep godoc
// @Summary     Submit a wizard step
// @Description Validates the step's fields and advances. Submitting the summary step starts checkout.
// @Tags        order
// @Accept      json
// @Produce     json
// @Param       step    path int                true "Step number (1-5)"
// @Param       request body models.StepRequest true "Step fields"
// @Success     200 {object} models.DraftResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /order/steps/{step} [post]
func (h *WizardHandler) SubmitStep(c *gin.Context) {
	step, err := strconv.Atoi(c.Param("step"))
	if err != nil {
		badRequest(c, "invalid step")
		return
	}
	h.submit(c, step)
}

// Checkout godoc
// @Summary     Submit the summary step
// @Description Accepts email and terms, then hands the draft to the payment provider and returns its checkout URL.
// @Tags        order
// @Accept      json
// @Produce     json
// @Param       request body models.StepRequest true "Email and terms acceptance"
// @Success     200 {object} models.CheckoutResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Failure     502 {object} models.ErrorResponse
// @Router      /order/checkout [post]
func (h *WizardHandler) Checkout(c *gin.Context) {
	h.submit(c, schema.LastStep)
}

func (h *WizardHandler) submit(c *gin.Context, step int) {
	var req models.StepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	s, ok := h.session(c)
	if !ok {
		return
	}

	resp, err := s.Submit(c.Request.Context(), step, req)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if resp != nil {
		c.Header("Location", resp.URL)
		c.JSON(http.StatusOK, resp)
		return
	}
	c.JSON(http.StatusOK, s.View())
}

// Back godoc
// @Summary     Previous step
// @Tags        order
// @Produce     json
// @Success     200 {object} models.DraftResponse
// @Router      /order/back [post]
func (h *WizardHandler) Back(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	s.Back(c.Request.Context())
	c.JSON(http.StatusOK, s.View())
}

// Goto godoc
// @Summary     Jump to a visited step
// @Tags        order
// @Produce     json
// @Param       step path int true "Step number (1-5)"
// @Success     200 {object} models.DraftResponse
// @Failure     400 {object} models.ErrorResponse
// @Router      /order/goto/{step} [post]
func (h *WizardHandler) Goto(c *gin.Context) {
	step, err := strconv.Atoi(c.Param("step"))
	if err != nil {
		badRequest(c, "invalid step")
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.Goto(c.Request.Context(), step); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, s.View())
}

// Reset godoc
// @Summary     Discard the draft
// @Tags        order
// @Produce     json
// @Success     200 {object} models.DraftResponse
// @Router      /order/reset [post]
func (h *WizardHandler) Reset(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}
	s.Reset(c.Request.Context())
	c.JSON(http.StatusOK, s.View())
}

// AddLink godoc
// @Summary     Add a reference link
// @Description Only on the references step. A missing scheme is completed with https://.
// @Tags        order
// @Accept      json
// @Produce     json
// @Param       request body models.AddLinkRequest true "Link"
// @Success     200 {object} models.DraftResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /order/references/links [post]
func (h *WizardHandler) AddLink(c *gin.Context) {
	var req models.AddLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body")
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}
	if _, err := s.AddLink(req.URL); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, s.View())
}

// RemoveLink godoc
// @Summary     Remove a reference link
// @Tags        order
// @Produce     json
// @Param       index path int true "Position in the link list"
// @Success     200 {object} models.DraftResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /order/references/links/{index} [delete]
func (h *WizardHandler) RemoveLink(c *gin.Context) {
	h.removeAt(c, (*wizard.Session).RemoveLink)
}

// AddFile godoc
// @Summary     Attach a reference file
// @Description Multipart field "file". Images, PDF and ZIP up to 10MB; at most 10 files.
// @Tags        order
// @Accept      multipart/form-data
// @Produce     json
// @Param       file formData file true "Reference file"
// @Success     200 {object} models.DraftResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /order/references/files [post]
func (h *WizardHandler) AddFile(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "missing file")
		return
	}
	blob, err := readUpload(fh, schema.MaxFileSize)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := s.AddFile(blob); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, s.View())
}

// RemoveFile godoc
// @Summary     Remove a reference file
// @Tags        order
// @Produce     json
// @Param       index path int true "Position in the file list"
// @Success     200 {object} models.DraftResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /order/references/files/{index} [delete]
func (h *WizardHandler) RemoveFile(c *gin.Context) {
	h.removeAt(c, (*wizard.Session).RemoveFile)
}

func (h *WizardHandler) removeAt(c *gin.Context, remove func(*wizard.Session, int) error) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		badRequest(c, "invalid index")
		return
	}
	s, ok := h.session(c)
	if !ok {
		return
	}
	if err := remove(s, index); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, s.View())
}
