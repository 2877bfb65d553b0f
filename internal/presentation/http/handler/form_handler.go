package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/lineform-api/internal/application/service"
	"github.com/sangkips/lineform-api/internal/presentation/http/dto/request"
	"github.com/sangkips/lineform-api/internal/presentation/http/dto/response"
)

// FormHandler handles entry form HTTP requests
type FormHandler struct {
	formService   *service.FormService
	importMaxSize int64
}

// NewFormHandler creates a new form handler
func NewFormHandler(formService *service.FormService, importMaxSize int64) *FormHandler {
	return &FormHandler{formService: formService, importMaxSize: importMaxSize}
}

// Create handles opening a new form
func (h *FormHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req request.CreateFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	view, err := h.formService.CreateForm(c.Request.Context(), userID, req.FormKind(), request.ToSubjects(req.Subjects))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Form created successfully", view)
}

// GetByID handles fetching a form with its totals
func (h *FormHandler) GetByID(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	formID, ok := parseUUIDParam(c, "id", "form")
	if !ok {
		return
	}

	view, err := h.formService.GetForm(c.Request.Context(), userID, formID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Form retrieved successfully", view)
}

// Discard handles dropping a form
func (h *FormHandler) Discard(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	formID, ok := parseUUIDParam(c, "id", "form")
	if !ok {
		return
	}

	if err := h.formService.DiscardForm(c.Request.Context(), userID, formID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Form discarded successfully", nil)
}

// ReplaceSubjects handles rebuilding the groups of a form
func (h *FormHandler) ReplaceSubjects(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	formID, ok := parseUUIDParam(c, "id", "form")
	if !ok {
		return
	}

	var req request.ReplaceSubjectsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	view, err := h.formService.ReplaceSubjects(c.Request.Context(), userID, formID, request.ToSubjects(req.Subjects))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Form subjects replaced successfully", view)
}

// AddGroup handles adding a group to a form
func (h *FormHandler) AddGroup(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	formID, ok := parseUUIDParam(c, "id", "form")
	if !ok {
		return
	}

	var req request.SubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	view, err := h.formService.AddGroup(c.Request.Context(), userID, formID, req.ToSubject())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Group added successfully", view)
}

// RemoveGroup handles removing a group from a form
func (h *FormHandler) RemoveGroup(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	formID, ok := parseUUIDParam(c, "id", "form")
	if !ok {
		return
	}

	view, err := h.formService.RemoveGroup(c.Request.Context(), userID, formID, c.Param("group_id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Group removed successfully", view)
}

// AddEntry handles appending an empty entry to a group
func (h *FormHandler) AddEntry(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	formID, ok := parseUUIDParam(c, "id", "form")
	if !ok {
		return
	}

	view, err := h.formService.AddEntry(c.Request.Context(), userID, formID, c.Param("group_id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, "Entry added successfully", view)
}

// UpdateEntry handles patching one entry
func (h *FormHandler) UpdateEntry(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	formID, ok := parseUUIDParam(c, "id", "form")
	if !ok {
		return
	}
	entryID, ok := parseUUIDParam(c, "entry_id", "entry")
	if !ok {
		return
	}

	var req request.UpdateEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	view, err := h.formService.UpdateEntry(c.Request.Context(), userID, formID, entryID, req.ToPatch())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Entry updated successfully", view)
}

// RemoveEntry handles removing an entry. The last entry of a group stays.
func (h *FormHandler) RemoveEntry(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	formID, ok := parseUUIDParam(c, "id", "form")
	if !ok {
		return
	}
	entryID, ok := parseUUIDParam(c, "entry_id", "entry")
	if !ok {
		return
	}

	view, err := h.formService.RemoveEntry(c.Request.Context(), userID, formID, entryID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Entry removed successfully", view)
}

// ApplyToSiblings handles copying a group's first entry to its siblings
func (h *FormHandler) ApplyToSiblings(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	formID, ok := parseUUIDParam(c, "id", "form")
	if !ok {
		return
	}

	view, err := h.formService.ApplyToSiblings(c.Request.Context(), userID, formID, c.Param("group_id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Entry applied to group", view)
}

// ApplyToAllGroups handles copying the first entry to every group
func (h *FormHandler) ApplyToAllGroups(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	formID, ok := parseUUIDParam(c, "id", "form")
	if !ok {
		return
	}

	view, err := h.formService.ApplyToAllGroups(c.Request.Context(), userID, formID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Entry applied to all groups", view)
}

// RetryRate handles looking up a degraded currency again
func (h *FormHandler) RetryRate(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	formID, ok := parseUUIDParam(c, "id", "form")
	if !ok {
		return
	}

	view, err := h.formService.RetryRate(c.Request.Context(), userID, formID, c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Rate lookup retried", view)
}

// Import handles filling entries from an uploaded .xlsx file
func (h *FormHandler) Import(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	formID, ok := parseUUIDParam(c, "id", "form")
	if !ok {
		return
	}

	if h.importMaxSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.importMaxSize)
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file field is required")
		return
	}
	if !strings.HasSuffix(strings.ToLower(fileHeader.Filename), ".xlsx") {
		response.BadRequest(c, "Only .xlsx files can be imported")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, "Failed to open uploaded file")
		return
	}
	defer file.Close()

	view, err := h.formService.ImportEntries(c.Request.Context(), userID, formID, file)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Entries imported successfully", view)
}

// Submit handles validating a form and returning its records
func (h *FormHandler) Submit(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	formID, ok := parseUUIDParam(c, "id", "form")
	if !ok {
		return
	}

	result, err := h.formService.Submit(c.Request.Context(), userID, formID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Form submitted successfully", result)
}
