package controllers

import (
	"net/http"
	"net/url"
	"slices"
	"time"

	"evently/internal/delivery/http/helpers"
	"evently/internal/eventform"
)

// ValidateEventRequest is the request body for POST /api/events/validate.
// Values holds the textual form values keyed by field name. When Field is set
// only that field is validated.
type ValidateEventRequest struct {
	Values map[string]string `json:"values"`
	Field  string            `json:"field,omitempty"`
}

// Validate implements helpers.Validator.
func (req *ValidateEventRequest) Validate() []string {
	if req.Field != "" && !slices.Contains(eventform.Fields, req.Field) {
		return []string{"unknown field " + req.Field}
	}
	return nil
}

// ValidationResult is the data of a validation response.
type ValidationResult struct {
	Valid  bool                  `json:"valid"`
	Errors eventform.FieldErrors `json:"errors"`
}

// ValidateEventSuccessResponse is the success response envelope for POST /api/events/validate (200).
type ValidateEventSuccessResponse struct {
	Data  *ValidationResult `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ValidateController runs the event form schema for inline, per-field feedback.
// It contacts no collaborator.
type ValidateController struct {
	Location *time.Location
}

func NewValidateController(loc *time.Location) *ValidateController {
	if loc == nil {
		loc = time.Local
	}
	return &ValidateController{Location: loc}
}

// ValidateEvent godoc
// @Summary Validate an event draft
// @Description Runs the event form schema over the posted values and returns the field errors. With field set, only that field is checked.
// @Tags events
// @Accept json
// @Produce json
// @Param draft body ValidateEventRequest true "Form values"
// @Success 200 {object} controllers.ValidateEventSuccessResponse
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /api/events/validate [post]
func (c *ValidateController) ValidateEvent(w http.ResponseWriter, r *http.Request) {
	var req ValidateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	values := make(url.Values, len(req.Values))
	for k, v := range req.Values {
		values.Set(k, v)
	}
	draft := eventform.DraftFromForm(values, c.Location)

	result := &ValidationResult{Errors: eventform.FieldErrors{}}
	if req.Field != "" {
		if errs := eventform.ValidateField(draft, req.Field); len(errs) > 0 {
			result.Errors[req.Field] = errs
		}
	} else {
		_, fe := eventform.Validate(draft)
		for field, errs := range fe {
			result.Errors[field] = errs
		}
	}
	result.Valid = len(result.Errors) == 0
	helpers.WriteJSONSuccess(w, http.StatusOK, result)
}
