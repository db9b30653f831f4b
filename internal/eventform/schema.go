// Package eventform implements the event creation form: the draft state and its
// validation schema, the submit controller, and inline category management.
package eventform

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"evently/internal/domain"
)

// DateTimeLayout is the wire format of the HTML datetime-local input.
const DateTimeLayout = "2006-01-02T15:04"

// Form field names, shared by templates, FieldErrors and Draft.Set.
const (
	FieldTitle         = "title"
	FieldDescription   = "description"
	FieldLocation      = "location"
	FieldImageURL      = "imageUrl"
	FieldStartDateTime = "startDateTime"
	FieldEndDateTime   = "endDateTime"
	FieldCategoryID    = "categoryId"
	FieldPrice         = "price"
	FieldIsFree        = "isFree"
	FieldURL           = "url"
)

// Fields lists every form field in render order.
var Fields = []string{
	FieldTitle, FieldCategoryID, FieldDescription, FieldImageURL, FieldLocation,
	FieldStartDateTime, FieldEndDateTime, FieldPrice, FieldIsFree, FieldURL,
}

// ErrUnknownField is returned by Draft.Set for a name outside Fields.
var ErrUnknownField = errors.New("unknown form field")

// Draft is the in-memory, not yet persisted state of an event form.
type Draft struct {
	Title         string    `form:"title" validate:"required,min=3"`
	Description   string    `form:"description" validate:"required,min=3,max=400"`
	Location      string    `form:"location" validate:"required,min=3,max=400"`
	ImageURL      string    `form:"imageUrl"`
	StartDateTime time.Time `form:"startDateTime" validate:"required"`
	EndDateTime   time.Time `form:"endDateTime" validate:"required,gtefield=StartDateTime"`
	CategoryID    string    `form:"categoryId" validate:"required"`
	Price         string    `form:"price"`
	IsFree        bool      `form:"isFree"`
	URL           string    `form:"url" validate:"omitempty,url"`
}

// Defaults returns the initial draft of a new event form.
func Defaults(now time.Time) Draft {
	return Draft{
		StartDateTime: now,
		EndDateTime:   now,
	}
}

// DraftFromEvent pre-fills a draft from a persisted event.
func DraftFromEvent(e *domain.Event) Draft {
	return Draft{
		Title:         e.Title,
		Description:   e.Description,
		Location:      e.Location,
		ImageURL:      e.ImageURL,
		StartDateTime: e.StartDateTime,
		EndDateTime:   e.EndDateTime,
		CategoryID:    e.CategoryID,
		Price:         e.Price,
		IsFree:        e.IsFree,
		URL:           e.URL,
	}
}

// DraftFromForm binds posted form values. Dates are read in loc; unparsable
// dates bind as the zero time and fail the required rule.
func DraftFromForm(values url.Values, loc *time.Location) Draft {
	var d Draft
	for _, name := range Fields {
		if name == FieldIsFree {
			continue
		}
		_ = d.set(name, values.Get(name), loc)
	}
	d.IsFree = parseCheckbox(values.Get(FieldIsFree))
	return d
}

// Set assigns one field from its textual form value.
func (d *Draft) Set(name, value string) error {
	return d.set(name, value, time.Local)
}

func (d *Draft) set(name, value string, loc *time.Location) error {
	switch name {
	case FieldTitle:
		d.Title = value
	case FieldDescription:
		d.Description = value
	case FieldLocation:
		d.Location = value
	case FieldImageURL:
		d.ImageURL = value
	case FieldStartDateTime:
		d.StartDateTime = parseDateTime(value, loc)
	case FieldEndDateTime:
		d.EndDateTime = parseDateTime(value, loc)
	case FieldCategoryID:
		d.CategoryID = value
	case FieldPrice:
		d.Price = value
	case FieldIsFree:
		d.IsFree = parseCheckbox(value)
	case FieldURL:
		d.URL = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return nil
}

// Value returns the textual form value of a field, as rendered into inputs.
func (d Draft) Value(name string) string {
	switch name {
	case FieldTitle:
		return d.Title
	case FieldDescription:
		return d.Description
	case FieldLocation:
		return d.Location
	case FieldImageURL:
		return d.ImageURL
	case FieldStartDateTime:
		return formatDateTime(d.StartDateTime)
	case FieldEndDateTime:
		return formatDateTime(d.EndDateTime)
	case FieldCategoryID:
		return d.CategoryID
	case FieldPrice:
		return d.Price
	case FieldIsFree:
		return strconv.FormatBool(d.IsFree)
	case FieldURL:
		return d.URL
	}
	return ""
}

// Values renders every field for templates, keyed by field name.
func (d Draft) Values() map[string]string {
	out := make(map[string]string, len(Fields))
	for _, name := range Fields {
		out[name] = d.Value(name)
	}
	return out
}

func parseDateTime(s string, loc *time.Location) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	if loc == nil {
		loc = time.Local
	}
	if t, err := time.ParseInLocation(DateTimeLayout, s, loc); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	return time.Time{}
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateTimeLayout)
}

func parseCheckbox(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "true", "1", "yes":
		return true
	}
	return false
}

// FieldErrors maps a form field name to its human-readable error messages.
type FieldErrors map[string][]string

// Add appends a message for field.
func (fe FieldErrors) Add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

// First returns the first message for field, or "".
func (fe FieldErrors) First(field string) string {
	if msgs := fe[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

// Fields returns the failing field names in sorted order.
func (fe FieldErrors) Fields() []string {
	out := make([]string, 0, len(fe))
	for name := range fe {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterStructValidation(validatePrice, Draft{})
	return v
}

// validatePrice ignores the price text of free events.
func validatePrice(sl validator.StructLevel) {
	d := sl.Current().Interface().(Draft)
	if d.IsFree || d.Price == "" {
		return
	}
	p, err := strconv.ParseFloat(d.Price, 64)
	if err != nil || p < 0 || math.IsNaN(p) || math.IsInf(p, 0) {
		sl.ReportError(d.Price, FieldPrice, "Price", "price", "")
	}
}

// Validate checks every field of the draft at once. On success it returns the
// event record to persist and nil errors; otherwise the errors of every failing field.
func Validate(d Draft) (domain.Event, FieldErrors) {
	d = normalize(d)
	if err := validate.Struct(d); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return domain.Event{}, FieldErrors{"": {err.Error()}}
		}
		fe := make(FieldErrors, len(verrs))
		for _, ve := range verrs {
			fe.Add(ve.Field(), message(ve))
		}
		return domain.Event{}, fe
	}

	price := d.Price
	if d.IsFree {
		price = ""
	}
	return domain.Event{
		Title:         d.Title,
		Description:   d.Description,
		Location:      d.Location,
		ImageURL:      d.ImageURL,
		StartDateTime: d.StartDateTime,
		EndDateTime:   d.EndDateTime,
		CategoryID:    d.CategoryID,
		Price:         price,
		IsFree:        d.IsFree,
		URL:           d.URL,
	}, nil
}

// ValidateField returns the errors of a single field, used for inline feedback on change.
func ValidateField(d Draft, name string) []string {
	_, fe := Validate(d)
	return fe[name]
}

func normalize(d Draft) Draft {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	d.Location = strings.TrimSpace(d.Location)
	d.ImageURL = strings.TrimSpace(d.ImageURL)
	d.CategoryID = strings.TrimSpace(d.CategoryID)
	d.Price = strings.TrimSpace(d.Price)
	d.URL = strings.TrimSpace(d.URL)
	return d
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "gtefield":
		return fmt.Sprintf("%s must not be before %s", field, FieldStartDateTime)
	case "price":
		return fmt.Sprintf("%s must be a non-negative number", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
