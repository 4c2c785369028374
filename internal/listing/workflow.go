package listing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/isdelr/marketfront/internal/api"
	"github.com/isdelr/marketfront/internal/models"
	"github.com/isdelr/marketfront/internal/session"
)

// State is the listing workflow's position in its submit cycle.
type State string

const (
	StateEditing    State = "editing"
	StateSubmitting State = "submitting"
	StateSuccess    State = "success"
	StateFailed     State = "failed"
)

var (
	// ErrLoginRequired is returned when no user session is present.
	ErrLoginRequired = errors.New("login required to list products")
	// ErrSubmitInProgress is returned when a submit arrives while one is in flight.
	ErrSubmitInProgress = errors.New("a submission is already in progress")
	// ErrValidation is returned when field validation blocked the submit.
	ErrValidation = errors.New("form validation failed")
	// ErrDeleteCancelled is returned when the confirmation callback declined.
	ErrDeleteCancelled = errors.New("delete not confirmed")
)

// genericSubmitError is shown when the server gave no usable message.
const genericSubmitError = "Failed to add product. Please try again."

// Form holds the listing fields as entered. Price stays text until submit
// so partial input never blows up mid-edit.
type Form struct {
	Name  string `validate:"required,min=2"`
	Price string `validate:"required"`
	Image string `validate:"required,url"`
}

var validate = validator.New()

// Workflow drives the create/delete cycle for the current user's listings:
// Editing -> Submitting -> Success or Failed, then back to Editing.
type Workflow struct {
	api            *api.Client
	sessions       *session.Store
	successDisplay time.Duration

	mu        sync.Mutex
	state     State
	form      Form
	fieldErrs map[string]string
	submitErr string
	mine      []models.Product
}

// New creates a workflow in the Editing state. successDisplay is how long
// the Success state is held before auto-returning to Editing.
func New(apiClient *api.Client, sessions *session.Store, successDisplay time.Duration) *Workflow {
	return &Workflow{
		api:            apiClient,
		sessions:       sessions,
		successDisplay: successDisplay,
		state:          StateEditing,
		fieldErrs:      make(map[string]string),
	}
}

// Available reports whether the form is reachable at all. Without a session
// the view degrades to a login-required prompt instead.
func (w *Workflow) Available() bool {
	return w.sessions.Current() != nil
}

// SetField updates one form field. Changing a field clears its error
// immediately and leaves Failed or Success for Editing. The form is inert
// while a submit is in flight.
func (w *Workflow) SetField(field, value string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state == StateSubmitting {
		return
	}
	if w.state == StateFailed || w.state == StateSuccess {
		w.state = StateEditing
		w.submitErr = ""
	}

	switch field {
	case "name":
		w.form.Name = value
	case "price":
		w.form.Price = value
	case "image":
		w.form.Image = value
	default:
		return
	}
	delete(w.fieldErrs, field)
}

// Submit validates the form and creates the listing for the current user.
// Validation failures never reach the network.
func (w *Workflow) Submit(ctx context.Context) error {
	w.mu.Lock()
	if w.state == StateSubmitting {
		w.mu.Unlock()
		return ErrSubmitInProgress
	}

	sess := w.sessions.Current()
	if sess == nil {
		w.mu.Unlock()
		return ErrLoginRequired
	}

	if errs := validateForm(w.form); len(errs) > 0 {
		w.fieldErrs = errs
		w.mu.Unlock()
		return ErrValidation
	}

	price, _ := strconv.ParseFloat(strings.TrimSpace(w.form.Price), 64)
	payload := models.NewProduct{
		UserID: sess.User.ID,
		Name:   strings.TrimSpace(w.form.Name),
		Price:  price,
		Image:  strings.TrimSpace(w.form.Image),
	}
	w.state = StateSubmitting
	w.submitErr = ""
	w.mu.Unlock()

	_, err := w.api.Post(ctx, "/products/add", payload)

	w.mu.Lock()
	if err != nil {
		w.state = StateFailed
		var apiErr *api.APIError
		if errors.As(err, &apiErr) {
			w.submitErr = apiErr.Message
		} else {
			w.submitErr = genericSubmitError
		}
		w.mu.Unlock()
		log.Error().Err(err).Str("user_id", sess.User.ID).Msg("Failed to create listing")
		return err
	}

	w.state = StateSuccess
	w.form = Form{}
	w.fieldErrs = make(map[string]string)
	w.mu.Unlock()

	if rerr := w.RefreshMine(ctx); rerr != nil {
		log.Warn().Err(rerr).Msg("Failed to refresh own listings after create")
	}
	time.AfterFunc(w.successDisplay, w.endSuccessDisplay)
	return nil
}

func (w *Workflow) endSuccessDisplay() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state == StateSuccess {
		w.state = StateEditing
	}
}

// RefreshMine refetches the current user's own listings.
func (w *Workflow) RefreshMine(ctx context.Context) error {
	sess := w.sessions.Current()
	if sess == nil {
		return ErrLoginRequired
	}

	body, err := w.api.Get(ctx, "/products/user/"+sess.User.ID)
	if err != nil {
		return err
	}
	var products []models.Product
	if err := json.Unmarshal(body, &products); err != nil {
		return fmt.Errorf("failed to decode own listings: %w", err)
	}

	w.mu.Lock()
	w.mine = products
	w.mu.Unlock()
	return nil
}

// DeleteProduct removes one of the user's own listings. The confirm
// callback must approve before any request is issued. On success the item
// is dropped from the local list without a refetch; on failure the list is
// left unchanged.
func (w *Workflow) DeleteProduct(ctx context.Context, id string, confirm func(models.Product) bool) error {
	w.mu.Lock()
	var product *models.Product
	for i := range w.mine {
		if w.mine[i].ID == id {
			p := w.mine[i]
			product = &p
			break
		}
	}
	w.mu.Unlock()

	if product == nil {
		return fmt.Errorf("no listing with id %s", id)
	}
	if confirm == nil || !confirm(*product) {
		return ErrDeleteCancelled
	}

	if _, err := w.api.Delete(ctx, "/products/"+id); err != nil {
		log.Error().Err(err).Str("product_id", id).Msg("Failed to delete listing")
		return err
	}

	w.mu.Lock()
	kept := w.mine[:0]
	for _, p := range w.mine {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	w.mine = kept
	w.mu.Unlock()
	return nil
}

// State returns the workflow's current state.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Form returns the form as currently entered.
func (w *Workflow) Form() Form {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.form
}

// FieldErrors returns the current field-level validation errors.
func (w *Workflow) FieldErrors() map[string]string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make(map[string]string, len(w.fieldErrs))
	for k, v := range w.fieldErrs {
		out[k] = v
	}
	return out
}

// SubmitError returns the submission-level error message, if any.
func (w *Workflow) SubmitError() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.submitErr
}

// Mine returns the user's own listings as last fetched.
func (w *Workflow) Mine() []models.Product {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]models.Product, len(w.mine))
	copy(out, w.mine)
	return out
}

// validateForm checks the trimmed form and maps failures to the messages
// the storefront shows next to each field.
func validateForm(f Form) map[string]string {
	trimmed := Form{
		Name:  strings.TrimSpace(f.Name),
		Price: strings.TrimSpace(f.Price),
		Image: strings.TrimSpace(f.Image),
	}

	errs := make(map[string]string)
	if err := validate.Struct(trimmed); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				switch fe.Field() {
				case "Name":
					if fe.Tag() == "required" {
						errs["name"] = "Product name is required"
					} else {
						errs["name"] = "Product name must be at least 2 characters"
					}
				case "Price":
					errs["price"] = "Price is required"
				case "Image":
					if fe.Tag() == "required" {
						errs["image"] = "Image URL is required"
					} else {
						errs["image"] = "Please enter a valid image URL"
					}
				}
			}
		}
	}

	if _, seen := errs["price"]; !seen {
		v, err := strconv.ParseFloat(trimmed.Price, 64)
		if err != nil || v <= 0 {
			errs["price"] = "Price must be greater than 0"
		}
	}
	return errs
}
