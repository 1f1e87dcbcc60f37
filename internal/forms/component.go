package forms

import (
	"sync"
	"time"

	"github.com/forgo/bookshelf/internal/model"
)

// Timings controls the delayed UI transitions of a form page
type Timings struct {
	AlertDismissAfter   time.Duration `json:"alert_dismiss_after_ms"`
	AlertFade           time.Duration `json:"alert_fade_ms"`
	ButtonReenableAfter time.Duration `json:"button_reenable_after_ms"`
}

// DefaultTimings are the delays used by every page
var DefaultTimings = Timings{
	AlertDismissAfter:   5000 * time.Millisecond,
	AlertFade:           500 * time.Millisecond,
	ButtonReenableAfter: 3000 * time.Millisecond,
}

// Timer is a pending callback that can be cancelled
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks. The real clock wraps time.AfterFunc.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// SystemClock schedules on the runtime timer
var SystemClock Clock = realClock{}

// Validator validates the full set of field values on submit
type Validator func(values map[string]string) []model.FieldError

// RegisterValidator validates values as a RegisterForm
func RegisterValidator(values map[string]string) []model.FieldError {
	f := RegisterForm{
		Username:  values["username"],
		Email:     values["email"],
		Password1: values["password1"],
		Password2: values["password2"],
	}
	return f.Validate()
}

// LoginValidator validates values as a LoginForm
func LoginValidator(values map[string]string) []model.FieldError {
	f := LoginForm{Username: values["username"], Password: values["password"]}
	return f.Validate()
}

// AlertState is the lifecycle of a flash alert
type AlertState int

const (
	AlertVisible AlertState = iota
	AlertFading
	AlertDismissed
)

// Alert is a flash message shown at the top of a page
type Alert struct {
	ID      int
	Message string
	Style   string
	State   AlertState
}

// Icon classes of the password visibility toggle
const (
	IconShow = "fa-eye"
	IconHide = "fa-eye-slash"
)

// FieldState is the rendered state of one input
type FieldState struct {
	Value    string
	Error    string
	Obscured bool
}

// Icon returns the toggle icon class for the current visibility
func (f FieldState) Icon() string {
	if f.Obscured {
		return IconShow
	}
	return IconHide
}

// SubmitResult reports whether the form may be sent
type SubmitResult struct {
	Accepted bool
	Pending  bool
	Errors   []model.FieldError
}

// Component models one form page: its fields, the strength meter, the submit
// button and the alerts. Each exported method handles one event type. Events
// and timer callbacks are serialized, so the component behaves like a
// single-threaded UI loop. Teardown cancels every pending timer.
type Component struct {
	mu       sync.Mutex
	clock    Clock
	timings  Timings
	validate Validator

	fields          map[string]*FieldState
	strength        StrengthReport
	submitDisabled  bool
	alerts          []*Alert
	nextAlertID     int
	timers          map[int]Timer
	nextTimerID     int
	tornDown        bool
	passwordField   string
	confirmField    string
	obscuredByField map[string]bool
}

// ComponentConfig configures a Component
type ComponentConfig struct {
	Clock     Clock
	Timings   Timings
	Validator Validator
	// PasswordField feeds the strength meter. ConfirmField must match it.
	PasswordField  string
	ConfirmField   string
	ObscuredFields []string
}

// NewComponent creates a form component
func NewComponent(cfg ComponentConfig) *Component {
	if cfg.Clock == nil {
		cfg.Clock = SystemClock
	}
	if cfg.Timings == (Timings{}) {
		cfg.Timings = DefaultTimings
	}
	c := &Component{
		clock:           cfg.Clock,
		timings:         cfg.Timings,
		validate:        cfg.Validator,
		fields:          make(map[string]*FieldState),
		timers:          make(map[int]Timer),
		passwordField:   cfg.PasswordField,
		confirmField:    cfg.ConfirmField,
		obscuredByField: make(map[string]bool),
	}
	for _, name := range cfg.ObscuredFields {
		c.obscuredByField[name] = true
	}
	c.strength = Evaluate("")
	return c
}

// NewRegisterComponent builds the component used by the sign-up page
func NewRegisterComponent(clock Clock) *Component {
	return NewComponent(ComponentConfig{
		Clock:          clock,
		Validator:      RegisterValidator,
		PasswordField:  "password1",
		ConfirmField:   "password2",
		ObscuredFields: []string{"password1", "password2"},
	})
}

func (c *Component) field(name string) *FieldState {
	f, ok := c.fields[name]
	if !ok {
		f = &FieldState{Obscured: c.obscuredByField[name]}
		c.fields[name] = f
	}
	return f
}

// Input handles a change of one field and returns its validation message
func (c *Component) Input(name, value string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tornDown {
		return ""
	}

	f := c.field(name)
	f.Value = value
	f.Error = c.checkField(name, value)

	if name == c.passwordField && c.passwordField != "" {
		c.strength = Evaluate(value)
		if confirm, ok := c.fields[c.confirmField]; ok && confirm.Value != "" {
			confirm.Error = c.checkField(c.confirmField, confirm.Value)
		}
	}
	return f.Error
}

func (c *Component) checkField(name, value string) string {
	if name == c.confirmField && c.confirmField != "" {
		pw := ""
		if p, ok := c.fields[c.passwordField]; ok {
			pw = p.Value
		}
		return Check(value, Required, Match(pw))
	}
	if rules, ok := FieldRules[name]; ok {
		return Check(value, rules...)
	}
	return ""
}

// Submit validates every field. Invalid forms are blocked with one message per
// field. A valid submit disables the button until ButtonReenableAfter elapses;
// submits while disabled are reported as pending.
func (c *Component) Submit() SubmitResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tornDown {
		return SubmitResult{}
	}
	if c.submitDisabled {
		return SubmitResult{Pending: true}
	}

	values := make(map[string]string, len(c.fields))
	for name, f := range c.fields {
		values[name] = f.Value
	}

	var errs []model.FieldError
	if c.validate != nil {
		errs = c.validate(values)
	}
	for _, f := range c.fields {
		f.Error = ""
	}
	if len(errs) > 0 {
		for _, fe := range errs {
			f := c.field(fe.Field)
			if f.Error == "" {
				f.Error = fe.Message
			}
		}
		return SubmitResult{Errors: errs}
	}

	c.submitDisabled = true
	c.schedule(c.timings.ButtonReenableAfter, func() {
		c.submitDisabled = false
	})
	return SubmitResult{Accepted: true}
}

// ToggleVisibility flips a field between obscured and plain rendering
func (c *Component) ToggleVisibility(name string) FieldState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tornDown {
		return FieldState{}
	}
	f := c.field(name)
	f.Obscured = !f.Obscured
	return *f
}

// ShowAlert displays an alert that starts fading after AlertDismissAfter and
// is removed once the fade completes. It returns the alert id.
func (c *Component) ShowAlert(message, style string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tornDown {
		return 0
	}
	c.nextAlertID++
	a := &Alert{ID: c.nextAlertID, Message: message, Style: style}
	c.alerts = append(c.alerts, a)
	c.schedule(c.timings.AlertDismissAfter, func() {
		c.fade(a)
	})
	return a.ID
}

// DismissAlert starts the fade of an alert right away, as the close button does
func (c *Component) DismissAlert(id int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tornDown {
		return false
	}
	for _, a := range c.alerts {
		if a.ID == id && a.State == AlertVisible {
			c.fade(a)
			return true
		}
	}
	return false
}

// fade must be called with c.mu held
func (c *Component) fade(a *Alert) {
	if a.State != AlertVisible {
		return
	}
	a.State = AlertFading
	c.schedule(c.timings.AlertFade, func() {
		a.State = AlertDismissed
		for i, other := range c.alerts {
			if other == a {
				c.alerts = append(c.alerts[:i], c.alerts[i+1:]...)
				break
			}
		}
	})
}

// schedule must be called with c.mu held. The callback runs with c.mu held.
func (c *Component) schedule(d time.Duration, f func()) {
	c.nextTimerID++
	id := c.nextTimerID
	c.timers[id] = c.clock.AfterFunc(d, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if _, pending := c.timers[id]; !pending {
			return
		}
		delete(c.timers, id)
		f()
	})
}

// Teardown cancels every pending timer. Later events are ignored.
func (c *Component) Teardown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, t := range c.timers {
		t.Stop()
		delete(c.timers, id)
	}
	c.tornDown = true
}

// Field returns a copy of a field's state
func (c *Component) Field(name string) FieldState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if f, ok := c.fields[name]; ok {
		return *f
	}
	return FieldState{Obscured: c.obscuredByField[name]}
}

// Strength returns the current strength meter reading
func (c *Component) Strength() StrengthReport {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.strength
}

// SubmitDisabled reports whether the submit button is disabled
func (c *Component) SubmitDisabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submitDisabled
}

// Alerts returns a snapshot of the alerts still on the page
func (c *Component) Alerts() []Alert {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Alert, len(c.alerts))
	for i, a := range c.alerts {
		out[i] = *a
	}
	return out
}

// PendingTimers returns the number of scheduled callbacks
func (c *Component) PendingTimers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}
