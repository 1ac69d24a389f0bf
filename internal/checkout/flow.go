package checkout

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Hansade2005/shopsavvy/internal/cart"
)

// Step names one state of the linear checkout wizard.
type Step string

const (
	StepContact  Step = "contact"
	StepShipping Step = "shipping"
	StepPayment  Step = "payment"
)

// Payment methods accepted at the payment step.
const (
	MethodCredit = "credit"
	MethodPayPal = "paypal"
	MethodApple  = "apple"
)

var (
	ErrMissingFields = errors.New("required fields missing")
	ErrAtFirstStep   = errors.New("already at the first step")
	ErrAtFinalStep   = errors.New("already at the final step")
	ErrAlreadyPlaced = errors.New("order already placed")
	ErrNotReady      = errors.New("checkout is not at the payment step")
	ErrInvalidMethod = errors.New("unknown payment method")
)

// Contact is the first step's form data.
type Contact struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone,omitempty"`
}

// Address is the shipping step's form data.
type Address struct {
	Line1      string `json:"line1"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Flow is one in-progress checkout. It owns a snapshot of the cart
// taken when checkout began, so cart mutations elsewhere never touch
// an in-flight purchase. Form data entered for later steps survives
// back-navigation: going back and re-advancing discards nothing.
type Flow struct {
	mu       sync.Mutex
	step     Step
	snapshot []cart.Line
	totals   cart.Totals

	contact  Contact
	shipping Address
	method   string

	placed bool
}

// NewFlow starts a checkout over a snapshot of the given cart.
func NewFlow(c *cart.Store) *Flow {
	return &Flow{
		step:     StepContact,
		snapshot: c.Snapshot(),
		totals:   c.Totals(),
	}
}

// Step returns the wizard's current step.
func (f *Flow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// Snapshot returns the cart lines captured at checkout entry.
func (f *Flow) Snapshot() []cart.Line {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]cart.Line, len(f.snapshot))
	copy(out, f.snapshot)
	return out
}

// Totals returns the totals captured at checkout entry.
func (f *Flow) Totals() cart.Totals {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.totals
}

// SetContact stores the contact form. Values accumulate: setting the
// contact again after advancing does not reset later steps.
func (f *Flow) SetContact(c Contact) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contact = c
}

func (f *Flow) Contact() Contact {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.contact
}

func (f *Flow) SetShipping(a Address) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shipping = a
}

func (f *Flow) Shipping() Address {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.shipping
}

// SetPaymentMethod selects how the buyer wants to pay.
func (f *Flow) SetPaymentMethod(method string) error {
	switch method {
	case MethodCredit, MethodPayPal, MethodApple:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMethod, method)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.method = method
	return nil
}

func (f *Flow) PaymentMethod() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.method
}

// Next advances the wizard one step. The transition is guarded by
// presence validation of the current step's required fields.
func (f *Flow) Next() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.placed {
		return ErrAlreadyPlaced
	}

	switch f.step {
	case StepContact:
		if missing := missingContactFields(f.contact); len(missing) > 0 {
			return fmt.Errorf("%w: %s", ErrMissingFields, strings.Join(missing, ", "))
		}
		f.step = StepShipping
	case StepShipping:
		if missing := missingShippingFields(f.shipping); len(missing) > 0 {
			return fmt.Errorf("%w: %s", ErrMissingFields, strings.Join(missing, ", "))
		}
		f.step = StepPayment
	case StepPayment:
		return ErrAtFinalStep
	}
	return nil
}

// Back returns to the previous step. It is always permitted (except
// at the first step) and never discards entered data.
func (f *Flow) Back() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.placed {
		return ErrAlreadyPlaced
	}

	switch f.step {
	case StepContact:
		return ErrAtFirstStep
	case StepShipping:
		f.step = StepContact
	case StepPayment:
		f.step = StepShipping
	}
	return nil
}

func (f *Flow) markPlaced() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.placed = true
}

// readyToPlace checks the flow can finalize: on the payment step,
// a method selected, not yet placed.
func (f *Flow) readyToPlace() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.placed {
		return ErrAlreadyPlaced
	}
	if f.step != StepPayment {
		return ErrNotReady
	}
	if f.method == "" {
		return fmt.Errorf("%w: payment method", ErrMissingFields)
	}
	return nil
}

func missingContactFields(c Contact) []string {
	var missing []string
	if c.Email == "" {
		missing = append(missing, "email")
	}
	if c.FirstName == "" {
		missing = append(missing, "first_name")
	}
	if c.LastName == "" {
		missing = append(missing, "last_name")
	}
	return missing
}

func missingShippingFields(a Address) []string {
	var missing []string
	if a.Line1 == "" {
		missing = append(missing, "line1")
	}
	if a.City == "" {
		missing = append(missing, "city")
	}
	if a.PostalCode == "" {
		missing = append(missing, "postal_code")
	}
	if a.Country == "" {
		missing = append(missing, "country")
	}
	return missing
}
