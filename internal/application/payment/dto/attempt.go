package dto

import (
	"time"

	"github.com/mataroo/mataroo/internal/domain/payment"
)

// AttemptDTO is the state of the current upgrade attempt as shown on the
// dashboard. Busy mirrors the disabled upgrade button.
type AttemptDTO struct {
	ID        string    `json:"id"`
	State     string    `json:"state"`
	Outcome   string    `json:"outcome,omitempty"`
	Busy      bool      `json:"busy"`
	OrderID   string    `json:"order_id,omitempty"`
	Amount    int64     `json:"amount,omitempty"`
	Currency  string    `json:"currency,omitempty"`
	Message   string    `json:"message,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

func ToAttemptDTO(a *payment.Attempt, busy bool) *AttemptDTO {
	if a == nil {
		return &AttemptDTO{State: "idle", Busy: busy}
	}
	d := &AttemptDTO{
		ID:        a.ID(),
		State:     a.State().String(),
		Outcome:   a.Outcome().String(),
		Busy:      busy,
		Message:   a.Message(),
		UpdatedAt: a.UpdatedAt(),
	}
	if o := a.Order(); o != nil {
		d.OrderID = o.ID()
		d.Amount = o.Amount().MinorUnits()
		d.Currency = o.Amount().Currency()
	}
	return d
}
