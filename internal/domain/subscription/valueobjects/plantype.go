package valueobjects

import "fmt"

// PlanType represents the tier of a content subscription
type PlanType string

const (
	// PlanTypeFree is the default tier created with every account
	PlanTypeFree PlanType = "free"
	// PlanTypePro is granted only after a verified payment
	PlanTypePro PlanType = "pro"
)

// IsValid checks if the plan type is valid
func (pt PlanType) IsValid() bool {
	return pt == PlanTypeFree || pt == PlanTypePro
}

// String returns the string representation of the plan type
func (pt PlanType) String() string {
	return string(pt)
}

// NewPlanType creates a new PlanType from a string
func NewPlanType(s string) (PlanType, error) {
	pt := PlanType(s)
	if !pt.IsValid() {
		return "", fmt.Errorf("invalid plan type: %s, must be 'free' or 'pro'", s)
	}
	return pt, nil
}

func (pt PlanType) IsPro() bool {
	return pt == PlanTypePro
}

// DisplayName is the label shown on the plan badge
func (pt PlanType) DisplayName() string {
	switch pt {
	case PlanTypePro:
		return "Pro"
	case PlanTypeFree:
		return "Free"
	default:
		return string(pt)
	}
}
