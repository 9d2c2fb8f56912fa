package types

// PremiseType is the stored discriminator of a business premise kind
type PremiseType string

const (
	PremiseTypeMovable   PremiseType = "MOVABLE"
	PremiseTypeImmovable PremiseType = "IMMOVABLE"
)

// MovablePremiseType is the authority's classification of a movable premise
type MovablePremiseType string

const (
	// MovablePremiseTypeA is a movable object such as a vehicle or a movable stand
	MovablePremiseTypeA MovablePremiseType = "A"
	// MovablePremiseTypeB is an object at a permanent location such as a market stall
	MovablePremiseTypeB MovablePremiseType = "B"
	// MovablePremiseTypeC is an individual electronic device without a premise
	MovablePremiseTypeC MovablePremiseType = "C"
)

func (t MovablePremiseType) Valid() bool {
	switch t {
	case MovablePremiseTypeA, MovablePremiseTypeB, MovablePremiseTypeC:
		return true
	}
	return false
}

// RegistrationStatus tracks a premise through
// unregistered -> registering -> registered | failed
type RegistrationStatus string

const (
	RegistrationStatusUnregistered RegistrationStatus = "unregistered"
	RegistrationStatusRegistering  RegistrationStatus = "registering"
	RegistrationStatusRegistered   RegistrationStatus = "registered"
	RegistrationStatusFailed       RegistrationStatus = "failed"
)

// IsPending reports whether the premise has not reached a terminal registration state
func (s RegistrationStatus) IsPending() bool {
	return s == RegistrationStatusUnregistered || s == RegistrationStatusRegistering
}
