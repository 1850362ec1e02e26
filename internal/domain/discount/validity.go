package discount

import "time"

// Date returns midnight UTC of t's calendar day as seen in t's location.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// EffectiveState returns the code's State with the expiry date applied.
func (c *Code) EffectiveState(today time.Time) State {
	if c.State != StateActive {
		return c.State
	}
	if c.expiredOn(today) {
		return StateExpired
	}
	return StateActive
}

// expiredOn reports whether the expiry date is strictly before today.
// A code expiring today is still usable.
func (c *Code) expiredOn(today time.Time) bool {
	return c.ExpiresOn != nil && Date(*c.ExpiresOn).Before(Date(today))
}

// Check explains why the code is unusable on today, or returns nil.
// It never mutates the code.
func (c *Code) Check(today time.Time) error {
	switch c.State {
	case StateDeleted:
		return ErrDeleted
	case StateDraft:
		return ErrInactive
	case StateExpired:
		return ErrExpired
	}

	if c.Quantity != nil && *c.Quantity <= 0 {
		return ErrExhausted
	}
	if !c.OffPrice.Valid && c.OffPercent == nil {
		return ErrNoDiscountValue
	}
	if c.expiredOn(today) {
		return ErrExpired
	}

	return nil
}

// IsValid reports whether the code is usable on today.
func (c *Code) IsValid(today time.Time) bool {
	return c.Check(today) == nil
}
