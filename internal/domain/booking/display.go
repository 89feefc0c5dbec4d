package booking

// DisplayStatus is the status a viewer is shown. Customers never see a
// rejection: the booking stays pending for them until it is reassigned
// or cancelled.
func DisplayStatus(s Status, viewer Party) Status {
	if viewer == PartyCustomer && s == StatusRejected {
		return StatusPending
	}
	return s
}
