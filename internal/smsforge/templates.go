package smsforge

// Production template set for order lifecycle messages. Bodies match the
// copy approved for the B&Q / TradePoint / Screwfix banners; wording changes
// go through marketing, not this file.
var defaultTemplates = []*Template{
	// Order acknowledgements.
	{
		Type:           TypeOrder,
		Status:         StatusOrderSubmitted,
		Body:           "Thank you for your {brand} order {orderId}. We'll text you when it's ready to collect.",
		RequiredParams: []string{"orderId", "brand"},
	},
	{
		Type:           TypeOrder,
		Status:         StatusNewOrder,
		Body:           "Your order {orderId} has been received. We'll be in touch when it's ready to collect. Thank you.",
		RequiredParams: []string{"orderId"},
	},

	// Collection lifecycle.
	{
		Type:           TypeOrder,
		Status:         StatusAllocated,
		Body:           "Your order {orderId} is ready to collect from store. Please bring your confirmation email and ID. Thank you.",
		RequiredParams: []string{"orderId"},
	},
	{
		Type:           TypeOrder,
		Status:         StatusPartial,
		Body:           "Part of your order {orderId} is ready to collect from store. We'll text you when the remaining item(s) arrive. Thank you.",
		RequiredParams: []string{"orderId"},
	},
	{
		Type:           TypeCancellation,
		Status:         StatusCancelled,
		Body:           "Unfortunately we were unable to fulfil your order {orderId} and it has been cancelled. A refund is on its way. We're sorry for the inconvenience.",
		RequiredParams: []string{"orderId"},
	},
	{
		Type:           TypeOrder,
		Status:         StatusCollected,
		Body:           "This is to confirm that item(s) from order {orderId} were collected today. Further details have been emailed to you. Thank you.",
		RequiredParams: []string{"orderId"},
	},

	// Reminders.
	{
		Type:           TypeOrder,
		Status:         StatusReminder,
		Body:           "Just a gentle reminder that your order {orderId} is still waiting to be collected. It will be held until {expiryDate}. We've emailed you further details.",
		RequiredParams: []string{"orderId", "expiryDate"},
	},
	{
		Type:           TypeOrder,
		Status:         StatusFinalReminder,
		Body:           "Final reminder: your order {orderId} must be collected by {expiryDate} or it will be cancelled and refunded.",
		RequiredParams: []string{"orderId", "expiryDate"},
	},
	{
		Type:           TypeOrder,
		Status:         StatusExpiryAlert,
		Body:           "Your order {orderId} was not collected by {expiryDate} and has now expired. A refund is on its way.",
		RequiredParams: []string{"orderId", "expiryDate"},
	},
}

// DefaultRegistry returns a registry loaded with the production template
// set.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, t := range defaultTemplates {
		// The set above is statically unique per (type, status).
		_ = r.Register(t)
	}
	return r
}
