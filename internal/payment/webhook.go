package payment

import "strings"

// Notification is the webhook body MercadoPago posts.
type Notification struct {
	Type   string `json:"type"`
	Action string `json:"action"`
	Data   struct {
		ID string `json:"id"`
	} `json:"data"`
}

// PaymentID returns the referenced payment id, falling back to the
// query-string form (?type=payment&data.id=...).
func (n Notification) PaymentID(queryType, queryID string) (string, bool) {
	typ := n.Type
	if typ == "" {
		typ = queryType
	}
	if !strings.EqualFold(typ, "payment") {
		return "", false
	}

	id := strings.TrimSpace(n.Data.ID)
	if id == "" {
		id = strings.TrimSpace(queryID)
	}
	return id, id != ""
}
