package models

import (
	"time"
)

// PaymentEntry is one line of a tenant's payment history. SessionID is set
// when the entry was recorded from a checkout session.
type PaymentEntry struct {
	ID        string    `bson:"id" json:"id"`
	Amount    float64   `bson:"amount" json:"amount"`
	Date      time.Time `bson:"date" json:"date"`
	Status    string    `bson:"status" json:"status"`
	SessionID string    `bson:"sessionId,omitempty" json:"sessionId,omitempty"`
}
