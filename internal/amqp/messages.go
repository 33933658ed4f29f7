package amqp

import (
	"encoding/json"
	"time"
)

// LedgerSavedMessage announces that a user's ledger was rewritten.
// It carries only the storage key; consumers load the ledger from the store.
type LedgerSavedMessage struct {
	UserKey   string    `json:"user_key"`
	Count     int       `json:"count"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// NewLedgerSavedMessage creates a message stamped with the current time.
func NewLedgerSavedMessage(userKey string, count int, reason string) *LedgerSavedMessage {
	return &LedgerSavedMessage{
		UserKey:   userKey,
		Count:     count,
		Reason:    reason,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *LedgerSavedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// LedgerSavedMessageFromJSON creates a message from JSON bytes
func LedgerSavedMessageFromJSON(data []byte) (*LedgerSavedMessage, error) {
	var msg LedgerSavedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
