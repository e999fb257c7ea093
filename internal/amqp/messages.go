package amqp

import (
	"encoding/json"
	"time"

	"shopledger/internal/core"
)

// TransactionSyncMessage asks the worker to export one transaction. It
// carries only the id; the worker loads the full record from storage.
type TransactionSyncMessage struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
}

// TransactionDeleteMessage asks the worker to remove an exported row. The
// local record is already gone, so the message carries its last snapshot.
type TransactionDeleteMessage struct {
	ID          string    `json:"id"`
	Date        string    `json:"date"`
	Type        string    `json:"type"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	AmountCents int64     `json:"amountCents"`
	Timestamp   time.Time `json:"timestamp"`
}

func NewTransactionSyncMessage(id string) *TransactionSyncMessage {
	return &TransactionSyncMessage{
		ID:        id,
		Timestamp: time.Now(),
	}
}

func NewTransactionDeleteMessage(t core.Transaction) *TransactionDeleteMessage {
	return &TransactionDeleteMessage{
		ID:          t.ID,
		Date:        t.Date.String(),
		Type:        string(t.Type),
		Category:    t.Category,
		Description: t.Description,
		AmountCents: t.Amount.Cents,
		Timestamp:   time.Now(),
	}
}

func (m *TransactionSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func (m *TransactionDeleteMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func TransactionSyncMessageFromJSON(data []byte) (*TransactionSyncMessage, error) {
	var msg TransactionSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

func TransactionDeleteMessageFromJSON(data []byte) (*TransactionDeleteMessage, error) {
	var msg TransactionDeleteMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
