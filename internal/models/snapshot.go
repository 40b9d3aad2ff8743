package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// CardSnapshot stores the last successfully fetched detail for a card so the
// portal can still show it when the price API is unreachable
type CardSnapshot struct {
	UUID      string    `json:"uuid" gorm:"primaryKey"`
	Name      string    `json:"name" gorm:"not null;index"`
	Set       string    `json:"set"`
	Payload   []byte    `json:"-" gorm:"not null"`
	FetchedAt time.Time `json:"fetched_at" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewCardSnapshot encodes a detail into a snapshot row
func NewCardSnapshot(detail *CardDetail, fetchedAt time.Time) (*CardSnapshot, error) {
	payload, err := json.Marshal(detail)
	if err != nil {
		return nil, fmt.Errorf("failed to encode card %s: %w", detail.UUID, err)
	}
	return &CardSnapshot{
		UUID:      detail.UUID,
		Name:      detail.Name,
		Set:       detail.Set,
		Payload:   payload,
		FetchedAt: fetchedAt,
	}, nil
}

// Detail decodes the stored payload
func (s *CardSnapshot) Detail() (*CardDetail, error) {
	var detail CardDetail
	if err := json.Unmarshal(s.Payload, &detail); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %s: %w", s.UUID, err)
	}
	return &detail, nil
}
