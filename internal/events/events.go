// Package events defines the donation lifecycle messages exchanged over NATS
// between the intake surface and the matching engine.
package events

import (
	"encoding/json"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Subjects consumed by the engine's serve loop.
const (
	SubjectDonationCreated  = "zerohunger.donation.created"
	SubjectDonationAccepted = "zerohunger.donation.accepted"
)

// DonationEvent is the payload of both lifecycle subjects. RecipientID is
// only present on acceptance events.
type DonationEvent struct {
	DonationID  string `mapstructure:"donation_id" json:"donation_id"`
	RecipientID string `mapstructure:"recipient_id" json:"recipient_id,omitempty"`
}

// Decode parses an event payload leniently: producers written in other
// stacks vary field types, so decoding is weakly typed and ignores extras.
func Decode(data []byte) (*DonationEvent, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse event payload: %w", err)
	}

	var event DonationEvent
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &event,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("decode event payload: %w", err)
	}

	if event.DonationID == "" {
		return nil, fmt.Errorf("event payload is missing donation_id")
	}

	return &event, nil
}
