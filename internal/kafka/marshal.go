package kafka

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-delivery-marketplace/internal/events"
)

// UnmarshalEnvelope resets out first so a reused destination never keeps fields of an earlier message.
func UnmarshalEnvelope(b []byte, out *events.Envelope) error {
	*out = events.Envelope{}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	if out.EventType == "" {
		return errors.New("decode envelope: missing event_type")
	}
	return nil
}
