package bot

import (
	"errors"
	"strconv"
)

// ErrUnsupportedMessageType indicates the declared type is not one the bot
// recognizes. No lock is taken for these events.
var ErrUnsupportedMessageType = errors.New("bot: unsupported message type")

// Recognized declared message types on the inbound webhook.
const (
	TypeText           = "text"
	TypePersistentMenu = "persistent_menu_response"
	TypeButton         = "button_response"
	TypeMultiSelect    = "multi_select_button_response"
	TypeLocation       = "location"
)

// InboundEvent is the decoded webhook body.
type InboundEvent struct {
	From                      string           `json:"from"`
	Type                      string           `json:"type"`
	Text                      *TextBody        `json:"text,omitempty"`
	PersistentMenuResponse    *MenuResponse    `json:"persistent_menu_response,omitempty"`
	ButtonResponse            *ButtonResponse  `json:"button_response,omitempty"`
	MultiSelectButtonResponse []ButtonResponse `json:"multi_select_button_response,omitempty"`
	Location                  *Location        `json:"location,omitempty"`
}

type TextBody struct {
	Body string `json:"body"`
}

type MenuResponse struct {
	ID    int    `json:"id"`
	Title string `json:"title,omitempty"`
}

type ButtonResponse struct {
	ButtonIndex int    `json:"button_index"`
	ButtonText  string `json:"button_text,omitempty"`
}

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name,omitempty"`
	Address   string  `json:"address,omitempty"`
}

// UserMessage is the canonical representation of an inbound event's payload,
// independent of its original message type. Exactly one of the fields is
// populated for non-text-like types.
type UserMessage struct {
	Text       string
	Selections []int
	Location   *Location
}

// String returns the text form used by string-driven step handlers.
func (m UserMessage) String() string {
	return m.Text
}

// ExtractUserMessage normalizes an inbound event into its canonical value.
//
// Menu selections carry a 1-based id and normalize to id-1 as a string;
// button responses carry a 0-based index and normalize to index+1.
func ExtractUserMessage(evt *InboundEvent) (UserMessage, error) {
	switch evt.Type {
	case TypeText:
		if evt.Text == nil {
			return UserMessage{}, ErrUnsupportedMessageType
		}
		return UserMessage{Text: evt.Text.Body}, nil
	case TypePersistentMenu:
		if evt.PersistentMenuResponse == nil {
			return UserMessage{}, ErrUnsupportedMessageType
		}
		return UserMessage{Text: strconv.Itoa(evt.PersistentMenuResponse.ID - 1)}, nil
	case TypeButton:
		if evt.ButtonResponse == nil {
			return UserMessage{}, ErrUnsupportedMessageType
		}
		return UserMessage{Text: strconv.Itoa(evt.ButtonResponse.ButtonIndex + 1)}, nil
	case TypeMultiSelect:
		selections := make([]int, 0, len(evt.MultiSelectButtonResponse))
		for _, b := range evt.MultiSelectButtonResponse {
			selections = append(selections, b.ButtonIndex+1)
		}
		return UserMessage{Selections: selections}, nil
	case TypeLocation:
		if evt.Location == nil {
			return UserMessage{}, ErrUnsupportedMessageType
		}
		return UserMessage{Location: evt.Location}, nil
	default:
		return UserMessage{}, ErrUnsupportedMessageType
	}
}

// ExtractStepMessage re-derives the canonical message for steps that present
// their own button sets. A button response whose label matches one of the
// known buttons resolves to the label itself instead of its positional index,
// so handlers can match on stable text rather than layout position.
func ExtractStepMessage(evt *InboundEvent, knownButtons []string) (UserMessage, error) {
	if evt.Type == TypeButton && evt.ButtonResponse != nil && evt.ButtonResponse.ButtonText != "" {
		for _, known := range knownButtons {
			if known == evt.ButtonResponse.ButtonText {
				return UserMessage{Text: evt.ButtonResponse.ButtonText}, nil
			}
		}
	}
	return ExtractUserMessage(evt)
}
