package ir

import (
	"fmt"
	"strings"
)

// Mode is the coarse category of a card that gates which actions apply.
type Mode string

const (
	// ModeMail is primary mail.
	ModeMail Mode = "mail"

	// ModeAds is promotional mail.
	ModeAds Mode = "ads"
)

// ValidModes defines the allowed mode strings.
var ValidModes = map[Mode]bool{
	ModeMail: true,
	ModeAds:  true,
}

// ActionKind distinguishes external navigation from in-app flows.
type ActionKind string

const (
	// KindGoTo opens an external link.
	KindGoTo ActionKind = "goto"

	// KindInApp presents an in-app flow.
	KindInApp ActionKind = "in_app"
)

// ParseActionKind accepts the canonical kind strings plus the camel-case
// spellings sent by the classifier ("GO_TO", "IN_APP", "goTo", "inApp").
func ParseActionKind(s string) (ActionKind, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", "")) {
	case "goto":
		return KindGoTo, nil
	case "inapp":
		return KindInApp, nil
	default:
		return "", fmt.Errorf("unknown action kind %q", s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *ActionKind) UnmarshalText(text []byte) error {
	parsed, err := ParseActionKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Action is a suggested next step attached to a card.
type Action struct {
	ID            string     `json:"id" yaml:"id"`
	Kind          ActionKind `json:"kind" yaml:"kind"`
	IsPrimary     bool       `json:"is_primary,omitempty" yaml:"is_primary,omitempty"`
	Priority      *int       `json:"priority,omitempty" yaml:"priority,omitempty"`
	Context       Context    `json:"context" yaml:"context"`
	IsCompound    bool       `json:"is_compound,omitempty" yaml:"is_compound,omitempty"`
	CompoundSteps []string   `json:"compound_steps,omitempty" yaml:"compound_steps,omitempty"`
}

// Sender identifies who sent a card.
type Sender struct {
	Name    string `json:"name,omitempty" yaml:"name,omitempty"`
	Address string `json:"address,omitempty" yaml:"address,omitempty"`
}

// Organization identifies the organization a card came from.
type Organization struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// Attachment is a file attached to a message.
type Attachment struct {
	ID              string `json:"id" yaml:"id"`
	Filename        string `json:"filename" yaml:"filename"`
	OwningMessageID string `json:"owning_message_id" yaml:"owning_message_id"`
}

// Card is the message that owns suggested actions. The engine only reads it.
type Card struct {
	ID           string       `json:"id" yaml:"id"`
	Mode         Mode         `json:"mode" yaml:"mode"`
	Sender       Sender       `json:"sender" yaml:"sender"`
	Organization Organization `json:"organization" yaml:"organization"`
	Attachments  []Attachment `json:"attachments,omitempty" yaml:"attachments,omitempty"`
	Title        string       `json:"title" yaml:"title"`
	BodyText     string       `json:"body_text" yaml:"body_text"`
}

// DisplayName returns the best human name for whoever sent the card:
// organization, then sender name, then sender address.
func (c *Card) DisplayName() string {
	if c == nil {
		return ""
	}
	switch {
	case strings.TrimSpace(c.Organization.Name) != "":
		return strings.TrimSpace(c.Organization.Name)
	case strings.TrimSpace(c.Sender.Name) != "":
		return strings.TrimSpace(c.Sender.Name)
	default:
		return strings.TrimSpace(c.Sender.Address)
	}
}
