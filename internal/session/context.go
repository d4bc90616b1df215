// Package session holds the per-conversation accumulator the assistant uses
// to answer follow-ups: quoted prices, who the user is, which appointment
// they last mentioned.
package session

import (
	"strings"

	"github.com/wolfman30/clinic-chat-assistant/internal/intent"
	"github.com/wolfman30/clinic-chat-assistant/internal/pricing"
)

// Role is who authored a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message of a conversation.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Transcript is the ordered list of turns supplied by the caller.
type Transcript []Turn

// Last returns at most n trailing turns.
func (t Transcript) Last(n int) Transcript {
	if n <= 0 || len(t) == 0 {
		return nil
	}
	if len(t) <= n {
		return t
	}
	return t[len(t)-n:]
}

// Context accumulates facts across turns. The zero value is an empty context.
type Context struct {
	MentionedPrices      []pricing.Mention `json:"mentioned_prices,omitempty"`
	LastQuery            string            `json:"last_query,omitempty"`
	IdentifiedUserName   string            `json:"identified_user_name,omitempty"`
	IdentifiedDoctorName string            `json:"identified_doctor_name,omitempty"`
	LastAppointmentCode  string            `json:"last_appointment_code,omitempty"`
}

// Clone returns a deep copy.
func (c *Context) Clone() *Context {
	if c == nil {
		return &Context{}
	}
	out := *c
	out.MentionedPrices = append([]pricing.Mention(nil), c.MentionedPrices...)
	return &out
}

// Hints exposes what classifiers may use from the context.
func (c *Context) Hints() intent.Hints {
	if c == nil {
		return intent.Hints{}
	}
	return intent.Hints{LastAppointmentCode: c.LastAppointmentCode, UserName: c.IdentifiedUserName}
}

// MergePrices adds mentions, keeping one entry per label. A label seen
// before keeps its position and takes the newer amount.
func (c *Context) MergePrices(mentions ...pricing.Mention) {
	for _, m := range mentions {
		key := m.Key()
		if key == "" {
			continue
		}
		replaced := false
		for i := range c.MentionedPrices {
			if c.MentionedPrices[i].Key() == key {
				c.MentionedPrices[i] = m
				replaced = true
				break
			}
		}
		if !replaced {
			c.MentionedPrices = append(c.MentionedPrices, m)
		}
	}
}

// ObserveUserTurn records the query and overwrites any identifier the
// text names.
func (c *Context) ObserveUserTurn(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	c.LastQuery = text
	if code, ok := intent.ExtractCode(text); ok {
		c.LastAppointmentCode = code
	}
	if name := intent.ExtractPatientName(text); name != "" {
		c.IdentifiedUserName = name
	}
	if doctor := intent.ExtractDoctorName(text); doctor != "" {
		c.IdentifiedDoctorName = doctor
	}
}

// ObserveAssistantTurn merges any prices the assistant quoted.
func (c *Context) ObserveAssistantTurn(text string) {
	c.MergePrices(pricing.ExtractPrices(text)...)
}

// Observe dispatches on the turn's role.
func (c *Context) Observe(t Turn) {
	switch t.Role {
	case RoleAssistant:
		c.ObserveAssistantTurn(t.Text)
	case RoleUser:
		c.ObserveUserTurn(t.Text)
	}
}

// Replay rebuilds a context from a transcript.
func Replay(transcript Transcript) *Context {
	c := &Context{}
	for _, t := range transcript {
		c.Observe(t)
	}
	return c
}
