// Copyright 2026 The taskhub Authors
// SPDX-License-Identifier: Apache-2.0

package taskhub

import (
	"fmt"
	"time"
)

// Message is a direct message between two identities.
type Message struct {
	ID       string    `json:"id"`
	Sender   string    `json:"sender"`
	Receiver string    `json:"receiver"`
	Subject  string    `json:"subject"`
	Content  string    `json:"content"`
	Read     bool      `json:"read"`
	SentDate time.Time `json:"sentDate"`
}

// Validate ensures the message is well formed.
func (m *Message) Validate() error {
	if m.ID == "" {
		return fmt.Errorf("message ID cannot be empty")
	}
	if m.Sender == "" {
		return fmt.Errorf("message sender cannot be empty")
	}
	if m.Receiver == "" {
		return fmt.Errorf("message receiver cannot be empty")
	}
	return nil
}

// Involves reports whether the given identity is the sender or the receiver.
// Only involved identities may read or delete a message.
func (m *Message) Involves(identityID string) bool {
	return m.Sender == identityID || m.Receiver == identityID
}

// MessageView is a message with its identity references expanded, delivered
// on the notification channel and returned by the REST API.
type MessageView struct {
	ID       string      `json:"id"`
	Sender   IdentityRef `json:"sender"`
	Receiver IdentityRef `json:"receiver"`
	Subject  string      `json:"subject"`
	Content  string      `json:"content"`
	Read     bool        `json:"read"`
	SentDate time.Time   `json:"sentDate"`
}

// NewMessageView resolves a message against the identities it references.
func NewMessageView(m *Message, sender, receiver IdentityRef) MessageView {
	return MessageView{
		ID:       m.ID,
		Sender:   sender,
		Receiver: receiver,
		Subject:  m.Subject,
		Content:  m.Content,
		Read:     m.Read,
		SentDate: m.SentDate,
	}
}
