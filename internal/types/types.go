// Package types provides shared type definitions used across mailflow packages.
// This package exists to break import cycles between classify, respond, and
// workflow. Types in this package should be foundational data structures with
// no complex dependencies.
package types

import (
	"fmt"
	"time"
)

// =============================================================================
// SENTIMENT AND URGENCY
// =============================================================================

// Sentiment is the keyword-derived tone of an inbound item body.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Urgency is the binary scheduling classification of an item.
// It orders processing; it is not a numeric score.
type Urgency string

const (
	UrgencyUrgent    Urgency = "urgent"
	UrgencyNotUrgent Urgency = "not_urgent"
)

// Rank maps urgency to a queue priority rank. Lower ranks dequeue first.
func (u Urgency) Rank() int {
	if u == UrgencyUrgent {
		return 0
	}
	return 1
}

// =============================================================================
// ITEM
// =============================================================================

// ItemStatus tracks an item through the processing lifecycle.
// Transitions only move forward: pending -> processed, or pending -> failed.
// The resolved state belongs to the API layer; this core never emits it.
type ItemStatus string

const (
	ItemStatusPending   ItemStatus = "pending"
	ItemStatusProcessed ItemStatus = "processed"
	ItemStatusResolved  ItemStatus = "resolved"
	ItemStatusFailed    ItemStatus = "failed"
)

// Item is an inbound support message under processing.
// ID, Sender, Subject, Body, and ReceivedAt are immutable once ingested;
// Sentiment, Urgency, Extracted, and Status are set by the pipeline.
type Item struct {
	ID         string        `yaml:"id" json:"id"`
	Sender     string        `yaml:"sender" json:"sender"`
	Subject    string        `yaml:"subject" json:"subject"`
	Body       string        `yaml:"body" json:"body"`
	ReceivedAt time.Time     `yaml:"received_at" json:"received_at"`
	Sentiment  Sentiment     `yaml:"sentiment,omitempty" json:"sentiment,omitempty"`
	Urgency    Urgency       `yaml:"urgency,omitempty" json:"urgency,omitempty"`
	Extracted  ExtractedInfo `yaml:"extracted_info,omitempty" json:"extracted_info,omitempty"`
	Status     ItemStatus    `yaml:"status" json:"status"`
}

// Validate checks the invariants an item must satisfy before entering the
// pipeline.
func (i *Item) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("item missing id")
	}
	if i.Subject == "" && i.Body == "" {
		return fmt.Errorf("item %s has neither subject nor body", i.ID)
	}
	return nil
}

// ExtractedInfo is an open mapping of extracted fields (phones, emails,
// product tokens, keyword indicator lists). Values are scalars or lists.
type ExtractedInfo map[string]interface{}

// Merge overlays fresh onto the receiver field by field. Keys produced by a
// new classification pass overwrite, keys the pass did not produce survive.
func (e ExtractedInfo) Merge(fresh ExtractedInfo) ExtractedInfo {
	if e == nil {
		e = make(ExtractedInfo, len(fresh))
	}
	for k, v := range fresh {
		e[k] = v
	}
	return e
}

// =============================================================================
// RESPONSE
// =============================================================================

// ResponseStatus tracks a generated reply.
type ResponseStatus string

const (
	ResponseStatusDraft  ResponseStatus = "draft"
	ResponseStatusSent   ResponseStatus = "sent"
	ResponseStatusFailed ResponseStatus = "failed"
)

// Response is a synthesized reply for exactly one item. GeneratedContent is
// immutable after creation; EditedContent is set by a human reviewer outside
// this core. SentAt is set only on transition to sent, by the send layer.
type Response struct {
	ID               string         `json:"id"`
	ItemID           string         `json:"item_id"`
	GeneratedContent string         `json:"generated_content"`
	EditedContent    string         `json:"edited_content,omitempty"`
	Status           ResponseStatus `json:"status"`
	SentAt           *time.Time     `json:"sent_at,omitempty"`
}

// =============================================================================
// KNOWLEDGE DOCUMENT
// =============================================================================

// Document is a titled, tagged text snippet used as candidate content for
// response synthesis. Immutable within one processing run; updates and
// deletes are administrative operations off the hot path.
type Document struct {
	ID       string   `yaml:"id" json:"id"`
	Title    string   `yaml:"title" json:"title"`
	Content  string   `yaml:"content" json:"content"`
	Category string   `yaml:"category,omitempty" json:"category,omitempty"`
	Tags     []string `yaml:"tags,omitempty" json:"tags,omitempty"`
}
