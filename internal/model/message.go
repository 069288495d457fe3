package model

import "time"

// MessageKind distinguishes the two notification variants of a submission.
type MessageKind string

const (
	OwnerCopy     MessageKind = "owner"
	SubmitterCopy MessageKind = "submitter"
)

// OutboundMessage is a composed email ready for the mail dispatcher.
type OutboundMessage struct {
	Kind        MessageKind `json:"kind"`
	Recipient   string      `json:"recipient"`
	Subject     string      `json:"subject"`
	Body        string      `json:"body"`
	HTMLBody    string      `json:"html_body,omitempty"`
	Attachments []string    `json:"attachments,omitempty"`
}

// Delivery status values.
const (
	DeliverySent   = "sent"
	DeliveryFailed = "failed"
)

// DeliveryRecord is the single outbound record kept per sent message.
type DeliveryRecord struct {
	ID           string      `json:"id"`
	SubmissionID string      `json:"submission_id"`
	Kind         MessageKind `json:"kind"`
	Recipient    string      `json:"recipient"`
	Subject      string      `json:"subject"`
	Status       string      `json:"status"` // "sent" | "failed"
	Error        string      `json:"error,omitempty"`
	Attachment   string      `json:"attachment,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

// PipelineState names the steps a submission passes through.
type PipelineState string

const (
	StateReceived        PipelineState = "received"
	StateImageProcessing PipelineState = "image_processing"
	StateComposing       PipelineState = "composing"
	StateSendingOwner    PipelineState = "sending_owner"
	StateSendingCopy     PipelineState = "sending_submitter"
	StateDone            PipelineState = "done"
)

// Result summarises one pipeline run. It never travels back to the visitor.
type Result struct {
	SubmissionID string
	State        PipelineState
	Image        *StoredImage
	ImageErr     error
	Owner        *OutboundMessage
	Submitter    *OutboundMessage
	OwnerErr     error
	SubmitterErr error
}

// DeliveryListOptions carries filter and pagination parameters for listing deliveries.
type DeliveryListOptions struct {
	// Status filters by delivery status: "", "all", "sent", "failed".
	Status string
	Limit  int
	Offset int
}
