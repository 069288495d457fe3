package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// relayMessage is the queue payload. The screenshot and HTML snapshot are
// left out to stay under the SQS message size limit.
type relayMessage struct {
	Event        string `json:"event"`
	SubmissionID string `json:"submission_id"`
	ReceivedAt   string `json:"received_at"`
	URL          string `json:"url"`
	Message      string `json:"message"`
	Language     string `json:"language"`
	BrowserName  string `json:"browser_name"`
	UserAgent    string `json:"user_agent"`
	UserName     string `json:"user_name,omitempty"`
	UserEmail    string `json:"user_email,omitempty"`
	Theme        string `json:"theme,omitempty"`
	Template     string `json:"template,omitempty"`
	HasImage     bool   `json:"has_image"`
}

// SQSRelay forwards feedback events to an SQS queue for downstream consumers.
type SQSRelay struct {
	client   *sqs.Client
	queueURL string
}

// NewSQSRelay creates a relay publishing to queueURL.
func NewSQSRelay(client *sqs.Client, queueURL string) *SQSRelay {
	return &SQSRelay{client: client, queueURL: queueURL}
}

var _ Listener = (*SQSRelay)(nil)

// HandleEvent implements Listener.
func (r *SQSRelay) HandleEvent(ctx context.Context, ev Event) error {
	if ev.Submission == nil {
		return nil
	}
	s := ev.Submission
	body, err := json.Marshal(relayMessage{
		Event:        ev.Name,
		SubmissionID: s.ID,
		ReceivedAt:   ev.ReceivedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		URL:          s.URL,
		Message:      s.Message,
		Language:     s.Language,
		BrowserName:  s.Browser.Name,
		UserAgent:    s.Browser.UserAgent,
		UserName:     s.User.Name,
		UserEmail:    s.User.Email,
		Theme:        s.Theme.Name,
		Template:     s.Theme.Template,
		HasImage:     s.Image != "",
	})
	if err != nil {
		return fmt.Errorf("failed to marshal relay message: %w", err)
	}

	_, err = r.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(r.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"event": {DataType: aws.String("String"), StringValue: aws.String(ev.Name)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}
