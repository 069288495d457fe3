// Package mailer sends composed feedback notifications. A send is attempted
// exactly once; failures are reported to the caller and never retried.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/afrigis/user-feedback/internal/model"
)

// ErrMailTransport wraps every failure reported by a Transport.
var ErrMailTransport = errors.New("mail transport error")

// Transport delivers one message.
type Transport interface {
	Send(ctx context.Context, msg *model.OutboundMessage) error
}

// AttachmentOpener resolves an attachment path into its content.
type AttachmentOpener interface {
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// Dispatcher is the single entry point the pipeline uses to send mail.
type Dispatcher struct {
	transport Transport
}

// NewDispatcher wraps transport.
func NewDispatcher(transport Transport) *Dispatcher {
	return &Dispatcher{transport: transport}
}

// Send delivers msg once. Any transport failure is returned wrapped in
// ErrMailTransport.
func (d *Dispatcher) Send(ctx context.Context, msg *model.OutboundMessage) error {
	if msg == nil {
		return fmt.Errorf("%w: nil message", ErrMailTransport)
	}
	if msg.Recipient == "" {
		return fmt.Errorf("%w: %s copy has no recipient", ErrMailTransport, msg.Kind)
	}
	if err := d.transport.Send(ctx, msg); err != nil {
		return fmt.Errorf("%w: %v", ErrMailTransport, err)
	}
	return nil
}
