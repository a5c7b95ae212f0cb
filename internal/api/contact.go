package api

import (
	"context"
	"net/http"

	apperrors "github.com/panelkit/dealerpanel/internal/platform/errors"
)

// ContactGateway reaches the dealer's assigned sales representative.
type ContactGateway struct {
	client *Client
}

// Contact returns the contact resource gateway.
func (c *Client) Contact() *ContactGateway {
	return &ContactGateway{client: c}
}

// Representative is the sales contact assigned to the dealer.
type Representative struct {
	Name   string `json:"name"`
	Phone  string `json:"telefon"`
	Email  string `json:"email"`
	Region string `json:"bolge,omitempty"`
}

// Message is a contact-form submission.
type Message struct {
	Subject string `json:"konu"`
	Body    string `json:"mesaj"`
}

// Representative returns the dealer's assigned representative.
func (g *ContactGateway) Representative(ctx context.Context) (Representative, error) {
	var rep Representative
	if err := g.client.get(ctx, "/contact/representative", nil, &rep); err != nil {
		return Representative{}, apperrors.Wrap(apperrors.CodeContactUnavailable, "get representative", err)
	}
	return rep, nil
}

// Send submits a contact-form message.
func (g *ContactGateway) Send(ctx context.Context, msg Message) error {
	if err := g.client.send(ctx, http.MethodPost, "/contact/info", msg, nil); err != nil {
		return apperrors.Wrap(apperrors.CodeContactUnavailable, "send contact message", err)
	}
	return nil
}
