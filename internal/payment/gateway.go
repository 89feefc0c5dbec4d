package payment

import (
	"context"
	"fmt"
	"strconv"

	mpconfig "github.com/mercadopago/sdk-go/pkg/config"
	mppayment "github.com/mercadopago/sdk-go/pkg/payment"
)

const StatusApproved = "approved"

// Payment is the part of a provider payment the booking engine reads.
type Payment struct {
	ID                string
	Status            string
	ExternalReference string
}

func (p *Payment) Approved() bool {
	return p.Status == StatusApproved
}

type Gateway interface {
	GetPayment(ctx context.Context, id string) (*Payment, error)
}

// MercadoPagoGateway looks payments up through the MercadoPago API, so a
// webhook body is never trusted on its own.
type MercadoPagoGateway struct {
	client mppayment.Client
}

func NewMercadoPagoGateway(accessToken string) (*MercadoPagoGateway, error) {
	cfg, err := mpconfig.New(accessToken)
	if err != nil {
		return nil, fmt.Errorf("mercadopago config: %w", err)
	}
	return &MercadoPagoGateway{client: mppayment.NewClient(cfg)}, nil
}

func (g *MercadoPagoGateway) GetPayment(ctx context.Context, id string) (*Payment, error) {
	numericID, err := strconv.Atoi(id)
	if err != nil {
		return nil, fmt.Errorf("invalid payment id %q: %w", id, err)
	}

	res, err := g.client.Get(ctx, numericID)
	if err != nil {
		return nil, fmt.Errorf("mercadopago get payment %d: %w", numericID, err)
	}

	return &Payment{
		ID:                strconv.Itoa(res.ID),
		Status:            res.Status,
		ExternalReference: res.ExternalReference,
	}, nil
}
