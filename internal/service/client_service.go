package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"go-pos-ledger/internal/model"
)

// ClientRequest registers a customer, typically from the checkout screen.
type ClientRequest struct {
	Name    string `json:"name" validate:"required"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

type ClientService interface {
	ListClients(ctx context.Context) ([]model.Client, error)
	CreateClient(ctx context.Context, req ClientRequest) (*model.Client, error)
}

func (s *ledgerService) ListClients(ctx context.Context) ([]model.Client, error) {
	_, span := s.tracer.Start(ctx, "ledger.list_clients")
	defer span.End()

	clients, err := s.clientRepo.FindAll()
	if err != nil {
		return nil, spanError(span, err)
	}
	return clients, nil
}

func (s *ledgerService) CreateClient(ctx context.Context, req ClientRequest) (*model.Client, error) {
	ctx, span := s.tracer.Start(ctx, "ledger.create_client")
	defer span.End()

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, spanError(span, fmt.Errorf("%w: client name is required", ErrInvalidRequest))
	}

	client := &model.Client{
		ID:      uuid.NewString(),
		Name:    name,
		Phone:   strings.TrimSpace(req.Phone),
		Address: strings.TrimSpace(req.Address),
		Notes:   req.Notes,
	}

	s.state.RLock()
	err := s.clientRepo.Save(client)
	s.state.RUnlock()
	if err != nil {
		return nil, spanError(span, err)
	}

	span.SetAttributes(attribute.String("client.id", client.ID))
	s.recorder.Record(ctx, model.LogClient, fmt.Sprintf("Client added: %s", client.Name))
	return client, nil
}
