package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/No25ha/Market/internal/domain"
	"github.com/No25ha/Market/pkg/httpclient"
)

// AddressService manages saved shipping addresses.
type AddressService struct {
	doer   Doer
	logger *slog.Logger
}

// NewAddressService creates a new address service.
func NewAddressService(doer Doer, logger *slog.Logger) *AddressService {
	return &AddressService{doer: doer, logger: logger}
}

// List returns every saved address.
func (s *AddressService) List(ctx context.Context, token string) ([]domain.Address, error) {
	var env listEnvelope[domain.Address]
	err := call(ctx, s.doer, s.logger, &httpclient.Request{
		Method: http.MethodGet,
		Path:   path(familyAddresses),
		Route:  route(familyAddresses),
		Token:  token,
	}, "Failed to load addresses.", &env)
	if err != nil {
		return nil, err
	}
	return nonNil(env.Data), nil
}

// Get returns one saved address.
func (s *AddressService) Get(ctx context.Context, token, id string) (*domain.Address, error) {
	var env itemEnvelope[domain.Address]
	err := call(ctx, s.doer, s.logger, &httpclient.Request{
		Method: http.MethodGet,
		Path:   path(familyAddresses, id),
		Route:  route(familyAddresses, "{id}"),
		Token:  token,
	}, "Failed to load address.", &env)
	if err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// Add saves a new address.
func (s *AddressService) Add(ctx context.Context, token string, in domain.AddressInput) error {
	return call(ctx, s.doer, s.logger, &httpclient.Request{
		Method: http.MethodPost,
		Path:   path(familyAddresses),
		Route:  route(familyAddresses),
		Body:   in,
		Token:  token,
	}, "Failed to add address.", nil)
}

// Remove deletes the address with id.
func (s *AddressService) Remove(ctx context.Context, token, id string) error {
	return call(ctx, s.doer, s.logger, &httpclient.Request{
		Method: http.MethodDelete,
		Path:   path(familyAddresses, id),
		Route:  route(familyAddresses, "{id}"),
		Token:  token,
	}, "Failed to remove address.", nil)
}
