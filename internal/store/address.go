package store

import (
	"context"
	"log/slog"

	"github.com/No25ha/Market/internal/domain"
	apperrors "github.com/No25ha/Market/pkg/errors"
	"github.com/No25ha/Market/pkg/httpclient"
	"github.com/No25ha/Market/pkg/retry"
)

// AddressAPI is the upstream address resource.
type AddressAPI interface {
	List(ctx context.Context, token string) ([]domain.Address, error)
	Add(ctx context.Context, token string, in domain.AddressInput) error
	Remove(ctx context.Context, token, id string) error
}

// AddressBook holds the shopper's addresses and the one selected for
// checkout.
type AddressBook struct {
	status

	api     AddressAPI
	session Session
	policy  retry.Policy
	logger  *slog.Logger

	book domain.AddressBook
}

// NewAddressBook creates an empty address book store.
func NewAddressBook(api AddressAPI, sess Session, policy retry.Policy, logger *slog.Logger) *AddressBook {
	return &AddressBook{
		api:     api,
		session: sess,
		policy:  policy,
		logger:  logger,
	}
}

// Load fetches the addresses. A selection that no longer exists is
// dropped, and when nothing is selected the first address is.
func (b *AddressBook) Load(ctx context.Context) error {
	token := b.session.Token()
	if token == "" {
		return nil
	}
	epoch, writes := b.generation()
	return b.coalesce(ctx, epoch, func(ctx context.Context) error {
		b.begin()
		defer b.end()

		items, err := retry.Do(ctx, readPolicy(b.policy), "addresses.load", func(ctx context.Context) ([]domain.Address, error) {
			return b.api.List(ctx, token)
		})
		if err != nil && !httpclient.IsAbsent(err) {
			b.logger.ErrorContext(ctx, "failed to load addresses", slog.String("error", err.Error()))
			b.fail(epoch, err)
			return err
		}

		b.mu.Lock()
		defer b.mu.Unlock()
		if !b.freshLocked(epoch, writes) {
			return nil
		}
		b.book.Items = items
		b.err = ""
		if _, ok := b.book.Find(b.book.SelectedID); !ok {
			b.book.SelectedID = ""
		}
		if b.book.SelectedID == "" && len(items) > 0 {
			b.book.SelectedID = items[0].ID
		}
		return nil
	}, "addresses", "load", loadKey(writes))
}

// Refresh reloads the addresses, ignoring any load already in flight.
func (b *AddressBook) Refresh(ctx context.Context) error {
	b.invalidate()
	return b.Load(ctx)
}

// Add creates an address, then reloads.
func (b *AddressBook) Add(ctx context.Context, in domain.AddressInput) error {
	token, epoch, err := b.authorize(b.session, "Please login to add addresses")
	if err != nil {
		return err
	}

	err = retry.Run(ctx, b.policy, "addresses.add", func(ctx context.Context) error {
		return b.api.Add(ctx, token, in)
	})
	if err != nil {
		b.fail(epoch, err)
		return err
	}
	return b.Refresh(ctx)
}

// Remove deletes the address with id. Removing the selected address leaves
// nothing selected.
func (b *AddressBook) Remove(ctx context.Context, id string) error {
	token, epoch, err := b.authorize(b.session, "Please login to manage addresses")
	if err != nil {
		return err
	}

	err = b.coalesce(ctx, epoch, func(ctx context.Context) error {
		return retry.Run(ctx, b.policy, "addresses.remove", func(ctx context.Context) error {
			return b.api.Remove(ctx, token, id)
		})
	}, "addresses", "remove", id)
	if err != nil {
		b.fail(epoch, err)
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.writes++
	if b.epoch != epoch {
		return nil
	}
	kept := make([]domain.Address, 0, len(b.book.Items))
	for _, a := range b.book.Items {
		if a.ID != id {
			kept = append(kept, a)
		}
	}
	b.book.Items = kept
	if b.book.SelectedID == id {
		b.book.SelectedID = ""
	}
	return nil
}

// Select marks id as the checkout address.
func (b *AddressBook) Select(id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.book.Find(id); !ok {
		return apperrors.NotFound("address", id)
	}
	b.book.SelectedID = id
	return nil
}

// Selected returns the checkout address, if one is selected.
func (b *AddressBook) Selected() (domain.Address, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.book.Selected()
}

// Snapshot returns a copy of the address book.
func (b *AddressBook) Snapshot() domain.AddressBook {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return domain.AddressBook{
		Items:      append([]domain.Address{}, b.book.Items...),
		SelectedID: b.book.SelectedID,
	}
}

// Reset empties the store and discards results of calls still in flight.
func (b *AddressBook) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resetLocked()
	b.book = domain.AddressBook{}
}
