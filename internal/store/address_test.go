package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/No25ha/Market/internal/domain"
	apperrors "github.com/No25ha/Market/pkg/errors"
)

func newTestAddressBook(t *testing.T, token string) (*AddressBook, *upstream) {
	t.Helper()
	up, srv := newUpstream(t)
	return NewAddressBook(newServices(t, srv).addresses, &fakeSession{token: token}, testPolicy(), testLogger()), up
}

func addressInput(label string) domain.AddressInput {
	return domain.AddressInput{Label: label, Details: "12 Nile St", Phone: "01012345678", City: "Cairo"}
}

func TestAddressBook_LoadSelectsFirst(t *testing.T) {
	book, up := newTestAddressBook(t, "tok")
	up.addresses = []domain.Address{{ID: "a1", Label: "Home"}, {ID: "a2", Label: "Work"}}

	require.NoError(t, book.Load(context.Background()))

	selected, ok := book.Selected()
	require.True(t, ok)
	assert.Equal(t, "a1", selected.ID)
	assert.Len(t, book.Snapshot().Items, 2)
}

func TestAddressBook_LoadKeepsExistingSelection(t *testing.T) {
	book, up := newTestAddressBook(t, "tok")
	up.addresses = []domain.Address{{ID: "a1"}, {ID: "a2"}}
	ctx := context.Background()

	require.NoError(t, book.Load(ctx))
	require.NoError(t, book.Select("a2"))
	require.NoError(t, book.Load(ctx))

	assert.Equal(t, "a2", book.Snapshot().SelectedID)
}

func TestAddressBook_AddReloads(t *testing.T) {
	book, up := newTestAddressBook(t, "tok")

	require.NoError(t, book.Add(context.Background(), addressInput("Home")))

	snap := book.Snapshot()
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "Home", snap.Items[0].Label)
	assert.Equal(t, "addr-1", snap.SelectedID)
	assert.Equal(t, 1, up.count("GET /api/v1/addresses"))
}

func TestAddressBook_RemoveSelectedLeavesNoneSelected(t *testing.T) {
	book, up := newTestAddressBook(t, "tok")
	up.addresses = []domain.Address{{ID: "a1"}, {ID: "a2"}}
	ctx := context.Background()
	require.NoError(t, book.Load(ctx))
	require.Equal(t, "a1", book.Snapshot().SelectedID)

	require.NoError(t, book.Remove(ctx, "a1"))

	snap := book.Snapshot()
	assert.Empty(t, snap.SelectedID)
	require.Len(t, snap.Items, 1)
	assert.Equal(t, "a2", snap.Items[0].ID)
	_, ok := book.Selected()
	assert.False(t, ok)
}

func TestAddressBook_RemoveOtherKeepsSelection(t *testing.T) {
	book, up := newTestAddressBook(t, "tok")
	up.addresses = []domain.Address{{ID: "a1"}, {ID: "a2"}}
	ctx := context.Background()
	require.NoError(t, book.Load(ctx))

	require.NoError(t, book.Remove(ctx, "a2"))
	assert.Equal(t, "a1", book.Snapshot().SelectedID)
}

func TestAddressBook_SelectUnknown(t *testing.T) {
	book, _ := newTestAddressBook(t, "tok")
	err := book.Select("nope")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAddressBook_RequiresSession(t *testing.T) {
	book, up := newTestAddressBook(t, "")
	ctx := context.Background()

	assert.ErrorIs(t, book.Add(ctx, addressInput("Home")), apperrors.ErrUnauthorized)
	assert.Equal(t, "Please login to add addresses", book.Err())

	assert.ErrorIs(t, book.Remove(ctx, "a1"), apperrors.ErrUnauthorized)
	assert.Equal(t, "Please login to manage addresses", book.Err())
	assert.Equal(t, 0, up.count("POST /api/v1/addresses"))
}
