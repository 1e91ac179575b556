package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/boutique/internal/record"
)

func TestAddCustomer_Basic(t *testing.T) {
	s, _ := createTestStore(t)
	ctx := context.Background()

	c := record.Customer{
		ID:      "CUST-1",
		Name:    "Akosua Mensah",
		Phone:   "0244000001",
		Email:   "akosua@example.com",
		Address: "Osu, Accra",
	}
	require.NoError(t, s.AddCustomer(ctx, c))

	got, found, err := s.GetCustomer(ctx, "CUST-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "Akosua Mensah", got.Name)
	assert.Equal(t, "akosua@example.com", got.Email)
	assert.Equal(t, "Osu, Accra", got.Address)
	requireDecimal(t, "0", got.TotalSpent)

	byPhone, found, err := s.GetCustomerByPhone(ctx, "0244000001")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "CUST-1", byPhone.ID)
}

func TestAddCustomer_DuplicatePhone(t *testing.T) {
	s, _ := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddCustomer(ctx, createTestCustomer("CUST-1", "555")))
	err := s.AddCustomer(ctx, createTestCustomer("CUST-2", "555"))

	var ce *ConstraintError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "customers", ce.Collection)
	assert.Equal(t, "phone", ce.Field)
	assert.Equal(t, "555", ce.Value)

	customers, err := s.GetCustomers(ctx)
	require.NoError(t, err)
	require.Len(t, customers, 1)
	assert.Equal(t, "CUST-1", customers[0].ID)
	assert.Equal(t, "Customer 555", customers[0].Name)
}

func TestUpdateCustomer_KeepsSpend(t *testing.T) {
	s, _ := createTestStore(t)
	ctx := context.Background()

	c := createTestCustomer("CUST-1", "555")
	c.TotalSpent = dec("40")
	require.NoError(t, s.AddCustomer(ctx, c))

	c.Name = "Renamed"
	c.Address = "Kumasi"
	c.TotalSpent = dec("0")
	require.NoError(t, s.UpdateCustomer(ctx, c))

	got, _, err := s.GetCustomer(ctx, "CUST-1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, "Kumasi", got.Address)
	requireDecimal(t, "40", got.TotalSpent)
}

func TestUpdateCustomer_MissingID(t *testing.T) {
	s, _ := createTestStore(t)

	err := s.UpdateCustomer(context.Background(), createTestCustomer("CUST-404", "555"))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateCustomer_PhoneCollision(t *testing.T) {
	s, _ := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.AddCustomer(ctx, createTestCustomer("CUST-1", "555")))
	require.NoError(t, s.AddCustomer(ctx, createTestCustomer("CUST-2", "666")))

	err := s.UpdateCustomer(ctx, createTestCustomer("CUST-2", "555"))
	require.True(t, IsUniqueViolation(err))
}

func TestGetCustomer_Missing(t *testing.T) {
	s, _ := createTestStore(t)

	_, found, err := s.GetCustomer(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, found)

	_, found, err = s.GetCustomerByPhone(context.Background(), "000")
	require.NoError(t, err)
	assert.False(t, found)
}
