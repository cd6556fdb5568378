package address_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/healclinics/shop-api/internal/address"
)

func TestCanonicalizePostcode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "compact uppercase", input: "1012NX", want: "1012 NX"},
		{name: "spaced uppercase", input: "1012 NX", want: "1012 NX"},
		{name: "lowercase", input: "1012nx", want: "1012 NX"},
		{name: "spaced lowercase", input: "1012 nx", want: "1012 NX"},
		{name: "surrounding whitespace", input: "  1012NX  ", want: "1012 NX"},
		{name: "leading zero", input: "0012NX", wantErr: true},
		{name: "missing letter", input: "1012N", wantErr: true},
		{name: "letters in digits", input: "101NXX", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "too long", input: "1012NXX", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := address.CanonicalizePostcode(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, address.ErrInvalidPostcode)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestCompactPostcode(t *testing.T) {
	got, err := address.CompactPostcode("1012 nx")
	require.NoError(t, err)
	require.Equal(t, "1012NX", got)
}

func TestFullAddress(t *testing.T) {
	addr := address.Address{
		FirstName:           "Jan",
		LastName:            "de Vries",
		Company:             "HealClinics BV",
		StreetAddress:       "Damstraat",
		HouseNumber:         "12",
		HouseNumberAddition: "A",
		PostalCode:          "1012 NX",
		City:                "Amsterdam",
		Country:             "Nederland",
	}

	want := "HealClinics BV\nJan de Vries\nDamstraat 12 A\n1012 NX Amsterdam"
	require.Equal(t, want, addr.FullAddress())
}

func TestFullAddressAbroadIncludesCountry(t *testing.T) {
	addr := address.Address{
		FirstName:     "Jan",
		LastName:      "de Vries",
		StreetAddress: "Rue Example",
		HouseNumber:   "5",
		PostalCode:    "1000 AB",
		City:          "Brussel",
		Country:       "België",
	}

	require.Contains(t, addr.FullAddress(), "België")
}
