package address

import (
	"strings"
	"time"

	"github.com/gofrs/uuid"
)

type Type string

const (
	TypeShipping Type = "shipping"
	TypeBilling  Type = "billing"
)

func (t Type) Valid() bool {
	return t == TypeShipping || t == TypeBilling
}

type Address struct {
	ID                  uuid.UUID `json:"id" db:"id"`
	UserID              uuid.UUID `json:"user_id" db:"user_id"`
	AddressType         Type      `json:"address_type" db:"address_type"`
	FirstName           string    `json:"first_name" db:"first_name"`
	LastName            string    `json:"last_name" db:"last_name"`
	Company             string    `json:"company" db:"company"`
	StreetAddress       string    `json:"street_address" db:"street_address"`
	HouseNumber         string    `json:"house_number" db:"house_number"`
	HouseNumberAddition string    `json:"house_number_addition" db:"house_number_addition"`
	PostalCode          string    `json:"postal_code" db:"postal_code"`
	City                string    `json:"city" db:"city"`
	Province            string    `json:"province" db:"province"`
	Country             string    `json:"country" db:"country"`
	IsDefaultShipping   bool      `json:"is_default_shipping" db:"is_default_shipping"`
	IsDefaultBilling    bool      `json:"is_default_billing" db:"is_default_billing"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time `json:"updated_at" db:"updated_at"`
}

// FullAddress renders the Dutch multi-line postal format.
func (a *Address) FullAddress() string {
	var parts []string

	name := strings.TrimSpace(a.FirstName + " " + a.LastName)
	if a.Company != "" {
		name = a.Company + "\n" + name
	}
	parts = append(parts, name)

	street := a.StreetAddress + " " + a.HouseNumber
	if a.HouseNumberAddition != "" {
		street += " " + a.HouseNumberAddition
	}
	parts = append(parts, street)

	parts = append(parts, a.PostalCode+" "+a.City)

	if !strings.EqualFold(a.Country, "nederland") {
		parts = append(parts, a.Country)
	}

	return strings.Join(parts, "\n")
}
