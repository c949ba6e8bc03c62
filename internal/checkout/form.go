package checkout

import (
	"strings"

	"github.com/nikolayk812/foodie/internal/domain"
)

const (
	FieldName    = "name"
	FieldPhone   = "phone"
	FieldEmail   = "email"
	FieldAddress = "address"
	FieldPayment = "payment"
)

// Form is the customer input collected by the checkout modal.
type Form struct {
	Name    string
	Phone   string
	Email   string
	Address string
	Payment domain.PaymentMethod
}

func (f Form) trimmed() Form {
	return Form{
		Name:    strings.TrimSpace(f.Name),
		Phone:   strings.TrimSpace(f.Phone),
		Email:   strings.TrimSpace(f.Email),
		Address: strings.TrimSpace(f.Address),
		Payment: domain.PaymentMethod(strings.TrimSpace(string(f.Payment))),
	}
}

// Validate returns a *domain.ValidationError listing every missing field, or nil.
func (f Form) Validate() error {
	f = f.trimmed()
	verr := &domain.ValidationError{}

	if f.Name == "" {
		verr.Add(FieldName, "Name is required")
	}
	if f.Phone == "" {
		verr.Add(FieldPhone, "Phone is required")
	}
	if f.Email == "" {
		verr.Add(FieldEmail, "Email is required")
	}
	if f.Address == "" {
		verr.Add(FieldAddress, "Address is required")
	}

	switch {
	case f.Payment == "":
		verr.Add(FieldPayment, "Payment method is required")
	case !f.Payment.IsValid():
		verr.Add(FieldPayment, "Payment method is not supported")
	}

	return verr.OrNil()
}

func (f Form) customer() domain.Customer {
	return domain.Customer{
		Name:    f.Name,
		Phone:   f.Phone,
		Email:   f.Email,
		Address: f.Address,
	}
}
