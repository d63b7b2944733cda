package domain

import (
	"errors"
	"testing"
)

func validIndividual() *Seller {
	s := NewSeller(SellerTypeIndividual, "Jane Doe", "jane@example.com")
	s.Individual = &IndividualDetails{FirstName: "Jane", LastName: "Doe"}
	return s
}

func validCompany() *Seller {
	s := NewSeller(SellerTypeCompany, "Acme Ltd", "billing@acme.example")
	vat := "DE123456789"
	s.Company = &CompanyDetails{CompanyName: "Acme Ltd", VATNumber: &vat}
	return s
}

func TestSellerValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Seller)
		seller  *Seller
		wantErr bool
	}{
		{name: "valid individual", seller: validIndividual()},
		{name: "valid company", seller: validCompany()},
		{
			name:    "missing email",
			seller:  validIndividual(),
			mutate:  func(s *Seller) { s.Email = "  " },
			wantErr: true,
		},
		{
			name:    "missing name",
			seller:  validCompany(),
			mutate:  func(s *Seller) { s.Name = "" },
			wantErr: true,
		},
		{
			name:    "individual without payload",
			seller:  validIndividual(),
			mutate:  func(s *Seller) { s.Individual = nil },
			wantErr: true,
		},
		{
			name:    "individual missing first name",
			seller:  validIndividual(),
			mutate:  func(s *Seller) { s.Individual.FirstName = "" },
			wantErr: true,
		},
		{
			name:    "individual missing last name",
			seller:  validIndividual(),
			mutate:  func(s *Seller) { s.Individual.LastName = " " },
			wantErr: true,
		},
		{
			name:    "company without payload",
			seller:  validCompany(),
			mutate:  func(s *Seller) { s.Company = nil },
			wantErr: true,
		},
		{
			name:    "company missing company name",
			seller:  validCompany(),
			mutate:  func(s *Seller) { s.Company.CompanyName = "" },
			wantErr: true,
		},
		{
			name:   "company without vat number is fine",
			seller: validCompany(),
			mutate: func(s *Seller) { s.Company.VATNumber = nil },
		},
		{
			name:    "individual carrying company payload",
			seller:  validIndividual(),
			mutate:  func(s *Seller) { s.Company = &CompanyDetails{CompanyName: "Acme"} },
			wantErr: true,
		},
		{
			name:    "unknown seller type",
			seller:  validIndividual(),
			mutate:  func(s *Seller) { s.SellerType = "partnership" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.mutate != nil {
				tt.mutate(tt.seller)
			}
			err := tt.seller.Validate()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected validation error")
				}
				if !errors.Is(err, ErrSchemaViolation) {
					t.Fatalf("expected ErrSchemaViolation, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestNewSeller_StartsUnverifiedAndUnchanneled(t *testing.T) {
	s := NewSeller(SellerTypeIndividual, "Jane Doe", "jane@example.com")
	if s.VerificationStatus != VerificationPending {
		t.Fatalf("verification status = %q, want %q", s.VerificationStatus, VerificationPending)
	}
	if s.IsActive {
		t.Fatal("new seller must not be active")
	}
	if s.ChannelID != nil {
		t.Fatal("new seller must not have a channel")
	}
}
