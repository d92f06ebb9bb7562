package models

type CompanyDetails struct {
	Name          string   `json:"name" yaml:"name" validate:"required"`
	Logo          string   `json:"logo,omitempty" yaml:"logo"`
	Address       []string `json:"address" yaml:"address" validate:"min=1,dive,required"`
	VATNumber     string   `json:"vatNumber,omitempty" yaml:"vat_number"`
	CompanyNumber string   `json:"companyNumber,omitempty" yaml:"company_number"`
	PhoneNumber   string   `json:"phoneNumber,omitempty" yaml:"phone_number"`
	Email         string   `json:"email,omitempty" yaml:"email" validate:"omitempty,email"`
	Website       string   `json:"website,omitempty" yaml:"website" validate:"omitempty,url|fqdn"`
}

type ReceiptTemplate struct {
	ID                 string   `json:"id" yaml:"id" validate:"required"`
	Name               string   `json:"name" yaml:"name" validate:"required"`
	PrimaryColor       string   `json:"primaryColor" yaml:"primary_color" validate:"required,hexcolor"`
	SecondaryColor     string   `json:"secondaryColor" yaml:"secondary_color" validate:"required,hexcolor"`
	Logo               string   `json:"logo,omitempty" yaml:"logo"`
	ShowVAT            bool     `json:"showVat" yaml:"show_vat"`
	TermsAndConditions []string `json:"termsAndConditions" yaml:"terms_and_conditions"`
}
