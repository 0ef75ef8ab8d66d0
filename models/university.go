package models

import (
	"database/sql/driver"
	"time"
)

// Wizard step names. BasicInfo and FinalSubmission are always required;
// the optional steps are switched per university by RegistrationConfig.
const (
	StepBasicInfo          = "basic_info"
	StepEducationalDetails = "educational_details"
	StepDocuments          = "documents"
	StepEntranceTest       = "entrance_test"
	StepPayment            = "payment"
	StepFinalSubmission    = "final_submission"
)

// DocumentRequirement describes one document a university asks applicants for.
type DocumentRequirement struct {
	Name         string   `json:"name"`
	IsMandatory  bool     `json:"is_mandatory"`
	AllowedTypes []string `json:"allowed_types,omitempty"`
	MaxSizeMB    int      `json:"max_size_mb,omitempty"`
}

// RegistrationConfig drives which wizard steps are required for a
// university's applicants. Stored as a JSON column on universities.
type RegistrationConfig struct {
	EducationalDetailsEnabled bool                  `json:"educational_details_enabled"`
	EducationalFields         []string              `json:"educational_fields,omitempty"`
	DocumentsEnabled          bool                  `json:"documents_enabled"`
	RequiredDocuments         []DocumentRequirement `json:"required_documents,omitempty"`
	EntranceTestEnabled       bool                  `json:"entrance_test_enabled"`
	FeeEnabled                bool                  `json:"fee_enabled"`
	// FeeAmountPaise is the registration fee in minor units (paise).
	FeeAmountPaise int64 `json:"fee_amount_paise"`
	RefundAllowed  bool  `json:"refund_allowed"`
}

func (c RegistrationConfig) Value() (driver.Value, error) { return jsonValue(c) }
func (c *RegistrationConfig) Scan(src interface{}) error  { return jsonScan(c, src) }

// DefaultRegistrationConfig mirrors the defaults applied to a new university.
func DefaultRegistrationConfig() RegistrationConfig {
	return RegistrationConfig{
		EducationalDetailsEnabled: true,
		EducationalFields:         []string{"qualification", "board", "passing_year", "marks"},
		DocumentsEnabled:          true,
		EntranceTestEnabled:       false,
		FeeEnabled:                false,
	}
}

// RazorpayConfig holds the university's linked marketplace account.
type RazorpayConfig struct {
	LinkedAccountID   string `json:"linked_account_id,omitempty"`
	AccountStatus     string `json:"account_status"` // pending, active, suspended
	BankAccountName   string `json:"bank_account_name,omitempty"`
	BankAccountNumber string `json:"bank_account_number,omitempty"`
	BankIFSC          string `json:"bank_ifsc,omitempty"`
	KYCStatus         string `json:"kyc_status"` // pending, submitted, verified, rejected
}

func (c RazorpayConfig) Value() (driver.Value, error) { return jsonValue(c) }
func (c *RazorpayConfig) Scan(src interface{}) error  { return jsonScan(c, src) }

// IntegrationSettings carries per-university keys for inbound integrations.
type IntegrationSettings struct {
	LeadImportAPIKey string `json:"lead_import_api_key,omitempty"`
}

func (s IntegrationSettings) Value() (driver.Value, error) { return jsonValue(s) }
func (s *IntegrationSettings) Scan(src interface{}) error  { return jsonScan(s, src) }

// Brochure is a named downloadable document shown on the public page.
type Brochure struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type BrochureList []Brochure

func (l BrochureList) Value() (driver.Value, error) {
	if l == nil {
		l = BrochureList{}
	}
	return jsonValue(l)
}
func (l *BrochureList) Scan(src interface{}) error { return jsonScan(l, src) }

type University struct {
	ID      string `gorm:"primaryKey;column:id;size:36" json:"id"`
	Name    string `gorm:"column:name;size:255" json:"name"`
	Code    string `gorm:"column:code;size:32;uniqueIndex" json:"code"`
	Email   string `gorm:"column:email;size:255" json:"email"`
	Phone   string `gorm:"column:phone;size:32" json:"phone"`
	Address string `gorm:"column:address;size:512" json:"address"`
	LogoURL string `gorm:"column:logo_url;size:512" json:"logo_url,omitempty"`
	Website string `gorm:"column:website;size:255" json:"website,omitempty"`

	SubscriptionPlan   string     `gorm:"column:subscription_plan;size:32;default:basic" json:"subscription_plan"`
	SubscriptionStatus string     `gorm:"column:subscription_status;size:32;default:active" json:"subscription_status"`
	SubscriptionStart  *time.Time `gorm:"column:subscription_start" json:"subscription_start,omitempty"`
	SubscriptionEnd    *time.Time `gorm:"column:subscription_end" json:"subscription_end,omitempty"`

	RegistrationConfig  RegistrationConfig  `gorm:"column:registration_config;type:json" json:"registration_config"`
	RazorpayConfig      RazorpayConfig      `gorm:"column:razorpay_config;type:json" json:"razorpay_config"`
	IntegrationSettings IntegrationSettings `gorm:"column:integration_settings;type:json" json:"integration_settings,omitempty"`

	About      string       `gorm:"column:about;type:text" json:"about,omitempty"`
	Facilities StringList   `gorm:"column:facilities;type:json" json:"facilities"`
	Gallery    StringList   `gorm:"column:gallery;type:json" json:"gallery"`
	Brochures  BrochureList `gorm:"column:brochures;type:json" json:"brochures"`

	IsActive  bool      `gorm:"column:is_active;default:true" json:"is_active"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (University) TableName() string {
	return "universities"
}

// RequiredSteps lists the wizard steps an applicant must complete before
// final submission, in wizard order.
func (c RegistrationConfig) RequiredSteps() []string {
	steps := []string{StepBasicInfo}
	if c.EducationalDetailsEnabled {
		steps = append(steps, StepEducationalDetails)
	}
	if c.DocumentsEnabled {
		steps = append(steps, StepDocuments)
	}
	if c.EntranceTestEnabled {
		steps = append(steps, StepEntranceTest)
	}
	if c.FeeEnabled {
		steps = append(steps, StepPayment)
	}
	return steps
}
