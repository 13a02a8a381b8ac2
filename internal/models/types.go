// Package models defines the data models used in the application.
package models

// RefundStage represents how far a receipt is through reimbursement.
type RefundStage string

// Possible values for RefundStage
const (
	StageReceived   RefundStage = "received"
	StageProcessing RefundStage = "processing"
	StageReimbursed RefundStage = "reimbursed"
)

// User represents an account that owns receipts.
type User struct {
	OwnerID            uint   `gorm:"column:owner_id;primaryKey" json:"owner_id"`
	DisplayName        string `gorm:"column:display_name;uniqueIndex;not null" json:"display_name"`
	Phone              string `gorm:"column:phone" json:"phone"`
	Email              string `gorm:"column:email" json:"email"`
	FamilyMembers      string `gorm:"column:family_members" json:"family_members"`           // comma-joined
	InsuranceCompanies string `gorm:"column:insurance_companies" json:"insurance_companies"` // comma-joined
	CreatedAt          string `gorm:"column:created_at;autoCreateTime:false" json:"created_at"`
}

// TableName overrides the gorm default.
func (User) TableName() string { return "users" }

// Receipt is the authoritative relational record for one uploaded receipt.
// The asset store holds a lossy copy of the same fields packed into its
// context field; that copy may be missing after a partial failure.
type Receipt struct {
	AssetID         string `gorm:"column:asset_id;primaryKey" json:"asset_id"`
	OwnerID         uint   `gorm:"column:owner_id;not null" json:"owner_id"`
	OwnerName       string `gorm:"column:owner_name" json:"owner_name"`
	Name            string `gorm:"column:name" json:"name"`
	Date            string `gorm:"column:date" json:"date"` // YYYY-MM-DD
	SentToInsurance string `gorm:"column:sent_to_insurance" json:"sent_to_insurance"` // pipe-joined company names
	RefundDetails   string `gorm:"column:refund_details" json:"refund_details"`       // JSON array of RefundDetail
	InsuranceCo     string `gorm:"column:insurance_company" json:"insurance_company"`
	AccountUsername string `gorm:"column:account_username" json:"account_username"`
	FamilyCount     int    `gorm:"column:family_count" json:"family_count"`
	FamilyNames     string `gorm:"column:family_names" json:"family_names"`
	HowWork         string `gorm:"column:how_work" json:"how_work"`
	SecureURL       string `gorm:"column:secure_url" json:"secure_url"`
	CreatedAt       string `gorm:"column:created_at;autoCreateTime:false" json:"created_at"`
}

// TableName overrides the gorm default.
func (Receipt) TableName() string { return "receipts" }

// RefundDetail is one entry of the refund_details JSON list.
type RefundDetail struct {
	Company string `json:"company"`
	Amount  string `json:"amount"`
}
