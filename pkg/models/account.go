package models

// AccountCode is one entry of the chart of accounts.
type AccountCode struct {
	Code        string `gorm:"primaryKey;size:32" json:"code" yaml:"code"`
	Description string `gorm:"size:255" json:"description" yaml:"description"`
	Category    string `gorm:"size:64" json:"category" yaml:"category"`
}

func (AccountCode) TableName() string { return "account_codes" }
