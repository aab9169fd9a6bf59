package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// LogStatus represents the outcome of a synchronization attempt
type LogStatus string

const (
	LogStatusQueued  LogStatus = "Queued"
	LogStatusSuccess LogStatus = "Success"
	LogStatusError   LogStatus = "Error"
	LogStatusSkipped LogStatus = "Skipped"
	LogStatusInvalid LogStatus = "Invalid"
)

// IntegrationLog is the audit record of one synchronization attempt. The raw
// request is kept so the attempt can be replayed.
type IntegrationLog struct {
	Model
	ShopID       *uuid.UUID     `gorm:"type:uuid;index" json:"shopId,omitempty"`
	ShopName     string         `gorm:"type:varchar(255);index" json:"shopName,omitempty"`
	Method       string         `gorm:"type:varchar(100);index" json:"method"`
	Status       LogStatus      `gorm:"type:varchar(20);not null;index" json:"status"`
	Message      string         `gorm:"type:text" json:"message,omitempty"`
	Traceback    string         `gorm:"type:text" json:"traceback,omitempty"`
	RequestData  datatypes.JSON `json:"requestData,omitempty"`
	ResponseData datatypes.JSON `json:"responseData,omitempty"`
	Headers      JSONB          `gorm:"type:jsonb" json:"headers,omitempty"`
	Principal    string         `gorm:"type:varchar(255)" json:"principal,omitempty"`
	Attempts     int            `gorm:"default:0" json:"attempts"`
}

// TableName specifies the table name for IntegrationLog
func (IntegrationLog) TableName() string {
	return "shopify_integration_logs"
}
