package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DbCreditLog is one append-only ledger row. Rows are never updated or
// deleted; negative amounts are spends, positive amounts are grants.
type DbCreditLog struct {
	ID        string    `gorm:"column:id;type:varchar(36);primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UserID    string    `gorm:"column:user_id;type:varchar(36);index;not null" json:"user_id"`
	Amount    int       `gorm:"column:amount;not null" json:"amount"`
	Reason    string    `gorm:"column:reason;type:text;not null" json:"reason"`
}

// TableName overrides default pluralised name.
func (DbCreditLog) TableName() string {
	return "credit_logs"
}

// BeforeCreate assigns a UUID primary key when none is set.
func (l *DbCreditLog) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

type CreditLogQuery struct {
	Limit int `json:"limit" form:"limit" query:"limit"`
}

type CreditLogListResponse struct {
	Logs []DbCreditLog `json:"logs"`
}
