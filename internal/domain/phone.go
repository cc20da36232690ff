package domain

// Phone belongs to exactly one organization and is deleted with it.
type Phone struct {
	ID             uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Number         string `gorm:"column:number;not null" json:"number"`
	OrganizationID uint   `gorm:"column:organization_id;not null;index" json:"organization_id"`
}

func (Phone) TableName() string {
	return "phones"
}
