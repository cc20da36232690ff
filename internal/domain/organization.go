package domain

// Organization is a directory entry: one building, many phones, many activities.
type Organization struct {
	ID         uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name       string `gorm:"column:name;not null;index" json:"name"`
	BuildingID *uint  `gorm:"column:building_id;index" json:"building_id"`

	Building   *Building  `gorm:"foreignKey:BuildingID" json:"building,omitempty"`
	Phones     []Phone    `gorm:"foreignKey:OrganizationID;constraint:OnDelete:CASCADE" json:"phones"`
	Activities []Activity `gorm:"many2many:organization_activity;" json:"activities"`
}

func (Organization) TableName() string {
	return "organizations"
}
