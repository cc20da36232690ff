package domain

// Building holds a street address and its coordinates in decimal degrees.
type Building struct {
	ID        uint    `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Address   string  `gorm:"column:address;not null" json:"address"`
	Latitude  float64 `gorm:"column:latitude;not null" json:"latitude"`
	Longitude float64 `gorm:"column:longitude;not null" json:"longitude"`

	Organizations []Organization `gorm:"foreignKey:BuildingID" json:"-"`
}

func (Building) TableName() string {
	return "buildings"
}
