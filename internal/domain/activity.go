package domain

// Activity is a node in the activity forest. ParentID nil means root.
// The schema does not forbid cycles; traversal code must treat a revisited
// node as a data-integrity violation rather than looping.
type Activity struct {
	ID       uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name     string `gorm:"column:name;not null;index" json:"name"`
	ParentID *uint  `gorm:"column:parent_id;index" json:"parent_id"`

	Children      []Activity     `gorm:"foreignKey:ParentID" json:"-"`
	Organizations []Organization `gorm:"many2many:organization_activity;" json:"-"`
}

func (Activity) TableName() string {
	return "activities"
}
