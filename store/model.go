package store

// ObservedOpportunity is one evaluated spread. Amounts are kept as decimal
// strings so nothing is rounded on the way to the database.
type ObservedOpportunity struct {
	Id        uint64 `gorm:"primaryKey;type:bigint(20);not null"`
	Mint      string `gorm:"type:varchar(48);not null;index"`
	BuyAmount string `gorm:"type:varchar(32);not null"`
	SellBack  string `gorm:"type:varchar(32);not null"`
	Gross     string `gorm:"type:varchar(32);not null"`
	Fees      string `gorm:"type:varchar(32);not null"`
	Priority  string `gorm:"type:varchar(32);not null"`
	Net       string `gorm:"type:varchar(32);not null"`
	Candidate bool   `gorm:"not null"`
	BuyRoute  string `gorm:"type:varchar(256);not null"`
	SellRoute string `gorm:"type:varchar(256);not null"`
}

// ExecutedLeg is one submitted swap leg and the path it went out on.
type ExecutedLeg struct {
	Id           uint64 `gorm:"primaryKey;type:bigint(20);not null"`
	Leg          string `gorm:"primaryKey;type:varchar(8);not null"`
	Mint         string `gorm:"type:varchar(48);not null;index"`
	Transport    string `gorm:"type:varchar(16);not null"`
	Signature    string `gorm:"type:varchar(120);not null"`
	SendTime     uint64 `gorm:"type:bigint(20);not null"`
	ResponseTime uint64 `gorm:"type:bigint(20);not null"`
}
