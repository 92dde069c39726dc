package store

import (
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Dao struct {
	db *gorm.DB
}

func NewDao(url, scheme, user, passwd string) *Dao {
	dao := &Dao{}
	Logger := logger.Default
	Logger = Logger.LogMode(logger.Warn)
	db, err := gorm.Open(mysql.Open(user+":"+passwd+"@tcp("+url+")/"+
		scheme+"?charset=utf8"), &gorm.Config{Logger: Logger})
	if err != nil {
		panic(err)
	}
	err = db.AutoMigrate(&ObservedOpportunity{}, &ExecutedLeg{})
	if err != nil {
		panic(err)
	}
	dao.db = db
	return dao
}

func (dao *Dao) SaveOpportunity(op *ObservedOpportunity) error {
	return dao.db.Create(op).Error
}

func (dao *Dao) SaveExecutedLeg(leg *ExecutedLeg) error {
	return dao.db.Create(leg).Error
}

func (dao *Dao) SelectOpportunities(mint string, limit int) ([]*ObservedOpportunity, error) {
	ops := make([]*ObservedOpportunity, 0)
	res := dao.db.Where("mint = ?", mint).Order("id desc").Limit(limit).Find(&ops)
	return ops, res.Error
}

func (dao *Dao) SelectExecutedLegs(mint string, limit int) ([]*ExecutedLeg, error) {
	legs := make([]*ExecutedLeg, 0)
	res := dao.db.Where("mint = ?", mint).Order("id desc").Limit(limit).Find(&legs)
	return legs, res.Error
}
