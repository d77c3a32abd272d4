package dbconn

import "gorm.io/gorm"

type GormWrapper interface {
	Error() error
	AutoMigrate(...interface{}) error
	Create(interface{}) GormWrapper
	Save(interface{}) GormWrapper
	Where(interface{}, ...interface{}) GormWrapper
	First(interface{}, ...interface{}) GormWrapper
	Find(interface{}, ...interface{}) GormWrapper
	Close() error
}

type wrapper struct {
	db *gorm.DB
	tx *gorm.DB
}

func Wrap(db *gorm.DB) GormWrapper {
	return &wrapper{
		db: db,
	}
}

func (w *wrapper) chain(tx *gorm.DB) GormWrapper {
	return &wrapper{db: w.db, tx: tx}
}

func (w *wrapper) current() *gorm.DB {
	if w.tx != nil {
		return w.tx
	}
	return w.db
}

func (w *wrapper) Error() error {
	if w.tx == nil {
		return nil
	}
	return w.tx.Error
}

func (w *wrapper) AutoMigrate(models ...interface{}) error {
	return w.db.AutoMigrate(models...)
}

func (w *wrapper) Create(value interface{}) GormWrapper {
	return w.chain(w.current().Create(value))
}

func (w *wrapper) Save(value interface{}) GormWrapper {
	return w.chain(w.current().Save(value))
}

func (w *wrapper) Where(query interface{}, args ...interface{}) GormWrapper {
	return w.chain(w.current().Where(query, args...))
}

func (w *wrapper) First(dest interface{}, conds ...interface{}) GormWrapper {
	return w.chain(w.current().First(dest, conds...))
}

func (w *wrapper) Find(dest interface{}, conds ...interface{}) GormWrapper {
	return w.chain(w.current().Find(dest, conds...))
}

func (w *wrapper) Close() error {
	sqlDB, err := w.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
