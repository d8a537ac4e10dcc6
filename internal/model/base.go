package model

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// assignID gives a row a v4 UUID before insert so the same models work on
// Postgres and SQLite (no gen_random_uuid() default on the latter).
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

func (u *User) BeforeCreate(*gorm.DB) error         { assignID(&u.ID); return nil }
func (c *Category) BeforeCreate(*gorm.DB) error     { assignID(&c.ID); return nil }
func (p *Product) BeforeCreate(*gorm.DB) error      { assignID(&p.ID); return nil }
func (t *TaxType) BeforeCreate(*gorm.DB) error      { assignID(&t.ID); return nil }
func (o *Order) BeforeCreate(*gorm.DB) error        { assignID(&o.ID); return nil }
func (i *OrderItem) BeforeCreate(*gorm.DB) error    { assignID(&i.ID); return nil }
func (p *Payment) BeforeCreate(*gorm.DB) error      { assignID(&p.ID); return nil }
func (d *DailyClosing) BeforeCreate(*gorm.DB) error { assignID(&d.ID); return nil }

// All lists every persisted model in dependency order, for AutoMigrate.
func All() []any {
	return []any{
		&User{},
		&Category{},
		&Product{},
		&TaxType{},
		&Order{},
		&OrderItem{},
		&Payment{},
		&DailyClosing{},
	}
}
