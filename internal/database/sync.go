package database

import (
	"context"
	"fmt"
	"log"

	"ev-dealer-hub/internal/dealership"
	"ev-dealer-hub/internal/models"
	"ev-dealer-hub/internal/store"

	"gorm.io/gorm"
)

const batchSize = 100

// binding ties one registry store to its table.
type binding interface {
	load(ctx context.Context, db *gorm.DB) error
	export(tx *gorm.DB) error
	attach(db *gorm.DB)
}

type storeBinding[T any, P store.Record[T]] struct {
	st *store.Store[T, P]
}

func bind[T any, P store.Record[T]](st *store.Store[T, P]) binding {
	return storeBinding[T, P]{st: st}
}

func (b storeBinding[T, P]) load(ctx context.Context, db *gorm.DB) error {
	var rows []T
	if err := db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return fmt.Errorf("load %s: %w", b.st.Name(), err)
	}
	b.st.Load(rows)
	return nil
}

func (b storeBinding[T, P]) export(tx *gorm.DB) error {
	rows := b.st.List()
	if len(rows) == 0 {
		return nil
	}
	if err := upsert(tx.Session(&gorm.Session{CreateBatchSize: batchSize}), &rows).Error; err != nil {
		return fmt.Errorf("export %s: %w", b.st.Name(), err)
	}
	return nil
}

func (b storeBinding[T, P]) attach(db *gorm.DB) {
	b.st.SetSink(NewTable[T](db))
}

func bindings(reg *dealership.Registry) []binding {
	return []binding{
		bind(reg.Settings),
		bind(reg.Dealers),
		bind(reg.Users),
		bind(reg.VehicleTypes),
		bind(reg.Vehicles),
		bind(reg.Inventory),
		bind(reg.Customers),
		bind(reg.Orders),
		bind(reg.DealerOrders),
		bind(reg.Debts),
		bind(reg.Promotions),
		bind(reg.Pricing),
		bind(reg.TestDrives),
		bind(reg.Feedbacks),
	}
}

// Attach makes db the backing store of reg. An empty database is filled by
// seed and written out in one transaction; otherwise every store is loaded
// from its table. Afterwards each store writes its changes through, and
// changes spanning several stores share one transaction.
func Attach(ctx context.Context, db *gorm.DB, reg *dealership.Registry, seed func(*dealership.Registry) error) error {
	var users int64
	if err := db.WithContext(ctx).Model(&models.User{}).Count(&users).Error; err != nil {
		return fmt.Errorf("count users: %w", err)
	}

	all := bindings(reg)
	if users == 0 {
		log.Println("🌱 Empty database, writing the seed data...")
		if err := seed(reg); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for _, b := range all {
				if err := b.export(tx); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return err
		}
	} else {
		for _, b := range all {
			if err := b.load(ctx, db); err != nil {
				return err
			}
		}
		log.Printf("✅ Loaded %d users and the rest of the dealership data", reg.Users.Len())
	}

	for _, b := range all {
		b.attach(db)
	}
	reg.Atomic = Transaction(db)
	return nil
}
