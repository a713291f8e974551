package database

import (
	"context"
	"strings"
	"testing"

	"ev-dealer-hub/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// dryRun builds statements without a server behind them.
func dryRun(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.Open("host=localhost user=ev dbname=ev sslmode=disable"), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
	})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return db
}

func TestDialector(t *testing.T) {
	tests := []struct {
		driver  string
		want    string
		wantErr bool
	}{
		{"mysql", "mysql", false},
		{"postgres", "postgres", false},
		{"postgresql", "postgres", false},
		{"sqlite", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.driver, func(t *testing.T) {
			d, err := dialector(tt.driver, "dsn")
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected an error for %q", tt.driver)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if d.Name() != tt.want {
				t.Errorf("expected dialect %s, got %s", tt.want, d.Name())
			}
		})
	}
}

func TestOpen_RejectsBadConfig(t *testing.T) {
	if _, err := Open("mysql", ""); err == nil {
		t.Error("expected an error for an empty DSN")
	}
	if _, err := Open("oracle", "dsn"); err == nil {
		t.Error("expected an error for an unknown driver")
	}
}

func TestUpsert(t *testing.T) {
	db := dryRun(t)
	dealer := models.Dealer{Base: models.Base{ID: 3}, Name: "Da Nang", Status: models.StatusActive}

	stmt := upsert(db, &dealer).Statement
	sql := stmt.SQL.String()
	if !strings.HasPrefix(sql, `INSERT INTO "dealers"`) {
		t.Fatalf("expected an insert into dealers, got %s", sql)
	}
	if !strings.Contains(sql, `ON CONFLICT ("id") DO UPDATE SET`) || !strings.Contains(sql, `"name"="excluded"."name"`) {
		t.Errorf("expected every column to be overwritten on conflict, got %s", sql)
	}
}

func TestTable(t *testing.T) {
	db := dryRun(t)
	table := NewTable[models.Customer](db)
	ctx := context.Background()

	if err := table.Save(ctx, &models.Customer{Base: models.Base{ID: 1}, FullName: "Nguyen Van Khach", DealerID: 1}); err != nil {
		t.Errorf("save: %v", err)
	}
	if err := table.Delete(ctx, 1); err != nil {
		t.Errorf("delete: %v", err)
	}

	stmt := db.Delete(new(models.Customer), 1).Statement
	if sql := stmt.SQL.String(); !strings.Contains(sql, `DELETE FROM "customers" WHERE "customers"."id" = $1`) {
		t.Errorf("unexpected delete statement %s", sql)
	}
}

func TestConn_JoinsTheTransactionInContext(t *testing.T) {
	db, tx := dryRun(t), dryRun(t)
	ctx := context.Background()

	if got := conn(ctx, db); got.Statement.ConnPool != db.Statement.ConnPool {
		t.Errorf("expected the table's own connection without a transaction")
	}
	if got := conn(context.WithValue(ctx, txKey{}, tx), db); got.Statement.ConnPool != tx.Statement.ConnPool {
		t.Errorf("expected the transaction carried by the context")
	}
}
