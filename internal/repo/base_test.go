package repo

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type widget struct {
	ID   uint `gorm:"primaryKey"`
	Slug string
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := conn.AutoMigrate(&widget{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

func TestBaseDB_BindsContext(t *testing.T) {
	db := newTestDB(t)
	base := NewBase(db)

	ctx := context.WithValue(context.Background(), struct{}{}, "value")
	withCtx := base.DB(ctx)
	if withCtx.Statement == nil || withCtx.Statement.Context != ctx {
		t.Fatalf("expected context to flow through")
	}

	if base.DB(nil) != db {
		t.Fatalf("expected nil context to return raw connection")
	}
}

func TestBaseCreateAndFirst(t *testing.T) {
	base := NewBase(newTestDB(t))
	ctx := context.Background()

	if err := base.Create(ctx, &widget{Slug: "oak-chair"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	var got widget
	found, err := base.First(ctx, &got, "slug = ?", "oak-chair")
	if err != nil || !found {
		t.Fatalf("expected row, found=%v err=%v", found, err)
	}
	if got.Slug != "oak-chair" {
		t.Fatalf("unexpected row %+v", got)
	}

	found, err = base.First(ctx, &widget{}, "slug = ?", "missing")
	if err != nil || found {
		t.Fatalf("expected not found without error, found=%v err=%v", found, err)
	}
}

func TestBaseTxRollsBackWithTransaction(t *testing.T) {
	db := newTestDB(t)
	base := NewBase(db)
	ctx := context.Background()

	errAbort := fmt.Errorf("abort")
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := base.Tx(tx).Create(ctx, &widget{Slug: "rolled-back"}); err != nil {
			return err
		}
		return errAbort
	})
	if err != errAbort {
		t.Fatalf("expected abort error, got %v", err)
	}

	found, err := base.First(ctx, &widget{}, "slug = ?", "rolled-back")
	if err != nil || found {
		t.Fatalf("expected rollback, found=%v err=%v", found, err)
	}

	if base.Tx(nil).DB(nil) != db {
		t.Fatalf("nil tx should keep the connection")
	}
}
