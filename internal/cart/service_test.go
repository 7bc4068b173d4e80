package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/angelmondragon/storefront-pricing/internal/events"
	pkgerrors "github.com/angelmondragon/storefront-pricing/pkg/errors"
	"github.com/shopspring/decimal"
)

func TestServiceAddItemMergesSku(t *testing.T) {
	store, _, _ := newTestStore(t)
	svc := NewService(store)
	ctx := context.Background()

	signals := 0
	if _, err := store.OnChange(func() { signals++ }); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if _, err := svc.AddItem(ctx, "A", 2); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.AddItem(ctx, "B", 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	c, err := svc.AddItem(ctx, " A ", 3)
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if c.Len() != 2 || c.Items[0].SKU != "A" || c.Items[0].Quantity != 5 {
		t.Fatalf("expected merged quantity in original position, got %+v", c.Items)
	}
	if signals != 3 {
		t.Fatalf("expected one signal per mutation, got %d", signals)
	}
}

func TestServiceAddItemValidation(t *testing.T) {
	store, _, _ := newTestStore(t)
	svc := NewService(store)

	_, err := svc.AddItem(context.Background(), "", 1)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	_, err = svc.AddItem(context.Background(), "A", 0)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServiceUpdateQuantity(t *testing.T) {
	store, _, _ := newTestStore(t)
	svc := NewService(store)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "A", 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	c, err := svc.UpdateQuantity(ctx, "A", 7)
	if err != nil || c.Items[0].Quantity != 7 {
		t.Fatalf("expected quantity 7, got %+v %v", c, err)
	}

	c, err = svc.UpdateQuantity(ctx, "A", 0)
	if err != nil || c.Len() != 0 {
		t.Fatalf("zero quantity should remove the line, got %+v %v", c, err)
	}

	_, err = svc.RemoveItem(ctx, "A")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
	_, err = svc.UpdateQuantity(ctx, "A", -1)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServiceBundles(t *testing.T) {
	store, _, _ := newTestStore(t)
	svc := NewService(store)
	ctx := context.Background()

	first := decimal.NewFromInt(500)
	if _, err := svc.AddBundle(ctx, "Kitchen", 12, &first); err != nil {
		t.Fatalf("add bundle: %v", err)
	}
	if _, err := svc.AddItem(ctx, "A", 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	second := decimal.NewFromInt(450)
	c, err := svc.AddBundle(ctx, "Kitchen", 10, &second)
	if err != nil {
		t.Fatalf("replace bundle: %v", err)
	}
	if c.Len() != 2 || c.Items[0].ItemCount != 10 || !c.Items[0].BundleTotal().Equal(second) {
		t.Fatalf("expected bundle replaced in place, got %+v", c.Items)
	}

	negative := decimal.NewFromInt(-1)
	if _, err := svc.AddBundle(ctx, "Bad", 1, &negative); pkgerrors.As(err) == nil {
		t.Fatalf("expected validation error for negative total, got %v", err)
	}

	c, err = svc.RemoveBundle(ctx, "Kitchen")
	if err != nil || c.Len() != 1 || c.Items[0].SKU != "A" {
		t.Fatalf("unexpected cart after bundle removal %+v %v", c, err)
	}
	if _, err := svc.RemoveBundle(ctx, "Kitchen"); pkgerrors.As(err) == nil {
		t.Fatalf("expected not found removing a missing bundle")
	}

	c, err = svc.Clear(ctx)
	if err != nil || c.Len() != 0 {
		t.Fatalf("expected empty cart, got %+v %v", c, err)
	}
}

func TestServiceAddItemRejectsMergePastLimit(t *testing.T) {
	store, _, _ := newTestStore(t)
	svc := NewService(store)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "A", MaxQuantity); err != nil {
		t.Fatalf("add: %v", err)
	}
	_, err := svc.AddItem(ctx, "A", 2)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for merged quantity, got %v", err)
	}

	c, err := store.Get(ctx)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if c.Items[0].Quantity != MaxQuantity {
		t.Fatalf("rejected merge must leave the line untouched, got %d", c.Items[0].Quantity)
	}

	if _, err := svc.AddItem(ctx, "B", MaxQuantity+1); err == nil {
		t.Fatal("expected oversized quantity to fail")
	}
	if _, err := svc.UpdateQuantity(ctx, "A", MaxQuantity+1); err == nil {
		t.Fatal("expected oversized update to fail")
	}
}

type unwritableBlob struct{ *MemoryBlob }

func (unwritableBlob) Save(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func TestServiceTagsStorageFailures(t *testing.T) {
	store, err := NewPersistentStore(StoreOptions{
		Blobs: unwritableBlob{NewMemoryBlob()},
		Key:   "shopper-7",
		Bus:   events.NewBus(),
	})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	_, err = NewService(store).AddItem(context.Background(), "A", 1)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if got := pkgerrors.Dump(err).Fields["cart_key"]; got != "shopper-7" {
		t.Fatalf("expected cart key in dump fields, got %v", got)
	}
}
