package syncer

import (
	"context"

	"catalog_sync/internal/commerce"
	"catalog_sync/internal/records"
)

type Direction string

const (
	Ingest Direction = "ingest"
	Reset  Direction = "reset"
)

func (d Direction) progressive() string {
	if d == Reset {
		return "Deleting"
	}
	return "Ingesting"
}

func (d Direction) gerund() string {
	if d == Reset {
		return "deleting"
	}
	return "ingesting"
}

func (d Direction) past() string {
	if d == Reset {
		return "deleted"
	}
	return "ingested"
}

// CatalogClient is the remote create/delete surface, one call per batch.
type CatalogClient interface {
	CreateProductMetadata(ctx context.Context, batch []records.Record) (commerce.Response, error)
	DeleteProductMetadata(ctx context.Context, batch []records.Record) (commerce.Response, error)
	CreateProducts(ctx context.Context, batch []records.Record) (commerce.Response, error)
	DeleteProducts(ctx context.Context, batch []records.Record) (commerce.Response, error)
	CreatePriceBooks(ctx context.Context, batch []records.Record) (commerce.Response, error)
	DeletePriceBooks(ctx context.Context, batch []records.Record) (commerce.Response, error)
	CreatePrices(ctx context.Context, batch []records.Record) (commerce.Response, error)
	DeletePrices(ctx context.Context, batch []records.Record) (commerce.Response, error)
}

type Operation func(ctx context.Context, batch []records.Record) (commerce.Response, error)

// Entity describes one catalog record type and how to push or remove it.
type Entity struct {
	Name       string
	Title      string
	Unit       string
	ResetUnit  string // replaces Unit in the reset summary line when set
	Collection string
	// Keys identify a record for deletion.
	Keys   []string
	Create func(CatalogClient) Operation
	Delete func(CatalogClient) Operation
}

var (
	Metadata = Entity{
		Name:       "metadata",
		Title:      "Metadata",
		Unit:       "items",
		ResetUnit:  "metadata items",
		Collection: "metadata",
		Keys:       []string{"code", "source"},
		Create:     func(c CatalogClient) Operation { return c.CreateProductMetadata },
		Delete:     func(c CatalogClient) Operation { return c.DeleteProductMetadata },
	}
	Products = Entity{
		Name:       "products",
		Title:      "Products",
		Unit:       "products",
		Collection: "products",
		Keys:       []string{"sku", "source"},
		Create:     func(c CatalogClient) Operation { return c.CreateProducts },
		Delete:     func(c CatalogClient) Operation { return c.DeleteProducts },
	}
	PriceBooks = Entity{
		Name:       "price books",
		Title:      "Price books",
		Unit:       "price books",
		Collection: "pricebooks",
		Keys:       []string{"priceBookId"},
		Create:     func(c CatalogClient) Operation { return c.CreatePriceBooks },
		Delete:     func(c CatalogClient) Operation { return c.DeletePriceBooks },
	}
	Prices = Entity{
		Name:       "prices",
		Title:      "Prices",
		Unit:       "prices",
		Collection: "prices",
		Keys:       []string{"sku", "priceBookId"},
		Create:     func(c CatalogClient) Operation { return c.CreatePrices },
		Delete:     func(c CatalogClient) Operation { return c.DeletePrices },
	}
)

// IngestOrder creates dependencies first.
func IngestOrder() []Entity { return []Entity{Metadata, Products, PriceBooks, Prices} }

// ResetOrder removes dependents first.
func ResetOrder() []Entity { return []Entity{Prices, PriceBooks, Products, Metadata} }

// Order returns the entity sequence for d.
func Order(d Direction) []Entity {
	if d == Reset {
		return ResetOrder()
	}
	return IngestOrder()
}

// Pipeline is one entity type bound to a direction.
type Pipeline struct {
	Entity    Entity
	Direction Direction
	Project   func([]records.Record) []records.Record
	Op        func(CatalogClient) Operation
}

func (e Entity) summaryUnit(d Direction) string {
	if d == Reset && e.ResetUnit != "" {
		return e.ResetUnit
	}
	return e.Unit
}

func (e Entity) Pipeline(d Direction) Pipeline {
	if d == Reset {
		return Pipeline{Entity: e, Direction: d, Project: records.Projector(e.Keys...), Op: e.Delete}
	}
	return Pipeline{Entity: e, Direction: d, Op: e.Create}
}
