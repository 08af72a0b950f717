// Package warehouse owns the star-schema persistence contract: nine
// dimension tables and four fact tables, each with a database-assigned
// primary key.
package warehouse

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Tables lists every warehouse table in dependency order (dimensions before
// the facts that reference them). Used by export and by tests.
var Tables = []string{
	"calendar_month",
	"calendar",
	"customer",
	"region",
	"state",
	"location",
	"shipping",
	"category",
	"product",
	"item",
	"orders",
	"order_m",
	"product_performance",
}

// Schema SQL for creating the warehouse schema.
const createSchemaSQL = `
-- Calendar month dimension
CREATE TABLE IF NOT EXISTS calendar_month (
    calendar_month_id     INTEGER GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    calendar_month_number INTEGER NOT NULL,
    calendar_month_name   VARCHAR(9) NOT NULL,
    year_id               INTEGER NOT NULL,
    year_number           INTEGER NOT NULL
);

-- Calendar dimension (one row per distinct order or ship date)
CREATE TABLE IF NOT EXISTS calendar (
    calendar_id  INTEGER GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    full_date    DATE NOT NULL,
    year_id      INTEGER NOT NULL,
    year_number  INTEGER NOT NULL,
    month_id     INTEGER NOT NULL REFERENCES calendar_month (calendar_month_id),
    month_number INTEGER NOT NULL,
    month_name   VARCHAR(9) NOT NULL,
    day_id       INTEGER NOT NULL,
    day_number   INTEGER NOT NULL
);

-- Customer dimension
CREATE TABLE IF NOT EXISTS customer (
    customer_id   INTEGER GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    customer_code VARCHAR(16) NOT NULL,
    customer_name VARCHAR(100) NOT NULL,
    segment       VARCHAR(30) NOT NULL
);

-- Geography dimensions: region, state, location
CREATE TABLE IF NOT EXISTS region (
    region_id    INTEGER GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    region_name  VARCHAR(30) NOT NULL,
    country_id   INTEGER NOT NULL,
    country_name VARCHAR(60) NOT NULL
);

CREATE TABLE IF NOT EXISTS state (
    state_id     INTEGER GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    state_name   VARCHAR(60) NOT NULL,
    region_id    INTEGER NOT NULL REFERENCES region (region_id),
    region_name  VARCHAR(30) NOT NULL,
    country_id   INTEGER NOT NULL,
    country_name VARCHAR(60) NOT NULL
);

CREATE TABLE IF NOT EXISTS location (
    location_id   INTEGER GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    location_code VARCHAR(20) NOT NULL,
    country_id    INTEGER NOT NULL,
    country_name  VARCHAR(60) NOT NULL,
    state_id      INTEGER NOT NULL REFERENCES state (state_id),
    state_name    VARCHAR(60) NOT NULL,
    city_id       INTEGER NOT NULL,
    city_name     VARCHAR(60) NOT NULL,
    postal_code   VARCHAR(20) NOT NULL,
    region_id     INTEGER NOT NULL REFERENCES region (region_id),
    region_name   VARCHAR(30) NOT NULL
);

-- Shipping dimension
CREATE TABLE IF NOT EXISTS shipping (
    shipping_id INTEGER GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    ship_mode   VARCHAR(30) NOT NULL
);

-- Product dimensions: category, product
CREATE TABLE IF NOT EXISTS category (
    category_id   INTEGER GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    category_name VARCHAR(60) NOT NULL
);

CREATE TABLE IF NOT EXISTS product (
    product_id        INTEGER GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    product_code      VARCHAR(30) NOT NULL,
    product_name      VARCHAR(200) NOT NULL,
    category_id       INTEGER NOT NULL REFERENCES category (category_id),
    category_name     VARCHAR(60) NOT NULL,
    sub_category_id   INTEGER NOT NULL,
    sub_category_name VARCHAR(60) NOT NULL
);

-- Item fact (grain: one row per cleaned line item)
CREATE TABLE IF NOT EXISTS item (
    item_id     INTEGER GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    customer_id INTEGER NOT NULL REFERENCES customer (customer_id),
    location_id INTEGER NOT NULL REFERENCES location (location_id),
    calendar_id INTEGER NOT NULL REFERENCES calendar (calendar_id),
    product_id  INTEGER NOT NULL REFERENCES product (product_id),
    order_code  VARCHAR(20) NOT NULL,
    quantity    INTEGER NOT NULL,
    sales       DOUBLE PRECISION NOT NULL,
    discount    DOUBLE PRECISION NOT NULL,
    lost_value  DOUBLE PRECISION NOT NULL,
    profit      DOUBLE PRECISION NOT NULL
);

-- Orders fact (grain: one row per order)
CREATE TABLE IF NOT EXISTS orders (
    order_id             INTEGER GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    order_calendar_id    INTEGER NOT NULL REFERENCES calendar (calendar_id),
    shipping_calendar_id INTEGER NOT NULL REFERENCES calendar (calendar_id),
    customer_id          INTEGER NOT NULL REFERENCES customer (customer_id),
    location_id          INTEGER NOT NULL REFERENCES location (location_id),
    shipping_id          INTEGER NOT NULL REFERENCES shipping (shipping_id),
    order_code           VARCHAR(20) NOT NULL,
    sales_order          DOUBLE PRECISION NOT NULL,
    quantity_order       INTEGER NOT NULL,
    lost_value_order     DOUBLE PRECISION NOT NULL,
    profit_order         DOUBLE PRECISION NOT NULL
);

-- Monthly-by-state fact
CREATE TABLE IF NOT EXISTS order_m (
    order_m_id        INTEGER GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    calendar_month_id INTEGER NOT NULL REFERENCES calendar_month (calendar_month_id),
    state_id          INTEGER NOT NULL REFERENCES state (state_id),
    sales_month       DOUBLE PRECISION NOT NULL,
    quantity_month    DOUBLE PRECISION NOT NULL,
    lost_value_month  DOUBLE PRECISION NOT NULL,
    profit_month      DOUBLE PRECISION NOT NULL
);

-- Monthly-by-category/state fact
CREATE TABLE IF NOT EXISTS product_performance (
    product_performance_id INTEGER GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    category_id            INTEGER NOT NULL REFERENCES category (category_id),
    state_id               INTEGER NOT NULL REFERENCES state (state_id),
    calendar_month_id      INTEGER NOT NULL REFERENCES calendar_month (calendar_month_id),
    total_sales            DOUBLE PRECISION NOT NULL,
    total_profit           DOUBLE PRECISION NOT NULL,
    cumulative_profit      DOUBLE PRECISION NOT NULL,
    total_quantity         INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_calendar_full_date ON calendar (full_date);
CREATE INDEX IF NOT EXISTS idx_item_customer ON item (customer_id);
CREATE INDEX IF NOT EXISTS idx_item_product ON item (product_id);
CREATE INDEX IF NOT EXISTS idx_orders_customer ON orders (customer_id);
CREATE INDEX IF NOT EXISTS idx_order_m_month ON order_m (calendar_month_id);
CREATE INDEX IF NOT EXISTS idx_product_performance_month ON product_performance (calendar_month_id);
`

// Drop schema SQL (facts first, then dimensions).
const dropSchemaSQL = `
DROP TABLE IF EXISTS product_performance CASCADE;
DROP TABLE IF EXISTS order_m CASCADE;
DROP TABLE IF EXISTS orders CASCADE;
DROP TABLE IF EXISTS item CASCADE;
DROP TABLE IF EXISTS product CASCADE;
DROP TABLE IF EXISTS category CASCADE;
DROP TABLE IF EXISTS shipping CASCADE;
DROP TABLE IF EXISTS location CASCADE;
DROP TABLE IF EXISTS state CASCADE;
DROP TABLE IF EXISTS region CASCADE;
DROP TABLE IF EXISTS customer CASCADE;
DROP TABLE IF EXISTS calendar CASCADE;
DROP TABLE IF EXISTS calendar_month CASCADE;
`

// CreateSchema creates the warehouse schema from the embedded DDL.
func CreateSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, createSchemaSQL)
	return err
}

// CreateSchemaFromScript creates the schema from an external DDL script.
func CreateSchemaFromScript(ctx context.Context, pool *pgxpool.Pool, path string) error {
	script, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read DDL script: %w", err)
	}
	if _, err := pool.Exec(ctx, string(script)); err != nil {
		return fmt.Errorf("failed to execute DDL script: %w", err)
	}
	return nil
}

// DropSchema drops the warehouse schema.
func DropSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, dropSchemaSQL)
	return err
}
