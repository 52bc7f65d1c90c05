package postgres

const schema = `
CREATE TABLE IF NOT EXISTS products (
	id                  BIGSERIAL PRIMARY KEY,
	name                TEXT NOT NULL CHECK (length(trim(name)) > 0),
	description         TEXT,
	price               NUMERIC(12,2) NOT NULL CHECK (price > 0),
	stock_quantity      INTEGER NOT NULL DEFAULT 0 CONSTRAINT products_stock_non_negative CHECK (stock_quantity >= 0),
	min_stock_threshold INTEGER NOT NULL DEFAULT 10 CHECK (min_stock_threshold >= 0),
	created_at          TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS products_name_idx ON products (name);

CREATE TABLE IF NOT EXISTS sales_transactions (
	id               BIGSERIAL PRIMARY KEY,
	transaction_date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	total_amount     NUMERIC(14,2) NOT NULL CHECK (total_amount > 0),
	notes            TEXT,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS sales_transactions_date_idx ON sales_transactions (transaction_date);

CREATE TABLE IF NOT EXISTS sales_transaction_items (
	id             BIGSERIAL PRIMARY KEY,
	transaction_id BIGINT NOT NULL REFERENCES sales_transactions (id) ON DELETE CASCADE,
	product_id     BIGINT NOT NULL REFERENCES products (id) ON DELETE RESTRICT,
	product_name   TEXT NOT NULL,
	quantity       INTEGER NOT NULL CHECK (quantity > 0),
	unit_price     NUMERIC(12,2) NOT NULL,
	subtotal       NUMERIC(14,2) NOT NULL
);

CREATE INDEX IF NOT EXISTS sales_transaction_items_transaction_idx ON sales_transaction_items (transaction_id);
CREATE INDEX IF NOT EXISTS sales_transaction_items_product_idx ON sales_transaction_items (product_id);

CREATE TABLE IF NOT EXISTS stock_movements (
	id              UUID PRIMARY KEY,
	product_id      BIGINT NOT NULL REFERENCES products (id) ON DELETE CASCADE,
	quantity_change INTEGER NOT NULL,
	stock_after     INTEGER NOT NULL CHECK (stock_after >= 0),
	kind            TEXT NOT NULL CHECK (kind IN ('sale', 'adjustment')),
	reason          TEXT,
	transaction_id  BIGINT REFERENCES sales_transactions (id),
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS stock_movements_product_idx ON stock_movements (product_id, created_at DESC);
`
