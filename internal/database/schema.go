package database

import "database/sql"

// schemaStatements is the full marketplace schema. Primary keys are
// application-generated uuids (CHAR(36)); prices are integer minor
// currency units. Cart and order line items cascade with their parent.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id CHAR(36) NOT NULL,
		email VARCHAR(255) NOT NULL,
		password_hash VARCHAR(255),
		name VARCHAR(255) NOT NULL,
		role VARCHAR(20) NOT NULL DEFAULT 'buyer',
		created_at DATETIME NOT NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_users_email (email)
	)`,

	`CREATE TABLE IF NOT EXISTS seller_profiles (
		id CHAR(36) NOT NULL,
		user_id CHAR(36) NOT NULL,
		display_name VARCHAR(255) NOT NULL,
		description TEXT,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		created_at DATETIME NOT NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_seller_profiles_user (user_id),
		CONSTRAINT fk_seller_profiles_user FOREIGN KEY (user_id) REFERENCES users (id)
	)`,

	`CREATE TABLE IF NOT EXISTS addresses (
		id CHAR(36) NOT NULL,
		user_id CHAR(36) NOT NULL,
		line1 VARCHAR(255) NOT NULL,
		line2 VARCHAR(255),
		city VARCHAR(100) NOT NULL,
		region VARCHAR(100) NOT NULL,
		zip_code VARCHAR(20) NOT NULL,
		country VARCHAR(100) NOT NULL DEFAULT 'Chile',
		is_default BOOLEAN NOT NULL DEFAULT FALSE,
		PRIMARY KEY (id),
		CONSTRAINT fk_addresses_user FOREIGN KEY (user_id) REFERENCES users (id)
	)`,

	`CREATE TABLE IF NOT EXISTS categories (
		id CHAR(36) NOT NULL,
		name VARCHAR(255) NOT NULL,
		description TEXT,
		parent_id CHAR(36),
		icon VARCHAR(100),
		PRIMARY KEY (id),
		UNIQUE KEY uq_categories_name (name),
		CONSTRAINT fk_categories_parent FOREIGN KEY (parent_id) REFERENCES categories (id)
	)`,

	`CREATE TABLE IF NOT EXISTS products (
		id CHAR(36) NOT NULL,
		seller_id CHAR(36) NOT NULL,
		category_id CHAR(36) NOT NULL,
		title VARCHAR(255) NOT NULL,
		slug VARCHAR(255) NOT NULL,
		description TEXT,
		specs_json JSON,
		images JSON,
		status VARCHAR(20) NOT NULL DEFAULT 'draft',
		created_at DATETIME NOT NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_products_slug (slug),
		KEY idx_products_seller (seller_id),
		KEY idx_products_category (category_id),
		CONSTRAINT fk_products_seller FOREIGN KEY (seller_id) REFERENCES seller_profiles (id),
		CONSTRAINT fk_products_category FOREIGN KEY (category_id) REFERENCES categories (id)
	)`,

	`CREATE TABLE IF NOT EXISTS product_variants (
		id CHAR(36) NOT NULL,
		product_id CHAR(36) NOT NULL,
		sku VARCHAR(100) NOT NULL,
		price_cents BIGINT NOT NULL,
		currency CHAR(3) NOT NULL DEFAULT 'CLP',
		attributes_json JSON,
		PRIMARY KEY (id),
		UNIQUE KEY uq_variants_sku (sku),
		KEY idx_variants_product (product_id),
		CONSTRAINT fk_variants_product FOREIGN KEY (product_id) REFERENCES products (id)
	)`,

	`CREATE TABLE IF NOT EXISTS inventory (
		id CHAR(36) NOT NULL,
		variant_id CHAR(36) NOT NULL,
		stock INT NOT NULL DEFAULT 0,
		reserved INT NOT NULL DEFAULT 0,
		PRIMARY KEY (id),
		UNIQUE KEY uq_inventory_variant (variant_id),
		CONSTRAINT fk_inventory_variant FOREIGN KEY (variant_id) REFERENCES product_variants (id)
	)`,

	`CREATE TABLE IF NOT EXISTS carts (
		id CHAR(36) NOT NULL,
		user_id CHAR(36) NOT NULL,
		created_at DATETIME NOT NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_carts_user (user_id),
		CONSTRAINT fk_carts_user FOREIGN KEY (user_id) REFERENCES users (id)
	)`,

	// The (cart_id, variant_id) unique key is what makes the add-to-cart
	// upsert atomic under concurrent requests.
	`CREATE TABLE IF NOT EXISTS cart_items (
		id CHAR(36) NOT NULL,
		cart_id CHAR(36) NOT NULL,
		variant_id CHAR(36) NOT NULL,
		quantity INT NOT NULL,
		PRIMARY KEY (id),
		UNIQUE KEY uq_cart_items_cart_variant (cart_id, variant_id),
		CONSTRAINT fk_cart_items_cart FOREIGN KEY (cart_id) REFERENCES carts (id) ON DELETE CASCADE,
		CONSTRAINT fk_cart_items_variant FOREIGN KEY (variant_id) REFERENCES product_variants (id)
	)`,

	`CREATE TABLE IF NOT EXISTS orders (
		id CHAR(36) NOT NULL,
		user_id CHAR(36) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		total_cents BIGINT NOT NULL,
		currency CHAR(3) NOT NULL DEFAULT 'CLP',
		shipping_address_id CHAR(36),
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		PRIMARY KEY (id),
		KEY idx_orders_user (user_id),
		KEY idx_orders_status (status),
		CONSTRAINT fk_orders_user FOREIGN KEY (user_id) REFERENCES users (id),
		CONSTRAINT fk_orders_address FOREIGN KEY (shipping_address_id) REFERENCES addresses (id)
	)`,

	`CREATE TABLE IF NOT EXISTS order_items (
		id CHAR(36) NOT NULL,
		order_id CHAR(36) NOT NULL,
		variant_id CHAR(36) NOT NULL,
		seller_id CHAR(36) NOT NULL,
		unit_price_cents BIGINT NOT NULL,
		quantity INT NOT NULL,
		PRIMARY KEY (id),
		KEY idx_order_items_order (order_id),
		KEY idx_order_items_seller (seller_id),
		CONSTRAINT fk_order_items_order FOREIGN KEY (order_id) REFERENCES orders (id) ON DELETE CASCADE,
		CONSTRAINT fk_order_items_variant FOREIGN KEY (variant_id) REFERENCES product_variants (id),
		CONSTRAINT fk_order_items_seller FOREIGN KEY (seller_id) REFERENCES seller_profiles (id)
	)`,

	`CREATE TABLE IF NOT EXISTS payments (
		id CHAR(36) NOT NULL,
		order_id CHAR(36) NOT NULL,
		provider VARCHAR(20) NOT NULL,
		provider_ref VARCHAR(255) NOT NULL,
		amount_cents BIGINT NOT NULL,
		status VARCHAR(20) NOT NULL,
		paid_at DATETIME,
		PRIMARY KEY (id),
		UNIQUE KEY uq_payments_order (order_id),
		CONSTRAINT fk_payments_order FOREIGN KEY (order_id) REFERENCES orders (id)
	)`,

	`CREATE TABLE IF NOT EXISTS reviews (
		id CHAR(36) NOT NULL,
		user_id CHAR(36) NOT NULL,
		product_id CHAR(36) NOT NULL,
		rating SMALLINT NOT NULL,
		comment TEXT,
		created_at DATETIME NOT NULL,
		PRIMARY KEY (id),
		KEY idx_reviews_product (product_id),
		CONSTRAINT fk_reviews_user FOREIGN KEY (user_id) REFERENCES users (id),
		CONSTRAINT fk_reviews_product FOREIGN KEY (product_id) REFERENCES products (id)
	)`,

	`CREATE TABLE IF NOT EXISTS support_tickets (
		id CHAR(36) NOT NULL,
		user_id CHAR(36) NOT NULL,
		order_id CHAR(36),
		subject VARCHAR(255) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'open',
		created_at DATETIME NOT NULL,
		PRIMARY KEY (id),
		KEY idx_tickets_status (status),
		CONSTRAINT fk_tickets_user FOREIGN KEY (user_id) REFERENCES users (id),
		CONSTRAINT fk_tickets_order FOREIGN KEY (order_id) REFERENCES orders (id)
	)`,
}

// EnsureSchema creates every table if it does not exist yet. Statements
// are idempotent so this runs unconditionally at startup.
func EnsureSchema(db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
