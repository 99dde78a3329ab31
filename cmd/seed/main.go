package main

import (
	"database/sql"
	"encoding/json"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/silicontrail/marketplace-golang/internal/database"
	"github.com/silicontrail/marketplace-golang/internal/models"
)

// seedVariant describes one sellable configuration of a seed product.
type seedVariant struct {
	SKU        string
	PriceCents int64
	Attributes map[string]string
	Stock      int
}

type seedProduct struct {
	Title       string
	Category    string
	Description string
	Specs       map[string]string
	Images      []string
	Variants    []seedVariant
}

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()

	if err := godotenv.Load(); err != nil {
		log.Warn().Msg("no .env file found, using environment variables")
	}

	db, err := database.OpenDB()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	if err := database.EnsureSchema(db); err != nil {
		log.Fatal().Err(err).Msg("failed to ensure schema")
	}

	// The seed is idempotent: the admin account doubles as the marker.
	var existing string
	err = db.QueryRow("SELECT id FROM users WHERE email = ?", "admin@silicontrail.cl").Scan(&existing)
	if err == nil {
		log.Info().Msg("seed data already present, nothing to do")
		return
	}
	if err != sql.ErrNoRows {
		log.Fatal().Err(err).Msg("failed to check for seed data")
	}

	if err := seed(db); err != nil {
		log.Fatal().Err(err).Msg("seeding failed")
	}
	log.Info().Msg("seed data created")
}

func seed(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now()

	if _, err := seedUser(tx, "admin@silicontrail.cl", "admin123!", "Site Admin", models.RoleAdmin, now); err != nil {
		return err
	}
	buyerID, err := seedUser(tx, "buyer@silicontrail.cl", "buyer123!", "Maria Gonzalez", models.RoleBuyer, now)
	if err != nil {
		return err
	}
	sellerUserID, err := seedUser(tx, "seller@silicontrail.cl", "seller123!", "Carlos Rojas", models.RoleSeller, now)
	if err != nil {
		return err
	}

	sellerID := uuid.NewString()
	_, err = tx.Exec(`
		INSERT INTO seller_profiles (id, user_id, display_name, status, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		sellerID, sellerUserID, "TechStore Chile", models.SellerStatusVerified, now)
	if err != nil {
		return err
	}

	categoryIDs := map[string]string{}
	for _, name := range []string{"Smartphones", "Laptops", "Tablets", "Audio", "Smartwatch"} {
		id := uuid.NewString()
		if _, err := tx.Exec("INSERT INTO categories (id, name) VALUES (?, ?)", id, name); err != nil {
			return err
		}
		categoryIDs[name] = id
	}

	products := []seedProduct{
		{
			Title:       "iPhone 15 Pro Max",
			Category:    "Smartphones",
			Description: "Apple's flagship with titanium frame and A17 Pro chip.",
			Specs:       map[string]string{"chip": "A17 Pro", "display": "6.7\" Super Retina XDR"},
			Images:      []string{"/images/iphone-15-pro-max.jpg"},
			Variants: []seedVariant{
				{SKU: "IPH15PM-256-TB", PriceCents: 1299990, Attributes: map[string]string{"storage": "256GB", "color": "Titanio Azul"}, Stock: 25},
				{SKU: "IPH15PM-512-TN", PriceCents: 1499990, Attributes: map[string]string{"storage": "512GB", "color": "Titanio Natural"}, Stock: 12},
			},
		},
		{
			Title:       "MacBook Pro 14",
			Category:    "Laptops",
			Description: "M3 Pro performance in a portable chassis.",
			Specs:       map[string]string{"chip": "M3 Pro", "display": "14.2\" Liquid Retina XDR"},
			Images:      []string{"/images/macbook-pro-14.jpg"},
			Variants: []seedVariant{
				{SKU: "MBP14-M3P-18-512", PriceCents: 2199990, Attributes: map[string]string{"memory": "18GB", "storage": "512GB"}, Stock: 8},
				{SKU: "MBP14-M3P-36-1TB", PriceCents: 2799990, Attributes: map[string]string{"memory": "36GB", "storage": "1TB"}, Stock: 4},
			},
		},
		{
			Title:       "iPad Air",
			Category:    "Tablets",
			Description: "Light tablet with the M2 chip and all-day battery.",
			Specs:       map[string]string{"chip": "M2", "display": "10.9\" Liquid Retina"},
			Images:      []string{"/images/ipad-air.jpg"},
			Variants: []seedVariant{
				{SKU: "IPADAIR-128-SG", PriceCents: 649990, Attributes: map[string]string{"storage": "128GB", "color": "Space Gray"}, Stock: 30},
			},
		},
		{
			Title:       "AirPods Pro 2",
			Category:    "Audio",
			Description: "Active noise cancellation with adaptive audio.",
			Specs:       map[string]string{"chip": "H2", "case": "USB-C MagSafe"},
			Images:      []string{"/images/airpods-pro-2.jpg"},
			Variants: []seedVariant{
				{SKU: "APP2-USBC", PriceCents: 249990, Attributes: map[string]string{"case": "USB-C"}, Stock: 50},
			},
		},
		{
			Title:       "Apple Watch Series 9",
			Category:    "Smartwatch",
			Description: "Brighter display and the double tap gesture.",
			Specs:       map[string]string{"chip": "S9", "sizes": "41mm / 45mm"},
			Images:      []string{"/images/apple-watch-s9.jpg"},
			Variants: []seedVariant{
				{SKU: "AWS9-41-MID", PriceCents: 449990, Attributes: map[string]string{"size": "41mm", "color": "Midnight"}, Stock: 18},
				{SKU: "AWS9-45-STAR", PriceCents: 479990, Attributes: map[string]string{"size": "45mm", "color": "Starlight"}, Stock: 15},
			},
		},
		{
			Title:       "iPhone 14",
			Category:    "Smartphones",
			Description: "A15 Bionic with crash detection and great battery life.",
			Specs:       map[string]string{"chip": "A15 Bionic", "display": "6.1\" Super Retina XDR"},
			Images:      []string{"/images/iphone-14.jpg"},
			Variants: []seedVariant{
				{SKU: "IPH14-128-MID", PriceCents: 799990, Attributes: map[string]string{"storage": "128GB", "color": "Midnight"}, Stock: 40},
			},
		},
	}

	firstProductID := ""
	for _, p := range products {
		productID := uuid.NewString()
		if firstProductID == "" {
			firstProductID = productID
		}

		specsJSON, err := json.Marshal(p.Specs)
		if err != nil {
			return err
		}
		imagesJSON, err := json.Marshal(p.Images)
		if err != nil {
			return err
		}

		_, err = tx.Exec(`
			INSERT INTO products (id, seller_id, category_id, title, slug, description, specs_json, images, status, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			productID, sellerID, categoryIDs[p.Category], p.Title, slug.Make(p.Title),
			p.Description, specsJSON, imagesJSON, models.ProductStatusActive, now)
		if err != nil {
			return err
		}

		for _, v := range p.Variants {
			variantID := uuid.NewString()
			attrsJSON, err := json.Marshal(v.Attributes)
			if err != nil {
				return err
			}
			_, err = tx.Exec(`
				INSERT INTO product_variants (id, product_id, sku, price_cents, currency, attributes_json)
				VALUES (?, ?, ?, ?, 'CLP', ?)`,
				variantID, productID, v.SKU, v.PriceCents, attrsJSON)
			if err != nil {
				return err
			}
			_, err = tx.Exec(`
				INSERT INTO inventory (id, variant_id, stock, reserved)
				VALUES (?, ?, ?, 0)`,
				uuid.NewString(), variantID, v.Stock)
			if err != nil {
				return err
			}
		}
	}

	_, err = tx.Exec(`
		INSERT INTO reviews (id, product_id, user_id, rating, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), firstProductID, buyerID, 5, "Excelente producto, llego rapido y bien embalado.", now)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func seedUser(tx *sql.Tx, email, password, name, role string, now time.Time) (string, error) {
	var p models.Password
	if err := p.Set(password); err != nil {
		return "", err
	}

	id := uuid.NewString()
	_, err := tx.Exec(`
		INSERT INTO users (id, email, password_hash, name, role, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		id, email, p.Hash, name, role, now)
	if err != nil {
		return "", err
	}
	return id, nil
}
