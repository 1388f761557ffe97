package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"storefront-service/config"
	"storefront-service/internal/store"
)

type seedProduct struct {
	sku         string
	name        string
	description string
	priceCents  int64
	inStock     bool
	active      bool
	categories  []string
	// publishOffset shifts published_at relative to now; a positive offset
	// keeps the product off the storefront until it passes.
	publishOffset time.Duration
}

var seedCategories = []string{"Lamps", "Chairs", "Tables", "Textiles"}

var seedProducts = []seedProduct{
	{sku: "LAM001", name: "Brass Table Lamp", description: "Warm brass finish with a linen shade.", priceCents: 19900, inStock: true, active: true, categories: []string{"Lamps"}},
	{sku: "LAM002", name: "Arc Floor Lamp", description: "Over-sofa arc in matte black.", priceCents: 34900, inStock: true, active: true, categories: []string{"Lamps"}},
	{sku: "CHA001", name: "Oak Dining Chair", description: "Solid oak, oiled finish.", priceCents: 89900, inStock: true, active: true, categories: []string{"Chairs"}},
	{sku: "CHA002", name: "Lounge Chair", description: "Deep seat, wool upholstery.", priceCents: 129900, inStock: false, active: true, categories: []string{"Chairs", "Textiles"}},
	{sku: "TAB001", name: "Walnut Coffee Table", description: "Low profile, floating top.", priceCents: 64900, inStock: true, active: true, categories: []string{"Tables"}},
	{sku: "TAB002", name: "Side Table", description: "Discontinued colourway.", priceCents: 24900, inStock: true, active: false, categories: []string{"Tables"}},
	{sku: "TEX001", name: "Wool Throw", description: "Herringbone weave.", priceCents: 9900, inStock: true, active: true, categories: []string{"Textiles"}},
	{sku: "TEX002", name: "Linen Cushion", description: "Launches next season.", priceCents: 4900, inStock: true, active: true, categories: []string{"Textiles"}, publishOffset: 30 * 24 * time.Hour},
}

var seedSpots = []struct {
	title     string
	imageURL  string
	sortOrder int
}{
	{"New in: lighting", "https://placehold.co/600x400/png", 1},
	{"Autumn textiles", "https://placehold.co/600x400/png", 2},
	{"Last chance", "https://placehold.co/600x400/png", 3},
}

func main() {
	cfg := config.Load()

	db, err := store.NewStore(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()

	categoryIDs := make(map[string]int64, len(seedCategories))
	for _, name := range seedCategories {
		category, err := db.CreateCategory(ctx, name)
		if err != nil {
			log.Fatalf("Failed to seed category %q: %v", name, err)
		}
		categoryIDs[name] = category.ID
	}

	for _, sp := range seedProducts {
		ids := make([]int64, 0, len(sp.categories))
		for _, name := range sp.categories {
			ids = append(ids, categoryIDs[name])
		}

		params := store.CreateProductParams{
			SKU:         sp.sku,
			Name:        sp.name,
			Description: sp.description,
			PriceCents:  sp.priceCents,
			InStock:     sp.inStock,
			Active:      sp.active,
			ImageURL:    fmt.Sprintf("https://placehold.co/600x400/png?text=%s", sp.sku),
			CategoryIDs: ids,
		}
		if sp.publishOffset != 0 {
			publishedAt := time.Now().Add(sp.publishOffset)
			params.PublishedAt = &publishedAt
		}

		product, err := db.CreateProduct(ctx, params)
		if err != nil {
			log.Fatalf("Failed to seed product %q: %v", sp.sku, err)
		}
		log.Printf("Seeded product %s (%s)", product.SKU, product.Slug)
	}

	for _, spot := range seedSpots {
		if err := db.CreateSpot(ctx, spot.title, spot.imageURL, spot.sortOrder, true); err != nil {
			log.Fatalf("Failed to seed spot %q: %v", spot.title, err)
		}
	}

	log.Printf("Seed complete: %d categories, %d products, %d spots",
		len(seedCategories), len(seedProducts), len(seedSpots))
}
