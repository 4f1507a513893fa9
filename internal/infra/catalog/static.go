package catalog

import (
	"context"

	"podstore/internal/domain/model"
	repo "podstore/internal/repository"
)

// APIトークン未設定時に使うスタティックカタログ。
// 内容は立ち上げ時のストア構成そのまま。
type StaticSource struct {
	products []model.Product
}

func NewStaticSource() *StaticSource {
	return &StaticSource{products: []model.Product{
		{
			ID:          1,
			Name:        "Classic White T-Shirt",
			Price:       1899,
			ImageURL:    "https://placehold.co/600x600.png",
			Description: "A comfortable and durable 100% cotton t-shirt. The perfect canvas for your custom designs.",
			VariantID:   101,
		},
		{
			ID:          2,
			Name:        "Cozy Black Hoodie",
			Price:       3550,
			ImageURL:    "https://placehold.co/600x600.png",
			Description: "Stay warm and stylish with this premium black hoodie. Made from a soft cotton-poly blend.",
			VariantID:   102,
		},
		{
			ID:          3,
			Name:        "Ceramic Coffee Mug",
			Price:       1200,
			ImageURL:    "https://placehold.co/600x600.png",
			Description: "A classic 11oz ceramic mug. Your design will be printed with high-quality, long-lasting ink.",
			VariantID:   103,
		},
		{
			ID:          4,
			Name:        "Canvas Tote Bag",
			Price:       2275,
			ImageURL:    "https://placehold.co/600x600.png",
			Description: "An eco-friendly and spacious tote bag for daily use. Made from sturdy 100% cotton canvas.",
			VariantID:   104,
		},
		{
			ID:          5,
			Name:        "Snapback Cap",
			Price:       2500,
			ImageURL:    "https://placehold.co/600x600.png",
			Description: "A stylish snapback cap with a classic fit. Your design will be embroidered for a premium look.",
			VariantID:   105,
		},
		{
			ID:          6,
			Name:        "iPhone Case",
			Price:       1650,
			ImageURL:    "https://placehold.co/600x600.png",
			Description: "A durable and slim-fitting case to protect your phone while showcasing your unique design.",
			VariantID:   106,
		},
	}}
}

func (s *StaticSource) List(ctx context.Context) ([]model.Product, error) {
	out := make([]model.Product, len(s.products))
	copy(out, s.products)
	return out, nil
}

func (s *StaticSource) Get(ctx context.Context, productID int64) (model.Product, error) {
	for _, p := range s.products {
		if p.ID == productID {
			return p, nil
		}
	}
	return model.Product{}, repo.ErrNotFound
}
