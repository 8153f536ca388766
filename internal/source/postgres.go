package source

import (
	"context"
	"fmt"

	"laonlink/storefront/internal/repository"

	log "github.com/sirupsen/logrus"
)

type postgresSource struct {
	repo repository.ProductRepository
}

func NewPostgresSource(repo repository.ProductRepository) Source {
	return &postgresSource{
		repo: repo,
	}
}

func (s *postgresSource) Load(ctx context.Context) (*Payload, error) {
	products, err := s.repo.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog from postgres: %w", err)
	}

	log.Infof("🐘 Loaded %d products from postgres", len(products))
	return &Payload{Products: products}, nil
}
