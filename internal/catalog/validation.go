package catalog

import (
	"errors"
	"strings"
)

func (s *Service) validate(p Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return errors.New("product name is required")
	}
	if strings.TrimSpace(p.Category) == "" {
		return errors.New("product category is required")
	}
	if p.Price < 0 {
		return errors.New("product price must be >= 0")
	}
	if p.Stock < 0 {
		return errors.New("product stock must be >= 0")
	}
	return nil
}
