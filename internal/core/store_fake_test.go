package core

import (
	"context"
	"fmt"
	"sync"

	"github.com/cockroachdb/errors"
)

// memStore is an in-memory Store for engine tests. Failures can be injected
// per product name or id.
type memStore struct {
	mu       sync.Mutex
	products []Product
	nextID   int

	failFind   map[string]error // by name
	failInsert map[string]error // by name
	failUpdate map[string]error // by id
	failList   error

	audits []AuditEntry
}

func newMemStore(seed ...Product) *memStore {
	s := &memStore{}
	for _, p := range seed {
		if p.ID == "" {
			s.nextID++
			p.ID = fmt.Sprintf("p-%d", s.nextID)
		}
		s.products = append(s.products, p)
	}
	return s
}

func (s *memStore) FindByVendorAndName(_ context.Context, vendorID, name string) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failFind[name]; err != nil {
		return Product{}, err
	}
	for _, p := range s.products {
		if p.VendorID == vendorID && p.Name == name {
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

func (s *memStore) FindByIDAndVendor(_ context.Context, id, vendorID string) (Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.ID == id && p.VendorID == vendorID {
			return p, nil
		}
	}
	return Product{}, ErrNotFound
}

func (s *memStore) Insert(_ context.Context, p Product) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failInsert[p.Name]; err != nil {
		return "", err
	}
	s.nextID++
	p.ID = fmt.Sprintf("p-%d", s.nextID)
	s.products = append(s.products, p)
	return p.ID, nil
}

func (s *memStore) Update(_ context.Context, id string, patch ProductPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.failUpdate[id]; err != nil {
		return err
	}
	for i := range s.products {
		if s.products[i].ID != id {
			continue
		}
		cur := &s.products[i]
		src := patch.Product
		for _, f := range patch.Fields {
			switch f {
			case ColVendorID:
				cur.VendorID = src.VendorID
			case ColName:
				cur.Name = src.Name
			case ColPrice:
				cur.Price = src.Price
			case ColStockLevel:
				cur.StockLevel = src.StockLevel
			case ColCategory:
				cur.Category = src.Category
			case ColDescription:
				cur.Description = src.Description
			case ColVoiceTags:
				cur.VoiceTags = src.VoiceTags
			case ColImageURL:
				cur.ImageURL = src.ImageURL
			}
		}
		return nil
	}
	return ErrNotFound
}

func (s *memStore) ListByVendor(_ context.Context, vendorID string) ([]Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failList != nil {
		return nil, s.failList
	}
	var out []Product
	for _, p := range s.products {
		if p.VendorID == vendorID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *memStore) ListByVendorAndCategory(_ context.Context, vendorID, category string) ([]Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failList != nil {
		return nil, s.failList
	}
	var out []Product
	for _, p := range s.products {
		if p.VendorID == vendorID && p.Category != nil && *p.Category == category {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *memStore) RecordAudit(_ context.Context, e AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audits = append(s.audits, e)
	return nil
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.products)
}

func (s *memStore) get(id string) Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range s.products {
		if p.ID == id {
			return p
		}
	}
	return Product{}
}

var errBoom = errors.New("boom: connection reset by peer")

func strPtr(s string) *string { return &s }
