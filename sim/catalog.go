package sim

import (
	"fmt"
	"sort"
	"time"

	"school-equipment-lending-system/models"
	"school-equipment-lending-system/store"
)

// Catalog manages the equipment collection.
type Catalog struct {
	kv  store.KV
	now func() time.Time
}

func NewCatalog(kv store.KV) *Catalog {
	return &Catalog{kv: kv, now: time.Now}
}

type CreateEquipmentInput struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
	// Either stock field defaults to the other when unset.
	TotalStock     *int `json:"totalStock,omitempty"`
	AvailableStock *int `json:"availableStock,omitempty"`
}

type EquipmentPatch struct {
	Name           *string `json:"name,omitempty"`
	Category       *string `json:"category,omitempty"`
	Description    *string `json:"description,omitempty"`
	TotalStock     *int    `json:"totalStock,omitempty"`
	AvailableStock *int    `json:"availableStock,omitempty"`
}

// List returns the catalog ordered by id, stable across calls absent mutation.
func (c *Catalog) List() ([]models.Equipment, error) {
	eqs, err := loadEquipments(c.kv)
	if err != nil {
		return nil, err
	}
	sort.Slice(eqs, func(i, j int) bool { return eqs[i].ID < eqs[j].ID })
	return eqs, nil
}

func (c *Catalog) Get(id int) (models.Equipment, error) {
	eqs, err := loadEquipments(c.kv)
	if err != nil {
		return models.Equipment{}, err
	}
	for _, eq := range eqs {
		if eq.ID == id {
			return eq, nil
		}
	}
	return models.Equipment{}, fmt.Errorf("equipment %d: %w", id, models.ErrNotFound)
}

func (c *Catalog) Create(in CreateEquipmentInput) (models.Equipment, error) {
	if in.Name == "" {
		return models.Equipment{}, fmt.Errorf("%w: name is required", models.ErrValidation)
	}
	total, avail := 0, 0
	switch {
	case in.TotalStock != nil && in.AvailableStock != nil:
		total, avail = *in.TotalStock, *in.AvailableStock
	case in.TotalStock != nil:
		total, avail = *in.TotalStock, *in.TotalStock
	case in.AvailableStock != nil:
		total, avail = *in.AvailableStock, *in.AvailableStock
	}
	if err := models.CheckStock(avail, total); err != nil {
		return models.Equipment{}, err
	}

	eqs, err := loadEquipments(c.kv)
	if err != nil {
		return models.Equipment{}, err
	}
	nextID := 1
	for _, eq := range eqs {
		if eq.ID >= nextID {
			nextID = eq.ID + 1
		}
	}
	now := c.now()
	rec := models.Equipment{
		ID:             nextID,
		Name:           in.Name,
		Category:       in.Category,
		Description:    in.Description,
		TotalStock:     total,
		AvailableStock: avail,
		Version:        1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	eqs = append(eqs, rec)
	if err := writeBlob(c.kv, store.KeyEquipments, eqs); err != nil {
		return models.Equipment{}, err
	}
	return rec, nil
}

func (c *Catalog) Update(id int, p EquipmentPatch) (models.Equipment, error) {
	eqs, err := loadEquipments(c.kv)
	if err != nil {
		return models.Equipment{}, err
	}
	for i := range eqs {
		if eqs[i].ID != id {
			continue
		}
		eq := eqs[i]
		if p.Name != nil {
			eq.Name = *p.Name
		}
		if p.Category != nil {
			eq.Category = *p.Category
		}
		if p.Description != nil {
			eq.Description = *p.Description
		}
		if p.TotalStock != nil {
			eq.TotalStock = *p.TotalStock
		}
		if p.AvailableStock != nil {
			eq.AvailableStock = *p.AvailableStock
		}
		if err := models.CheckStock(eq.AvailableStock, eq.TotalStock); err != nil {
			return models.Equipment{}, err
		}
		eq.UpdatedAt = c.now()
		eqs[i] = eq
		if err := writeBlob(c.kv, store.KeyEquipments, eqs); err != nil {
			return models.Equipment{}, err
		}
		return eq, nil
	}
	return models.Equipment{}, fmt.Errorf("equipment %d: %w", id, models.ErrNotFound)
}

// Delete removes the record unconditionally: outstanding requests keep their
// equipmentId and are tolerated by the lifecycle manager.
func (c *Catalog) Delete(id int) error {
	eqs, err := loadEquipments(c.kv)
	if err != nil {
		return err
	}
	for i := range eqs {
		if eqs[i].ID == id {
			eqs = append(eqs[:i], eqs[i+1:]...)
			return writeBlob(c.kv, store.KeyEquipments, eqs)
		}
	}
	return fmt.Errorf("equipment %d: %w", id, models.ErrNotFound)
}

// Seed populates the demo catalog when the collection is empty.
func (c *Catalog) Seed() error {
	eqs, err := loadEquipments(c.kv)
	if err != nil || len(eqs) > 0 {
		return err
	}
	now := c.now()
	seeds := []models.Equipment{
		{ID: 1, Name: "Digital Camera", AvailableStock: 2, TotalStock: 5, Category: "Cameras", Description: "DSLR camera for projects"},
		{ID: 2, Name: "Tripod", AvailableStock: 10, TotalStock: 10, Category: "Accessories", Description: "Standard tripod"},
		{ID: 3, Name: "Projector", AvailableStock: 1, TotalStock: 2, Category: "AV", Description: "HD projector"},
	}
	for i := range seeds {
		seeds[i].Version = 1
		seeds[i].CreatedAt = now
		seeds[i].UpdatedAt = now
	}
	return writeBlob(c.kv, store.KeyEquipments, seeds)
}
