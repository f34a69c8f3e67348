package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"school-equipment-lending-system/app"
	"school-equipment-lending-system/models"
)

type EquipmentController struct{ *Srv }

func NewEquipmentController(s *Srv) *EquipmentController { return &EquipmentController{Srv: s} }

// GET /equipments
func (ec *EquipmentController) List(c *gin.Context) {
	eqs, err := ec.Repo.ListEquipments(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, eqs)
}

// POST /equipments — staff only. Either stock field defaults to the other.
func (ec *EquipmentController) Create(c *gin.Context) {
	var in struct {
		Name           string `json:"name" binding:"required"`
		Category       string `json:"category"`
		Description    string `json:"description"`
		TotalStock     *int   `json:"totalStock"`
		AvailableStock *int   `json:"availableStock"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
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
	eq := &models.Equipment{
		Name:           in.Name,
		Category:       in.Category,
		Description:    in.Description,
		TotalStock:     total,
		AvailableStock: avail,
	}
	if err := ec.Repo.CreateEquipment(c.Request.Context(), eq); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, eq)
}

// PUT /equipments/:id — staff only.
func (ec *EquipmentController) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in struct {
		Name           *string `json:"name"`
		Category       *string `json:"category"`
		Description    *string `json:"description"`
		TotalStock     *int    `json:"totalStock"`
		AvailableStock *int    `json:"availableStock"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	updates := map[string]any{}
	if in.Name != nil {
		updates["name"] = *in.Name
	}
	if in.Category != nil {
		updates["category"] = *in.Category
	}
	if in.Description != nil {
		updates["description"] = *in.Description
	}
	if in.TotalStock != nil {
		updates["total_stock"] = *in.TotalStock
	}
	if in.AvailableStock != nil {
		updates["available_stock"] = *in.AvailableStock
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, app.H{"error": "nothing to update"})
		return
	}
	eq, err := ec.Repo.UpdateEquipment(c.Request.Context(), id, updates)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, eq)
}

// DELETE /equipments/:id — staff only; refused while requests are open.
func (ec *EquipmentController) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := ec.Repo.DeleteEquipment(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"message": "Equipment deleted"})
}
