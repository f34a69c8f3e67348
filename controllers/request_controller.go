package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"school-equipment-lending-system/app"
	"school-equipment-lending-system/models"
)

type RequestController struct{ *Srv }

func NewRequestController(s *Srv) *RequestController { return &RequestController{Srv: s} }

// POST /requests — requester identity comes from the session, not the body.
func (rc *RequestController) Create(c *gin.Context) {
	var in struct {
		EquipmentID int    `json:"equipmentId" binding:"required"`
		Quantity    int    `json:"quantity" binding:"required"`
		BorrowDate  string `json:"borrowDate"`
		Remarks     string `json:"remarks"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": err.Error()})
		return
	}
	req := &models.Request{
		UserID:      app.UserID(c),
		Username:    c.GetString("userName"),
		EquipmentID: in.EquipmentID,
		Quantity:    in.Quantity,
		BorrowDate:  in.BorrowDate,
		Remarks:     in.Remarks,
	}
	if err := rc.Repo.CreateRequest(c.Request.Context(), req); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, req)
}

// GET /requests/user?userId= — own requests; admins may read anyone's.
func (rc *RequestController) ListMine(c *gin.Context) {
	userID, err := strconv.Atoi(c.Query("userId"))
	if err != nil || userID <= 0 {
		userID = app.UserID(c)
	}
	if userID != app.UserID(c) && !isAdmin(c) {
		c.JSON(http.StatusForbidden, app.H{"error": "forbidden"})
		return
	}
	reqs, err := rc.Repo.ListRequestsByUser(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, reqs)
}

// GET /requests/:id — the requesting user or an admin.
func (rc *RequestController) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	req, err := rc.Repo.FindRequestByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	if req.UserID != app.UserID(c) && !isAdmin(c) {
		c.JSON(http.StatusForbidden, app.H{"error": "forbidden"})
		return
	}
	c.JSON(http.StatusOK, req)
}

// GET /requests/status/pending — admin only.
func (rc *RequestController) ListPending(c *gin.Context) {
	reqs, err := rc.Repo.ListPendingRequests(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, reqs)
}

// POST /requests/:id/approve — admin only.
func (rc *RequestController) Approve(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	req, err := rc.Repo.ApproveRequest(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		fail(c, err)
		return
	}
	logrus.WithFields(logrus.Fields{"requestId": req.RequestID, "equipmentId": req.EquipmentID, "quantity": req.Quantity}).
		Info("request approved")
	c.JSON(http.StatusOK, req)
}

// POST /requests/:id/reject — admin only.
func (rc *RequestController) Reject(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	req, err := rc.Repo.RejectRequest(c.Request.Context(), id, actorFrom(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, req)
}

// POST /requests/:id/return — the requesting user; admins may return any.
func (rc *RequestController) Return(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	byUser := app.UserID(c)
	if isAdmin(c) {
		byUser = 0 // ownership check skipped
	}
	req, err := rc.Repo.ReturnRequest(c.Request.Context(), id, byUser, actorFrom(c))
	if err != nil {
		fail(c, err)
		return
	}
	logrus.WithFields(logrus.Fields{"requestId": req.RequestID, "equipmentId": req.EquipmentID, "quantity": req.Quantity}).
		Info("equipment returned")
	c.JSON(http.StatusOK, req)
}

// GET /requests/audit?limit= — admin only.
func (rc *RequestController) Audit(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	logs, err := rc.Repo.ListActionLog(c.Request.Context(), limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}
