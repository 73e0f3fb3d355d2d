package handler

import (
	"errors"
	"log"
	"net/http"
	"time"

	"skillforge/internal/models"
	"skillforge/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ChallengeHandler serves innovation challenges. Reads are public;
// writes are mounted behind the admin gate.
type ChallengeHandler struct {
	DB *gorm.DB
}

func NewChallengeHandler(db *gorm.DB) *ChallengeHandler {
	return &ChallengeHandler{DB: db}
}

// List returns all challenges, oldest first.
func (h *ChallengeHandler) List(c *gin.Context) {
	var challenges []models.Challenge
	if err := h.DB.WithContext(c.Request.Context()).
		Order("created_at").Find(&challenges).Error; err != nil {
		log.Printf("list challenges: %v", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "internal error")
		return
	}
	util.Success(c, util.Response{"challenges": challenges})
}

// Get returns a single challenge.
func (h *ChallengeHandler) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var challenge models.Challenge
	err := h.DB.WithContext(c.Request.Context()).First(&challenge, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "challenge not found")
		return
	}
	if err != nil {
		log.Printf("get challenge: %v", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "internal error")
		return
	}
	util.Success(c, util.Response{"challenge": challenge})
}

type challengeReq struct {
	Title        string     `json:"title"`
	Brief        string     `json:"brief"`
	Description  string     `json:"description"`
	Rewards      string     `json:"rewards"`
	Status       string     `json:"status"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	Participants *int       `json:"participants"`
	Thumbnail    string     `json:"thumbnail"`
}

// Create adds a challenge (admin only).
func (h *ChallengeHandler) Create(c *gin.Context) {
	var req challengeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}
	if err := util.ValidateTitle(req.Title); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	if err := util.ValidateBody(req.Brief, 10); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "brief must be at least 10 characters long")
		return
	}
	if req.Rewards == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "rewards is required")
		return
	}
	status := req.Status
	if status == "" {
		status = models.ChallengeUpcoming
	}
	if !models.ValidChallengeStatus(status) {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "status must be upcoming, active or ended")
		return
	}

	challenge := models.Challenge{
		Title:       req.Title,
		Brief:       req.Brief,
		Description: req.Description,
		Rewards:     req.Rewards,
		Status:      status,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Thumbnail:   req.Thumbnail,
	}
	if err := h.DB.WithContext(c.Request.Context()).Create(&challenge).Error; err != nil {
		log.Printf("create challenge: %v", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "create failed")
		return
	}
	util.Success(c, util.Response{"challenge": challenge})
}

// Update patches a challenge (admin only).
func (h *ChallengeHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req challengeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request")
		return
	}

	var challenge models.Challenge
	err := h.DB.WithContext(c.Request.Context()).First(&challenge, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "challenge not found")
		return
	}
	if err != nil {
		log.Printf("get challenge: %v", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "internal error")
		return
	}

	if req.Title != "" {
		if err := util.ValidateTitle(req.Title); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
			return
		}
		challenge.Title = req.Title
	}
	if req.Brief != "" {
		challenge.Brief = req.Brief
	}
	if req.Description != "" {
		challenge.Description = req.Description
	}
	if req.Rewards != "" {
		challenge.Rewards = req.Rewards
	}
	if req.Status != "" {
		if !models.ValidChallengeStatus(req.Status) {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid status")
			return
		}
		challenge.Status = req.Status
	}
	if req.StartDate != nil {
		challenge.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		challenge.EndDate = req.EndDate
	}
	if req.Participants != nil {
		challenge.Participants = *req.Participants
	}
	if req.Thumbnail != "" {
		challenge.Thumbnail = req.Thumbnail
	}

	if err := h.DB.WithContext(c.Request.Context()).Save(&challenge).Error; err != nil {
		log.Printf("update challenge: %v", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "update failed")
		return
	}
	util.Success(c, util.Response{"challenge": challenge})
}

// Delete removes a challenge (admin only). Linked projects keep living
// with a cleared challenge id.
func (h *ChallengeHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	res := h.DB.WithContext(c.Request.Context()).Delete(&models.Challenge{}, id)
	if res.Error != nil {
		log.Printf("delete challenge: %v", res.Error)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "delete failed")
		return
	}
	if res.RowsAffected == 0 {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "challenge not found")
		return
	}
	util.Success(c, util.Response{"message": "challenge deleted"})
}
