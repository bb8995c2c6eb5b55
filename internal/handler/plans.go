package handler

import (
	"net/http"

	"github.com/sysu-oasis/balance-planner/backend/internal/domain"
	"github.com/sysu-oasis/balance-planner/backend/internal/utils"
)

type planEntryRequest struct {
	Day    int32   `json:"day" validate:"required,min=1,max=30"`
	Amount float64 `json:"amount" validate:"min=0"`
}

type planRequest struct {
	Name                string             `json:"name" validate:"required,max=64"`
	Description         string             `json:"description" validate:"max=256"`
	StartingBalance     float64            `json:"startingBalance" validate:"min=0"`
	TargetEndingBalance float64            `json:"targetEndingBalance" validate:"min=0"`
	MinimumBalance      float64            `json:"minimumBalance" validate:"min=0"`
	Expenses            []planEntryRequest `json:"expenses" validate:"dive"`
	Deposits            []planEntryRequest `json:"deposits" validate:"dive"`
}

func planEntriesFromRequest(entries []planEntryRequest) []domain.PlanEntry {
	result := make([]domain.PlanEntry, 0, len(entries))
	for _, e := range entries {
		result = append(result, domain.PlanEntry{Day: e.Day, Amount: e.Amount})
	}
	return result
}

func (h *Handler) CreatePlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	me := r.Context().Value(MyInfoCtx).(*domain.User)

	plan := &domain.Plan{
		UserID:              me.ID,
		Name:                req.Name,
		Description:         req.Description,
		StartingBalance:     req.StartingBalance,
		TargetEndingBalance: req.TargetEndingBalance,
		MinimumBalance:      req.MinimumBalance,
		Expenses:            planEntriesFromRequest(req.Expenses),
		Deposits:            planEntriesFromRequest(req.Deposits),
	}

	// 不接受首日就注定破产的计划
	if err := utils.ValidatePlan(plan, h.config.ShiftCatalog()); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.CreatePlan(plan); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "创建计划成功", plan)
}

func (h *Handler) GetMyPlans(w http.ResponseWriter, r *http.Request) {
	me := r.Context().Value(MyInfoCtx).(*domain.User)

	plans, err := h.repository.GetPlansByUserID(me.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取计划列表成功", plans)
}

func (h *Handler) GetPlan(w http.ResponseWriter, r *http.Request) {
	plan := r.Context().Value(PlanCtx).(*domain.Plan)
	h.successResponse(w, r, "获取计划成功", plan)
}

func (h *Handler) UpdatePlan(w http.ResponseWriter, r *http.Request) {
	var req planRequest

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	plan := r.Context().Value(PlanCtx).(*domain.Plan)

	updated := &domain.Plan{
		ID:                  plan.ID,
		UserID:              plan.UserID,
		Name:                req.Name,
		Description:         req.Description,
		StartingBalance:     req.StartingBalance,
		TargetEndingBalance: req.TargetEndingBalance,
		MinimumBalance:      req.MinimumBalance,
		Expenses:            planEntriesFromRequest(req.Expenses),
		Deposits:            planEntriesFromRequest(req.Deposits),
		Version:             plan.Version,
	}

	if err := utils.ValidatePlan(updated, h.config.ShiftCatalog()); err != nil {
		h.badRequest(w, r, err)
		return
	}

	if err := h.repository.UpdatePlan(updated); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "更新计划成功", updated)
}

func (h *Handler) DeletePlan(w http.ResponseWriter, r *http.Request) {
	plan := r.Context().Value(PlanCtx).(*domain.Plan)

	if err := h.repository.DeletePlan(plan.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "删除计划成功", nil)
}
