package handler

import (
	"net/http"
	"time"

	"github.com/sysu-oasis/balance-planner/backend/internal/domain"
	"github.com/sysu-oasis/balance-planner/backend/internal/optimizer"
)

func (h *Handler) StartRun(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Seed       *int64               `json:"seed"`
		Parameters optimizer.Parameters `json:"parameters"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	params := req.Parameters
	params.ApplyDefaults()
	if err := params.Validate(); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 不指定种子时用当前时间，保证每次运行结果不同
	seed := time.Now().UnixNano()
	if req.Seed != nil {
		seed = *req.Seed
	}

	plan := r.Context().Value(PlanCtx).(*domain.Plan)
	me := r.Context().Value(MyInfoCtx).(*domain.User)

	run, err := h.runs.Start(plan, me, &params, seed)
	if err != nil {
		h.badRequest(w, r, err)
		return
	}

	h.successResponse(w, r, "优化任务已启动", run)
}

func (h *Handler) GetPlanRuns(w http.ResponseWriter, r *http.Request) {
	plan := r.Context().Value(PlanCtx).(*domain.Plan)

	runs, err := h.repository.GetRunsByPlanID(plan.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取优化任务列表成功", runs)
}

func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	run := r.Context().Value(RunCtx).(*domain.OptimizationRun)
	h.successResponse(w, r, "获取优化任务成功", run)
}

func (h *Handler) GetRunProgress(w http.ResponseWriter, r *http.Request) {
	run := r.Context().Value(RunCtx).(*domain.OptimizationRun)

	progress, err := h.runs.Progress(r.Context(), run.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if progress == nil {
		h.errorResponse(w, r, "暂无进度信息")
		return
	}

	h.successResponse(w, r, "获取进度成功", progress)
}

func (h *Handler) CancelRun(w http.ResponseWriter, r *http.Request) {
	run := r.Context().Value(RunCtx).(*domain.OptimizationRun)

	// 取消是幂等的：任务已经结束时直接当作成功
	if !h.runs.Cancel(run.ID) {
		h.successResponse(w, r, "任务已结束", nil)
		return
	}

	h.successResponse(w, r, "已请求停止优化任务", nil)
}
