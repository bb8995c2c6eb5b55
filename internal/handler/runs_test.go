package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-oasis/balance-planner/backend/internal/domain"
	"github.com/sysu-oasis/balance-planner/backend/internal/runs"
)

func TestCancelRun_FinishedRunIsStillSuccess(t *testing.T) {
	// 取消是幂等的：已经结束（不在运行表中）的任务不返回错误
	h := &Handler{runs: runs.NewRegistry(nil, nil, nil, nil)}

	run := &domain.OptimizationRun{ID: 7, Status: domain.RunStatusConverged}
	req := httptest.NewRequest(http.MethodPost, "/plans/1/runs/7/cancel", nil)
	req = req.WithContext(context.WithValue(req.Context(), RunCtx, run))

	rec := httptest.NewRecorder()
	h.CancelRun(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.True(t, resp.Success)
}
