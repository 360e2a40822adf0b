package handler

import (
	"net/http"

	"IntentBot/api/internal/types"

	"github.com/zeromicro/go-zero/rest/httpx"
)

// 存活检查
func HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httpx.OkJsonCtx(r.Context(), w, types.HealthResp{
			Status:  "ok",
			Message: "IntentBot is running",
		})
	}
}
