package httpapi

import (
	"encoding/json"
	"net/http"
	"sync/atomic"

	"jobfeed-engine/internal/config"
	"jobfeed-engine/internal/secrets"
)

type SecretsHandler struct {
	CfgVal *atomic.Value // stores config.Config
}

type setRedisPasswordReq struct {
	Password string `json:"password"`
}

func (h SecretsHandler) account(w http.ResponseWriter, r *http.Request) (string, bool) {
	cfg := h.CfgVal.Load().(config.Config)
	acct := secrets.RedisKeyringAccount(cfg)
	if acct == "" {
		WriteError(w, r, http.StatusBadRequest, "redis_not_configured", "storage.redis.address is not set")
		return "", false
	}
	return acct, true
}

func (h SecretsHandler) SetRedisPassword(w http.ResponseWriter, r *http.Request) {
	var req setRedisPasswordReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, CodeInvalidJSON, "invalid json")
		return
	}
	acct, ok := h.account(w, r)
	if !ok {
		return
	}
	if err := secrets.SetRedisPassword(acct, req.Password); err != nil {
		WriteError(w, r, http.StatusBadRequest, "secret_store_failed", "failed to store password: "+err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h SecretsHandler) DeleteRedisPassword(w http.ResponseWriter, r *http.Request) {
	acct, ok := h.account(w, r)
	if !ok {
		return
	}
	if err := secrets.DeleteRedisPassword(acct); err != nil {
		WriteError(w, r, http.StatusInternalServerError, "secret_store_failed", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
