package public

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"strings"

	"github.com/shiptrack-next/internal/constants"
	"github.com/shiptrack-next/internal/http/response"
	"github.com/shiptrack-next/internal/queue"
	"github.com/shiptrack-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CourierWebhookPayload 快递商状态回调载荷
type CourierWebhookPayload struct {
	TrackingNo string `json:"tracking_no"`
	OldStatus  string `json:"old_status"`
	NewStatus  string `json:"new_status"`
	EventTime  string `json:"event_time"`
}

// CourierWebhook 快递商状态回调入口。
//
// 回调方不可信：先按租户号解析租户，再对原始报文做 HMAC-SHA256 验签，
// 全部通过后优先入队交给 worker 异步计分，队列未启用时降级为同步处理。
// 同一事件的重复投递由计分引擎幂等处理，这里不做去重。
func (h *Handler) CourierWebhook(c *gin.Context) {
	log := requestLog(c)
	courierCode := strings.ToLower(strings.TrimSpace(c.Param("courier")))
	tenantCode := strings.TrimSpace(c.GetHeader(constants.HeaderTenantCode))

	log.Infow("courier_webhook_received",
		"courier_code", courierCode,
		"tenant_code", tenantCode,
		"client_ip", c.ClientIP(),
	)

	tenant, err := h.TenantService.ResolveActiveByCode(c.Request.Context(), tenantCode)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrTenantNotFound):
			respondError(c, response.CodeUnauthorized, "未知租户", nil)
		case errors.Is(err, service.ErrTenantDisabled):
			respondError(c, response.CodeForbidden, "租户已停用", nil)
		default:
			respondError(c, response.CodeInternal, "租户解析失败", err)
		}
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondError(c, response.CodeBadRequest, "报文读取失败", err)
		return
	}
	if !h.verifyCourierSignature(c, courierCode, body) {
		log.Warnw("courier_webhook_signature_invalid",
			"courier_code", courierCode,
			"tenant_id", tenant.ID,
		)
		respondError(c, response.CodeUnauthorized, "签名校验失败", nil)
		return
	}

	var payload CourierWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		respondError(c, response.CodeBadRequest, "报文格式错误", err)
		return
	}
	payload.TrackingNo = strings.TrimSpace(payload.TrackingNo)
	if payload.TrackingNo == "" || strings.TrimSpace(payload.NewStatus) == "" {
		respondError(c, response.CodeBadRequest, "缺少运单号或目标状态", nil)
		return
	}

	if h.QueueClient.Enabled() {
		task := queue.ShipmentTransitionPayload{
			TenantID:    tenant.ID,
			CourierCode: courierCode,
			TrackingNo:  payload.TrackingNo,
			OldStatus:   payload.OldStatus,
			NewStatus:   payload.NewStatus,
		}
		if err := h.QueueClient.EnqueueShipmentTransition(task); err != nil {
			log.Errorw("courier_webhook_enqueue_failed",
				"tenant_id", tenant.ID,
				"tracking_no", payload.TrackingNo,
				"error", err,
			)
			respondError(c, response.CodeInternal, "事件入队失败", err)
			return
		}
		response.Success(c, gin.H{"accepted": true, "queued": true})
		return
	}

	outcome, err := h.ShipmentService.ApplyCourierEvent(
		tenant.ID, courierCode, payload.TrackingNo, payload.OldStatus, payload.NewStatus)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrShipmentNotFound):
			respondError(c, response.CodeNotFound, "运单不存在", nil)
		case errors.Is(err, service.ErrCourierNotFound):
			respondError(c, response.CodeNotFound, "快递商不存在", nil)
		case errors.Is(err, service.ErrCourierDisabled):
			respondError(c, response.CodeForbidden, "快递商已停用", nil)
		case errors.Is(err, service.ErrShipmentStatusInvalid):
			respondError(c, response.CodeBadRequest, "状态不合法", nil)
		default:
			respondError(c, response.CodeInternal, "事件处理失败", err)
		}
		return
	}
	response.Success(c, gin.H{
		"accepted": true,
		"queued":   false,
		"outcome":  outcome,
	})
}

// verifyCourierSignature 校验回调签名。未配置密钥的快递商跳过校验，
// 便于本地联调；生产环境应为每个快递商配置密钥。
func (h *Handler) verifyCourierSignature(c *gin.Context, courierCode string, body []byte) bool {
	secret := ""
	if h.Config != nil {
		secret = strings.TrimSpace(h.Config.Webhook.Secrets[courierCode])
	}
	if secret == "" {
		return true
	}
	signature := strings.TrimSpace(c.GetHeader(constants.HeaderWebhookSignature))
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.ToLower(signature)))
}
