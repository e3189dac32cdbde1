package admin

import (
	"github.com/tokogaya/backend/internal/constants"
	"github.com/tokogaya/backend/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetLoginCaptcha 生成登录图片验证码挑战
func (h *Handler) GetLoginCaptcha(c *gin.Context) {
	if h.CaptchaService == nil || !h.CaptchaService.IsSceneEnabled(constants.CaptchaSceneAdminLogin) {
		response.Success(c, gin.H{"enabled": false})
		return
	}
	challenge, err := h.CaptchaService.GenerateImageChallenge()
	if err != nil {
		respondError(c, response.CodeInternal, "captcha generate failed", err)
		return
	}
	response.Success(c, gin.H{
		"enabled":      true,
		"captcha_id":   challenge.CaptchaID,
		"image_base64": challenge.ImageBase64,
	})
}
