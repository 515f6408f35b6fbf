package handlers

import (
	"net/http"

	"github.com/SscSPs/fund_reconciliation/internal/core/domain"
	"github.com/SscSPs/fund_reconciliation/internal/dto"
	"github.com/gin-gonic/gin"
)

func registerReferenceRoutes(rg *gin.RouterGroup) {
	rg.GET("/reference", getReferenceData)
}

// getReferenceData godoc
// @Summary Get review tags and fund codes
// @Description Returns the versioned review tag set, accepted legacy aliases and the fund codes.
// @Tags reference
// @Produce json
// @Success 200 {object} dto.ReferenceDataResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Security BearerAuth
// @Router /reconciliation/reference [get]
func getReferenceData(c *gin.Context) {
	c.JSON(http.StatusOK, dto.ReferenceDataResponse{
		TagSetVersion:    domain.ReviewTagSetVersion,
		ReviewTags:       append([]domain.ReviewTag(nil), domain.ReviewTags...),
		LegacyTagAliases: domain.LegacyTagAliases(),
		FundCodes:        append([]domain.FundCode(nil), domain.FundCodes...),
	})
}
