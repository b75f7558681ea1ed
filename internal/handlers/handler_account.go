package handlers

import (
	"net/http"

	"github.com/SscSPs/blood_bank_app/internal/dto"
	"github.com/SscSPs/blood_bank_app/internal/middleware"
	"github.com/gin-gonic/gin"
)

// RegisterAccountRoutes registers routes for the calling account.
func RegisterAccountRoutes(rg *gin.RouterGroup) {
	accounts := rg.Group("/accounts")
	{
		accounts.GET("/me", getCurrentAccount)
	}
}

// getCurrentAccount godoc
// @Summary Current account
// @Description Returns the account the bearer token resolves to.
// @Tags accounts
// @Produce json
// @Success 200 {object} dto.AccountResponse
// @Failure 401 {object} ErrorResponse
// @Security BearerAuth
// @Router /accounts/me [get]
func getCurrentAccount(c *gin.Context) {
	actor, ok := middleware.GetActorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}
	c.JSON(http.StatusOK, dto.ToAccountResponse(actor))
}
