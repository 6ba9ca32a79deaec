package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Root godoc
// @Summary     Liveness greeting
// @Tags        health
// @Produce     json
// @Success     200 {object} map[string]string
// @Router      / [get]
func Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"Hello": "World"})
}
