package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GET /api/artisans?trade=
func (a *API) ListArtisans(c *gin.Context) {
	out, err := a.Directory.ListArtisans(c.Request.Context(), c.Query("trade"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// GET /api/users/:id
func (a *API) GetUser(c *gin.Context) {
	u, err := a.Directory.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}
