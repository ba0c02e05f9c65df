package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/hanyam/TaskManagement-sub002/middleware"
	"github.com/hanyam/TaskManagement-sub002/queries"
)

type DashboardController struct {
	Queries *queries.Queries
}

func (dc *DashboardController) Stats(c *gin.Context) {
	stats, errs := dc.Queries.GetDashboardStats(c.Request.Context(), middleware.CurrentUserID(c))
	if errs != nil {
		fail(c, errs)
		return
	}
	ok(c, stats, "")
}
