package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/fasttrack/internal/middleware"
	"github.com/joshua-takyi/fasttrack/internal/models"
)

// ListServices returns the active catalog for the booking form.
func ListServices(cat Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		views, err := cat.ListPublic(c.Request.Context(), middleware.LocaleFrom(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.ListResponse(views, len(views)))
	}
}

func ListAllServices(cat Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		views, err := cat.ListAll(c.Request.Context(), middleware.LocaleFrom(c))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.ListResponse(views, len(views)))
	}
}

func CreateService(cat Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in models.ServiceInput
		if err := c.ShouldBindJSON(&in); err != nil {
			bindError(c, err)
			return
		}
		service, err := cat.Create(c.Request.Context(), &in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, models.SuccessResponse(service, "Service created successfully"))
	}
}

func UpdateService(cat Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c)
		if !ok {
			return
		}
		var patch models.ServicePatch
		if err := c.ShouldBindJSON(&patch); err != nil {
			bindError(c, err)
			return
		}
		service, err := cat.Update(c.Request.Context(), id, &patch)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(service, "Service updated successfully"))
	}
}

func DeleteService(cat Catalog) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := paramID(c)
		if !ok {
			return
		}
		if err := cat.Delete(c.Request.Context(), id); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(nil, "Service deleted successfully"))
	}
}
