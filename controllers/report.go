package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/petrovis/hemjilt_backend/models"
	"github.com/petrovis/hemjilt_backend/utils"
)

func bindError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": utils.ProcessValidationErrors(err)})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// CreateReport handles POST /api/reports.
func CreateReport(c *gin.Context) {
	var input models.NewReport
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	report, err := models.CreateReport(c.Request.Context(), &input)
	if err != nil {
		if errors.Is(err, utils.ErrorDuplicateRecord) {
			c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("Report with number %s already exists", input.ReportNo)})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create report"})
		return
	}

	c.JSON(http.StatusCreated, report)
}

// ListReports handles GET /api/reports with pagination and filters.
func ListReports(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	query := models.ReportQuery{
		Page:      page,
		Limit:     limit,
		Search:    c.Query("search"),
		Customer:  c.Query("customer"),
		Inspector: c.Query("inspector"),
		Product:   c.Query("product"),
	}

	result, err := models.PaginateReports(c.Request.Context(), &query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reports"})
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetReport handles GET /api/reports/:id, returning the canonical document
// regenerated from current row state.
func GetReport(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	doc, err := models.GetReport(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, utils.ErrorRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Report with ID %d not found", id)})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch report"})
		return
	}

	c.JSON(http.StatusOK, doc)
}

// GetReportByNo handles GET /api/reports/external/:reportNo for machine
// clients. The body is always the canonical shape and the status is always
// 200; "not found" is carried inside the document.
func GetReportByNo(c *gin.Context) {
	reportNo := c.Param("reportNo")
	c.JSON(http.StatusOK, models.GetReportByNo(c.Request.Context(), reportNo))
}

// UpdateReport handles PATCH /api/reports/:id.
func UpdateReport(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var input models.UpdateReportInput
	if err := c.ShouldBindJSON(&input); err != nil {
		bindError(c, err)
		return
	}

	report, err := models.UpdateReport(c.Request.Context(), id, &input)
	if err != nil {
		if errors.Is(err, utils.ErrorRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Report with ID %d not found", id)})
			return
		}
		if errors.Is(err, utils.ErrorDuplicateRecord) {
			reportNo := ""
			if input.ReportNo != nil {
				reportNo = *input.ReportNo
			}
			c.JSON(http.StatusConflict, gin.H{"error": fmt.Sprintf("Report with number %s already exists", reportNo)})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update report"})
		return
	}

	c.JSON(http.StatusOK, report)
}

// DeleteReport handles DELETE /api/reports/:id.
func DeleteReport(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	if err := models.DeleteReport(c.Request.Context(), id); err != nil {
		if errors.Is(err, utils.ErrorRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Report with ID %d not found", id)})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete report"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Report deleted successfully"})
}
