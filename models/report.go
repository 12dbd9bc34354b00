package models

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/petrovis/hemjilt_backend/config"
	"github.com/petrovis/hemjilt_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Report is one inspection event. ReportNo is the caller-assigned business
// identifier and is unique across all reports; the unique index (not the
// application-level existence check) is what arbitrates concurrent creates.
type Report struct {
	ID                 int             `gorm:"primary_key" json:"id"`
	ReportNo           string          `gorm:"size:100;not null;uniqueIndex" json:"reportNo"`
	ContractNo         string          `gorm:"size:255" json:"contractNo"`
	Customer           string          `gorm:"size:255;index" json:"customer"`
	HandledBy          string          `gorm:"size:255" json:"handledBy"`
	Inspector          string          `gorm:"size:255;index" json:"inspector"`
	Location           string          `gorm:"size:255" json:"location"`
	Object             string          `gorm:"size:255" json:"object"`
	Product            string          `gorm:"size:255;index" json:"product"`
	ReportDate         *time.Time      `json:"reportDate"`
	DischargeCommenced *time.Time      `json:"dischargeCommenced"`
	DischargeCompleted *time.Time      `json:"dischargeCompleted"`
	FullCompleted      *time.Time      `json:"fullCompleted"`
	JsonData           datatypes.JSON  `json:"jsonData"`
	ReportDetails      []*ReportDetail `gorm:"foreignKey:ReportId;constraint:OnDelete:CASCADE" json:"reportDetails"`
	CreatedAt          time.Time       `gorm:"autoCreateTime;index" json:"createdAt"`
	UpdatedAt          time.Time       `gorm:"autoUpdateTime" json:"updatedAt"`
}

// ReportDetail is one measured railcar within a report. Rows never outlive
// their report and are only written as part of a report create/update.
// Nil measurement means "no value"; zero only appears at canonical emission.
type ReportDetail struct {
	ID                        int              `gorm:"primary_key" json:"id"`
	ReportId                  int              `gorm:"index;not null" json:"reportId"`
	ActualDensity             *decimal.Decimal `gorm:"type:decimal(20,4)" json:"actualDensity"`
	Zdnmt                     *decimal.Decimal `gorm:"type:decimal(20,4)" json:"zdnmt"`
	DensityAt20c              *decimal.Decimal `gorm:"type:decimal(20,4)" json:"densityAt20c"`
	DifferenceZdnRwbmt        *decimal.Decimal `gorm:"type:decimal(20,4)" json:"differenceZdnRwbmt"`
	DifferenceZdnRwbmtPercent *decimal.Decimal `gorm:"type:decimal(20,4)" json:"differenceZdnRwbmtPercent"`
	DipSm                     *decimal.Decimal `gorm:"type:decimal(20,4)" json:"dipSm"`
	GovLiters                 *int             `json:"govLiters"`
	RtcNo                     string           `gorm:"size:100" json:"rtcNo"`
	RwbmtGross                *decimal.Decimal `gorm:"type:decimal(20,4)" json:"rwbmtGross"`
	RwbNo                     string           `gorm:"size:100" json:"rwbNo"`
	SealNo                    string           `gorm:"size:100" json:"sealNo"`
	TovLiters                 *int             `json:"tovLiters"`
	TemperatureC              *decimal.Decimal `gorm:"type:decimal(20,4)" json:"temperatureC"`
	Type                      string           `gorm:"size:50" json:"type"`
	WaterLiters               *int             `json:"waterLiters"`
	WaterSm                   *decimal.Decimal `gorm:"type:decimal(20,4)" json:"waterSm"`
	CreatedAt                 time.Time        `gorm:"autoCreateTime" json:"createdAt"`
	UpdatedAt                 time.Time        `gorm:"autoUpdateTime" json:"updatedAt"`
}

type NewReportDetail struct {
	ActualDensity             string `json:"actualDensity"`
	Zdnmt                     string `json:"zdnmt"`
	DensityAt20c              string `json:"densityAt20c"`
	DifferenceZdnRwbmt        string `json:"differenceZdnRwbmt"`
	DifferenceZdnRwbmtPercent string `json:"differenceZdnRwbmtPercent"`
	DipSm                     string `json:"dipSm"`
	GovLiters                 *int   `json:"govLiters"`
	RtcNo                     string `json:"rtcNo"`
	RwbmtGross                string `json:"rwbmtGross"`
	RwbNo                     string `json:"rwbNo"`
	SealNo                    string `json:"sealNo"`
	TovLiters                 *int   `json:"tovLiters"`
	TemperatureC              string `json:"temperatureC"`
	Type                      string `json:"type"`
	WaterLiters               *int   `json:"waterLiters"`
	WaterSm                   string `json:"waterSm"`
}

type NewReport struct {
	ReportNo           string             `json:"reportNo" binding:"required"`
	ContractNo         string             `json:"contractNo"`
	Customer           string             `json:"customer"`
	HandledBy          string             `json:"handledBy"`
	Inspector          string             `json:"inspector"`
	Location           string             `json:"location"`
	Object             string             `json:"object"`
	Product            string             `json:"product"`
	ReportDate         string             `json:"reportDate"`
	DischargeCommenced string             `json:"dischargeCommenced"`
	DischargeCompleted string             `json:"dischargeCompleted"`
	FullCompleted      string             `json:"fullCompleted"`
	ReportDetails      []*NewReportDetail `json:"reportDetails"`
}

// UpdateReportInput carries partial-update semantics: nil leaves the field
// unchanged. A non-nil ReportDetails list replaces all existing rows
// wholesale, even when empty; a nil list leaves the rows untouched.
type UpdateReportInput struct {
	ReportNo           *string            `json:"reportNo"`
	ContractNo         *string            `json:"contractNo"`
	Customer           *string            `json:"customer"`
	HandledBy          *string            `json:"handledBy"`
	Inspector          *string            `json:"inspector"`
	Location           *string            `json:"location"`
	Object             *string            `json:"object"`
	Product            *string            `json:"product"`
	ReportDate         *string            `json:"reportDate"`
	DischargeCommenced *string            `json:"dischargeCommenced"`
	DischargeCompleted *string            `json:"dischargeCompleted"`
	FullCompleted      *string            `json:"fullCompleted"`
	ReportDetails      []*NewReportDetail `json:"reportDetails"`
}

type ReportQuery struct {
	Page      int
	Limit     int
	Search    string
	Customer  string
	Inspector string
	Product   string
}

type PaginatedReports struct {
	Data       []*Report `json:"data"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	Limit      int       `json:"limit"`
	TotalPages int       `json:"totalPages"`
}

func (input *NewReportDetail) toModel() *ReportDetail {
	return &ReportDetail{
		ActualDensity:             utils.ParseDecimal(input.ActualDensity),
		Zdnmt:                     utils.ParseDecimal(input.Zdnmt),
		DensityAt20c:              utils.ParseDecimal(input.DensityAt20c),
		DifferenceZdnRwbmt:        utils.ParseDecimal(input.DifferenceZdnRwbmt),
		DifferenceZdnRwbmtPercent: utils.ParseDecimal(input.DifferenceZdnRwbmtPercent),
		DipSm:                     utils.ParseDecimal(input.DipSm),
		GovLiters:                 input.GovLiters,
		RtcNo:                     input.RtcNo,
		RwbmtGross:                utils.ParseDecimal(input.RwbmtGross),
		RwbNo:                     input.RwbNo,
		SealNo:                    input.SealNo,
		TovLiters:                 input.TovLiters,
		TemperatureC:              utils.ParseDecimal(input.TemperatureC),
		Type:                      input.Type,
		WaterLiters:               input.WaterLiters,
		WaterSm:                   utils.ParseDecimal(input.WaterSm),
	}
}

func mapNewReportDetails(inputs []*NewReportDetail) []*ReportDetail {
	details := make([]*ReportDetail, 0, len(inputs))
	for _, input := range inputs {
		details = append(details, input.toModel())
	}
	return details
}

func (report *Report) snapshot() datatypes.JSON {
	// Marshalling the canonical document cannot fail: it is all strings.
	data, _ := json.Marshal(report.ToCanonical())
	return datatypes.JSON(data)
}

func preloadDetails(db *gorm.DB) *gorm.DB {
	return db.Order("report_details.id")
}

func fetchReport(ctx context.Context, db *gorm.DB, id int) (*Report, error) {
	var report Report
	err := db.WithContext(ctx).Preload("ReportDetails", preloadDetails).First(&report, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &report, nil
}

// CreateReport inserts the report row, its canonical snapshot and all detail
// rows in one transaction. An empty detail list is a valid report.
func CreateReport(ctx context.Context, input *NewReport) (*Report, error) {
	db := config.GetDB()

	// Early exit for the common case; the unique index still closes the race.
	var count int64
	if err := db.WithContext(ctx).Model(&Report{}).Where("report_no = ?", input.ReportNo).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, utils.ErrorDuplicateRecord
	}

	report := Report{
		ReportNo:           input.ReportNo,
		ContractNo:         input.ContractNo,
		Customer:           input.Customer,
		HandledBy:          input.HandledBy,
		Inspector:          input.Inspector,
		Location:           input.Location,
		Object:             input.Object,
		Product:            input.Product,
		ReportDate:         utils.ParseDateTime(input.ReportDate),
		DischargeCommenced: utils.ParseDateTime(input.DischargeCommenced),
		DischargeCompleted: utils.ParseDateTime(input.DischargeCompleted),
		FullCompleted:      utils.ParseDateTime(input.FullCompleted),
		ReportDetails:      mapNewReportDetails(input.ReportDetails),
	}
	report.JsonData = report.snapshot()

	tx := db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	if err := tx.WithContext(ctx).Create(&report).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, utils.ErrorDuplicateRecord
		}
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}
	return &report, nil
}

// PaginateReports returns one page of reports newest-first with details
// attached, plus the total matching count ignoring pagination.
func PaginateReports(ctx context.Context, query *ReportQuery) (*PaginatedReports, error) {
	db := config.GetDB()

	page := query.Page
	if page < 1 {
		page = 1
	}
	limit := query.Limit
	if limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100
	}

	scope := db.WithContext(ctx).Model(&Report{})
	if query.Search != "" {
		like := "%" + query.Search + "%"
		scope = scope.Where("report_no LIKE ? OR customer LIKE ? OR inspector LIKE ?", like, like, like)
	}
	if query.Customer != "" {
		scope = scope.Where("customer LIKE ?", "%"+query.Customer+"%")
	}
	if query.Inspector != "" {
		scope = scope.Where("inspector LIKE ?", "%"+query.Inspector+"%")
	}
	if query.Product != "" {
		scope = scope.Where("product LIKE ?", "%"+query.Product+"%")
	}

	var total int64
	if err := scope.Count(&total).Error; err != nil {
		return nil, err
	}

	reports := make([]*Report, 0)
	err := scope.Preload("ReportDetails", preloadDetails).
		Order("created_at DESC, id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&reports).Error
	if err != nil {
		return nil, err
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &PaginatedReports{
		Data:       reports,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

// GetReport returns the canonical document regenerated from current row
// state. The stored json_data snapshot is never read back: it can go stale
// after partial updates, and regeneration is the contract readers depend on.
func GetReport(ctx context.Context, id int) (*CanonicalResponse, error) {
	report, err := fetchReport(ctx, config.GetDB(), id)
	if err != nil {
		return nil, err
	}
	return report.ToCanonical(), nil
}

// GetReportByNo is the external-facing lookup. It never fails: unknown report
// numbers and storage errors both come back as an error document so machine
// callers always receive the fixed {Success, Message, Hemjilt} shape.
func GetReportByNo(ctx context.Context, reportNo string) *CanonicalResponse {
	db := config.GetDB()

	var report Report
	err := db.WithContext(ctx).Preload("ReportDetails", preloadDetails).
		Where("report_no = ?", reportNo).First(&report).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			config.LogError(config.GetLogger(), "report.go", "GetReportByNo", "fetch", reportNo, err)
		}
		return ErrorResponse("Report not found")
	}

	return report.ToCanonical()
}

// UpdateReport applies a partial update. Descriptive fields absent from the
// patch stay untouched; a supplied detail list replaces all existing rows
// wholesale. The snapshot is recomputed from the merged view in the same
// transaction.
func UpdateReport(ctx context.Context, id int, input *UpdateReportInput) (*Report, error) {
	db := config.GetDB()

	report, err := fetchReport(ctx, db, id)
	if err != nil {
		return nil, err
	}

	if input.ReportNo != nil && *input.ReportNo != report.ReportNo {
		var count int64
		if err := db.WithContext(ctx).Model(&Report{}).
			Where("report_no = ? AND id <> ?", *input.ReportNo, id).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, utils.ErrorDuplicateRecord
		}
		report.ReportNo = *input.ReportNo
	}

	if input.ContractNo != nil {
		report.ContractNo = *input.ContractNo
	}
	if input.Customer != nil {
		report.Customer = *input.Customer
	}
	if input.HandledBy != nil {
		report.HandledBy = *input.HandledBy
	}
	if input.Inspector != nil {
		report.Inspector = *input.Inspector
	}
	if input.Location != nil {
		report.Location = *input.Location
	}
	if input.Object != nil {
		report.Object = *input.Object
	}
	if input.Product != nil {
		report.Product = *input.Product
	}
	if input.ReportDate != nil {
		report.ReportDate = utils.ParseDateTime(*input.ReportDate)
	}
	if input.DischargeCommenced != nil {
		report.DischargeCommenced = utils.ParseDateTime(*input.DischargeCommenced)
	}
	if input.DischargeCompleted != nil {
		report.DischargeCompleted = utils.ParseDateTime(*input.DischargeCompleted)
	}
	if input.FullCompleted != nil {
		report.FullCompleted = utils.ParseDateTime(*input.FullCompleted)
	}

	replaceDetails := input.ReportDetails != nil
	var newDetails []*ReportDetail
	if replaceDetails {
		newDetails = mapNewReportDetails(input.ReportDetails)
		report.ReportDetails = newDetails
	}
	report.JsonData = report.snapshot()

	updates := map[string]interface{}{
		"report_no":           report.ReportNo,
		"contract_no":         report.ContractNo,
		"customer":            report.Customer,
		"handled_by":          report.HandledBy,
		"inspector":           report.Inspector,
		"location":            report.Location,
		"object":              report.Object,
		"product":             report.Product,
		"report_date":         report.ReportDate,
		"discharge_commenced": report.DischargeCommenced,
		"discharge_completed": report.DischargeCompleted,
		"full_completed":      report.FullCompleted,
		"json_data":           report.JsonData,
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	if err := tx.WithContext(ctx).Model(&Report{}).Where("id = ?", id).Updates(updates).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, utils.ErrorDuplicateRecord
		}
		return nil, err
	}

	if replaceDetails {
		if err := tx.WithContext(ctx).Where("report_id = ?", id).Delete(&ReportDetail{}).Error; err != nil {
			tx.Rollback()
			return nil, err
		}
		for _, detail := range newDetails {
			detail.ReportId = id
		}
		if len(newDetails) > 0 {
			if err := tx.WithContext(ctx).Create(&newDetails).Error; err != nil {
				tx.Rollback()
				return nil, err
			}
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	return fetchReport(ctx, db, id)
}

// DeleteReport removes the report row and all its detail rows.
func DeleteReport(ctx context.Context, id int) error {
	db := config.GetDB()

	if _, err := fetchReport(ctx, db, id); err != nil {
		return err
	}

	tx := db.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	// Explicit child delete keeps behavior identical on stores without
	// cascading foreign keys enabled.
	if err := tx.WithContext(ctx).Where("report_id = ?", id).Delete(&ReportDetail{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.WithContext(ctx).Delete(&Report{}, id).Error; err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}
