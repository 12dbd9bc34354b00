package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/petrovis/hemjilt_backend/models"
	"github.com/petrovis/hemjilt_backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToCanonicalPreservesDetailCountAndOrder(t *testing.T) {
	report := &models.Report{
		ReportNo: "R-7",
		ReportDetails: []*models.ReportDetail{
			{RtcNo: "T1"},
			{RtcNo: "T2"},
			{RtcNo: "T3"},
		},
	}

	doc := report.ToCanonical()
	require.Len(t, doc.Hemjilt.HemjiltDetails, 3)
	assert.Equal(t, "T1", doc.Hemjilt.HemjiltDetails[0].RTCNo)
	assert.Equal(t, "T2", doc.Hemjilt.HemjiltDetails[1].RTCNo)
	assert.Equal(t, "T3", doc.Hemjilt.HemjiltDetails[2].RTCNo)
}

func TestToCanonicalDefaultSubstitution(t *testing.T) {
	report := &models.Report{
		ReportNo:      "R-8",
		ReportDetails: []*models.ReportDetail{{}},
	}

	doc := report.ToCanonical()
	assert.Equal(t, "true", doc.Success)
	assert.Equal(t, "", doc.Message)
	assert.NotEmpty(t, doc.SendDate)

	h := doc.Hemjilt
	assert.Equal(t, "R-8", h.ReportNo)
	for _, v := range []string{
		h.ContractNo, h.Customer, h.DischargeCommenced, h.DischargeCompleted,
		h.FullCompleted, h.HandledBy, h.Inspector, h.Location, h.Object,
		h.Product, h.ReportDate,
	} {
		assert.Equal(t, "", v)
	}

	d := h.HemjiltDetails[0]
	for _, v := range []string{
		d.ActualDensity, d.ZDNMT, d.DensityAt20c, d.DifferenceZdnRWBMT,
		d.DifferenceZdnRWBMTProcent, d.DipSm, d.GOVLtr, d.RWBMTGross,
		d.TOVltr, d.Temperature, d.WaterLtr, d.WaterSm,
	} {
		assert.Equal(t, "0", v)
	}
	for _, v := range []string{d.RTCNo, d.RWBNo, d.SealNo, d.Type} {
		assert.Equal(t, "", v)
	}
}

func TestToCanonicalMeasurementValues(t *testing.T) {
	input := models.NewReportDetail{
		ActualDensity: "0.8235",
		Zdnmt:         "58.124",
		TemperatureC:  "-12.5",
		GovLiters:     intPtr(64200),
		RtcNo:         "73211145",
		RwbNo:         "24173628",
		SealNo:        "A-1021",
		Type:          "4",
	}

	report := &models.Report{ReportNo: "R-9"}
	reportDate := time.Date(2025, 8, 29, 11, 0, 0, 0, time.UTC)
	report.ReportDate = &reportDate
	report.ReportDetails = []*models.ReportDetail{
		{
			ActualDensity: utils.ParseDecimal(input.ActualDensity),
			Zdnmt:         utils.ParseDecimal(input.Zdnmt),
			TemperatureC:  utils.ParseDecimal(input.TemperatureC),
			GovLiters:     input.GovLiters,
			RtcNo:         input.RtcNo,
			RwbNo:         input.RwbNo,
			SealNo:        input.SealNo,
			Type:          input.Type,
		},
	}

	doc := report.ToCanonical()
	assert.Equal(t, "2025-08-29 11:00:00", doc.Hemjilt.ReportDate)
	d := doc.Hemjilt.HemjiltDetails[0]
	assert.Equal(t, "0.8235", d.ActualDensity)
	assert.Equal(t, "58.124", d.ZDNMT)
	assert.Equal(t, "-12.5", d.Temperature)
	assert.Equal(t, "64200", d.GOVLtr)
	assert.Equal(t, "73211145", d.RTCNo)
	assert.Equal(t, "24173628", d.RWBNo)
	assert.Equal(t, "A-1021", d.SealNo)
	assert.Equal(t, "4", d.Type)
}

// External integrations parse the document by exact key name; the JSON keys
// are a compatibility contract.
func TestCanonicalJsonKeyNames(t *testing.T) {
	report := &models.Report{
		ReportNo:      "R-10",
		ReportDetails: []*models.ReportDetail{{}},
	}

	data, err := json.Marshal(report.ToCanonical())
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"Message", "SendDate", "Success", "Hemjilt"} {
		assert.Contains(t, raw, key)
	}
	assert.Len(t, raw, 4)

	var hemjilt map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw["Hemjilt"], &hemjilt))
	for _, key := range []string{
		"ContractNo", "Customer", "DischargeCommenced", "DischargeCompleted",
		"FullCompleted", "HandledBy", "HemjiltDetails", "Inspector", "Location",
		"Object", "Product", "ReportDate", "ReportNo",
	} {
		assert.Contains(t, hemjilt, key)
	}
	assert.Len(t, hemjilt, 13)

	var details []map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(hemjilt["HemjiltDetails"], &details))
	require.Len(t, details, 1)
	for _, key := range []string{
		"ActualDensity", "ZDNMT", "DensityAt20c", "DifferenceZdnRWBMT",
		"DifferenceZdnRWBMTProcent", "DipSm", "GOVLtr", "RTCNo", "RWBMTGross",
		"RWBNo", "SealNo", "TOVltr", "Temperature", "Type", "WaterLtr", "WaterSm",
	} {
		assert.Contains(t, details[0], key)
	}
	assert.Len(t, details[0], 16)
}

func TestErrorResponseShape(t *testing.T) {
	doc := models.ErrorResponse("Report not found")

	assert.Equal(t, "false", doc.Success)
	assert.Equal(t, "Report not found", doc.Message)
	assert.NotEmpty(t, doc.SendDate)
	require.NotNil(t, doc.Hemjilt)
	assert.Equal(t, []*models.HemjiltDetail{}, doc.Hemjilt.HemjiltDetails)
	assert.Equal(t, "", doc.Hemjilt.ReportNo)
	assert.Equal(t, "", doc.Hemjilt.Customer)
}

func TestFormatDateTime(t *testing.T) {
	assert.Equal(t, "", models.FormatDateTime(nil))

	loc := time.FixedZone("UTC+8", 8*3600)
	v := time.Date(2025, 8, 29, 19, 30, 0, 0, loc)
	assert.Equal(t, "2025-08-29 11:30:00", models.FormatDateTime(&v))
}
