package models

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// Canonical document exchanged with external consumers. Field names are a
// compatibility contract and must not change: integrations parse this shape
// verbatim, including the DifferenceZdnRWBMT/DifferenceZdnRWBMTProcent pair.
type HemjiltDetail struct {
	ActualDensity             string `json:"ActualDensity"`
	ZDNMT                     string `json:"ZDNMT"`
	DensityAt20c              string `json:"DensityAt20c"`
	DifferenceZdnRWBMT        string `json:"DifferenceZdnRWBMT"`
	DifferenceZdnRWBMTProcent string `json:"DifferenceZdnRWBMTProcent"`
	DipSm                     string `json:"DipSm"`
	GOVLtr                    string `json:"GOVLtr"`
	RTCNo                     string `json:"RTCNo"`
	RWBMTGross                string `json:"RWBMTGross"`
	RWBNo                     string `json:"RWBNo"`
	SealNo                    string `json:"SealNo"`
	TOVltr                    string `json:"TOVltr"`
	Temperature               string `json:"Temperature"`
	Type                      string `json:"Type"`
	WaterLtr                  string `json:"WaterLtr"`
	WaterSm                   string `json:"WaterSm"`
}

type Hemjilt struct {
	ContractNo         string           `json:"ContractNo"`
	Customer           string           `json:"Customer"`
	DischargeCommenced string           `json:"DischargeCommenced"`
	DischargeCompleted string           `json:"DischargeCompleted"`
	FullCompleted      string           `json:"FullCompleted"`
	HandledBy          string           `json:"HandledBy"`
	HemjiltDetails     []*HemjiltDetail `json:"HemjiltDetails"`
	Inspector          string           `json:"Inspector"`
	Location           string           `json:"Location"`
	Object             string           `json:"Object"`
	Product            string           `json:"Product"`
	ReportDate         string           `json:"ReportDate"`
	ReportNo           string           `json:"ReportNo"`
}

type CanonicalResponse struct {
	Message  string   `json:"Message"`
	SendDate string   `json:"SendDate"`
	Success  string   `json:"Success"`
	Hemjilt  *Hemjilt `json:"Hemjilt"`
}

const canonicalTimeLayout = "2006-01-02 15:04:05"

// FormatDateTime renders a date/time value in the canonical convention:
// space-separated, UTC, no zone suffix. Absent values render as "".
func FormatDateTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(canonicalTimeLayout)
}

func decimalString(d *decimal.Decimal) string {
	if d == nil {
		return "0"
	}
	return d.String()
}

func litersString(n *int) string {
	if n == nil {
		return "0"
	}
	return strconv.Itoa(*n)
}

// ToCanonical builds the canonical document from current row state. Every key
// is always present and always a string; missing measurements emit "0" and
// missing identifiers emit "". The same function produces the json_data
// snapshot at write time and the regenerated document on every read, so the
// two can only diverge when the rows themselves changed.
func (report *Report) ToCanonical() *CanonicalResponse {
	details := make([]*HemjiltDetail, 0, len(report.ReportDetails))
	for _, detail := range report.ReportDetails {
		details = append(details, detail.toCanonical())
	}

	now := time.Now().UTC()
	return &CanonicalResponse{
		Message:  "",
		SendDate: FormatDateTime(&now),
		Success:  "true",
		Hemjilt: &Hemjilt{
			ContractNo:         report.ContractNo,
			Customer:           report.Customer,
			DischargeCommenced: FormatDateTime(report.DischargeCommenced),
			DischargeCompleted: FormatDateTime(report.DischargeCompleted),
			FullCompleted:      FormatDateTime(report.FullCompleted),
			HandledBy:          report.HandledBy,
			HemjiltDetails:     details,
			Inspector:          report.Inspector,
			Location:           report.Location,
			Object:             report.Object,
			Product:            report.Product,
			ReportDate:         FormatDateTime(report.ReportDate),
			ReportNo:           report.ReportNo,
		},
	}
}

func (detail *ReportDetail) toCanonical() *HemjiltDetail {
	return &HemjiltDetail{
		ActualDensity:             decimalString(detail.ActualDensity),
		ZDNMT:                     decimalString(detail.Zdnmt),
		DensityAt20c:              decimalString(detail.DensityAt20c),
		DifferenceZdnRWBMT:        decimalString(detail.DifferenceZdnRwbmt),
		DifferenceZdnRWBMTProcent: decimalString(detail.DifferenceZdnRwbmtPercent),
		DipSm:                     decimalString(detail.DipSm),
		GOVLtr:                    litersString(detail.GovLiters),
		RTCNo:                     detail.RtcNo,
		RWBMTGross:                decimalString(detail.RwbmtGross),
		RWBNo:                     detail.RwbNo,
		SealNo:                    detail.SealNo,
		TOVltr:                    litersString(detail.TovLiters),
		Temperature:               decimalString(detail.TemperatureC),
		Type:                      detail.Type,
		WaterLtr:                  litersString(detail.WaterLiters),
		WaterSm:                   decimalString(detail.WaterSm),
	}
}

// ErrorResponse keeps the external contract parseable when a lookup finds
// nothing: same shape, Success "false", empty detail list.
func ErrorResponse(message string) *CanonicalResponse {
	now := time.Now().UTC()
	return &CanonicalResponse{
		Message:  message,
		SendDate: FormatDateTime(&now),
		Success:  "false",
		Hemjilt: &Hemjilt{
			HemjiltDetails: []*HemjiltDetail{},
		},
	}
}
