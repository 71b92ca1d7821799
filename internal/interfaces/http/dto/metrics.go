package dto

import "time"

// RevenueAnalyticsRequest holds the query parameters of the revenue
// analytics endpoint. Dates are optional; the engine applies kind-dependent
// defaults.
type RevenueAnalyticsRequest struct {
	Period    string     `form:"period" binding:"required,periodkind"`
	StartDate *time.Time `form:"start_date" time_format:"2006-01-02" time_utc:"1"`
	EndDate   *time.Time `form:"end_date" time_format:"2006-01-02" time_utc:"1"`
}

// ReportRequest is the body of a report-generation request
type ReportRequest struct {
	Type   string `json:"type" binding:"required,oneof=revenue invoices customers"`
	Period string `json:"period" binding:"required"`
	Format string `json:"format" binding:"omitempty,oneof=json csv pdf"`
}

// InvalidationResult reports how many cache entries an invalidation removed
type InvalidationResult struct {
	Deleted int64 `json:"deleted"`
}

// AnalyticsListRequest holds the pagination parameters of the customer and
// product analytics listings
type AnalyticsListRequest struct {
	Page      int    `form:"page" binding:"omitempty,min=1"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=100"`
	SortBy    string `form:"sort_by"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=asc desc"`
}

// WithDefaults fills in the default page and size
func (r AnalyticsListRequest) WithDefaults() AnalyticsListRequest {
	if r.Page == 0 {
		r.Page = 1
	}
	if r.Limit == 0 {
		r.Limit = 10
	}
	return r
}
