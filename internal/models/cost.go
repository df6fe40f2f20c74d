package models

// ---------------------------------------------------------------------------
// EC2 Cost Explorer models
// ---------------------------------------------------------------------------

// CostPoint is the unblended EC2 compute cost of one time period.
type CostPoint struct {
	Date    string  `json:"date"`
	CostUSD float64 `json:"cost_usd"`
}

// InstanceTypeCost is the cost of one instance type in one time period.
type InstanceTypeCost struct {
	Date         string  `json:"date"`
	InstanceType string  `json:"instance_type"`
	CostUSD      float64 `json:"cost_usd"`
}

// EC2CostData is the raw Cost Explorer download for a date window.
// PeriodEnd is exclusive.
type EC2CostData struct {
	PeriodStart    string             `json:"period_start"`
	PeriodEnd      string             `json:"period_end"`
	Granularity    string             `json:"granularity"`
	Daily          []CostPoint        `json:"daily_total"`
	ByInstanceType []InstanceTypeCost `json:"per_instance_type"`
}

// InstanceTypeTotal is the cost of one instance type over the whole window.
type InstanceTypeTotal struct {
	InstanceType string  `json:"instance_type"`
	CostUSD      float64 `json:"cost_usd"`
}

// CostAnalysis summarises an EC2 cost series. MaxCostDate and MinCostDate
// are empty when the series is empty.
type CostAnalysis struct {
	TotalCostUSD   float64             `json:"total_cost"`
	AverageCostUSD float64             `json:"average_cost"`
	MaxCostUSD     float64             `json:"max_cost"`
	MaxCostDate    string              `json:"max_cost_date"`
	MinCostUSD     float64             `json:"min_cost"`
	MinCostDate    string              `json:"min_cost_date"`
	ByInstanceType []InstanceTypeTotal `json:"by_instance_type"`
}
