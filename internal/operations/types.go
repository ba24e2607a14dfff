package operations

import (
	"time"
)

// operation Step identifiers
const (
	StageIDLoad      = "load"
	StageIDNormalize = "normalize"
	StageIDClassify  = "classify"
	StageIDAggregate = "aggregate"
	StageIDExport    = "export_tables"
	StageIDCharts    = "render_charts"
	StageIDPrices    = "market_prices"
	StageIDWorkbook  = "workbook"
)

// operation Step names
const (
	StageNameLoad      = "Dataset Loading"
	StageNameNormalize = "Text Normalization"
	StageNameClassify  = "Sentiment Classification"
	StageNameAggregate = "Aggregation"
	StageNameExport    = "Table Export"
	StageNameCharts    = "Chart Rendering"
	StageNamePrices    = "Market Prices"
	StageNameWorkbook  = "Workbook Export"
)

// Artifact kinds
const (
	ArtifactCSV  = "csv"
	ArtifactPNG  = "png"
	ArtifactXLSX = "xlsx"
)

// Default timeouts
const (
	DefaultStageTimeout  = 30 * time.Minute
	DefaultPricesTimeout = 5 * time.Minute
)

// OperationResponse summarizes a finished operation
type OperationResponse struct {
	ID        string               `json:"id"`
	Status    OperationStatusValue `json:"status"`
	Duration  time.Duration        `json:"duration"`
	Steps     []*StepState         `json:"steps"`
	Artifacts []Artifact           `json:"artifacts"`
	Error     string               `json:"error,omitempty"`
}
