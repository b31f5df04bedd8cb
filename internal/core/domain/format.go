package domain

import (
	"fmt"
	"math"
	"strconv"
)

// FormatFileSize renders a byte count as "1.5 KB" style text.
func FormatFileSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}
	units := []string{"Bytes", "KB", "MB", "GB"}
	i := int(math.Floor(math.Log(float64(bytes)) / math.Log(1024)))
	if i >= len(units) {
		i = len(units) - 1
	}
	value := float64(bytes) / math.Pow(1024, float64(i))
	rounded := math.Round(value*100) / 100
	return strconv.FormatFloat(rounded, 'f', -1, 64) + " " + units[i]
}

// FormatSource renders a document source for display.
func FormatSource(source DocumentSource) string {
	switch source {
	case SourceManualUpload:
		return "Manual Upload"
	case SourceEmailIngest:
		return "Email Ingest"
	case SourceAPIUpload:
		return "API Upload"
	default:
		return string(source)
	}
}

// FormatCost renders an estimated USD cost.
func FormatCost(cost float64) string {
	return fmt.Sprintf("$%.6f", cost)
}
