package telemetry

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	dimCategory        = "Category"
	dimDifficulty      = "Difficulty"
	dimOperation       = "Operation"
	dimSuccess         = "Success"
	dimIsAdmin         = "IsAdmin"
	dimIsCorrect       = "IsCorrect"
	dimErrorType       = "ErrorType"
	dimEngagementLevel = "EngagementLevel"
)

func boolDim(name string, v bool) Dimension {
	return Dim(name, strconv.FormatBool(v))
}

// appendIfSet skips empty values so optional dimensions are omitted rather
// than sent blank.
func appendIfSet(dims []Dimension, name, value string) []Dimension {
	if value == "" {
		return dims
	}
	return append(dims, Dim(name, value))
}

func milliseconds(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

func normalizeLabel(value, fallback string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fallback
	}
	return trimmed
}

// genericErrorTypes carry no information beyond their message.
var genericErrorTypes = map[string]bool{
	"*errors.errorString": true,
	"*errors.joinError":   true,
	"*fmt.wrapError":      true,
	"*fmt.wrapErrors":     true,
}

// ErrorType returns a low-cardinality label for err: "none" for nil, the
// outermost error type in the wrap chain that is not a plain string or fmt
// wrapper, or "error" when the chain holds only those.
func ErrorType(err error) string {
	if err == nil {
		return "none"
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		name := fmt.Sprintf("%T", e)
		if genericErrorTypes[name] {
			continue
		}
		name = strings.TrimPrefix(name, "*")
		if i := strings.LastIndex(name, "."); i >= 0 && i < len(name)-1 {
			name = name[i+1:]
		}
		return name
	}
	return "error"
}
