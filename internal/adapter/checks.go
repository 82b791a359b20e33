package adapter

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	m "testpulse/internal/model"
)

// checkReport is the record set emitted by the external validation checks
// (RBAC permission tests, deployment health checks). Each entry becomes an
// ordinary TestCaseResult tagged with the check name as component.
type checkReport struct {
	Check       string        `yaml:"check"`
	Environment string        `yaml:"environment"`
	Timestamp   string        `yaml:"timestamp"`
	Results     []checkResult `yaml:"results"`
}

type checkResult struct {
	Name     string  `yaml:"name"`
	Status   string  `yaml:"status"`
	Duration float64 `yaml:"duration"`
	Error    string  `yaml:"error"`
	Kind     string  `yaml:"kind"`
}

// CheckParser ingests collaborator check reports.
type CheckParser struct {
	logger *slog.Logger

	// Now supplies the fallback timestamp, overridable in tests.
	Now func() time.Time
}

// NewCheckParser creates a CheckParser.
func NewCheckParser(logger *slog.Logger) *CheckParser {
	return &CheckParser{logger: logger, Now: time.Now}
}

// ParseFile reads one YAML check report and converts it to case records.
func (p *CheckParser) ParseFile(path string) ([]m.TestCaseResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var report checkReport
	if err := yaml.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	check := report.Check
	if check == "" {
		check = "unknown"
	}

	timestamp := p.parseTimestamp(report.Timestamp)

	results := make([]m.TestCaseResult, 0, len(report.Results))
	for _, entry := range report.Results {
		result := m.TestCaseResult{
			TestName:    entry.Name,
			TestSuite:   check,
			Duration:    entry.Duration,
			Timestamp:   timestamp,
			Environment: report.Environment,
			Component:   check,
		}

		switch strings.ToLower(entry.Status) {
		case "pass", "passed":
			result.Status = m.StatusPassed
		case "skip", "skipped":
			result.Status = m.StatusSkipped
			result.ErrorMessage = entry.Error
			result.ErrorType = m.ErrorTypeSkipped
		default:
			result.Status = m.StatusFailed
			result.ErrorMessage = entry.Error
			result.ErrorType = entry.Kind
			if result.ErrorType == "" {
				result.ErrorType = "CheckFailure"
			}
		}

		results = append(results, result)
	}

	p.logger.Info("parsed check report", "path", path, "check", check, "results", len(results))

	return results, nil
}

func (p *CheckParser) parseTimestamp(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return p.Now()
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts
		}
	}

	p.logger.Debug("unparsable check timestamp, using current time", "value", value)

	return p.Now()
}
