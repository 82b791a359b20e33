package adapter

import (
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	m "testpulse/internal/model"
)

const unknownSuiteName = "Unknown Suite"

// junitDocument is the <testsuites> root shape. Numeric attributes are kept
// as strings so a malformed value degrades to its documented default instead
// of failing the whole document.
type junitDocument struct {
	XMLName xml.Name     `xml:"testsuites"`
	Suites  []junitSuite `xml:"testsuite"`
}

type junitSuite struct {
	Name      string       `xml:"name,attr"`
	Tests     string       `xml:"tests,attr"`
	Failures  string       `xml:"failures,attr"`
	Errors    string       `xml:"errors,attr"`
	Skipped   string       `xml:"skipped,attr"`
	Time      string       `xml:"time,attr"`
	Timestamp string       `xml:"timestamp,attr"`
	Cases     []junitCase  `xml:"testcase"`
	Suites    []junitSuite `xml:"testsuite"`
}

type junitCase struct {
	Name      string       `xml:"name,attr"`
	ClassName string       `xml:"classname,attr"`
	Time      string       `xml:"time,attr"`
	Failure   *junitMarker `xml:"failure"`
	Error     *junitMarker `xml:"error"`
	Skipped   *junitMarker `xml:"skipped"`
}

type junitMarker struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Text    string `xml:",chardata"`
}

// JUnitParser converts JUnit-style XML documents into normalized test case
// records and per-suite summaries.
type JUnitParser struct {
	logger      *slog.Logger
	environment string

	// Now supplies the fallback timestamp for suites without a parsable
	// timestamp attribute. Overridable in tests.
	Now func() time.Time
}

// NewJUnitParser creates a parser tagging records with the given environment.
func NewJUnitParser(logger *slog.Logger, environment string) *JUnitParser {
	return &JUnitParser{
		logger:      logger,
		environment: environment,
		Now:         time.Now,
	}
}

// ParseFile parses a single JUnit XML file. A malformed document is an error;
// malformed fields inside a well-formed document fall back to defaults.
func (p *JUnitParser) ParseFile(path string) ([]m.TestCaseResult, []m.SuiteResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			p.logger.Warn("failed to close input file", "path", path, "error", cerr)
		}
	}()

	cases, suites, err := p.Parse(file)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return cases, suites, nil
}

// Parse parses a JUnit XML document whose root is either <testsuites> or a
// bare <testsuite>; both shapes normalize to the same output.
func (p *JUnitParser) Parse(r io.Reader) ([]m.TestCaseResult, []m.SuiteResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read document: %w", err)
	}

	var doc junitDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		var single junitSuite
		if suiteErr := unmarshalSuite(data, &single); suiteErr != nil {
			return nil, nil, fmt.Errorf("failed to decode document: %w", err)
		}

		doc.Suites = []junitSuite{single}
	}

	var cases []m.TestCaseResult
	var suites []m.SuiteResult

	for _, suite := range flattenSuites(doc.Suites) {
		suiteCases, suiteResult := p.normalizeSuite(suite)
		cases = append(cases, suiteCases...)
		suites = append(suites, suiteResult)
	}

	return cases, suites, nil
}

func unmarshalSuite(data []byte, suite *junitSuite) error {
	var root struct {
		XMLName xml.Name `xml:"testsuite"`
		junitSuite
	}

	if err := xml.Unmarshal(data, &root); err != nil {
		return err
	}

	*suite = root.junitSuite

	return nil
}

// flattenSuites expands nested <testsuite> elements depth-first.
func flattenSuites(suites []junitSuite) []junitSuite {
	var flat []junitSuite
	for _, suite := range suites {
		flat = append(flat, suite)
		flat = append(flat, flattenSuites(suite.Suites)...)
	}

	return flat
}

func (p *JUnitParser) normalizeSuite(suite junitSuite) ([]m.TestCaseResult, m.SuiteResult) {
	name := suite.Name
	if name == "" {
		name = unknownSuiteName
	}

	timestamp := p.parseTimestamp(suite.Timestamp)

	total := intAttr(suite.Tests)
	failures := intAttr(suite.Failures)
	errors := intAttr(suite.Errors)
	skipped := intAttr(suite.Skipped)
	passed := total - failures - errors - skipped

	suiteResult := m.SuiteResult{
		SuiteName:    name,
		TotalTests:   total,
		PassedTests:  passed,
		FailedTests:  failures + errors,
		SkippedTests: skipped,
		Duration:     floatAttr(suite.Time),
		SuccessRate:  m.SuccessRate(passed, total),
		Timestamp:    timestamp,
		Environment:  p.environment,
	}

	cases := make([]m.TestCaseResult, 0, len(suite.Cases))
	for _, tc := range suite.Cases {
		cases = append(cases, p.normalizeCase(tc, name, timestamp))
	}

	return cases, suiteResult
}

func (p *JUnitParser) normalizeCase(tc junitCase, suiteName string, timestamp time.Time) m.TestCaseResult {
	result := m.TestCaseResult{
		TestName:    tc.Name,
		TestSuite:   suiteName,
		Status:      m.StatusPassed,
		Duration:    floatAttr(tc.Time),
		Timestamp:   timestamp,
		TestFile:    tc.ClassName,
		Environment: p.environment,
	}

	if result.TestFile == "" {
		result.TestFile = suiteName
	}

	// Status precedence: failure > error > skipped > passed.
	switch {
	case tc.Failure != nil:
		result.Status = m.StatusFailed
		result.ErrorMessage = markerMessage(tc.Failure)
		result.ErrorType = markerType(tc.Failure, "Failure")
	case tc.Error != nil:
		result.Status = m.StatusFailed
		result.ErrorMessage = markerMessage(tc.Error)
		result.ErrorType = markerType(tc.Error, "Error")
	case tc.Skipped != nil:
		result.Status = m.StatusSkipped
		result.ErrorMessage = markerMessage(tc.Skipped)
		result.ErrorType = m.ErrorTypeSkipped
	}

	return result
}

// parseTimestamp parses an ISO-8601-ish timestamp attribute. Any failure
// falls back to the current processing time, never an error.
func (p *JUnitParser) parseTimestamp(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return p.Now()
	}

	layouts := []string{
		time.RFC3339,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
	}
	for _, layout := range layouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts
		}
	}

	p.logger.Debug("unparsable suite timestamp, using current time", "value", value)

	return p.Now()
}

func markerMessage(marker *junitMarker) string {
	if text := strings.TrimSpace(marker.Text); text != "" {
		return text
	}

	return marker.Message
}

func markerType(marker *junitMarker, fallback string) string {
	if marker.Type != "" {
		return marker.Type
	}

	return fallback
}

func intAttr(value string) int {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}

	return n
}

func floatAttr(value string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}

	return f
}
