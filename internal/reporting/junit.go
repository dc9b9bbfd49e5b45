package reporting

import (
	"encoding/xml"
	"fmt"
	"os"
	"time"

	"github.com/ocracle/ocracle/internal/models"
	"github.com/ocracle/ocracle/internal/orchestration"
)

// JUnit XML schema types

// JUnitTestSuites is the top-level container.
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Name       string           `xml:"name,attr,omitempty"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	Time       float64          `xml:"time,attr"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite holds one model's pairs.
type JUnitTestSuite struct {
	XMLName    xml.Name        `xml:"testsuite"`
	Name       string          `xml:"name,attr"`
	Tests      int             `xml:"tests,attr"`
	Failures   int             `xml:"failures,attr"`
	Errors     int             `xml:"errors,attr"`
	Skipped    int             `xml:"skipped,attr"`
	Time       float64         `xml:"time,attr"`
	Timestamp  string          `xml:"timestamp,attr"`
	Properties []JUnitProperty `xml:"properties>property,omitempty"`
	TestCases  []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase is one model x image pair.
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Error     *JUnitError   `xml:"error,omitempty"`
	Skipped   *JUnitSkipped `xml:"skipped,omitempty"`
}

// JUnitFailure is a threshold miss.
type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitError is a provider or data error.
type JUnitError struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Body    string `xml:",chardata"`
}

// JUnitSkipped marks a pair that never ran.
type JUnitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// JUnitProperty is a key-value metadata entry.
type JUnitProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

// ConvertToJUnit groups outcomes into one suite per model, in first-seen order.
func ConvertToJUnit(name string, outcomes []orchestration.Outcome, threshold float64, started time.Time) *JUnitTestSuites {
	root := &JUnitTestSuites{Name: name}
	index := map[string]int{}

	for _, o := range outcomes {
		key := o.Handle.Key()
		i, ok := index[key]
		if !ok {
			i = len(root.TestSuites)
			index[key] = i
			root.TestSuites = append(root.TestSuites, JUnitTestSuite{
				Name:      key,
				Timestamp: started.Format(time.RFC3339),
				Properties: []JUnitProperty{
					{Name: "provider", Value: string(o.Handle.Provider)},
					{Name: "model_id", Value: o.Handle.ModelID},
					{Name: "threshold", Value: fmt.Sprintf("%.4f", threshold)},
				},
			})
		}
		suite := &root.TestSuites[i]

		tc := convertOutcome(o, threshold)
		suite.TestCases = append(suite.TestCases, tc)
		suite.Tests++
		suite.Time += tc.Time
		switch {
		case tc.Failure != nil:
			suite.Failures++
		case tc.Error != nil:
			suite.Errors++
		case tc.Skipped != nil:
			suite.Skipped++
		}
	}

	for _, s := range root.TestSuites {
		root.Tests += s.Tests
		root.Failures += s.Failures
		root.Errors += s.Errors
		root.Time += s.Time
	}
	return root
}

func convertOutcome(o orchestration.Outcome, threshold float64) JUnitTestCase {
	tc := JUnitTestCase{
		Name:      o.Task.RelPath,
		Classname: o.Handle.Key(),
		Time:      o.Duration.Seconds(),
	}

	switch o.Status {
	case models.StatusFailed:
		acc := 0.0
		if o.Result != nil {
			acc = o.Result.Accuracy
		}
		body := ""
		if o.Err != nil {
			body = o.Err.Error()
		}
		tc.Failure = &JUnitFailure{
			Message: fmt.Sprintf("accuracy %.2f%% below %.2f%%", acc*100, threshold*100),
			Type:    "QualityThreshold",
			Body:    body,
		}
	case models.StatusError:
		msg := "execution error"
		if o.Err != nil {
			msg = o.Err.Error()
		}
		tc.Error = &JUnitError{Message: msg, Type: "ExecutionError"}
	case models.StatusSkipped:
		tc.Skipped = &JUnitSkipped{Message: "run interrupted"}
	}
	return tc
}

// WriteJUnitXML writes JUnit XML to the specified file path.
func WriteJUnitXML(suites *JUnitTestSuites, path string) error {
	data, err := xml.MarshalIndent(suites, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JUnit XML: %w", err)
	}

	output := append([]byte(xml.Header), data...)
	return os.WriteFile(path, output, 0644)
}
