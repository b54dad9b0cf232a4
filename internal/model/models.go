// Package model contains the types shared between the http layer, the
// validation and the prioritization logic. Types required by a user of the
// client are reexported by the client package.
package model

type TestRecord struct {
	// TestName identifies the test case.
	TestName string `json:"testName"`
	// FilePath is the path of the file containing the test case.
	FilePath string `json:"filePath"`
	// FailureRate is the observed failure rate of the test case.
	FailureRate float64 `json:"failureRate"`
	// ExecutionTime is the time the test case took to run.
	ExecutionTime float64 `json:"executionTime"`
	// RiskScore is computed by the caller, higher scores are run first.
	RiskScore float64 `json:"riskScore"`
}
