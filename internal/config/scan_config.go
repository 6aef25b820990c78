package config

import (
	"strconv"
)

type ScanConfig interface {
	GetScannerBin() string
	GetScannerWorkDir() string
	GetReportDir() string
	GetMaxConcurrentScans() int64
}

type Scan struct{}

var _ ScanConfig = Scan{}

// GetScannerBin returns the external scanner executable. The scanner is a
// black-box collaborator; the server only supervises it.
func (Scan) GetScannerBin() string {
	return GetEnv("SCANNER_BIN", "service-screener")
}

func (Scan) GetScannerWorkDir() string {
	return GetEnv("SCANNER_WORKDIR", ".")
}

// GetReportDir returns the directory the scanner writes report artifacts
// into, one subdirectory per scanned account ID.
func (Scan) GetReportDir() string {
	return GetEnv("REPORT_DIR", "./adminlte/aws")
}

// GetMaxConcurrentScans caps how many scans run at once so downstream
// credential and API rate limits are respected.
func (Scan) GetMaxConcurrentScans() int64 {
	v := GetEnv("SCAN_MAX_CONCURRENT", "2")
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 1 {
		return 2
	}
	return n
}
