package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-i", "0.06", "-d", "0.03", "-l", "1200", "-a", "100"}, &stdout, &stderr)

	assert.Equal(t, exitOK, code, stderr.String())
	assert.Contains(t, stdout.String(), "Months: 12\n")
	assert.Contains(t, stdout.String(), "Years: 1\n")
	assert.Contains(t, stdout.String(), "Total interest cost: 39.00 Kr\n")
	assert.Contains(t, stdout.String(), "Total installments: 1 200.00 Kr\n")
}

func TestRun_LongFlagsAndSchedule(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{
		"--interest", "0.06", "--discount-rate", "0.03", "--loan", "50", "--amortization", "100",
		"-start", "2024-05-01", "-schedule",
	}, &stdout, &stderr)

	assert.Equal(t, exitOK, code, stderr.String())
	assert.Contains(t, stdout.String(), "Months: 1\n")
	assert.Contains(t, stdout.String(), "Installment")
	assert.Contains(t, stdout.String(), "2024")
}

func TestRun_ZeroLoan(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"-i", "0.06", "-d", "0.03", "-l", "0", "-a", "0"}, &stdout, &stderr)

	assert.Equal(t, exitOK, code, stderr.String())
	assert.Contains(t, stdout.String(), "Months: 0\n")
	assert.Contains(t, stdout.String(), "Total interest NPV: 0.00 Kr\n")
}

func TestRun_Failures(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		code      int
		errSubstr string
	}{
		{name: "zero amortization", args: []string{"-i", "0.06", "-d", "0.03", "-l", "100", "-a", "0"}, code: exitError, errSubstr: "invalid amortization '0'"},
		{name: "discount rate below -100%", args: []string{"-i", "0.06", "-d", "-2", "-l", "100", "-a", "10"}, code: exitError, errSubstr: "invalid discount rate"},
		{name: "malformed loan", args: []string{"-i", "0.06", "-d", "0.03", "-l", "lots", "-a", "10"}, code: exitUsage, errSubstr: "invalid loan 'lots'"},
		{name: "malformed rate", args: []string{"-i", "six", "-d", "0.03", "-l", "100", "-a", "10"}, code: exitUsage, errSubstr: "invalid value"},
		{name: "missing flags", args: []string{"-i", "0.06"}, code: exitUsage, errSubstr: "-discount-rate, -loan, -amortization"},
		{name: "malformed start", args: []string{"-i", "0.06", "-d", "0", "-l", "1", "-a", "1", "-start", "May"}, code: exitUsage, errSubstr: "invalid start"},
		{name: "bank without rate store", args: []string{"-bank", "Danske Bank", "-d", "0.03", "-l", "100", "-a", "10"}, code: exitError, errSubstr: "no rate source configured"},
		{name: "explicit rate with bank", args: []string{"-bank", "Danske Bank", "-i", "0.05", "-d", "0.03", "-l", "100", "-a", "10"}, code: exitUsage, errSubstr: "-interest and -bank are mutually exclusive"},
		{name: "bad term", args: []string{"-bank", "Danske Bank", "-term", "5w", "-d", "0.03", "-l", "100", "-a", "10"}, code: exitUsage, errSubstr: "invalid term"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("BOLAN_DATABASE_URL", "")

			var stdout, stderr bytes.Buffer
			code := run(tt.args, &stdout, &stderr)

			assert.Equal(t, tt.code, code)
			assert.Empty(t, stdout.String())
			assert.Contains(t, stderr.String(), tt.errSubstr)
		})
	}
}

func TestRun_Help(t *testing.T) {
	var stdout, stderr bytes.Buffer
	assert.Equal(t, exitOK, run([]string{"-h"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "Usage: calculator")
}
