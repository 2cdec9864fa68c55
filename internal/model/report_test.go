package model

import (
	"errors"
	"math"
	"testing"

	"github.com/nao1215/bizreport/internal/document"
)

func TestNewReport(t *testing.T) {
	t.Parallel()

	r := NewReport("data.json")

	if r.Path != "data.json" {
		t.Errorf("expected path data.json, got %q", r.Path)
	}
	if r.AnalyzedAt.IsZero() {
		t.Error("expected AnalyzedAt to be set")
	}
	if r.HasBusinesses() {
		t.Error("expected no businesses section")
	}
	if r.ActualCount() != 0 {
		t.Errorf("expected actual count 0, got %d", r.ActualCount())
	}
}

func TestReport_SetError(t *testing.T) {
	t.Parallel()

	r := NewReport("data.json")
	r.SetError(errors.New("boom"))

	if r.Err == nil || r.ErrorMessage != "boom" {
		t.Errorf("expected error boom, got %v / %q", r.Err, r.ErrorMessage)
	}
}

func TestReport_CountMismatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		declared document.Value
		actual   *Businesses
		want     bool
	}{
		{"declared matches", document.NewNumber(2), &Businesses{Count: 2}, false},
		{"declared differs", document.NewNumber(5), &Businesses{Count: 2}, true},
		{"declared without array", document.NewNumber(3), nil, true},
		{"declared absent", document.Missing(), &Businesses{Count: 2}, false},
		{"declared not a number", document.NewString("5"), &Businesses{Count: 2}, false},
		{"declared fraction", document.NewNumber(1.5), &Businesses{Count: 1}, true},
		{"declared infinite", document.NewNumber(math.Inf(1)), &Businesses{Count: 1}, true},
		{"declared negative", document.NewNumber(-1), &Businesses{Count: 0}, true},
		{"declared negative zero", document.NewNumber(math.Copysign(0, -1)), &Businesses{Count: 0}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := NewReport("data.json")
			r.Header = &Header{DeclaredTotal: tt.declared}
			r.Businesses = tt.actual

			if got := r.CountMismatch(); got != tt.want {
				t.Errorf("CountMismatch() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestReport_DeclaredCount(t *testing.T) {
	t.Parallel()

	parse := func(literal string) document.Value {
		v, err := document.Parse([]byte(literal))
		if err != nil {
			t.Fatalf("failed to parse %s: %v", literal, err)
		}
		return v
	}

	tests := []struct {
		name        string
		declared    document.Value
		wantCount   int
		wantOK      bool
		wantInvalid bool
	}{
		{name: "whole number", declared: parse("5"), wantCount: 5, wantOK: true},
		{name: "whole number with fraction digits", declared: parse("5.0"), wantCount: 5, wantOK: true},
		{name: "negative", declared: parse("-1"), wantCount: -1, wantOK: true},
		{name: "fraction", declared: parse("1.5"), wantInvalid: true},
		{name: "overflow literal", declared: parse("1e400"), wantInvalid: true},
		{name: "beyond int range", declared: parse("1e19"), wantInvalid: true},
		{name: "string", declared: parse(`"5"`)},
		{name: "absent", declared: document.Missing()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := NewReport("data.json")
			r.Header = &Header{DeclaredTotal: tt.declared}

			got, ok := r.DeclaredCount()
			if got != tt.wantCount || ok != tt.wantOK {
				t.Errorf("DeclaredCount() = %d, %v, want %d, %v", got, ok, tt.wantCount, tt.wantOK)
			}
			if invalid := r.DeclaredInvalid(); invalid != tt.wantInvalid {
				t.Errorf("DeclaredInvalid() = %v, want %v", invalid, tt.wantInvalid)
			}
		})
	}

	t.Run("no header", func(t *testing.T) {
		t.Parallel()

		r := NewReport("data.json")
		if _, ok := r.DeclaredCount(); ok || r.DeclaredInvalid() || r.CountMismatch() {
			t.Error("expected no declared count without a header")
		}
	})
}

func TestProfessionalLabel(t *testing.T) {
	t.Parallel()

	if got := ProfessionalLabel("prof-"); got != "Professional (prof-)" {
		t.Errorf("unexpected label %q", got)
	}
}
