package validator

import (
	"testing"

	"github.com/gta-invest/propertymap/internal/platform/apperr"
	"github.com/gta-invest/propertymap/pkg/model"
)

func TestStruct(t *testing.T) {
	v := New()

	ok := model.Property{Address: "1 King St W", City: "Toronto", SquareFeet: 700, ListPrice: 650000}
	if err := v.Struct(ok); err != nil {
		t.Fatalf("valid property rejected: %v", err)
	}

	bad := model.Property{City: "Toronto", SquareFeet: 0, ListPrice: 650000}
	err := v.Struct(bad)
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation error", err)
	}
	details, _ := err.(*apperr.Error).Details.(map[string]string)
	if details["Address"] != "required" || details["SquareFeet"] != "gt=0" {
		t.Errorf("details = %v", details)
	}
}

func TestSettings(t *testing.T) {
	v := New()
	s := model.DefaultSettings()
	if err := v.Struct(s); err != nil {
		t.Fatalf("default settings rejected: %v", err)
	}
	s.Theme = "neon"
	if err := v.Struct(s); err == nil {
		t.Errorf("theme neon accepted")
	}
}
