package helper

import (
	"strings"
	"testing"
)

type testRoute struct {
	Folder string `errorTxt:"route folder" mandatory:"yes"`
	Name   string `errorTxt:"route name" mandatory:"yes"`
}

type testCfg struct {
	Database string      `errorTxt:"database" mandatory:"yes"`
	Optional string      `errorTxt:"optional"`
	Routes   []testRoute `errorTxt:"routes"`
	internal string
}

func TestValidateStructIsPopulated(t *testing.T) {
	// Test 1, all set.
	cfg := testCfg{Database: "db", Routes: []testRoute{{Folder: "f", Name: "n"}}}
	if err := ValidateStructIsPopulated(&cfg); err != nil {
		t.Fatalf("expected no error; got %v", err)
	}
	// Test 2, missing top level value and a nested value.
	cfg = testCfg{Routes: []testRoute{{Folder: "f"}}}
	err := ValidateStructIsPopulated(cfg)
	if err == nil {
		t.Fatal("expected error for missing mandatory values")
	}
	if !strings.Contains(err.Error(), "database") || !strings.Contains(err.Error(), "route name") {
		t.Fatalf("unexpected error text: %v", err)
	}
	if strings.Contains(err.Error(), "optional") {
		t.Fatalf("optional field reported as missing: %v", err)
	}
}
