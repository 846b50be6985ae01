package config

import "testing"

func TestInfo_Defaults(t *testing.T) {
	info := Info()
	if info.Version != "dev" {
		t.Errorf("expected default version dev, got %s", info.Version)
	}
	if info.Build != "unknown" || info.GitCommit != "unknown" {
		t.Errorf("expected unknown build/commit, got %+v", info)
	}
}

func TestGetFullVersion(t *testing.T) {
	expected := "dev (build: unknown, commit: unknown)"
	if fv := GetFullVersion(); fv != expected {
		t.Errorf("expected full version %q, got %q", expected, fv)
	}
}
