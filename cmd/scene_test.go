package cmd

import "testing"

func TestBackendFlag(t *testing.T) {
	flag := BackendFlag()
	if flag.Name != "backend" {
		t.Fatalf("expected flag name to be 'backend'; got %s", flag.Name)
	}
	if flag.Value != "tlas" {
		t.Fatalf("expected default backend to be 'tlas'; got %s", flag.Value)
	}
}
