package elevate

import "testing"

func TestEnsureNotNeeded(t *testing.T) {
	relaunched, err := Ensure(false, nil)
	if relaunched || err != nil {
		t.Fatalf("Ensure(false) = %v, %v", relaunched, err)
	}
}
