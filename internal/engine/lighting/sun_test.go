package lighting

import (
	"testing"

	"github.com/chewxy/math32"
)

func TestDefaultSun(t *testing.T) {
	sun := DefaultSun()
	if l := sun.Direction.Length(); math32.Abs(l-1) > 1e-5 {
		t.Errorf("expected unit direction, got length %v", l)
	}
	if sun.Direction.Y <= 0 {
		t.Error("expected the sun above the floor")
	}
	if sun.Ambient != 0.5 {
		t.Errorf("expected ambient 0.5, got %v", sun.Ambient)
	}
}
