package envvar_test

import (
	"reflect"
	"testing"

	"github.com/JaimeStill/labelsort/pkg/envvar"
)

func TestString(t *testing.T) {
	t.Setenv("TEST_ENVVAR_STRING", "override")

	v := "default"
	envvar.String(&v, "TEST_ENVVAR_STRING")
	if v != "override" {
		t.Errorf("got %q, want override", v)
	}

	envvar.String(&v, "")
	envvar.String(&v, "TEST_ENVVAR_UNSET")
	if v != "override" {
		t.Errorf("empty or unset name changed value to %q", v)
	}
}

func TestNumeric(t *testing.T) {
	t.Setenv("TEST_ENVVAR_INT", "42")
	t.Setenv("TEST_ENVVAR_FLOAT", "0.5")
	t.Setenv("TEST_ENVVAR_BAD", "many")

	n := 1
	envvar.Int(&n, "TEST_ENVVAR_INT")
	if n != 42 {
		t.Errorf("Int = %d, want 42", n)
	}
	envvar.Int(&n, "TEST_ENVVAR_BAD")
	if n != 42 {
		t.Errorf("invalid int changed value to %d", n)
	}

	f := 0.44
	envvar.Float(&f, "TEST_ENVVAR_FLOAT")
	if f != 0.5 {
		t.Errorf("Float = %v, want 0.5", f)
	}
	envvar.Float(&f, "TEST_ENVVAR_BAD")
	if f != 0.5 {
		t.Errorf("invalid float changed value to %v", f)
	}
}

func TestBool(t *testing.T) {
	tests := []struct {
		value string
		start bool
		want  bool
	}{
		{"true", false, true},
		{"0", true, false},
		{"yes", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("TEST_ENVVAR_BOOL", tt.value)
			b := tt.start
			envvar.Bool(&b, "TEST_ENVVAR_BOOL")
			if b != tt.want {
				t.Errorf("Bool(%q) = %v, want %v", tt.value, b, tt.want)
			}
		})
	}
}

func TestList(t *testing.T) {
	t.Setenv("TEST_ENVVAR_LIST", " a, b ,,c ")

	items := []string{"x"}
	envvar.List(&items, "TEST_ENVVAR_LIST")

	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(items, want) {
		t.Errorf("List = %v, want %v", items, want)
	}
}
