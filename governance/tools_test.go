package governance

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func testProvider() *Provider {
	return &Provider{
		ID:          1,
		Service:     "com.x.Foo:1.0",
		Address:     "10.0.0.1:20880",
		Application: "app1",
		Enabled:     true,
		Weight:      100,
	}
}

func TestOverrideMatches(t *testing.T) {
	tests := []struct {
		name string
		o    *Override
		want bool
	}{
		{"exact", &Override{Service: "com.x.Foo:1.0", Address: "10.0.0.1:20880", Params: "weight=1", Enabled: true}, true},
		{"any address", &Override{Service: "com.x.Foo:1.0", Params: "weight=1", Enabled: true}, true},
		{"any host", &Override{Service: "com.x.Foo:1.0", Address: "0.0.0.0", Params: "weight=1", Enabled: true}, true},
		{"wildcard", &Override{Service: "com.x.Foo:1.0", Address: "*", Params: "weight=1", Enabled: true}, true},
		{"normalized service", &Override{Service: "/com.x.Foo:1.0", Params: "weight=1", Enabled: true}, true},
		{"same application", &Override{Service: "com.x.Foo:1.0", Application: "app1", Params: "weight=1", Enabled: true}, true},
		{"other application", &Override{Service: "com.x.Foo:1.0", Application: "app2", Params: "weight=1", Enabled: true}, false},
		{"other address", &Override{Service: "com.x.Foo:1.0", Address: "10.0.0.2:20880", Params: "weight=1", Enabled: true}, false},
		{"other service", &Override{Service: "com.x.Bar:1.0", Params: "weight=1", Enabled: true}, false},
		{"disabled", &Override{Service: "com.x.Foo:1.0", Params: "weight=1", Enabled: false}, false},
		{"no params", &Override{Service: "com.x.Foo:1.0", Enabled: true}, false},
		{"nil", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.o.Matches(testProvider()); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestIsProviderEnabled(t *testing.T) {
	p := testProvider()
	disable := &Override{Service: p.Service, Address: p.Address, Params: "disabled=true", Enabled: true}
	enable := &Override{Service: p.Service, Address: p.Address, Params: "disabled=false", Enabled: true}
	unrelated := &Override{Service: "com.x.Bar", Params: "disabled=true", Enabled: true}

	if !IsProviderEnabled(p, nil) {
		t.Error("no overrides: expected provider flag")
	}
	if IsProviderEnabled(p, []*Override{unrelated, disable}) {
		t.Error("disabling override should win")
	}
	if !IsProviderEnabled(p, []*Override{enable, disable}) {
		t.Error("first matching override should win")
	}

	off := testProvider()
	off.Enabled = false
	if !IsProviderEnabled(off, []*Override{enable}) {
		t.Error("disabled=false should re-enable a disabled provider")
	}
}

func TestProviderWeight(t *testing.T) {
	p := testProvider()
	overrides := []*Override{
		{Service: p.Service, Params: "timeout=5", Enabled: true},
		{Service: p.Service, Params: "weight=bad", Enabled: true},
		{Service: p.Service, Address: p.Address, Params: "weight=300", Enabled: true},
	}
	if got := ProviderWeight(p, overrides); got != 300 {
		t.Errorf("ProviderWeight = %d, want 300", got)
	}
	if got := ProviderWeight(p, overrides[:2]); got != 100 {
		t.Errorf("ProviderWeight without weight override = %d, want 100", got)
	}
}

func TestOverridesToWeights(t *testing.T) {
	overrides := []*Override{
		{ID: 1, Service: "com.x.Foo", Address: "10.0.0.1:20880", Params: "weight=200", Enabled: true},
		{ID: 2, Service: "com.x.Foo", Params: "timeout=5", Enabled: true},
		{ID: 3, Service: "com.x.Bar", Params: "mock=force&weight=50", Enabled: true},
	}
	got := OverridesToWeights(overrides)
	want := []*Weight{
		{ID: 1, Service: "com.x.Foo", Address: "10.0.0.1:20880", Weight: 200},
		{ID: 3, Service: "com.x.Bar", Weight: 50},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("OverridesToWeights mismatch (-want +got):\n%s", diff)
	}
}

func TestWeightToOverride(t *testing.T) {
	o := WeightToOverride(&Weight{Service: "com.x.Foo", Address: "10.0.0.1", Weight: 20})
	want := &Override{Service: "com.x.Foo", Address: "10.0.0.1", Params: "weight=20", Enabled: true}
	if diff := cmp.Diff(want, o); diff != "" {
		t.Errorf("WeightToOverride mismatch (-want +got):\n%s", diff)
	}
}

func TestScaleWeight(t *testing.T) {
	tests := []struct {
		value    string
		multiple float64
		want     int
	}{
		{"", 2, 200},
		{"", 0.5, 50},
		{"bad", 1, 100},
		{"3", 0.5, 1},
		{"1", 0.5, 1},
		{"40", 2, 80},
	}
	for _, tt := range tests {
		if got := scaleWeight(tt.value, tt.multiple); got != tt.want {
			t.Errorf("scaleWeight(%q, %v) = %d, want %d", tt.value, tt.multiple, got, tt.want)
		}
	}
}
