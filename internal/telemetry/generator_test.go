package telemetry

import (
	"testing"
)

func TestSample_ClampsBoundedChannels(t *testing.T) {
	channels := DefaultChannels()
	gen := NewGenerator(channels, 42)

	for _, name := range channels.Names() {
		p := channels.Get(name)
		prev := p.Value
		for i := 0; i < 500; i++ {
			v, err := gen.Sample(name, float64(i)*0.1, prev)
			if err != nil {
				t.Fatalf("Sample(%s) returned error: %v", name, err)
			}
			if p.MinValue != nil && p.MaxValue != nil {
				if v < *p.MinValue || v > *p.MaxValue {
					t.Fatalf("%s value %f outside [%f, %f]", name, v, *p.MinValue, *p.MaxValue)
				}
			}
			prev = v
		}
	}
}

func TestSample_DeterministicWithSeed(t *testing.T) {
	a := NewGenerator(DefaultChannels(), 7)
	b := NewGenerator(DefaultChannels(), 7)

	for i := 0; i < 50; i++ {
		va, err := a.Sample("engine_rpm", float64(i)*0.1, 1500)
		if err != nil {
			t.Fatal(err)
		}
		vb, err := b.Sample("engine_rpm", float64(i)*0.1, 1500)
		if err != nil {
			t.Fatal(err)
		}
		if va != vb {
			t.Fatalf("tick %d: same seed produced %f vs %f", i, va, vb)
		}
	}
}

func TestSample_FuelNeverIncreases(t *testing.T) {
	channels := DefaultChannels()
	gen := NewGenerator(channels, 1)

	prev := 75.0
	for i := 0; i < 1000; i++ {
		v, err := gen.Sample("fuel_level", float64(i)*0.1, prev)
		if err != nil {
			t.Fatal(err)
		}
		if v > prev {
			t.Fatalf("fuel increased from %f to %f", prev, v)
		}
		prev = v
	}
}

func TestSample_ThermalApproachesLoadTarget(t *testing.T) {
	channels := DefaultChannels()
	gen := NewGenerator(channels, 3)

	// Pin the load high; the temperature should climb toward 80 + 0.25*100.
	channels.Get("engine_load").Value = 100

	temp := 85.0
	for i := 0; i < 500; i++ {
		v, err := gen.Sample("engine_temp", float64(i)*0.1, temp)
		if err != nil {
			t.Fatal(err)
		}
		temp = v
	}
	if temp < 95 {
		t.Errorf("expected engine_temp to approach high-load target, got %f", temp)
	}
}

func TestSample_GPSUnclamped(t *testing.T) {
	channels := DefaultChannels()
	gen := NewGenerator(channels, 5)

	lat := 40.7128
	moved := false
	for i := 0; i < 100; i++ {
		v, err := gen.Sample("latitude", float64(i)*0.1, lat)
		if err != nil {
			t.Fatal(err)
		}
		if v != lat {
			moved = true
		}
		lat = v
	}
	if !moved {
		t.Error("expected random walk to move latitude")
	}
}

func TestSample_PTOSnapsBetweenBandAndZero(t *testing.T) {
	channels := DefaultChannels()
	gen := NewGenerator(channels, 11)

	var active, idle int
	for i := 0; i < 500; i++ {
		v, err := gen.Sample("pto_speed", float64(i)*0.1, 540)
		if err != nil {
			t.Fatal(err)
		}
		if v == 0 {
			idle++
		} else if v > 450 && v < 650 {
			active++
		} else {
			t.Fatalf("pto_speed %f outside active band and not zero", v)
		}
	}
	if active == 0 || idle == 0 {
		t.Errorf("expected both active and idle samples, got active=%d idle=%d", active, idle)
	}
}

func TestSample_UnknownChannel(t *testing.T) {
	gen := NewGenerator(DefaultChannels(), 1)
	if _, err := gen.Sample("boost_pressure", 0, 0); err == nil {
		t.Error("expected error for unknown channel")
	}
}
