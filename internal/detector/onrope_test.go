package detector

import (
	"image"
	"strings"
	"testing"

	"ropebot/internal/logger"
	"ropebot/internal/templates"
)

func onRopeTemplate() *templates.Template {
	return &templates.Template{
		Name:     "role_on_rope",
		Category: templates.OnRope,
		Image:    noise(10, 16, 61),
		Priority: templates.DefaultPriority,
	}
}

func ropeAt(x int) Detection {
	return Detection{
		Name:       "rope",
		Category:   templates.Rope,
		Position:   image.Pt(x, 50),
		Box:        image.Rect(x-5, 0, x+5, 100),
		Confidence: 0.85,
	}
}

func onRopeDetector() *Detector {
	cfg := testConfig()
	cfg.OnRopeScales = []float64{1.0}
	return NewDetector(NCC{}, &fakeProvider{}, cfg, nil, logger.Discard())
}

func TestDetectOnRopeTemplate(t *testing.T) {
	frame := noise(100, 100, 62)
	tmpl := onRopeTemplate()
	paste(frame, tmpl.Image, image.Pt(40, 30))

	res := onRopeDetector().DetectOnRope(frame, image.Pt(50, 50), tmpl, nil)
	if !res.OnRope {
		t.Fatal("character on rope not detected")
	}
	if !strings.HasPrefix(res.Method, MethodTemplate) {
		t.Errorf("method = %s, want a template method", res.Method)
	}
	if res.Position != image.Pt(45, 38) {
		t.Errorf("position = %v, want (45,38)", res.Position)
	}
	if res.Confidence < 0.9 {
		t.Errorf("confidence = %v", res.Confidence)
	}
}

func TestDetectOnRopeGeometryFallback(t *testing.T) {
	frame := noise(100, 100, 63)

	res := onRopeDetector().DetectOnRope(frame, image.Pt(50, 50), onRopeTemplate(), []Detection{ropeAt(90), ropeAt(52)})
	if !res.OnRope || res.Method != MethodRopeGeometry {
		t.Fatalf("result = %+v, want rope geometry fallback", res)
	}
	if res.Position != image.Pt(52, 50) {
		t.Errorf("position = %v, want rope x with character y", res.Position)
	}
	if res.Confidence != 0.6 {
		t.Errorf("confidence = %v, want 0.6", res.Confidence)
	}
}

func TestDetectOnRopeNothing(t *testing.T) {
	frame := noise(100, 100, 64)
	res := onRopeDetector().DetectOnRope(frame, image.Pt(50, 50), onRopeTemplate(), []Detection{ropeAt(90)})
	if res.OnRope {
		t.Errorf("unexpected on-rope result %+v", res)
	}
}

func TestDetectOnRopeBoxFallback(t *testing.T) {
	d := onRopeDetector()
	ropes := []Detection{ropeAt(45)}

	if res := d.DetectOnRope(nil, image.Pt(65, 50), nil, ropes); !res.OnRope || res.Method != MethodRopeBox {
		t.Errorf("within 20px of the box: %+v", res)
	}
	if res := d.DetectOnRope(nil, image.Pt(80, 50), nil, ropes); res.OnRope {
		t.Errorf("far from the box: %+v", res)
	}
	if res := d.DetectOnRope(nil, image.Pt(50, 50), nil, nil); res.OnRope {
		t.Errorf("no ropes: %+v", res)
	}
}
