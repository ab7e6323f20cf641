// Package testutil provides fixtures shared by the viewer's HTTP and
// transport tests: synthetic point sets, encoded sensor buffers and request
// helpers.
package testutil

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/simlidar/internal/lidar"
	"github.com/banshee-data/simlidar/internal/lidar/parse"
)

// AssertStatusCode checks the recorded status and reports the body on a
// mismatch.
func AssertStatusCode(t testing.TB, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Errorf("status code = %d, want %d (body: %q)", w.Code, want, w.Body.String())
	}
}

// Serve sends a body-less request to h and returns the recorded response.
func Serve(t testing.TB, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// PointCloud returns n points along the X axis at x = 1..n, all one colour.
// Its mean range is (n+1)/2 and its max range is n.
func PointCloud(n int) *lidar.PointSet {
	ps := lidar.NewPointSet(n)
	for i := 0; i < n; i++ {
		ps.Append(r3.Vec{X: float64(i + 1)}, r3.Vec{X: 0.2, Y: 0.4, Z: 0.6})
	}
	return ps
}

// RawFrame encodes n ray-cast samples at x = 0..n-1 with intensity 0.8.
func RawFrame(n int) []byte {
	samples := make([]parse.RawSample, n)
	for i := range samples {
		samples[i] = parse.RawSample{Position: r3.Vec{X: float64(i), Y: 1}, Intensity: 0.8}
	}
	return parse.EncodeRaw(samples)
}

// SemanticFrame encodes one semantic sample per tag, all from instance 0.
func SemanticFrame(tags ...uint32) []byte {
	samples := make([]parse.SemanticSample, len(tags))
	for i, tag := range tags {
		samples[i] = parse.SemanticSample{Position: r3.Vec{X: float64(i), Y: 1}, CosAngle: 1, ObjTag: tag}
	}
	return parse.EncodeSemantic(samples)
}
