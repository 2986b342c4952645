package platform

import (
	"context"
	"testing"
)

func BenchmarkDetect(b *testing.B) {
	detector := NewDetector()
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = detector.Detect(ctx)
	}
}

func BenchmarkResolve(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = Resolve("Linux", "x86_64")
	}
}

func BenchmarkMapFamily(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = mapFamily("Ubuntu")
	}
}
