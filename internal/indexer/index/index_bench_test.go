package index

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/vector-space-search/internal/indexer/weighting"
)

func benchCorpus(n int) []Document {
	words := []string{"distributed", "search", "analytics", "platform", "indexing", "query", "engine", "ranking"}
	docs := make([]Document, n)
	for i := range docs {
		text := fmt.Sprintf("%s %s %s term%d term%d %s", words[i%len(words)], words[(i+1)%len(words)],
			words[(i+3)%len(words)], i%101, i%37, words[i%len(words)])
		docs[i] = Document{ID: i, Tokens: strings.Fields(text)}
	}
	return docs
}

// BenchmarkBuild measures a full build, weights and norms included, for
// growing collections.
func BenchmarkBuild(b *testing.B) {
	for _, n := range []int{100, 1000, 5000} {
		docs := benchCorpus(n)
		b.Run(fmt.Sprintf("docs_%d", n), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := Build(context.Background(), NewSliceStream(docs...), weighting.MustParse("ltc")); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkBuildSchemes compares the cost of the weighting variants.
func BenchmarkBuildSchemes(b *testing.B) {
	docs := benchCorpus(2000)
	for _, code := range []string{"nnn", "ltn", "lnc", "ltc"} {
		scheme := weighting.MustParse(code)
		b.Run(code, func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := Build(context.Background(), NewSliceStream(docs...), scheme); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkPostingsParallel measures concurrent reads of an immutable
// index.
func BenchmarkPostingsParallel(b *testing.B) {
	idx, err := Build(context.Background(), NewSliceStream(benchCorpus(10000)...), weighting.Default)
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = idx.Postings("search")
		}
	})
}
