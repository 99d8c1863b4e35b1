package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/vector-space-search/pkg/config"
)

func TestNeedsPostgres(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		want bool
	}{
		{"tdt corpus", config.Config{Index: config.IndexConfig{Format: "tdt"}}, false},
		{"postgres corpus", config.Config{Index: config.IndexConfig{Format: "postgres"}}, true},
		{"pg alias", config.Config{Index: config.IndexConfig{Format: "pg"}}, true},
		{"snapshots", config.Config{Analytics: config.AnalyticsConfig{Enabled: true, SnapshotInterval: time.Minute}}, true},
		{"snapshots without analytics", config.Config{Analytics: config.AnalyticsConfig{SnapshotInterval: time.Minute}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NeedsPostgres(&tt.cfg); got != tt.want {
				t.Fatalf("NeedsPostgres = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildIndex(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.tdt")
	tdt := "<DOC>\n<DOCNO> 1 </DOCNO>\n<TEXT>\ncat dog\n</TEXT>\n</DOC>\n<DOC>\n<DOCNO> 2 </DOCNO>\n<TEXT>\ndog dog bird\n</TEXT>\n</DOC>\n"
	if err := os.WriteFile(path, []byte(tdt), 0o644); err != nil {
		t.Fatalf("write corpus: %v", err)
	}
	cfg := &config.Config{Index: config.IndexConfig{Scheme: "ltc", CorpusPath: path, Format: "tdt"}}
	engine, err := BuildIndex(context.Background(), cfg, nil, nil)
	if err != nil {
		t.Fatalf("build index: %v", err)
	}
	idx, err := engine.Index()
	if err != nil {
		t.Fatalf("index: %v", err)
	}
	if idx.DocCount() != 2 {
		t.Fatalf("expected 2 documents, got %d", idx.DocCount())
	}

	cfg.Index.Scheme = "zzz"
	if _, err := BuildIndex(context.Background(), cfg, nil, nil); err == nil {
		t.Fatal("expected error for an invalid scheme")
	}
}
