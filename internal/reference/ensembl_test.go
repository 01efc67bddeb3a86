package reference

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newEnsemblServer serves testdata/<symbol>.json for symbol lookups.
func newEnsemblServer(t *testing.T, files map[string]string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	calls := new(atomic.Int32)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		const prefix = "/lookup/symbol/homo_sapiens/"
		if !strings.HasPrefix(r.URL.Path, prefix) {
			http.Error(w, "bad path", http.StatusBadRequest)
			return
		}
		assert.Equal(t, "1", r.URL.Query().Get("expand"))
		name, ok := files[strings.TrimPrefix(r.URL.Path, prefix)]
		if !ok {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"No valid lookup found for symbol"}`))
			return
		}
		data, err := os.ReadFile(filepath.Join("testdata", name))
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	}))
	t.Cleanup(srv.Close)
	return srv, calls
}

func TestNewEnsemblClient(t *testing.T) {
	assert.Equal(t, EnsemblGRCh38URL, NewEnsemblClient("GRCh38").baseURL)
	assert.Equal(t, EnsemblGRCh37URL, NewEnsemblClient("grch37").baseURL)
	assert.Equal(t, EnsemblGRCh38URL, NewEnsemblClient("").baseURL)
}

func TestEnsemblClient_LookupGene(t *testing.T) {
	srv, _ := newEnsemblServer(t, map[string]string{
		"KRAS":  "kras_grch38.json",
		"TP53":  "tp53_grch37.json",
		"MIR21": "mir21_grch38.json",
	})
	client := NewEnsemblClientWithURL(srv.URL + "/")

	tests := []struct {
		symbol  string
		want    *GeneRecord
		wantErr bool
	}{
		{
			symbol: "KRAS",
			want: &GeneRecord{
				Symbol:       "KRAS",
				GeneID:       "ENSG00000133703",
				TranscriptID: "ENST00000311936",
				ProteinID:    "ENSP00000308495",
			},
		},
		{
			symbol: "TP53",
			want: &GeneRecord{
				Symbol:       "TP53",
				GeneID:       "ENSG00000141510",
				TranscriptID: "ENST00000269305",
				ProteinID:    "ENSP00000269305",
			},
		},
		{symbol: "MIR21", wantErr: true},
		{symbol: "NOTAGENE", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			got, err := client.LookupGene(context.Background(), tt.symbol)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrGeneNotFound))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEnsemblClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewEnsemblClientWithURL(srv.URL).LookupGene(context.Background(), "KRAS")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrGeneNotFound))
	assert.Contains(t, err.Error(), "503")
}

func TestEnsemblClient_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("{not json"))
	}))
	defer srv.Close()

	_, err := NewEnsemblClientWithURL(srv.URL).LookupGene(context.Background(), "KRAS")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode REST response")
}
