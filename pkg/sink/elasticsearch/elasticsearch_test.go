package elasticsearch_test

import (
	"testing"

	"github.com/user/sinklog/pkg/sink/elasticsearch"
)

func TestNewBuildsClientWithoutNetworkAccess(t *testing.T) {
	sink, err := elasticsearch.New(elasticsearch.Config{
		Addresses: []string{"http://127.0.0.1:1"},
		IndexBase: "sinklog",
	})
	if err != nil {
		t.Fatalf("unexpected error constructing client: %v", err)
	}
	if sink == nil {
		t.Fatal("expected a non-nil sink")
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("unexpected error on close: %v", err)
	}
}
